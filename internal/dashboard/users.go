package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/shopadmin/internal/logger"
	"github.com/patric-chuzhbe/shopadmin/internal/models"
	"github.com/patric-chuzhbe/shopadmin/internal/notify"
)

type usersClient interface {
	GetUsers(ctx context.Context) (*models.UsersResponse, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	AddUser(ctx context.Context, user models.NewUser) (*models.User, error)
}

// UsersPage is the users collection page. Search filters the already-fetched
// collection client-side; an empty term renders the full collection without
// re-querying the remote API.
type UsersPage struct {
	client   usersClient
	notifier *notify.Notifier
	out      io.Writer
	users    []models.User
	loaded   bool
}

// NewUsersPage creates the users page controller.
func NewUsersPage(client usersClient, notifier *notify.Notifier, out io.Writer) *UsersPage {
	return &UsersPage{
		client:   client,
		notifier: notifier,
		out:      out,
	}
}

func (p *UsersPage) fetch(ctx context.Context) error {
	response, err := p.client.GetUsers(ctx)
	if err != nil {
		return err
	}
	p.users = response.Users
	p.loaded = true

	return nil
}

// Load fetches the users collection and renders it.
func (p *UsersPage) Load(ctx context.Context) error {
	if err := p.fetch(ctx); err != nil {
		logger.Log.Debugln("unable to load users", "error", err)
		p.notifier.Danger("Unable to load users")

		return err
	}
	p.render(p.users)

	return nil
}

// Search renders the users whose first name, last name, username or email
// contains term, case-insensitive. The filter runs against the collection
// fetched by Load; with an empty term the full collection is rendered and
// no request is issued.
func (p *UsersPage) Search(ctx context.Context, term string) error {
	if !p.loaded {
		if err := p.fetch(ctx); err != nil {
			logger.Log.Debugln("unable to search users", "error", err)
			p.notifier.Danger("Unable to search users")

			return err
		}
	}

	if strings.TrimSpace(term) == "" {
		p.render(p.users)

		return nil
	}

	needle := strings.ToLower(term)
	filtered := funk.Filter(p.users, func(user models.User) bool {
		return strings.Contains(strings.ToLower(user.FirstName), needle) ||
			strings.Contains(strings.ToLower(user.LastName), needle) ||
			strings.Contains(strings.ToLower(user.Username), needle) ||
			strings.Contains(strings.ToLower(user.Email), needle)
	}).([]models.User)

	p.render(filtered)

	return nil
}

// Add validates and submits a new user, then re-fetches and re-renders the
// full collection. Nothing is inserted optimistically.
func (p *UsersPage) Add(ctx context.Context, user models.NewUser) error {
	created, err := p.client.AddUser(ctx, user)
	if err != nil {
		if isValidationError(err) {
			p.notifier.Warning("Please fill in the required user fields")

			return err
		}
		logger.Log.Debugln("unable to save user", "error", err)
		p.notifier.Danger(errorMessage(err, "Unable to save user"))

		return err
	}

	p.notifier.Success(fmt.Sprintf("User %q added", created.FullName()))

	return p.Load(ctx)
}

// Detail fetches a single user and renders its detail card.
func (p *UsersPage) Detail(ctx context.Context, id int) error {
	user, err := p.client.GetUserByID(ctx, id)
	if err != nil {
		logger.Log.Debugln("unable to load user details", "id", id, "error", err)
		p.notifier.Danger(errorMessage(err, "Unable to load user details"))

		return err
	}

	fmt.Fprintf(p.out, "User %d\n", user.ID)
	fmt.Fprintf(p.out, "  Name:     %s\n", user.FullName())
	fmt.Fprintf(p.out, "  Username: %s\n", user.Username)
	fmt.Fprintf(p.out, "  Email:    %s\n", user.Email)
	fmt.Fprintf(p.out, "  Phone:    %s\n", user.Phone)
	fmt.Fprintf(
		p.out,
		"  Address:  %s, %s, %s\n",
		user.Address.Address,
		user.Address.City,
		user.Address.State,
	)

	return nil
}

func (p *UsersPage) render(users []models.User) {
	if len(users) == 0 {
		fmt.Fprintln(p.out, "No users found")

		return
	}

	table := newTable(p.out)
	fmt.Fprintln(table, "ID\tNAME\tUSERNAME\tEMAIL\tPHONE")
	for _, user := range users {
		fmt.Fprintf(
			table,
			"%d\t%s\t%s\t%s\t%s\n",
			user.ID,
			user.FullName(),
			user.Username,
			user.Email,
			user.Phone,
		)
	}
	table.Flush()
}
