// Package app initializes and runs the admin client. It configures logging,
// the session store and the API client, gates every command except login
// behind the stored session, and dispatches commands to the page
// controllers.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/patric-chuzhbe/shopadmin/internal/api"
	"github.com/patric-chuzhbe/shopadmin/internal/config"
	"github.com/patric-chuzhbe/shopadmin/internal/dashboard"
	"github.com/patric-chuzhbe/shopadmin/internal/logger"
	"github.com/patric-chuzhbe/shopadmin/internal/models"
	"github.com/patric-chuzhbe/shopadmin/internal/notify"
	"github.com/patric-chuzhbe/shopadmin/internal/session"
)

// ErrUnauthenticated is returned when a gated command runs without a stored
// session token.
var ErrUnauthenticated = errors.New("not authenticated")

// ErrUnknownCommand is returned for a command the dispatcher does not know.
var ErrUnknownCommand = errors.New("unknown command")

// App encapsulates the configuration, session store, API client and page
// controllers of the admin client.
type App struct {
	cfg      *config.Config
	store    *session.Store
	client   *api.Client
	notifier *notify.Notifier
	out      io.Writer
}

// New initializes a new App by loading configuration, initializing the
// logger, opening the session store and building the API client.
func New() (*App, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	return NewWithConfig(cfg, os.Stdout)
}

// NewWithConfig builds an App from an already-loaded configuration. It is
// the seam used by tests to point the client at a fake remote API.
func NewWithConfig(cfg *config.Config, out io.Writer) (*App, error) {
	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, err
	}

	store, err := session.New(cfg.SessionFile)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		store:    store,
		client:   api.New(cfg.APIBaseURL, cfg.RequestTimeout, store),
		notifier: notify.New(out),
		out:      out,
	}, nil
}

// Run dispatches the command named by args and blocks until it finishes or
// an interrupt arrives.
func (a *App) Run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(args) == 0 {
		a.printUsage()

		return ErrUnknownCommand
	}

	command, commandArgs := args[0], args[1:]

	if command != "login" && command != "help" && !a.store.IsAuthenticated() {
		a.notifier.Warning("Please log in first: shopadmin login -user <name> -password <password>")

		return ErrUnauthenticated
	}

	switch command {
	case "help":
		a.printUsage()

		return nil
	case "login":
		return a.login(ctx, commandArgs)
	case "logout":
		return a.logout()
	case "status":
		return a.status()
	case "users":
		return a.users(ctx, commandArgs)
	case "users-add":
		return a.usersAdd(ctx, commandArgs)
	case "products":
		return a.products(ctx, commandArgs)
	case "products-add":
		return a.productsAdd(ctx, commandArgs)
	case "carts":
		return a.carts(ctx, commandArgs)
	case "carts-add":
		return a.cartsAdd(ctx, commandArgs)
	case "cart-rm":
		return a.cartRemove(ctx, commandArgs)
	}

	a.printUsage()

	return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func (a *App) login(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	username := flags.String("user", "", "username")
	password := flags.String("password", "", "password")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *username == "" || *password == "" {
		a.notifier.Warning("Please provide both a username and a password")

		return errors.New("missing credentials")
	}

	login, err := a.client.Login(ctx, *username, *password)
	if err != nil {
		logger.Log.Debugln("login failed", "user", *username, "error", err)
		// The server message is surfaced verbatim and nothing is written
		// to the session store.
		a.notifier.Danger(loginErrorMessage(err))

		return err
	}

	if err := a.store.Save(login); err != nil {
		return err
	}

	a.notifier.Success(fmt.Sprintf("Welcome, %s %s", login.FirstName, login.LastName))
	fmt.Fprintln(a.out, "Dashboard ready: users | products | carts")

	return nil
}

func loginErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	return "Login failed"
}

func (a *App) logout() error {
	if err := a.store.Clear(); err != nil {
		return err
	}

	a.notifier.Success("Logged out")

	return nil
}

func (a *App) status() error {
	current := a.store.CurrentUser()
	if current == nil {
		fmt.Fprintln(a.out, "Authenticated (no user snapshot stored)")

		return nil
	}

	fmt.Fprintf(a.out, "Logged in as %s %s (%s)\n", current.FirstName, current.LastName, current.Username)
	if expiresAt, ok := a.store.ExpiresAt(); ok {
		// Informational only. An expired token is kept until logout and
		// is only rejected by the server on the next request.
		fmt.Fprintf(a.out, "Token expires at %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
	}

	return nil
}

func (a *App) users(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("users", flag.ContinueOnError)
	search := flags.String("search", "", "filter users by name, username or email")
	id := flags.Int("id", 0, "show the details of one user")
	if err := flags.Parse(args); err != nil {
		return err
	}

	page := dashboard.NewUsersPage(a.client, a.notifier, a.out)

	if *id > 0 {
		return page.Detail(ctx, *id)
	}
	if *search != "" {
		return page.Search(ctx, *search)
	}

	return page.Load(ctx)
}

func (a *App) usersAdd(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("users-add", flag.ContinueOnError)
	user := models.NewUser{}
	flags.StringVar(&user.FirstName, "first", "", "first name")
	flags.StringVar(&user.LastName, "last", "", "last name")
	flags.StringVar(&user.Username, "username", "", "username")
	flags.StringVar(&user.Email, "email", "", "email")
	flags.StringVar(&user.Password, "password", "", "password")
	flags.StringVar(&user.Phone, "phone", "", "phone")
	if err := flags.Parse(args); err != nil {
		return err
	}

	return dashboard.NewUsersPage(a.client, a.notifier, a.out).Add(ctx, user)
}

func (a *App) products(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("products", flag.ContinueOnError)
	pageNum := flags.Int("page", 1, "page number of the products grid")
	search := flags.String("search", "", "search products by query")
	id := flags.Int("id", 0, "show the details of one product")
	if err := flags.Parse(args); err != nil {
		return err
	}

	page := dashboard.NewProductsPage(a.client, a.notifier, a.out)

	if *id > 0 {
		return page.Detail(ctx, *id)
	}
	if *search != "" {
		return page.Search(ctx, *search)
	}

	return page.Load(ctx, *pageNum)
}

func (a *App) productsAdd(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("products-add", flag.ContinueOnError)
	product := models.NewProduct{}
	flags.StringVar(&product.Title, "title", "", "title")
	flags.StringVar(&product.Brand, "brand", "", "brand")
	flags.StringVar(&product.Description, "desc", "", "description")
	flags.Float64Var(&product.Price, "price", 0, "price")
	flags.Float64Var(&product.DiscountPercentage, "discount", 0, "discount percentage")
	flags.IntVar(&product.Stock, "stock", 0, "stock")
	flags.StringVar(&product.Category, "category", "", "category")
	flags.StringVar(&product.Thumbnail, "thumbnail", "", "thumbnail URL")
	if err := flags.Parse(args); err != nil {
		return err
	}

	return dashboard.NewProductsPage(a.client, a.notifier, a.out).Add(ctx, product)
}

func (a *App) carts(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("carts", flag.ContinueOnError)
	search := flags.String("search", "", "filter carts by owner name")
	id := flags.Int("id", 0, "show the details of one cart")
	if err := flags.Parse(args); err != nil {
		return err
	}

	page := dashboard.NewCartsPage(a.client, a.notifier, a.out)

	if *id > 0 {
		return page.Detail(ctx, *id)
	}
	if *search != "" {
		return page.Search(ctx, *search)
	}

	return page.Load(ctx)
}

func (a *App) cartsAdd(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("carts-add", flag.ContinueOnError)
	userID := flags.Int("user", 0, "owning user id")
	items := flags.String("items", "", "comma-separated product lines, id:quantity")
	if err := flags.Parse(args); err != nil {
		return err
	}

	lines, err := parseCartItems(*items)
	if err != nil {
		a.notifier.Warning(err.Error())

		return err
	}

	cart := models.NewCart{
		UserID:   *userID,
		Products: lines,
	}

	return dashboard.NewCartsPage(a.client, a.notifier, a.out).Add(ctx, cart)
}

func (a *App) cartRemove(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("cart-rm", flag.ContinueOnError)
	id := flags.Int("id", 0, "cart id to remove from the view")
	if err := flags.Parse(args); err != nil {
		return err
	}

	return dashboard.NewCartsPage(a.client, a.notifier, a.out).Remove(ctx, *id)
}

// parseCartItems parses "1:2,5:1" into cart submission lines. A line
// without a quantity defaults to one item.
func parseCartItems(spec string) ([]models.NewCartItem, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, errors.New("at least one product line is required, e.g. -items 1:2")
	}

	var items []models.NewCartItem
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idPart, quantityPart, hasQuantity := strings.Cut(part, ":")
		id, err := strconv.Atoi(idPart)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q", idPart)
		}

		quantity := 1
		if hasQuantity {
			quantity, err = strconv.Atoi(quantityPart)
			if err != nil || quantity < 1 {
				return nil, fmt.Errorf("invalid quantity %q for product %d", quantityPart, id)
			}
		}

		items = append(items, models.NewCartItem{
			ID:       id,
			Quantity: quantity,
		})
	}

	if len(items) == 0 {
		return nil, errors.New("at least one product line is required, e.g. -items 1:2")
	}

	return items, nil
}

func (a *App) printUsage() {
	fmt.Fprintln(a.out, `Usage: shopadmin [flags] <command> [command flags]

Commands:
  login        -user <name> -password <password>
  logout
  status
  users        [-search <term>] [-id <id>]
  users-add    -first <name> -last <name> -email <email> -password <password> [-username] [-phone]
  products     [-page <n>] [-search <term>] [-id <id>]
  products-add -title <title> -price <price> -stock <n> [-brand] [-desc] [-discount] [-category] [-thumbnail]
  carts        [-search <owner>] [-id <id>]
  carts-add    -user <id> -items <id:qty[,id:qty...]>
  cart-rm      -id <id>`)
}
