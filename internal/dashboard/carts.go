package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/shopadmin/internal/logger"
	"github.com/patric-chuzhbe/shopadmin/internal/models"
	"github.com/patric-chuzhbe/shopadmin/internal/notify"
)

type cartsClient interface {
	GetCarts(ctx context.Context) (*models.CartsResponse, error)
	GetCartByID(ctx context.Context, id int) (*models.Cart, error)
	AddCart(ctx context.Context, cart models.NewCart) (*models.Cart, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetProductByID(ctx context.Context, id int) (*models.Product, error)
}

type cartRow struct {
	cart      models.Cart
	ownerName string
	itemCount int
	total     float64
	err       error
}

type cartLine struct {
	item    models.CartItem
	product *models.Product
	err     error
}

// CartsPage is the carts collection page. Every row resolves its owning
// user through a nested lookup; the lookups of a render run concurrently
// and a failing one degrades its own row only. Rendered rows keep the
// collection order regardless of lookup completion order.
type CartsPage struct {
	client   cartsClient
	notifier *notify.Notifier
	out      io.Writer
	rows     []cartRow
	loaded   bool
}

// NewCartsPage creates the carts page controller.
func NewCartsPage(client cartsClient, notifier *notify.Notifier, out io.Writer) *CartsPage {
	return &CartsPage{
		client:   client,
		notifier: notifier,
		out:      out,
	}
}

func (p *CartsPage) resolveRows(ctx context.Context, carts []models.Cart) []cartRow {
	rows := make([]cartRow, len(carts))

	var wg sync.WaitGroup
	for i, cart := range carts {
		wg.Add(1)
		go func(i int, cart models.Cart) {
			defer wg.Done()

			row := cartRow{cart: cart}
			owner, err := p.client.GetUserByID(ctx, cart.UserID)
			if err != nil {
				logger.Log.Debugln("unable to resolve cart owner", "cart", cart.ID, "error", err)
				row.err = err
			} else {
				row.ownerName = owner.FullName()
				row.itemCount = CartItemCount(cart)
				row.total = CartTotal(cart)
			}
			rows[i] = row
		}(i, cart)
	}
	wg.Wait()

	return rows
}

func (p *CartsPage) fetch(ctx context.Context) error {
	response, err := p.client.GetCarts(ctx)
	if err != nil {
		return err
	}
	p.rows = p.resolveRows(ctx, response.Carts)
	p.loaded = true

	return nil
}

// Load fetches the carts collection, resolves the owner of every row, and
// renders the table.
func (p *CartsPage) Load(ctx context.Context) error {
	if err := p.fetch(ctx); err != nil {
		logger.Log.Debugln("unable to load carts", "error", err)
		p.notifier.Danger("Unable to load carts")

		return err
	}
	p.render(p.rows)

	return nil
}

// Search re-fetches all carts and keeps those whose resolved owner name
// contains term, case-insensitive. Carts whose owner lookup fails are
// discarded from the result. An empty term renders the full collection.
func (p *CartsPage) Search(ctx context.Context, term string) error {
	if err := p.fetch(ctx); err != nil {
		logger.Log.Debugln("unable to search carts", "error", err)
		p.notifier.Danger("Unable to search carts")

		return err
	}

	if strings.TrimSpace(term) == "" {
		p.render(p.rows)

		return nil
	}

	needle := strings.ToLower(term)
	filtered := funk.Filter(p.rows, func(row cartRow) bool {
		return row.err == nil && strings.Contains(strings.ToLower(row.ownerName), needle)
	}).([]cartRow)

	p.render(filtered)

	return nil
}

// Add validates and submits a new cart after verifying the owning user
// exists, then re-fetches and re-renders the collection.
func (p *CartsPage) Add(ctx context.Context, cart models.NewCart) error {
	created, err := p.addCart(ctx, cart)
	if err != nil {
		if isValidationError(err) {
			p.notifier.Warning("Please provide a valid user id and at least one product line")

			return err
		}
		logger.Log.Debugln("unable to save cart", "error", err)
		p.notifier.Danger(errorMessage(err, "Unable to save cart"))

		return err
	}

	p.notifier.Success(fmt.Sprintf("Cart %d created", created.ID))

	return p.Load(ctx)
}

func (p *CartsPage) addCart(ctx context.Context, cart models.NewCart) (*models.Cart, error) {
	// The owner is looked up first so an unknown user id fails with the
	// server's message instead of creating an orphaned cart.
	if _, err := p.client.GetUserByID(ctx, cart.UserID); err != nil {
		return nil, err
	}

	return p.client.AddCart(ctx, cart)
}

// Remove drops the cart row from the local view only. The remote API has
// no delete endpoint, so no backend call is made.
func (p *CartsPage) Remove(ctx context.Context, id int) error {
	if !p.loaded {
		if err := p.fetch(ctx); err != nil {
			logger.Log.Debugln("unable to load carts", "error", err)
			p.notifier.Danger("Unable to load carts")

			return err
		}
	}

	kept := make([]cartRow, 0, len(p.rows))
	found := false
	for _, row := range p.rows {
		if row.cart.ID == id {
			found = true
			continue
		}
		kept = append(kept, row)
	}
	if !found {
		p.notifier.Warning(fmt.Sprintf("Cart %d is not in the current view", id))

		return nil
	}

	p.rows = kept
	p.render(p.rows)
	p.notifier.Success(fmt.Sprintf("Cart %d removed from the view", id))

	return nil
}

func (p *CartsPage) resolveLines(ctx context.Context, items []models.CartItem) []cartLine {
	lines := make([]cartLine, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item models.CartItem) {
			defer wg.Done()

			line := cartLine{item: item}
			product, err := p.client.GetProductByID(ctx, item.ID)
			if err != nil {
				logger.Log.Debugln("unable to resolve cart line product", "product", item.ID, "error", err)
				line.err = err
			} else {
				line.product = product
			}
			lines[i] = line
		}(i, item)
	}
	wg.Wait()

	return lines
}

// Detail fetches a cart, its owning user and every line item's product, and
// renders the detail table with the raw and 10%-discounted totals. A line
// whose product lookup fails renders a placeholder row instead of failing
// the whole view.
func (p *CartsPage) Detail(ctx context.Context, id int) error {
	cart, err := p.client.GetCartByID(ctx, id)
	if err != nil {
		logger.Log.Debugln("unable to load cart details", "id", id, "error", err)
		p.notifier.Danger(errorMessage(err, "Unable to load cart details"))

		return err
	}

	owner, err := p.client.GetUserByID(ctx, cart.UserID)
	if err != nil {
		logger.Log.Debugln("unable to load cart owner", "id", id, "error", err)
		p.notifier.Danger(errorMessage(err, "Unable to load cart details"))

		return err
	}

	fmt.Fprintf(p.out, "Cart %d\n", cart.ID)
	fmt.Fprintf(p.out, "  User:              %s\n", owner.FullName())
	fmt.Fprintf(p.out, "  Total:             %s\n", money(CartTotal(*cart)))
	fmt.Fprintf(p.out, "  Discounted total:  %s\n", money(CartDiscountedTotal(*cart)))

	lines := p.resolveLines(ctx, cart.Products)

	table := newTable(p.out)
	fmt.Fprintln(table, "#\tPRODUCT\tPRICE\tQTY\tTOTAL\tDISCOUNT")
	for i, line := range lines {
		if line.err != nil {
			fmt.Fprintf(
				table,
				"%d\tProduct ID: %d (not available)\t-\t%d\t-\t-\n",
				i+1,
				line.item.ID,
				line.item.Quantity,
			)
			continue
		}
		fmt.Fprintf(
			table,
			"%d\t%s\t%s\t%d\t%s\t%.2f%%\n",
			i+1,
			line.product.Title,
			money(line.product.Price),
			line.item.Quantity,
			money(round2(line.product.Price*float64(line.item.Quantity))),
			line.product.DiscountPercentage,
		)
	}
	table.Flush()

	return nil
}

func (p *CartsPage) render(rows []cartRow) {
	if len(rows) == 0 {
		fmt.Fprintln(p.out, "No carts found")

		return
	}

	table := newTable(p.out)
	fmt.Fprintln(table, "ID\tUSER\tITEMS\tTOTAL")
	for _, row := range rows {
		if row.err != nil {
			fmt.Fprintf(
				table,
				"%d\tunable to load cart information\t\t\n",
				row.cart.ID,
			)
			continue
		}
		fmt.Fprintf(
			table,
			"%d\t%s\t%d\t%s\n",
			row.cart.ID,
			row.ownerName,
			row.itemCount,
			money(row.total),
		)
	}
	table.Flush()
}
