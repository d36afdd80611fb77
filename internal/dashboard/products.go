package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/patric-chuzhbe/shopadmin/internal/api"
	"github.com/patric-chuzhbe/shopadmin/internal/logger"
	"github.com/patric-chuzhbe/shopadmin/internal/models"
	"github.com/patric-chuzhbe/shopadmin/internal/notify"
)

// ProductsPerPage is the fixed page size of the products grid.
const ProductsPerPage = 9

const descriptionPreviewLen = 60

type productsClient interface {
	GetProducts(ctx context.Context) (*models.ProductsResponse, error)
	SearchProducts(ctx context.Context, query string) (*models.ProductsResponse, error)
	GetProductByID(ctx context.Context, id int) (*models.Product, error)
	AddProduct(ctx context.Context, product models.NewProduct) (*models.Product, error)
}

// ProductsView is the page view model of the products grid. It owns the
// fetched collection and the current page index; the controller passes it
// into render and pagination instead of keeping ambient module state.
type ProductsView struct {
	Products    []models.Product
	CurrentPage int
}

// TotalPages returns ceil(len(Products) / ProductsPerPage).
func (v *ProductsView) TotalPages() int {
	return (len(v.Products) + ProductsPerPage - 1) / ProductsPerPage
}

// PageSlice returns the products of the current page.
func (v *ProductsView) PageSlice() []models.Product {
	start := (v.CurrentPage - 1) * ProductsPerPage
	if start < 0 || start >= len(v.Products) {
		return nil
	}
	end := start + ProductsPerPage
	if end > len(v.Products) {
		end = len(v.Products)
	}

	return v.Products[start:end]
}

// HasPrev reports whether a previous page exists. The previous control is
// disabled exactly when the current page is the first one.
func (v *ProductsView) HasPrev() bool {
	return v.CurrentPage > 1
}

// HasNext reports whether a next page exists. The next control is disabled
// when the current page is the last one or the collection is empty.
func (v *ProductsView) HasNext() bool {
	return v.CurrentPage < v.TotalPages()
}

// ProductsPage is the products collection page with client-side pagination.
type ProductsPage struct {
	client   productsClient
	notifier *notify.Notifier
	out      io.Writer
	view     ProductsView
}

// NewProductsPage creates the products page controller.
func NewProductsPage(client productsClient, notifier *notify.Notifier, out io.Writer) *ProductsPage {
	return &ProductsPage{
		client:   client,
		notifier: notifier,
		out:      out,
	}
}

// View exposes the current page view model.
func (p *ProductsPage) View() *ProductsView {
	return &p.view
}

func (p *ProductsPage) fetch(ctx context.Context) error {
	response, err := p.client.GetProducts(ctx)
	if err != nil {
		return err
	}
	p.view = ProductsView{
		Products:    response.Products,
		CurrentPage: 1,
	}

	return nil
}

// Load fetches the full collection and renders the requested page. Pages
// out of range are clamped to the nearest valid one.
func (p *ProductsPage) Load(ctx context.Context, page int) error {
	if err := p.fetch(ctx); err != nil {
		logger.Log.Debugln("unable to load products", "error", err)
		p.notifier.Danger("Unable to load products")

		return err
	}
	p.view.CurrentPage = clampPage(page, p.view.TotalPages())
	p.render()

	return nil
}

// NextPage advances to the next page when one exists and re-renders.
func (p *ProductsPage) NextPage() {
	if p.view.HasNext() {
		p.view.CurrentPage++
		p.render()
	}
}

// PrevPage steps back to the previous page when one exists and re-renders.
func (p *ProductsPage) PrevPage() {
	if p.view.HasPrev() {
		p.view.CurrentPage--
		p.render()
	}
}

// Search delegates to the remote search endpoint and renders the first page
// of the result. An empty term re-fetches the full collection instead.
func (p *ProductsPage) Search(ctx context.Context, term string) error {
	if strings.TrimSpace(term) == "" {
		return p.Load(ctx, 1)
	}

	response, err := p.client.SearchProducts(ctx, term)
	if err != nil {
		logger.Log.Debugln("unable to search products", "term", term, "error", err)
		p.notifier.Danger("Unable to search products")

		return err
	}
	p.view = ProductsView{
		Products:    response.Products,
		CurrentPage: 1,
	}
	p.render()

	return nil
}

// Add validates and submits a new product, then re-fetches the collection
// and renders its first page.
func (p *ProductsPage) Add(ctx context.Context, product models.NewProduct) error {
	created, err := p.client.AddProduct(ctx, product)
	if err != nil {
		if isValidationError(err) {
			p.notifier.Warning("Please fill in the required product fields")

			return err
		}
		logger.Log.Debugln("unable to save product", "error", err)
		p.notifier.Danger(errorMessage(err, "Unable to save product"))

		return err
	}

	p.notifier.Success(fmt.Sprintf("Product %q added", created.Title))

	return p.Load(ctx, 1)
}

// Detail fetches a single product and renders its detail card. An id the
// remote API reports as missing renders a "not available" notice instead of
// propagating the failure.
func (p *ProductsPage) Detail(ctx context.Context, id int) error {
	product, err := p.client.GetProductByID(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			fmt.Fprintf(p.out, "Product %d (not available)\n", id)

			return nil
		}
		logger.Log.Debugln("unable to load product details", "id", id, "error", err)
		p.notifier.Danger(errorMessage(err, "Unable to load product details"))

		return err
	}

	fmt.Fprintf(p.out, "Product %d: %s\n", product.ID, product.Title)
	fmt.Fprintf(p.out, "  Brand:    %s\n", product.Brand)
	fmt.Fprintf(p.out, "  Category: %s\n", product.Category)
	fmt.Fprintf(
		p.out,
		"  Price:    %s -> %s (%.2f%% OFF)\n",
		money(product.Price),
		money(DiscountedPrice(*product)),
		product.DiscountPercentage,
	)
	fmt.Fprintf(p.out, "  Stock:    %d\n", product.Stock)
	fmt.Fprintf(p.out, "  Rating:   %.2f\n", product.Rating)
	fmt.Fprintf(p.out, "  %s\n", product.Description)
	if product.Thumbnail != "" {
		fmt.Fprintf(p.out, "  Thumbnail: %s\n", product.Thumbnail)
	}
	for _, image := range product.Images {
		fmt.Fprintf(p.out, "  Image:     %s\n", image)
	}

	return nil
}

func (p *ProductsPage) render() {
	products := p.view.PageSlice()
	if len(products) == 0 {
		fmt.Fprintln(p.out, "No products found")
		p.renderPagination()

		return
	}

	for _, product := range products {
		stock := fmt.Sprintf("Stock: %d", product.Stock)
		if product.Stock <= 0 {
			stock = "Out of stock"
		}
		fmt.Fprintf(
			p.out,
			"[%d] %s (%s) %s -> %s | %s\n",
			product.ID,
			product.Title,
			product.Brand,
			money(product.Price),
			money(DiscountedPrice(product)),
			stock,
		)
		fmt.Fprintf(p.out, "    %s\n", previewDescription(product.Description))
	}
	p.renderPagination()
}

func (p *ProductsPage) renderPagination() {
	fmt.Fprintf(
		p.out,
		"Page %d of %d (prev: %s, next: %s)\n",
		p.view.CurrentPage,
		p.view.TotalPages(),
		pageControl(p.view.HasPrev()),
		pageControl(p.view.HasNext()),
	)
}

func pageControl(enabled bool) string {
	if enabled {
		return "available"
	}

	return "disabled"
}

func clampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages > 0 && page > totalPages {
		return totalPages
	}

	return page
}

func previewDescription(description string) string {
	if len(description) <= descriptionPreviewLen {
		return description
	}

	return description[:descriptionPreviewLen] + "..."
}
