// Package dashboard implements the collection page controllers of the admin
// client. Every page follows the same shape: fetch a collection through the
// API client, render it as a plain-text table or card list, and expose
// search, pagination, add and detail operations. Any failed operation is
// caught at the page, logged, and surfaced as a transient notification;
// partial per-row failures are contained to the affected row.
package dashboard

import (
	"errors"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/shopadmin/internal/api"
	"github.com/patric-chuzhbe/shopadmin/internal/models"
)

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// DiscountedPrice returns the product price after its discount percentage,
// rounded to two decimal places.
func DiscountedPrice(product models.Product) float64 {
	return round2(product.Price * (1 - product.DiscountPercentage/100))
}

// CartTotal returns the sum of line price times quantity over the cart,
// rounded to two decimal places.
func CartTotal(cart models.Cart) float64 {
	total := 0.0
	for _, item := range cart.Products {
		total += item.Price * float64(item.Quantity)
	}

	return round2(total)
}

// CartDiscountedTotal returns the cart total with the flat 10% discount
// applied, rounded to two decimal places.
func CartDiscountedTotal(cart models.Cart) float64 {
	return round2(CartTotal(cart) * 0.9)
}

// CartItemCount returns the total quantity of items over the cart lines.
func CartItemCount(cart models.Cart) int {
	count := 0
	for _, item := range cart.Products {
		count += item.Quantity
	}

	return count
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// errorMessage returns the server-supplied message of an API error verbatim,
// or fallback for transport-level failures that carry no such message.
func errorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	return fallback
}

func money(value float64) string {
	return fmt.Sprintf("$%.2f", value)
}
