package dashboard

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/shopadmin/internal/api"
	"github.com/patric-chuzhbe/shopadmin/internal/models"
	"github.com/patric-chuzhbe/shopadmin/internal/notify"
)

var testCarts = []models.Cart{
	{ID: 1, UserID: 5, Products: []models.CartItem{
		{ID: 1, Title: "Widget", Price: 10, Quantity: 2},
		{ID: 2, Title: "Gizmo", Price: 5, Quantity: 1},
	}},
	{ID: 2, UserID: 6, Products: []models.CartItem{
		{ID: 3, Title: "Gadget", Price: 3.5, Quantity: 4},
	}},
}

var cartOwners = map[int]*models.User{
	5: {ID: 5, FirstName: "Emily", LastName: "Johnson"},
	6: {ID: 6, FirstName: "Michael", LastName: "Williams"},
}

func ownersLookup(failFor map[int]bool) func(ctx context.Context, id int) (*models.User, error) {
	var mu sync.Mutex
	return func(ctx context.Context, id int) (*models.User, error) {
		mu.Lock()
		defer mu.Unlock()
		if failFor[id] {
			return nil, &api.Error{StatusCode: http.StatusNotFound, Message: "User not found"}
		}
		owner, ok := cartOwners[id]
		if !ok {
			return nil, &api.Error{StatusCode: http.StatusNotFound, Message: "User not found"}
		}
		return owner, nil
	}
}

func newCartsPage(client cartsClient) (*CartsPage, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	alerts := &bytes.Buffer{}

	return NewCartsPage(client, notify.New(alerts), out), out, alerts
}

func TestCartsLoad(t *testing.T) {
	client := &stubClient{
		getCarts: func(ctx context.Context) (*models.CartsResponse, error) {
			return &models.CartsResponse{Carts: testCarts}, nil
		},
		getUserByID: ownersLookup(nil),
	}
	page, out, _ := newCartsPage(client)

	require.NoError(t, page.Load(context.Background()))

	assert.Contains(t, out.String(), "Emily Johnson")
	assert.Contains(t, out.String(), "Michael Williams")
	assert.Contains(t, out.String(), "$25.00")
	assert.Contains(t, out.String(), "$14.00")
}

func TestCartsLoadDegradesFailedRow(t *testing.T) {
	client := &stubClient{
		getCarts: func(ctx context.Context) (*models.CartsResponse, error) {
			return &models.CartsResponse{Carts: testCarts}, nil
		},
		getUserByID: ownersLookup(map[int]bool{6: true}),
	}
	page, out, _ := newCartsPage(client)

	require.NoError(t, page.Load(context.Background()), "one failed owner lookup does not abort the page")

	assert.Contains(t, out.String(), "Emily Johnson", "sibling rows still render")
	assert.Contains(t, out.String(), "unable to load cart information")
	assert.NotContains(t, out.String(), "Michael Williams")
}

func TestCartsSearch(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		failFor  map[int]bool
		expected []string
		excluded []string
	}{
		{
			name:     "matches owner name case-insensitively",
			term:     "emily",
			expected: []string{"Emily Johnson"},
			excluded: []string{"Michael Williams"},
		},
		{
			name:     "empty term renders the full collection",
			term:     "   ",
			expected: []string{"Emily Johnson", "Michael Williams"},
		},
		{
			name:     "carts with failed owner lookups are discarded",
			term:     "williams",
			failFor:  map[int]bool{6: true},
			expected: []string{"No carts found"},
			excluded: []string{"Michael Williams", "unable to load cart information"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := &stubClient{
				getCarts: func(ctx context.Context) (*models.CartsResponse, error) {
					return &models.CartsResponse{Carts: testCarts}, nil
				},
				getUserByID: ownersLookup(test.failFor),
			}
			page, out, _ := newCartsPage(client)

			require.NoError(t, page.Search(context.Background(), test.term))

			for _, expected := range test.expected {
				assert.Contains(t, out.String(), expected)
			}
			for _, excluded := range test.excluded {
				assert.NotContains(t, out.String(), excluded)
			}
		})
	}
}

func TestCartsAddVerifiesOwner(t *testing.T) {
	added := false
	client := &stubClient{
		getCarts: func(ctx context.Context) (*models.CartsResponse, error) {
			return &models.CartsResponse{Carts: testCarts}, nil
		},
		getUserByID: ownersLookup(nil),
		addCart: func(ctx context.Context, cart models.NewCart) (*models.Cart, error) {
			added = true
			return &models.Cart{ID: 51, UserID: cart.UserID}, nil
		},
	}
	page, _, alerts := newCartsPage(client)

	err := page.Add(context.Background(), models.NewCart{
		UserID:   5,
		Products: []models.NewCartItem{{ID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.True(t, added)
	assert.Contains(t, alerts.String(), "[OK] Cart 51 created")
}

func TestCartsAddUnknownOwner(t *testing.T) {
	client := &stubClient{
		getUserByID: ownersLookup(map[int]bool{42: true}),
		addCart: func(ctx context.Context, cart models.NewCart) (*models.Cart, error) {
			t.Fatal("the cart must not be submitted when the owner lookup fails")
			return nil, nil
		},
	}
	page, _, alerts := newCartsPage(client)

	err := page.Add(context.Background(), models.NewCart{
		UserID:   42,
		Products: []models.NewCartItem{{ID: 1, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Contains(t, alerts.String(), "[FAIL] User not found")
}

func TestCartsRemoveIsLocalOnly(t *testing.T) {
	fetches := 0
	client := &stubClient{
		getCarts: func(ctx context.Context) (*models.CartsResponse, error) {
			fetches++
			return &models.CartsResponse{Carts: testCarts}, nil
		},
		getUserByID: ownersLookup(nil),
	}
	page, out, alerts := newCartsPage(client)
	require.NoError(t, page.Load(context.Background()))
	out.Reset()

	require.NoError(t, page.Remove(context.Background(), 1))

	assert.Equal(t, 1, fetches, "removal issues no backend call")
	assert.NotContains(t, out.String(), "Emily Johnson")
	assert.Contains(t, out.String(), "Michael Williams")
	assert.Contains(t, alerts.String(), "[OK] Cart 1 removed from the view")

	alerts.Reset()
	require.NoError(t, page.Remove(context.Background(), 99))
	assert.Contains(t, alerts.String(), "[WARN] Cart 99 is not in the current view")
}

func TestCartDetail(t *testing.T) {
	var mu sync.Mutex
	products := map[int]*models.Product{
		1: {ID: 1, Title: "Widget", Price: 10, DiscountPercentage: 5},
		2: {ID: 2, Title: "Gizmo", Price: 5, DiscountPercentage: 0},
	}
	client := &stubClient{
		getCartByID: func(ctx context.Context, id int) (*models.Cart, error) {
			require.Equal(t, 1, id)
			return &testCarts[0], nil
		},
		getUserByID: ownersLookup(nil),
		getProductByID: func(ctx context.Context, id int) (*models.Product, error) {
			mu.Lock()
			defer mu.Unlock()
			product, ok := products[id]
			if !ok {
				return nil, &api.Error{StatusCode: http.StatusNotFound, Message: "Product not found"}
			}
			return product, nil
		},
	}
	page, out, _ := newCartsPage(client)

	require.NoError(t, page.Detail(context.Background(), 1))

	assert.Contains(t, out.String(), "Emily Johnson")
	assert.Contains(t, out.String(), "$25.00", "raw total to two decimals")
	assert.Contains(t, out.String(), "$22.50", "ten percent discounted total")
	assert.Contains(t, out.String(), "Widget")
	assert.Contains(t, out.String(), "$20.00", "line total is price times quantity")
}

func TestCartDetailMissingProductPlaceholder(t *testing.T) {
	client := &stubClient{
		getCartByID: func(ctx context.Context, id int) (*models.Cart, error) {
			return &testCarts[0], nil
		},
		getUserByID: ownersLookup(nil),
		getProductByID: func(ctx context.Context, id int) (*models.Product, error) {
			if id == 2 {
				return nil, &api.Error{StatusCode: http.StatusNotFound, Message: "Product not found"}
			}
			return &models.Product{ID: 1, Title: "Widget", Price: 10}, nil
		},
	}
	page, out, _ := newCartsPage(client)

	require.NoError(t, page.Detail(context.Background(), 1), "a missing line product does not fail the view")

	assert.Contains(t, out.String(), "Widget")
	assert.Contains(t, out.String(), "Product ID: 2 (not available)")
}
