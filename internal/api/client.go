// Package api implements the client of the remote shop REST API. It binds
// every request to a fixed base URL, attaches the bearer token of the
// current session when one is present, and normalizes non-2xx responses
// into a typed Error carrying the server-supplied message.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/patric-chuzhbe/shopadmin/internal/logger"
	"github.com/patric-chuzhbe/shopadmin/internal/models"
)

const fallbackErrorMessage = "request failed"

// TokenSource yields the bearer token of the current session.
// An empty token means no Authorization header is attached.
type TokenSource interface {
	Token() string
}

// Error is a non-2xx response of the remote API.
// Message carries the server-supplied text when the error body had one.
type Error struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a remote 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type errorBody struct {
	Message string `json:"message"`
}

// Client calls the remote shop API.
type Client struct {
	http     *resty.Client
	validate *validator.Validate
}

// New creates a Client bound to baseURL. A zero timeout disables the
// per-request deadline. tokens may be nil for an unauthenticated client.
func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")

	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-Id", uuid.NewString())
		if tokens != nil {
			if token := tokens.Token(); token != "" {
				req.SetAuthToken(token)
			}
		}

		return nil
	})

	return &Client{
		http:     httpClient,
		validate: validator.New(),
	}
}

func (c *Client) finish(resp *resty.Response, err error, endpoint string) error {
	if err != nil {
		logger.Log.Debugln("API transport error", "endpoint", endpoint, "error", err)

		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}

	if resp.IsError() {
		message := fallbackErrorMessage
		if body, ok := resp.Error().(*errorBody); ok && body.Message != "" {
			message = body.Message
		}
		logger.Log.Debugln(
			"API error response",
			"endpoint", endpoint,
			"status", resp.StatusCode(),
			"message", message,
		)

		return &Error{
			StatusCode: resp.StatusCode(),
			Message:    message,
		}
	}

	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, query map[string]string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(out).
		SetError(&errorBody{}).
		Get(endpoint)

	return c.finish(resp, err, endpoint)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(out).
		SetError(&errorBody{}).
		Post(endpoint)

	return c.finish(resp, err, endpoint)
}

// Login exchanges credentials for a bearer token and the denormalized
// user snapshot.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	request := models.LoginRequest{
		Username: username,
		Password: password,
	}
	if err := c.validate.Struct(request); err != nil {
		return nil, err
	}

	var result models.LoginResponse
	if err := c.post(ctx, "/auth/login", request, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetUsers fetches the users collection.
func (c *Client) GetUsers(ctx context.Context) (*models.UsersResponse, error) {
	var result models.UsersResponse
	if err := c.get(ctx, "/users", nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetUserByID fetches a single user.
func (c *Client) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	var result models.User
	if err := c.get(ctx, "/users/"+strconv.Itoa(id), nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// AddUser validates and submits a new user. Validation failures are
// returned before any network call is made.
func (c *Client) AddUser(ctx context.Context, user models.NewUser) (*models.User, error) {
	if err := c.validate.Struct(user); err != nil {
		return nil, err
	}

	var result models.User
	if err := c.post(ctx, "/users/add", user, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetProducts fetches the products collection.
func (c *Client) GetProducts(ctx context.Context) (*models.ProductsResponse, error) {
	var result models.ProductsResponse
	if err := c.get(ctx, "/products", nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// SearchProducts delegates a product search to the remote search endpoint.
func (c *Client) SearchProducts(ctx context.Context, query string) (*models.ProductsResponse, error) {
	var result models.ProductsResponse
	err := c.get(ctx, "/products/search", map[string]string{"q": query}, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetProductByID fetches a single product.
func (c *Client) GetProductByID(ctx context.Context, id int) (*models.Product, error) {
	var result models.Product
	if err := c.get(ctx, "/products/"+strconv.Itoa(id), nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// AddProduct validates and submits a new product.
func (c *Client) AddProduct(ctx context.Context, product models.NewProduct) (*models.Product, error) {
	if err := c.validate.Struct(product); err != nil {
		return nil, err
	}

	var result models.Product
	if err := c.post(ctx, "/products/add", product, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetCarts fetches the carts collection.
func (c *Client) GetCarts(ctx context.Context) (*models.CartsResponse, error) {
	var result models.CartsResponse
	if err := c.get(ctx, "/carts", nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetCartByID fetches a single cart.
func (c *Client) GetCartByID(ctx context.Context, id int) (*models.Cart, error) {
	var result models.Cart
	if err := c.get(ctx, "/carts/"+strconv.Itoa(id), nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// AddCart validates and submits a new cart.
func (c *Client) AddCart(ctx context.Context, cart models.NewCart) (*models.Cart, error) {
	if err := c.validate.Struct(cart); err != nil {
		return nil, err
	}

	var result models.Cart
	if err := c.post(ctx, "/carts/add", cart, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
