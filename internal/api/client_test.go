package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/shopadmin/internal/logger"
	"github.com/patric-chuzhbe/shopadmin/internal/models"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type staticToken string

func (t staticToken) Token() string {
	return string(t)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name            string
		username        string
		password        string
		responseStatus  int
		responseBody    any
		expectedError   string
		expectedToken   string
		expectRequested bool
	}{
		{
			name:            "successful login returns token and snapshot",
			username:        "emilys",
			password:        "emilyspass",
			responseStatus:  http.StatusOK,
			responseBody:    models.LoginResponse{ID: 1, Username: "emilys", FirstName: "Emily", Token: "token-1"},
			expectedToken:   "token-1",
			expectRequested: true,
		},
		{
			name:            "rejected credentials surface the server message verbatim",
			username:        "emilys",
			password:        "wrong",
			responseStatus:  http.StatusBadRequest,
			responseBody:    map[string]string{"message": "Invalid credentials"},
			expectedError:   "Invalid credentials",
			expectRequested: true,
		},
		{
			name:          "empty credentials never reach the network",
			username:      "",
			password:      "x",
			expectedError: "required",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			requested := false
			router := chi.NewRouter()
			router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
				requested = true
				var request models.LoginRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
				assert.Equal(t, test.username, request.Username)
				writeJSON(t, w, test.responseStatus, test.responseBody)
			})
			server := httptest.NewServer(router)
			defer server.Close()

			client := New(server.URL, 0, nil)
			login, err := client.Login(context.Background(), test.username, test.password)

			assert.Equal(t, test.expectRequested, requested)
			if test.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), test.expectedError)
				assert.Nil(t, login)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expectedToken, login.Token)
		})
	}
}

func TestRequestHeaders(t *testing.T) {
	tests := []struct {
		name               string
		token              string
		expectedAuthHeader string
	}{
		{
			name:               "bearer token attached when the session has one",
			token:              "stored-token",
			expectedAuthHeader: "Bearer stored-token",
		},
		{
			name:               "no authorization header without a token",
			token:              "",
			expectedAuthHeader: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			router := chi.NewRouter()
			router.Get("/users", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, test.expectedAuthHeader, r.Header.Get("Authorization"))
				assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				writeJSON(t, w, http.StatusOK, models.UsersResponse{})
			})
			server := httptest.NewServer(router)
			defer server.Close()

			client := New(server.URL, 0, staticToken(test.token))
			_, err := client.GetUsers(context.Background())
			require.NoError(t, err)
		})
	}
}

func TestSearchProducts(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/products/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "red lipstick", r.URL.Query().Get("q"))
		writeJSON(t, w, http.StatusOK, models.ProductsResponse{
			Products: []models.Product{{ID: 1, Title: "Red Lipstick"}},
			Total:    1,
		})
	})
	server := httptest.NewServer(router)
	defer server.Close()

	client := New(server.URL, 0, nil)
	response, err := client.SearchProducts(context.Background(), "red lipstick")
	require.NoError(t, err)
	require.Len(t, response.Products, 1)
	assert.Equal(t, "Red Lipstick", response.Products[0].Title)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		contentType     string
		expectedMessage string
		expectNotFound  bool
	}{
		{
			name:            "JSON error body carries the server message",
			status:          http.StatusNotFound,
			body:            `{"message":"Product with id '999' not found"}`,
			contentType:     "application/json",
			expectedMessage: "Product with id '999' not found",
			expectNotFound:  true,
		},
		{
			name:            "non-JSON error body falls back to the generic message",
			status:          http.StatusInternalServerError,
			body:            "boom",
			contentType:     "text/plain",
			expectedMessage: "request failed",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			router := chi.NewRouter()
			router.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", test.contentType)
				w.WriteHeader(test.status)
				_, err := w.Write([]byte(test.body))
				require.NoError(t, err)
			})
			server := httptest.NewServer(router)
			defer server.Close()

			client := New(server.URL, 0, nil)
			_, err := client.GetProductByID(context.Background(), 999)
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, test.status, apiErr.StatusCode)
			assert.Equal(t, test.expectedMessage, apiErr.Message)
			assert.Equal(t, test.expectNotFound, IsNotFound(err))
		})
	}
}

func TestAddUserValidation(t *testing.T) {
	requested := false
	router := chi.NewRouter()
	router.Post("/users/add", func(w http.ResponseWriter, r *http.Request) {
		requested = true
		writeJSON(t, w, http.StatusCreated, models.User{ID: 101})
	})
	server := httptest.NewServer(router)
	defer server.Close()

	client := New(server.URL, 0, nil)

	_, err := client.AddUser(context.Background(), models.NewUser{FirstName: "Ann"})
	require.Error(t, err)
	assert.False(t, requested, "validation failures must not reach the network")

	created, err := client.AddUser(context.Background(), models.NewUser{
		FirstName: "Ann",
		LastName:  "Smith",
		Email:     "ann@example.com",
		Password:  "secret",
	})
	require.NoError(t, err)
	assert.True(t, requested)
	assert.Equal(t, 101, created.ID)
}

func TestAddCartValidation(t *testing.T) {
	requested := false
	router := chi.NewRouter()
	router.Post("/carts/add", func(w http.ResponseWriter, r *http.Request) {
		requested = true
		var cart models.NewCart
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cart))
		writeJSON(t, w, http.StatusCreated, models.Cart{ID: 51, UserID: cart.UserID})
	})
	server := httptest.NewServer(router)
	defer server.Close()

	client := New(server.URL, 0, nil)

	_, err := client.AddCart(context.Background(), models.NewCart{UserID: 5})
	require.Error(t, err, "a cart without lines is rejected locally")
	assert.False(t, requested)

	created, err := client.AddCart(context.Background(), models.NewCart{
		UserID:   5,
		Products: []models.NewCartItem{{ID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 51, created.ID)
	assert.Equal(t, 5, created.UserID)
}

func TestGetCollections(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/carts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.CartsResponse{
			Carts: []models.Cart{{ID: 1, UserID: 5, Products: []models.CartItem{{ID: 1, Price: 10, Quantity: 2}}}},
			Total: 1,
		})
	})
	router.Get("/carts/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", chi.URLParam(r, "id"))
		writeJSON(t, w, http.StatusOK, models.Cart{ID: 1, UserID: 5})
	})
	router.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.User{ID: 5, FirstName: "Emily", LastName: "Johnson"})
	})
	server := httptest.NewServer(router)
	defer server.Close()

	client := New(server.URL, 0, nil)

	carts, err := client.GetCarts(context.Background())
	require.NoError(t, err)
	require.Len(t, carts.Carts, 1)
	assert.Equal(t, 5, carts.Carts[0].UserID)

	cart, err := client.GetCartByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.ID)

	user, err := client.GetUserByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Emily Johnson", user.FullName())
}
