// Package models defines the record types exchanged with the remote shop API
// and the submission DTOs validated before any network call.
package models

// Address is the address sub-record of a user.
type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
}

// User is a remote user record.
type User struct {
	ID        int     `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Address   Address `json:"address"`
}

// FullName returns the display name used in tables and cart rows.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Product is a remote catalog record.
type Product struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Brand              string   `json:"brand"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Stock              int      `json:"stock"`
	Category           string   `json:"category"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
	Rating             float64  `json:"rating"`
}

// CartItem is one line of a cart as reported by the remote API.
type CartItem struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Cart is a remote cart record owned by a user.
type Cart struct {
	ID       int        `json:"id"`
	UserID   int        `json:"userId"`
	Products []CartItem `json:"products"`
}

// UsersResponse is the envelope of the users collection endpoint.
type UsersResponse struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}

// ProductsResponse is the envelope of the products collection and search
// endpoints.
type ProductsResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// CartsResponse is the envelope of the carts collection endpoint.
type CartsResponse struct {
	Carts []Cart `json:"carts"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}

// LoginRequest carries credentials to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the denormalized login payload persisted as the current
// user snapshot. Token is the opaque bearer credential.
type LoginResponse struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Token     string `json:"token"`
}

// NewUser is the add-user submission payload.
type NewUser struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Username  string `json:"username"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Phone     string `json:"phone"`
}

// NewProduct is the add-product submission payload.
type NewProduct struct {
	Title              string  `json:"title" validate:"required"`
	Brand              string  `json:"brand"`
	Description        string  `json:"description"`
	Price              float64 `json:"price" validate:"required,gt=0"`
	DiscountPercentage float64 `json:"discountPercentage" validate:"gte=0,lte=100"`
	Stock              int     `json:"stock" validate:"required,gt=0"`
	Category           string  `json:"category"`
	Thumbnail          string  `json:"thumbnail"`
}

// NewCartItem is one line of an add-cart submission.
type NewCartItem struct {
	ID       int `json:"id" validate:"required,gt=0"`
	Quantity int `json:"quantity" validate:"gte=1"`
}

// NewCart is the add-cart submission payload.
type NewCart struct {
	UserID   int           `json:"userId" validate:"required,gt=0"`
	Products []NewCartItem `json:"products" validate:"required,min=1,dive"`
}
