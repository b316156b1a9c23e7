package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrder         = errors.New("invalid order")
	ErrProductNotFound      = errors.New("product not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrOrderNumberCollision = errors.New("could not allocate order number, retry")
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrDuplicateSlug        = errors.New("slug already exists")
	ErrDuplicateReview      = errors.New("you have already reviewed this product")
	ErrUserExists           = errors.New("user already exists")
	ErrBadCreds             = errors.New("invalid email or password")
	ErrUnauthenticated      = errors.New("not authenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrBadSignature         = errors.New("invalid webhook signature")
	ErrPaymentsDisabled     = errors.New("online payments are not configured")
)

// InputError is a validation failure with a message safe to show the client.
type InputError struct {
	Kind error
	Msg  string
}

func (e *InputError) Error() string { return e.Msg }
func (e *InputError) Unwrap() error { return e.Kind }

func invalid(kind error, format string, args ...any) error {
	return &InputError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// StockError names the product that could not be reserved.
type StockError struct {
	ProductID string
	VariantID string
	Title     string
}

func (e *StockError) Error() string { return "Insufficient stock for " + e.Title }
func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// MissingProductError carries the id of an order line whose product does not exist.
type MissingProductError struct{ ProductID string }

func (e *MissingProductError) Error() string { return "Product " + e.ProductID + " not found" }
func (e *MissingProductError) Unwrap() error { return ErrProductNotFound }
