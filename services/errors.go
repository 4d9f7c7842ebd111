package services

import "errors"

var (
	ErrNotSignedIn          = errors.New("please sign in to place an order")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrItemNotFound         = errors.New("menu item not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidMenuItem      = errors.New("invalid menu item")
)

// Checkout steps reported by CheckoutError.
const (
	StepInsertOrder = "insert_order"
	StepInsertItems = "insert_items"
	StepCommit      = "commit"
)

// CheckoutError is a store failure during PlaceOrder. Its message is the
// store's message so views can show it as-is.
type CheckoutError struct {
	Step string
	Err  error
}

func (e *CheckoutError) Error() string { return e.Err.Error() }

func (e *CheckoutError) Unwrap() error { return e.Err }

func checkoutErr(step string, err error) *CheckoutError {
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce
	}
	return &CheckoutError{Step: step, Err: err}
}
