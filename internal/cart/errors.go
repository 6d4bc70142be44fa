package cart

import "errors"

var (
	// ErrUnknownProduct is returned when an operation references a product
	// that is not in the current catalog snapshot.
	ErrUnknownProduct = errors.New("product is not in the catalog")

	// ErrOutOfStock is returned when adding a product whose observed stock
	// is zero.
	ErrOutOfStock = errors.New("product is out of stock")

	// ErrStockExceeded is returned when an add would push a line past the
	// product's observed stock.
	ErrStockExceeded = errors.New("cannot add more, insufficient stock")

	// ErrEmptyCart is returned when building a submission from a cart with
	// no lines. No network call is made in this case.
	ErrEmptyCart = errors.New("cart is empty, nothing to submit")

	// ErrSubmitInFlight enforces at most one in-flight submission per cart.
	ErrSubmitInFlight = errors.New("an order submission is already in flight")

	// ErrSessionEnded is returned when operating on a cart whose session
	// was discarded or already submitted successfully.
	ErrSessionEnded = errors.New("cart session has ended")
)
