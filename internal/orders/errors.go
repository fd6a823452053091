package orders

import "errors"

var (
	// ErrProductNotFound indicates the product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrCartNotFound indicates the shopping cart does not exist.
	ErrCartNotFound = errors.New("shopping cart not found")

	// ErrOrderNotFound indicates the order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderItemNotFound indicates the order item does not exist.
	ErrOrderItemNotFound = errors.New("order item not found")

	// ErrSKUTaken indicates another product already uses the SKU.
	ErrSKUTaken = errors.New("product SKU already exists")

	// ErrCartAlreadyOrdered indicates the cart already has an order.
	ErrCartAlreadyOrdered = errors.New("cart already has an order")
)
