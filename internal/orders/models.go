package orders

import (
	"time"

	"github.com/google/uuid"
)

// CartStatus is the lifecycle state of a shopping cart.
type CartStatus string

const (
	CartActive    CartStatus = "active"
	CartCheckout  CartStatus = "checkout"
	CartAbandoned CartStatus = "abandoned"
)

// IsValid reports whether the status is one of the known cart states.
func (s CartStatus) IsValid() bool {
	switch s {
	case CartActive, CartCheckout, CartAbandoned:
		return true
	}
	return false
}

// Product is a purchasable item. Price is a decimal string, e.g. "19.90".
type Product struct {
	ID        uuid.UUID `db:"id"`
	SKU       string    `db:"sku"`
	Name      string    `db:"name"`
	Price     string    `db:"price"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Cart is a shopping cart.
type Cart struct {
	ID        uuid.UUID  `db:"id"`
	Status    CartStatus `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// Order is created from a cart at checkout. One order per cart.
type Order struct {
	ID             uuid.UUID `db:"id"`
	ShoppingCartID uuid.UUID `db:"shopping_cart_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// OrderItem is a product line on an order.
type OrderItem struct {
	ID        uuid.UUID `db:"id"`
	OrderID   uuid.UUID `db:"order_id"`
	ProductID uuid.UUID `db:"product_id"`
	Quantity  int       `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
