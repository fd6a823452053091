package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	productColumns   = "id, sku, name, price::text, created_at, updated_at"
	cartColumns      = "id, status, created_at, updated_at"
	orderColumns     = "id, shopping_cart_id, created_at, updated_at"
	orderItemColumns = "id, order_id, product_id, quantity, created_at, updated_at"
)

// Store provides order-management persistence over PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new order-management store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var product Product
	err := row.Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Price,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func scanCart(row rowScanner) (*Cart, error) {
	var cart Cart
	err := row.Scan(
		&cart.ID,
		&cart.Status,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func scanOrder(row rowScanner) (*Order, error) {
	var order Order
	err := row.Scan(
		&order.ID,
		&order.ShoppingCartID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func scanOrderItem(row rowScanner) (*OrderItem, error) {
	var item OrderItem
	err := row.Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListProducts returns all products ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY name ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

// GetProduct returns a product by id.
func (s *Store) GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error) {
	product, err := scanProduct(s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1",
		productID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// CreateProduct inserts a new product.
func (s *Store) CreateProduct(ctx context.Context, sku, name, price string) (*Product, error) {
	product, err := scanProduct(s.pool.QueryRow(ctx,
		"INSERT INTO products (sku, name, price) VALUES ($1, $2, $3::numeric) RETURNING "+productColumns,
		sku, name, price,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrSKUTaken
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct updates a product's name and price. SKU is immutable.
func (s *Store) UpdateProduct(ctx context.Context, productID uuid.UUID, name, price string) (*Product, error) {
	product, err := scanProduct(s.pool.QueryRow(ctx,
		"UPDATE products SET name = $2, price = $3::numeric, updated_at = NOW() WHERE id = $1 RETURNING "+productColumns,
		productID, name, price,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a product.
func (s *Store) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ListCarts returns all carts, newest first.
func (s *Store) ListCarts(ctx context.Context) ([]Cart, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+cartColumns+" FROM shopping_carts ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}
	defer rows.Close()

	var carts []Cart
	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart: %w", err)
		}
		carts = append(carts, *cart)
	}
	return carts, rows.Err()
}

// CreateCart inserts a new active cart.
func (s *Store) CreateCart(ctx context.Context) (*Cart, error) {
	cart, err := scanCart(s.pool.QueryRow(ctx,
		"INSERT INTO shopping_carts DEFAULT VALUES RETURNING "+cartColumns,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

// SetCartStatus updates a cart's status.
func (s *Store) SetCartStatus(ctx context.Context, cartID uuid.UUID, status CartStatus) (*Cart, error) {
	cart, err := scanCart(s.pool.QueryRow(ctx,
		"UPDATE shopping_carts SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING "+cartColumns,
		cartID, status,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	return cart, nil
}

// ListOrders returns all orders, newest first.
func (s *Store) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// GetOrder returns an order by id.
func (s *Store) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	order, err := scanOrder(s.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1",
		orderID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// CreateOrder creates the order for a cart and moves the cart to checkout in
// one transaction. A cart can be ordered at most once.
func (s *Store) CreateOrder(ctx context.Context, cartID uuid.UUID) (*Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx,
		"UPDATE shopping_carts SET status = $2, updated_at = NOW() WHERE id = $1",
		cartID, CartCheckout,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrCartNotFound
	}

	order, err := scanOrder(tx.QueryRow(ctx,
		"INSERT INTO orders (shopping_cart_id) VALUES ($1) RETURNING "+orderColumns,
		cartID,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrCartAlreadyOrdered
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return order, nil
}

// ListOrderItems returns the items on an order.
func (s *Store) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+orderItemColumns+" FROM order_items WHERE order_id = $1 ORDER BY created_at ASC",
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// CreateOrderItem adds a product line to an order.
func (s *Store) CreateOrderItem(ctx context.Context, orderID, productID uuid.UUID, quantity int) (*OrderItem, error) {
	item, err := scanOrderItem(s.pool.QueryRow(ctx,
		"INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3) RETURNING "+orderItemColumns,
		orderID, productID, quantity,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to create order item: %w", err)
	}
	return item, nil
}

// DeleteOrderItem removes an item from an order.
func (s *Store) DeleteOrderItem(ctx context.Context, orderID, itemID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM order_items WHERE id = $1 AND order_id = $2",
		itemID, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderItemNotFound
	}
	return nil
}
