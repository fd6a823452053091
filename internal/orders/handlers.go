package orders

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/tandemlist/tandemlist/internal/apperrors"
	"github.com/tandemlist/tandemlist/internal/validation"
)

var priceRegex = regexp.MustCompile(`^\d{1,10}(\.\d{1,2})?$`)

type productResponse struct {
	ID        uuid.UUID `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

type cartResponse struct {
	ID        uuid.UUID  `json:"id"`
	Status    CartStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

type orderResponse struct {
	ID             uuid.UUID `json:"id"`
	ShoppingCartID uuid.UUID `json:"shopping_cart_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type orderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func toProductResponse(product *Product) productResponse {
	return productResponse{
		ID:        product.ID,
		SKU:       product.SKU,
		Name:      product.Name,
		Price:     product.Price,
		CreatedAt: product.CreatedAt,
	}
}

func toCartResponse(cart *Cart) cartResponse {
	return cartResponse{ID: cart.ID, Status: cart.Status, CreatedAt: cart.CreatedAt}
}

func toOrderResponse(order *Order) orderResponse {
	return orderResponse{
		ID:             order.ID,
		ShoppingCartID: order.ShoppingCartID,
		CreatedAt:      order.CreatedAt,
	}
}

func toOrderItemResponse(item *OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:        item.ID,
		OrderID:   item.OrderID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
	}
}

// ProductRequest is the payload for creating or updating a product.
type ProductRequest struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

func (req *ProductRequest) normalize(w http.ResponseWriter, r *http.Request) bool {
	req.Name = strings.TrimSpace(req.Name)
	req.Price = strings.TrimSpace(req.Price)
	if req.Name == "" {
		apperrors.WriteBadRequest(w, r, "Product name is required")
		return false
	}
	if !priceRegex.MatchString(req.Price) {
		apperrors.WriteBadRequest(w, r, "Price must be a decimal amount like 19.90")
		return false
	}
	return true
}

// HandleListProducts handles GET /api/v1/order-management/products.
func HandleListProducts(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := NewStore(pool).ListProducts(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("Failed to list products")
			apperrors.WriteInternalError(w, r, "Failed to list products")
			return
		}

		resp := make([]productResponse, len(products))
		for i := range products {
			resp[i] = toProductResponse(&products[i])
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"products": resp,
		})
	}
}

// HandleCreateProduct handles POST /api/v1/order-management/products.
func HandleCreateProduct(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
		if err := validation.ValidateSKU(req.SKU); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid SKU: "+err.Error())
			return
		}
		if !req.normalize(w, r) {
			return
		}

		product, err := NewStore(pool).CreateProduct(r.Context(), req.SKU, req.Name, req.Price)
		if err != nil {
			if errors.Is(err, ErrSKUTaken) {
				apperrors.WriteConflict(w, r, "A product with this SKU already exists")
				return
			}
			log.Error().Err(err).Msg("Failed to create product")
			apperrors.WriteInternalError(w, r, "Failed to create product")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"product": toProductResponse(product),
		})
	}
}

// HandleUpdateProduct handles PATCH /api/v1/order-management/products/{product_id}.
func HandleUpdateProduct(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, ok := pathID(w, r, "product_id", "product ID")
		if !ok {
			return
		}

		var req ProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if !req.normalize(w, r) {
			return
		}

		product, err := NewStore(pool).UpdateProduct(r.Context(), productID, req.Name, req.Price)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				apperrors.WriteNotFound(w, r, "Product not found")
				return
			}
			log.Error().Err(err).Msg("Failed to update product")
			apperrors.WriteInternalError(w, r, "Failed to update product")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"product": toProductResponse(product),
		})
	}
}

// HandleDeleteProduct handles DELETE /api/v1/order-management/products/{product_id}.
func HandleDeleteProduct(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, ok := pathID(w, r, "product_id", "product ID")
		if !ok {
			return
		}

		if err := NewStore(pool).DeleteProduct(r.Context(), productID); err != nil {
			if errors.Is(err, ErrProductNotFound) {
				apperrors.WriteNotFound(w, r, "Product not found")
				return
			}
			log.Error().Err(err).Msg("Failed to delete product")
			apperrors.WriteInternalError(w, r, "Failed to delete product")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"deleted": true,
		})
	}
}

// HandleListCarts handles GET /api/v1/order-management/carts.
func HandleListCarts(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carts, err := NewStore(pool).ListCarts(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("Failed to list carts")
			apperrors.WriteInternalError(w, r, "Failed to list carts")
			return
		}

		resp := make([]cartResponse, len(carts))
		for i := range carts {
			resp[i] = toCartResponse(&carts[i])
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"carts": resp,
		})
	}
}

// HandleCreateCart handles POST /api/v1/order-management/carts.
func HandleCreateCart(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart, err := NewStore(pool).CreateCart(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("Failed to create cart")
			apperrors.WriteInternalError(w, r, "Failed to create cart")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"cart": toCartResponse(cart),
		})
	}
}

// CartStatusRequest is the payload for updating a cart's status.
type CartStatusRequest struct {
	Status CartStatus `json:"status"`
}

// HandleUpdateCart handles PATCH /api/v1/order-management/carts/{cart_id}.
func HandleUpdateCart(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, ok := pathID(w, r, "cart_id", "cart ID")
		if !ok {
			return
		}

		var req CartStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if !req.Status.IsValid() {
			apperrors.WriteBadRequest(w, r, "Status must be active, checkout or abandoned")
			return
		}

		cart, err := NewStore(pool).SetCartStatus(r.Context(), cartID, req.Status)
		if err != nil {
			if errors.Is(err, ErrCartNotFound) {
				apperrors.WriteNotFound(w, r, "Cart not found")
				return
			}
			log.Error().Err(err).Msg("Failed to update cart")
			apperrors.WriteInternalError(w, r, "Failed to update cart")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"cart": toCartResponse(cart),
		})
	}
}

// HandleListOrders handles GET /api/v1/order-management/orders.
func HandleListOrders(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderList, err := NewStore(pool).ListOrders(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("Failed to list orders")
			apperrors.WriteInternalError(w, r, "Failed to list orders")
			return
		}

		resp := make([]orderResponse, len(orderList))
		for i := range orderList {
			resp[i] = toOrderResponse(&orderList[i])
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"orders": resp,
		})
	}
}

// CreateOrderRequest is the payload for creating an order from a cart.
type CreateOrderRequest struct {
	ShoppingCartID uuid.UUID `json:"shopping_cart_id"`
}

// HandleCreateOrder handles POST /api/v1/order-management/orders.
func HandleCreateOrder(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if req.ShoppingCartID == uuid.Nil {
			apperrors.WriteBadRequest(w, r, "Shopping cart ID is required")
			return
		}

		order, err := NewStore(pool).CreateOrder(r.Context(), req.ShoppingCartID)
		if err != nil {
			switch {
			case errors.Is(err, ErrCartNotFound):
				apperrors.WriteNotFound(w, r, "Cart not found")
			case errors.Is(err, ErrCartAlreadyOrdered):
				apperrors.WriteConflict(w, r, "Cart already has an order")
			default:
				log.Error().Err(err).Msg("Failed to create order")
				apperrors.WriteInternalError(w, r, "Failed to create order")
			}
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"order": toOrderResponse(order),
		})
	}
}

// HandleGetOrder handles GET /api/v1/order-management/orders/{order_id},
// returning the order with its items.
func HandleGetOrder(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := pathID(w, r, "order_id", "order ID")
		if !ok {
			return
		}

		store := NewStore(pool)
		order, err := store.GetOrder(r.Context(), orderID)
		if err != nil {
			if errors.Is(err, ErrOrderNotFound) {
				apperrors.WriteNotFound(w, r, "Order not found")
				return
			}
			log.Error().Err(err).Msg("Failed to get order")
			apperrors.WriteInternalError(w, r, "Failed to get order")
			return
		}

		items, err := store.ListOrderItems(r.Context(), order.ID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list order items")
			apperrors.WriteInternalError(w, r, "Failed to list order items")
			return
		}

		itemResp := make([]orderItemResponse, len(items))
		for i := range items {
			itemResp[i] = toOrderItemResponse(&items[i])
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"order": toOrderResponse(order),
			"items": itemResp,
		})
	}
}

// OrderItemRequest is the payload for adding an item to an order.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// HandleCreateOrderItem handles POST /api/v1/order-management/orders/{order_id}/items.
func HandleCreateOrderItem(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := pathID(w, r, "order_id", "order ID")
		if !ok {
			return
		}

		var req OrderItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if req.ProductID == uuid.Nil {
			apperrors.WriteBadRequest(w, r, "Product ID is required")
			return
		}
		if req.Quantity < 1 {
			apperrors.WriteBadRequest(w, r, "Quantity must be at least 1")
			return
		}

		store := NewStore(pool)
		if _, err := store.GetOrder(r.Context(), orderID); err != nil {
			if errors.Is(err, ErrOrderNotFound) {
				apperrors.WriteNotFound(w, r, "Order not found")
				return
			}
			log.Error().Err(err).Msg("Failed to get order")
			apperrors.WriteInternalError(w, r, "Failed to get order")
			return
		}

		item, err := store.CreateOrderItem(r.Context(), orderID, req.ProductID, req.Quantity)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				apperrors.WriteBadRequest(w, r, "Unknown product")
				return
			}
			log.Error().Err(err).Msg("Failed to create order item")
			apperrors.WriteInternalError(w, r, "Failed to create order item")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"item": toOrderItemResponse(item),
		})
	}
}

// HandleDeleteOrderItem handles DELETE /api/v1/order-management/orders/{order_id}/items/{item_id}.
func HandleDeleteOrderItem(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := pathID(w, r, "order_id", "order ID")
		if !ok {
			return
		}
		itemID, ok := pathID(w, r, "item_id", "item ID")
		if !ok {
			return
		}

		if err := NewStore(pool).DeleteOrderItem(r.Context(), orderID, itemID); err != nil {
			if errors.Is(err, ErrOrderItemNotFound) {
				apperrors.WriteNotFound(w, r, "Order item not found")
				return
			}
			log.Error().Err(err).Msg("Failed to delete order item")
			apperrors.WriteInternalError(w, r, "Failed to delete order item")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"deleted": true,
		})
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		apperrors.WriteBadRequest(w, r, "Invalid "+label)
		return uuid.Nil, false
	}
	return id, true
}
