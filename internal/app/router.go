package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tandemlist/tandemlist/internal/apperrors"
	"github.com/tandemlist/tandemlist/internal/audit"
	"github.com/tandemlist/tandemlist/internal/auth"
	"github.com/tandemlist/tandemlist/internal/config"
	"github.com/tandemlist/tandemlist/internal/membership"
	"github.com/tandemlist/tandemlist/internal/orders"
	"github.com/tandemlist/tandemlist/internal/todo"
)

// NewRouter creates and configures the Chi router with all middleware and routes
func NewRouter(pool *pgxpool.Pool, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)         // Set RemoteAddr to real IP
	r.Use(RequestIDMiddleware)       // Add request ID to context
	r.Use(LoggingMiddleware)         // Structured request logging
	r.Use(RecoveryMiddleware)        // Recover from panics
	r.Use(cors.Handler(cors.Options{ // CORS (pinned dep)
		AllowedOrigins:   []string{cfg.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(auth.BearerMiddleware(cfg.JWTSecret)) // Parse bearer tokens

	// Audit writer and staff-flag reader (shared across API routes)
	auditor := audit.NewWriter(pool)
	staffSource := auth.NewStaffStore(pool)

	// Health check routes (no authentication required)
	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(pool))

	// API routes - Authentication
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/signup", auth.HandleSignup(pool, auditor, cfg.JWTSecret, cfg.SessionDays))

		// Login with per-IP rate limiting
		r.With(LoginRateLimitMiddleware(cfg.LoginRateLimitRPM)).
			Post("/login", auth.HandleLogin(pool, auditor, cfg.JWTSecret, cfg.SessionDays))

		r.With(auth.RequireAuth).Get("/me", auth.HandleMe(pool))
	})

	// API routes - Todo lists (require authentication)
	r.Route("/api/v1/todo-lists", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(auth.RequireAuth)

		// List CRUD
		r.Post("/", todo.HandleCreateList(pool, auditor))
		r.Get("/", todo.HandleListLists(pool))
		r.Get("/archived", todo.HandleListArchivedLists(pool))

		// Invitations addressed by their own id. Registered before
		// /{list_id} so "invitations" never parses as a list id.
		r.Route("/invitations", func(r chi.Router) {
			r.Get("/my/pending", todo.HandleListMyPendingInvitations(pool))
			r.Get("/my/accepted", todo.HandleListMyAcceptedInvitations(pool))
			r.Get("/{invitation_id}", todo.HandleGetInvitation(pool))
			r.Patch("/{invitation_id}/accept", todo.HandleAcceptInvitation(pool, auditor))
			r.Patch("/{invitation_id}/reject", todo.HandleRejectInvitation(pool, auditor))
			r.Patch("/{invitation_id}/approve", todo.HandleApproveInvitation(pool, auditor))
		})

		// Discussion messages addressed by discussion id
		r.Route("/discussions/{discussion_id}/messages", func(r chi.Router) {
			r.Get("/", todo.HandleListDiscussionMessages(pool))
			r.Post("/", todo.HandleCreateMessage(pool))
		})

		r.Route("/{list_id}", func(r chi.Router) {
			r.Get("/", todo.HandleGetList(pool))
			r.Post("/archive", todo.HandleArchiveList(pool, auditor))

			// Items
			r.Get("/items", todo.HandleListItems(pool))
			r.Post("/items", todo.HandleCreateItem(pool))
			r.Get("/items/{item_id}", todo.HandleGetItem(pool))
			r.Patch("/items/{item_id}", todo.HandleUpdateItem(pool))
			r.Post("/items/{item_id}/complete", todo.HandleCompleteItem(pool))
			r.Post("/items/{item_id}/uncomplete", todo.HandleUncompleteItem(pool))
			r.Get("/items/{item_id}/discussion", todo.HandleGetItemDiscussion(pool))

			// Invitations scoped to the list (owner only)
			r.Get("/invitations", todo.HandleListListInvitations(pool))
			r.Post("/invitations", todo.HandleCreateInvitation(pool, auditor))
			r.Get("/invitations/codes", todo.HandleListInvitationCodes(pool))
			r.Post("/invitations/codes", todo.HandleCreateInvitationCode(pool, auditor))
			r.Post("/invitations/codes/{code_id}", todo.HandleJoinByCode(pool, auditor))
		})
	})

	// API routes - Membership (my membership for everyone, CRUD for staff)
	r.Route("/api/v1/membership", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(auth.RequireAuth)

		r.Get("/my", membership.HandleMyMembership(pool))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireStaff(staffSource))

			r.Get("/levels", membership.HandleListLevels(pool))
			r.Post("/levels", membership.HandleCreateLevel(pool))
			r.Patch("/levels/{level_id}", membership.HandleUpdateLevel(pool))
			r.Delete("/levels/{level_id}", membership.HandleDeleteLevel(pool))

			r.Get("/records", membership.HandleListRecords(pool))
			r.Post("/records", membership.HandleCreateRecord(pool))
			r.Delete("/records/{record_id}", membership.HandleDeleteRecord(pool))
		})
	})

	// API routes - Order management (staff only)
	r.Route("/api/v1/order-management", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(auth.RequireAuth)
		r.Use(auth.RequireStaff(staffSource))

		r.Get("/products", orders.HandleListProducts(pool))
		r.Post("/products", orders.HandleCreateProduct(pool))
		r.Patch("/products/{product_id}", orders.HandleUpdateProduct(pool))
		r.Delete("/products/{product_id}", orders.HandleDeleteProduct(pool))

		r.Get("/carts", orders.HandleListCarts(pool))
		r.Post("/carts", orders.HandleCreateCart(pool))
		r.Patch("/carts/{cart_id}", orders.HandleUpdateCart(pool))

		r.Get("/orders", orders.HandleListOrders(pool))
		r.Post("/orders", orders.HandleCreateOrder(pool))
		r.Get("/orders/{order_id}", orders.HandleGetOrder(pool))
		r.Post("/orders/{order_id}/items", orders.HandleCreateOrderItem(pool))
		r.Delete("/orders/{order_id}/items/{item_id}", orders.HandleDeleteOrderItem(pool))
	})

	return r
}

// handleHealthz returns a simple liveness check
// Always returns 200 OK if the service is running
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleReadyz returns a readiness check that includes database connectivity
// Returns 200 OK if service is ready to accept traffic, 503 if not
func handleReadyz(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check database connectivity
		if err := pool.Ping(r.Context()); err != nil {
			apperrors.WriteServiceUnavailable(w, r, "Database connection failed")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
			"status": "ready",
			"db":     "ok",
		})
	}
}
