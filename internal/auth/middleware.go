package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/tandemlist/tandemlist/internal/apperrors"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	userIDContextKey  contextKey = "user_id"
	isStaffContextKey contextKey = "is_staff"
)

// BearerMiddleware validates the Authorization header and injects the caller's
// identity into the request context. Requests without a valid token continue
// unauthenticated; RequireAuth decides whether that is acceptable per route.
func BearerMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := ValidateToken(token, secret)
			if err != nil {
				log.Debug().Err(err).Msg("Invalid bearer token")
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, claims.UserID)
			ctx = context.WithValue(ctx, isStaffContextKey, claims.IsStaff)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth is middleware that rejects unauthenticated requests with 401.
// Authentication failure is the only access failure surfaced as anything
// other than 404.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserID(r.Context()) == uuid.Nil {
			apperrors.WriteUnauthorized(w, r, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StaffSource reports whether a user currently holds the staff flag.
// *StaffStore satisfies it; tests substitute in-memory fakes.
type StaffSource interface {
	IsStaffUser(ctx context.Context, userID uuid.UUID) (bool, error)
}

// StaffStore reads the staff flag from PostgreSQL.
type StaffStore struct {
	pool *pgxpool.Pool
}

// NewStaffStore creates a staff-flag reader over the given pool.
func NewStaffStore(pool *pgxpool.Pool) *StaffStore {
	return &StaffStore{pool: pool}
}

// IsStaffUser returns the user's current staff flag. A missing user is not
// staff.
func (s *StaffStore) IsStaffUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	var isStaff bool
	err := s.pool.QueryRow(ctx,
		"SELECT is_staff FROM users WHERE id = $1",
		userID,
	).Scan(&isStaff)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check staff flag: %w", err)
	}
	return isStaff, nil
}

// RequireStaff is middleware that rejects non-staff callers with 404, so the
// staff surface is not discoverable by regular users. The token's staff claim
// is never trusted on its own: it is re-checked against the user row, so a
// demotion or deletion takes effect immediately instead of at token expiry.
func RequireStaff(source StaffSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == uuid.Nil {
				apperrors.WriteUnauthorized(w, r, "Authentication required")
				return
			}
			if !IsStaff(r.Context()) {
				apperrors.WriteNotFound(w, r, "Not found")
				return
			}

			isStaff, err := source.IsStaffUser(r.Context(), userID)
			if err != nil {
				log.Error().Err(err).Msg("Failed to check staff flag")
				apperrors.WriteInternalError(w, r, "Internal server error")
				return
			}
			if !isStaff {
				log.Debug().
					Str("user_id", userID.String()).
					Msg("Staff claim no longer matches user row")
				apperrors.WriteNotFound(w, r, "Not found")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserID retrieves the authenticated user ID from the request context.
// Returns uuid.Nil if no user is authenticated.
func GetUserID(ctx context.Context) uuid.UUID {
	userID, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// IsStaff reports whether the authenticated user carries the staff flag.
func IsStaff(ctx context.Context) bool {
	isStaff, ok := ctx.Value(isStaffContextKey).(bool)
	return ok && isStaff
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
