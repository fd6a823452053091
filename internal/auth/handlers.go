package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/tandemlist/tandemlist/internal/apperrors"
	"github.com/tandemlist/tandemlist/internal/audit"
)

// SignupRequest represents the signup request payload.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned on successful signup or login.
type SessionResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
}

// HandleSignup handles POST /api/v1/auth/signup.
func HandleSignup(pool *pgxpool.Pool, auditor *audit.Writer, jwtSecret string, sessionDays int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		if _, err := mail.ParseAddress(req.Email); err != nil || len(req.Email) > 320 {
			apperrors.WriteBadRequest(w, r, "Invalid email address")
			return
		}
		if len(req.Password) < 8 {
			apperrors.WriteBadRequest(w, r, "Password must be at least 8 characters")
			return
		}

		passwordHash, err := HashPassword(req.Password)
		if err != nil {
			log.Error().Err(err).Msg("Failed to hash password")
			apperrors.WriteInternalError(w, r, "Failed to create account")
			return
		}

		var userID uuid.UUID
		err = pool.QueryRow(ctx, `
			INSERT INTO users (email, password_hash)
			VALUES ($1, $2)
			RETURNING id
		`, req.Email, passwordHash).Scan(&userID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
				apperrors.WriteConflict(w, r, "Email address already registered")
				return
			}
			log.Error().Err(err).Msg("Failed to insert user")
			apperrors.WriteInternalError(w, r, "Failed to create account")
			return
		}

		if err := auditor.LogUserSignup(ctx, userID, req.Email); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}

		token, err := CreateToken(userID, false, jwtSecret, sessionDays)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create token")
			apperrors.WriteInternalError(w, r, "Failed to create session")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"session": SessionResponse{
				UserID:      userID,
				Email:       req.Email,
				AccessToken: token,
			},
		})
	}
}

// HandleLogin handles POST /api/v1/auth/login.
func HandleLogin(pool *pgxpool.Pool, auditor *audit.Writer, jwtSecret string, sessionDays int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		if req.Email == "" || req.Password == "" {
			apperrors.WriteBadRequest(w, r, "Email and password are required")
			return
		}

		var (
			userID       uuid.UUID
			passwordHash string
			isStaff      bool
		)
		err := pool.QueryRow(ctx, `
			SELECT id, password_hash, is_staff
			FROM users
			WHERE email = $1
		`, req.Email).Scan(&userID, &passwordHash, &isStaff)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Same response as a bad password so account existence
				// cannot be probed.
				apperrors.WriteUnauthorized(w, r, "Invalid email or password")
				return
			}
			log.Error().Err(err).Msg("Failed to load user")
			apperrors.WriteInternalError(w, r, "Failed to log in")
			return
		}

		if err := VerifyPassword(passwordHash, req.Password); err != nil {
			if err := auditor.LogLoginFailed(ctx, req.Email); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
			apperrors.WriteUnauthorized(w, r, "Invalid email or password")
			return
		}

		token, err := CreateToken(userID, isStaff, jwtSecret, sessionDays)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create token")
			apperrors.WriteInternalError(w, r, "Failed to create session")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"session": SessionResponse{
				UserID:      userID,
				Email:       req.Email,
				AccessToken: token,
			},
		})
	}
}

// HandleMe handles GET /api/v1/auth/me.
func HandleMe(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := GetUserID(ctx)

		var (
			email   string
			isStaff bool
		)
		err := pool.QueryRow(ctx, `
			SELECT email, is_staff
			FROM users
			WHERE id = $1
		`, userID).Scan(&email, &isStaff)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				apperrors.WriteNotFound(w, r, "User not found")
				return
			}
			log.Error().Err(err).Msg("Failed to load user")
			apperrors.WriteInternalError(w, r, "Failed to load user")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"user": map[string]any{
				"id":       userID,
				"email":    email,
				"is_staff": isStaff,
			},
		})
	}
}
