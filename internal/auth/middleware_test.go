package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeStaffSource struct {
	staff map[uuid.UUID]bool
}

func (f *fakeStaffSource) IsStaffUser(_ context.Context, userID uuid.UUID) (bool, error) {
	return f.staff[userID], nil
}

func staffRequest(t *testing.T, secret string, userID uuid.UUID, isStaff bool) *http.Request {
	t.Helper()

	token, err := CreateToken(userID, isStaff, secret, 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/membership/levels", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serveStaffRoute(secret string, source StaffSource, req *http.Request) (*httptest.ResponseRecorder, *bool) {
	reached := false
	handler := BearerMiddleware(secret)(RequireStaff(source)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, &reached
}

func TestRequireStaffAllowsCurrentStaff(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()
	source := &fakeStaffSource{staff: map[uuid.UUID]bool{userID: true}}

	rec, reached := serveStaffRoute(secret, source, staffRequest(t, secret, userID, true))
	require.True(t, *reached)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireStaffRejectsStaleStaffClaim(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	// The token still carries is_staff=true but the user row does not: the
	// user was demoted (or never existed) after the token was minted.
	source := &fakeStaffSource{staff: map[uuid.UUID]bool{}}

	rec, reached := serveStaffRoute(secret, source, staffRequest(t, secret, userID, true))
	require.False(t, *reached)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequireStaffRejectsNonStaffClaim(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()
	source := &fakeStaffSource{staff: map[uuid.UUID]bool{userID: true}}

	rec, reached := serveStaffRoute(secret, source, staffRequest(t, secret, userID, false))
	require.False(t, *reached)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequireStaffRejectsUnauthenticated(t *testing.T) {
	secret := "test-secret"
	source := &fakeStaffSource{staff: map[uuid.UUID]bool{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/membership/levels", nil)
	rec, reached := serveStaffRoute(secret, source, req)
	require.False(t, *reached)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
