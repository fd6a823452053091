package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.NoError(t, VerifyPassword(hash, "correct horse battery staple"))
	require.Error(t, VerifyPassword(hash, "wrong password"))
}
