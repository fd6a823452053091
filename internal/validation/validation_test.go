package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateSlug(t *testing.T) {
	require.NoError(t, ValidateSlug("basic"))
	require.NoError(t, ValidateSlug("gold-annual"))
	require.NoError(t, ValidateSlug("  Premium  "))

	require.ErrorIs(t, ValidateSlug("ab"), ErrSlugTooShort)
	require.ErrorIs(t, ValidateSlug(string(make([]byte, 65))), ErrSlugTooLong)
	require.ErrorIs(t, ValidateSlug("-gold"), ErrInvalidSlug)
	require.ErrorIs(t, ValidateSlug("gold-"), ErrInvalidSlug)
	require.ErrorIs(t, ValidateSlug("gold_annual"), ErrInvalidSlug)
}

func TestNormalizeSlug(t *testing.T) {
	require.Equal(t, "gold", NormalizeSlug("  Gold "))
}

func TestValidateSKU(t *testing.T) {
	require.NoError(t, ValidateSKU("TL-MEMBER-12M"))
	require.NoError(t, ValidateSKU("ABC"))

	require.Error(t, ValidateSKU("ab"))
	require.Error(t, ValidateSKU("tl-member"))
	require.Error(t, ValidateSKU("-ABC"))
}
