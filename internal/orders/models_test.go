package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCartStatusIsValid(t *testing.T) {
	require.True(t, CartActive.IsValid())
	require.True(t, CartCheckout.IsValid())
	require.True(t, CartAbandoned.IsValid())
	require.False(t, CartStatus("ordered").IsValid())
	require.False(t, CartStatus("").IsValid())
}

func TestPriceFormat(t *testing.T) {
	require.True(t, priceRegex.MatchString("19.90"))
	require.True(t, priceRegex.MatchString("0"))
	require.True(t, priceRegex.MatchString("1000"))
	require.False(t, priceRegex.MatchString("19.999"))
	require.False(t, priceRegex.MatchString("-5"))
	require.False(t, priceRegex.MatchString("19,90"))
	require.False(t, priceRegex.MatchString(""))
}
