package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSymbol(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ARBUSDT", "ARB/USDT"},
		{"arbusdt", "ARB/USDT"},
		{"ARBFDUSD", "ARB/FDUSD"},
		{"ARBTUSD", "ARB/TUSD"},
		{"ARBUSDC", "ARB/USDC"},
		{"ARBBTC", "ARB/BTC"},
		{"ARBETH", "ARB/ETH"},
		{"ARBTRY", "ARB/TRY"},
		{"ARBEUR", "ARB/EUR"},
		{"BTCUSDT", "BTC/USDT"},
		{"EURUSDT", "EUR/USDT"},
		{"ARB/USDT", "ARB/USDT"}, // already canonical
		{"XYZZY", "XYZZY"},       // no recognized suffix
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeSymbol(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeSymbolPrefersLongestSuffix(t *testing.T) {
	// BTCFDUSD must split at the five-letter FDUSD quote.
	assert.Equal(t, "BTC/FDUSD", NormalizeSymbol("BTCFDUSD"))
	// BNBBUSD must resolve to the BUSD quote, not BNB.
	assert.Equal(t, "BNB/BUSD", NormalizeSymbol("BNBBUSD"))
}

func TestStreamNames(t *testing.T) {
	assert.Equal(t, "arbusdt@bookTicker", StreamName("ARB/USDT"))
	assert.Equal(t, "arbusdt@depth10", DepthStreamName("ARB/USDT", 10))
	assert.Equal(t, "btcusdt@depth5", DepthStreamName("BTC/USDT", 5))
	assert.Equal(t, "ARBUSDT", ExchangeSymbol("ARB/USDT"))
}

func TestSplitSymbol(t *testing.T) {
	base, quote, ok := SplitSymbol("ARB/BTC")
	require.True(t, ok)
	assert.Equal(t, "ARB", base)
	assert.Equal(t, "BTC", quote)

	_, _, ok = SplitSymbol("ARBBTC")
	assert.False(t, ok)

	assert.Equal(t, "EUR", QuoteCurrency("ARB/EUR"))
	assert.Equal(t, "", QuoteCurrency("nonsense"))
}

func TestUniverse(t *testing.T) {
	universe := Universe()
	require.Len(t, universe, 12)

	seen := make(map[string]bool, len(universe))
	for _, sym := range universe {
		assert.False(t, seen[sym], "duplicate symbol %s", sym)
		seen[sym] = true
	}
	for _, required := range []string{
		"ARB/USDT", "ARB/FDUSD", "ARB/USDC", "ARB/TUSD",
		"ARB/BTC", "ARB/ETH", "ARB/TRY", "ARB/EUR",
		"BTC/USDT", "ETH/USDT", "EUR/USDT", "TRY/USDT",
	} {
		assert.True(t, seen[required], "missing %s", required)
	}
}
