package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogContentsAndOrder(t *testing.T) {
	routes := All()
	require.Len(t, routes, 11)

	wantIDs := []string{
		"ARB/BTC>BTC/USDT",
		"ARB/ETH>ETH/USDT",
		"ARB/EUR>EUR/USDT",
		"ARB/TRY>TRY/USDT",
		"ARB/FDUSD>ARB/USDT",
		"ARB/USDC>ARB/USDT",
		"ARB/TUSD>ARB/USDT",
		"ARB/EUR>ARB/BTC>BTC/USDT",
		"ARB/EUR>ARB/ETH>ETH/USDT",
		"ARB/TRY>ARB/BTC>BTC/USDT",
		"ARB/TRY>ARB/ETH>ETH/USDT",
	}
	for i, r := range routes {
		assert.Equal(t, wantIDs[i], r.ID(), "catalog order must be stable")
	}
}

func TestCatalogIsImmutableThroughAll(t *testing.T) {
	first := All()
	first[0] = Route{Kind: DirectStable, StablePair: "ARB/XXX"}
	assert.NotEqual(t, first[0].ID(), All()[0].ID())
}

func TestRouteSymbols(t *testing.T) {
	twoLeg := Route{Kind: TwoLeg, ArbPair: "ARB/BTC", CrossPair: "BTC/USDT"}
	assert.Equal(t, []string{"ARB/BTC", "BTC/USDT", "ARB/USDT"}, twoLeg.Symbols())

	stable := Route{Kind: DirectStable, StablePair: "ARB/FDUSD"}
	assert.Equal(t, []string{"ARB/FDUSD", "ARB/USDT"}, stable.Symbols())

	threeLeg := Route{Kind: ThreeLeg, StartPair: "ARB/EUR", MiddlePair: "ARB/BTC", FinalPair: "BTC/USDT"}
	assert.Equal(t, []string{"ARB/EUR", "ARB/BTC", "BTC/USDT", "EUR/USDT"}, threeLeg.Symbols(),
		"three-leg routes need the comparison leg for the starting quote")
}

func TestRouteNames(t *testing.T) {
	assert.Equal(t, "ARB/BTC -> BTC/USDT",
		Route{Kind: TwoLeg, ArbPair: "ARB/BTC", CrossPair: "BTC/USDT"}.Name())
	assert.Equal(t, "ARB/FDUSD vs ARB/USDT",
		Route{Kind: DirectStable, StablePair: "ARB/FDUSD"}.Name())
	assert.Equal(t, "ARB/EUR -> ARB/BTC -> BTC/USDT",
		Route{Kind: ThreeLeg, StartPair: "ARB/EUR", MiddlePair: "ARB/BTC", FinalPair: "BTC/USDT"}.Name())
}
