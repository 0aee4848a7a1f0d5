package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/arbot/internal/domain"
)

func TestStateFixedUniverse(t *testing.T) {
	s := NewState([]string{"ARB/USDT", "ARB/BTC", "ARB/USDT"})

	assert.Equal(t, []string{"ARB/BTC", "ARB/USDT"}, s.Symbols(), "duplicates collapse, order sorted")

	_, ok := s.Book("ARB/USDT")
	assert.True(t, ok)

	_, ok = s.Book("DOGE/USDT")
	assert.False(t, ok, "unknown symbols must not be inserted")

	snap, ok := s.GetSnapshot("DOGE/USDT")
	assert.False(t, ok)
	assert.False(t, snap.HasData)
}

func TestStateApplyRoutesUpdates(t *testing.T) {
	s := NewState([]string{"ARB/USDT"})

	s.Apply(domain.MarketUpdate{
		Symbol:      "ARB/USDT",
		Bids:        []domain.PriceLevel{{Price: 0.52, Quantity: 10}},
		Asks:        []domain.PriceLevel{{Price: 0.53, Quantity: 5}},
		IsSnapshot:  true,
		TimestampMS: 1000,
	})

	snap, ok := s.GetSnapshot("ARB/USDT")
	require.True(t, ok)
	require.True(t, snap.HasData)
	assert.Equal(t, 0.52, snap.BidPrice)
	assert.Equal(t, 0.53, snap.AskPrice)

	// Delta removes the only bid; top of book keeps the last derived value.
	s.Apply(domain.MarketUpdate{
		Symbol:      "ARB/USDT",
		Bids:        []domain.PriceLevel{{Price: 0.52, Quantity: 0}},
		TimestampMS: 1001,
	})
	b, _ := s.Book("ARB/USDT")
	assert.Empty(t, b.TopN(SideBid, 10))

	// Unknown symbol update is dropped without panic.
	s.Apply(domain.MarketUpdate{Symbol: "DOGE/USDT", TimestampMS: 1002})
}
