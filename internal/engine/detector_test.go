package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/arbot/internal/domain"
	"github.com/alanyoungcy/arbot/internal/market"
	"github.com/alanyoungcy/arbot/internal/sink"
)

// captureSink records every emitted opportunity and optionally fails.
type captureSink struct {
	mu   sync.Mutex
	opps []domain.Opportunity
	fail bool
}

func (c *captureSink) Name() string { return "capture" }

func (c *captureSink) Emit(ctx context.Context, opp domain.Opportunity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("capture sink down")
	}
	c.opps = append(c.opps, opp)
	return nil
}

func (c *captureSink) all() []domain.Opportunity {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Opportunity, len(c.opps))
	copy(out, c.opps)
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDetector(state *market.State, sinks ...sink.Sink) (*Detector, *Evaluator) {
	eval := newTestEvaluator(state)
	det := NewDetector(state, eval, sink.NewFanout(sinks, discardLogger()), DetectorConfig{
		TickInterval: 0, // Tick is driven directly in tests
		StaleAgeMS:   3000,
	}, fixedClock, discardLogger())
	return det, eval
}

func TestTickEmitsBestOpportunity(t *testing.T) {
	state := market.NewState(domain.Universe())
	nowMS := testNow.UnixMilli()
	// ARB/FDUSD edge 0.40%, ARB/USDC edge 0.60%: USDC must win.
	setBook(t, state, "ARB/FDUSD", 0.499, 300, 0.500, 300, nowMS)
	setBook(t, state, "ARB/USDC", 0.498, 300, 0.499, 300, nowMS)
	setBook(t, state, "ARB/USDT", 0.502, 400, 0.503, 400, nowMS)

	rec := &captureSink{}
	det, _ := newTestDetector(state, rec)
	det.Tick(context.Background())

	opps := rec.all()
	require.Len(t, opps, 1, "only the best opportunity of the tick is emitted")
	assert.Equal(t, "ARB/USDC vs ARB/USDT", opps[0].RouteName)

	stats := det.Stats()
	assert.Equal(t, int64(1), stats.CheckCount)
	assert.Equal(t, int64(1), stats.OpportunitiesFound)
	require.NotNil(t, stats.LastOpportunity)
	assert.Equal(t, "ARB/USDC vs ARB/USDT", stats.LastOpportunity.RouteName)
}

func TestTickTieBreaksByCatalogOrder(t *testing.T) {
	state := market.NewState(domain.Universe())
	nowMS := testNow.UnixMilli()
	// Identical books for FDUSD and TUSD produce identical profits; the
	// catalog lists FDUSD first, so it must win the tie.
	setBook(t, state, "ARB/FDUSD", 0.499, 300, 0.500, 300, nowMS)
	setBook(t, state, "ARB/TUSD", 0.499, 300, 0.500, 300, nowMS)
	setBook(t, state, "ARB/USDT", 0.502, 400, 0.503, 400, nowMS)

	rec := &captureSink{}
	det, _ := newTestDetector(state, rec)
	det.Tick(context.Background())

	opps := rec.all()
	require.Len(t, opps, 1)
	assert.Equal(t, "ARB/FDUSD vs ARB/USDT", opps[0].RouteName)
}

func TestTickWithNoDataEmitsNothing(t *testing.T) {
	state := market.NewState(domain.Universe())
	rec := &captureSink{}
	det, _ := newTestDetector(state, rec)

	det.Tick(context.Background())
	det.Tick(context.Background())

	assert.Empty(t, rec.all())
	stats := det.Stats()
	assert.Equal(t, int64(2), stats.CheckCount)
	assert.Equal(t, int64(0), stats.OpportunitiesFound)
	assert.Nil(t, stats.LastOpportunity)
	assert.Equal(t, 12, stats.TotalSymbols)
	assert.Equal(t, 0, stats.ActiveSymbols)
}

func TestStatsTrackMaxAndMean(t *testing.T) {
	state := market.NewState(domain.Universe())
	nowMS := testNow.UnixMilli()
	setBook(t, state, "ARB/FDUSD", 0.499, 300, 0.500, 300, nowMS)
	setBook(t, state, "ARB/USDT", 0.502, 400, 0.503, 400, nowMS)

	rec := &captureSink{}
	det, _ := newTestDetector(state, rec)

	det.Tick(context.Background()) // 0.40%
	// Widen the edge for the second tick.
	setBook(t, state, "ARB/USDT", 0.503, 400, 0.504, 400, nowMS)
	det.Tick(context.Background()) // 0.60%

	stats := det.Stats()
	assert.Equal(t, int64(2), stats.OpportunitiesFound)
	assert.InDelta(t, 0.60, stats.MaxProfitPercent, 1e-9)
	assert.InDelta(t, 0.50, stats.AvgProfitPercent, 1e-9)
}

func TestSymbolClassification(t *testing.T) {
	state := market.NewState(domain.Universe())
	nowMS := testNow.UnixMilli()
	setBook(t, state, "ARB/USDT", 0.502, 400, 0.503, 400, nowMS)    // active
	setBook(t, state, "BTC/USDT", 50_000, 2, 50_100, 2, nowMS-5000) // stale
	setBook(t, state, "ETH/USDT", 3_000, 2, 3_001, 2, nowMS-3000)   // exactly stale age: active

	det, _ := newTestDetector(state, &captureSink{})
	det.Tick(context.Background())

	stats := det.Stats()
	assert.Equal(t, 12, stats.TotalSymbols)
	assert.Equal(t, 2, stats.ActiveSymbols)
	assert.Equal(t, 1, stats.StaleSymbols)
}

func TestFailingSinkDoesNotStopDelivery(t *testing.T) {
	state := market.NewState(domain.Universe())
	nowMS := testNow.UnixMilli()
	setBook(t, state, "ARB/FDUSD", 0.499, 300, 0.500, 300, nowMS)
	setBook(t, state, "ARB/USDT", 0.502, 400, 0.503, 400, nowMS)

	failing := &captureSink{fail: true}
	working := &captureSink{}
	det, _ := newTestDetector(state, failing, working)
	det.Tick(context.Background())

	assert.Len(t, working.all(), 1, "a failing sink must not block the others")
	stats := det.Stats()
	assert.Equal(t, int64(1), stats.OpportunitiesFound, "sink failure does not undo the emission")
}
