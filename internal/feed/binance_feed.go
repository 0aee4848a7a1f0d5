// Package feed is the ingestion adapter: it owns the exchange connection
// lifecycle and translates raw exchange events into order-book updates on the
// shared market state.
package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyoungcy/arbot/internal/domain"
	"github.com/alanyoungcy/arbot/internal/market"
	"github.com/alanyoungcy/arbot/internal/platform/binance"
)

const reconnectDelay = 2 * time.Second

// Config configures the Binance feed.
type Config struct {
	WSEndpoint  string // combined-stream endpoint
	DepthLevels int    // partial-depth stream depth (5, 10, or 20)
	SeedDepth   bool   // fetch REST depth snapshots before streaming
}

// Feed subscribes to @bookTicker and @depthN streams for every symbol in the
// universe and writes the decoded updates into the market state. It
// reconnects with a fixed delay on disconnect and runs until ctx is
// cancelled.
type Feed struct {
	cfg    Config
	state  *market.State
	rest   *binance.RESTClient
	logger *slog.Logger
}

// New creates a feed over the given market state. rest may be nil when REST
// seeding is disabled.
func New(cfg Config, state *market.State, rest *binance.RESTClient, logger *slog.Logger) *Feed {
	return &Feed{
		cfg:    cfg,
		state:  state,
		rest:   rest,
		logger: logger.With(slog.String("component", "binance_feed")),
	}
}

// Run seeds the ladders, then connects and re-connects until ctx is
// cancelled.
func (f *Feed) Run(ctx context.Context) error {
	if f.cfg.SeedDepth && f.rest != nil {
		f.seedSnapshots(ctx)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := f.runConnection(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Warn("binance ws disconnected, reconnecting",
			slog.String("error", errString(err)),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// seedSnapshots primes each book's depth ladder from REST so the detector has
// usable depth before the streams warm up. Failures are logged and skipped;
// the streams will fill the gap.
func (f *Feed) seedSnapshots(ctx context.Context) {
	for _, sym := range f.state.Symbols() {
		bids, asks, err := f.rest.DepthSnapshot(ctx, sym, f.cfg.DepthLevels)
		if err != nil {
			f.logger.WarnContext(ctx, "depth seed failed",
				slog.String("symbol", sym),
				slog.String("error", err.Error()),
			)
			continue
		}
		f.state.Apply(domain.MarketUpdate{
			Symbol:      sym,
			Bids:        bids,
			Asks:        asks,
			IsSnapshot:  true,
			TimestampMS: time.Now().UnixMilli(),
		})
	}
	f.logger.InfoContext(ctx, "depth ladders seeded", slog.Int("symbols", len(f.state.Symbols())))
}

func (f *Feed) runConnection(ctx context.Context) error {
	symbols := f.state.Symbols()
	streams := make([]string, 0, 2*len(symbols))
	for _, sym := range symbols {
		streams = append(streams, domain.StreamName(sym))
		streams = append(streams, domain.DepthStreamName(sym, f.cfg.DepthLevels))
	}

	client := binance.NewWSClient(f.cfg.WSEndpoint, streams)
	defer client.Close()

	client.OnBookTicker(f.handleBookTicker)
	client.OnDepth(f.handleDepth)

	if err := client.Connect(ctx); err != nil {
		return err
	}
	f.logger.InfoContext(ctx, "binance ws connected", slog.Int("streams", len(streams)))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-client.Done():
		return client.Err()
	}
}

// handleBookTicker stamps the update with the local receive clock; the
// bookTicker stream carries no exchange event time.
func (f *Feed) handleBookTicker(bt binance.BookTicker) {
	symbol := domain.NormalizeSymbol(bt.Symbol)
	book, ok := f.state.Book(symbol)
	if !ok {
		return
	}
	book.UpdateTop(bt.BidPrice, bt.BidQty, bt.AskPrice, bt.AskQty, time.Now().UnixMilli())
}

func (f *Feed) handleDepth(snap binance.DepthSnapshot) {
	f.state.Apply(domain.MarketUpdate{
		Symbol:      domain.NormalizeSymbol(snap.Symbol),
		Bids:        snap.Bids,
		Asks:        snap.Asks,
		IsSnapshot:  true,
		TimestampMS: time.Now().UnixMilli(),
	})
}

func errString(err error) string {
	if err == nil {
		return "connection closed"
	}
	return err.Error()
}
