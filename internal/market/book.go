// Package market holds the shared mutable market view: one mutex-guarded
// order book per symbol behind a map that is read-only after construction.
package market

import (
	"math"
	"sort"
	"sync"

	"github.com/alanyoungcy/arbot/internal/domain"
)

// priceEpsilon is the identity threshold for depth levels: two prices closer
// than this are the same level, and a quantity below it removes the level.
const priceEpsilon = 1e-9

// Side selects one half of the order book.
type Side int

const (
	SideBid Side = iota
	SideAsk
)

// Book is the order book for a single symbol. Writers are the ingestion
// adapter; readers are the detector and the terminal monitor. All state is
// guarded by a single mutex and all reads return value copies.
type Book struct {
	mu     sync.Mutex
	symbol string

	top  domain.TopOfBook
	bids []domain.PriceLevel // descending by price
	asks []domain.PriceLevel // ascending by price
}

// NewBook creates an empty book for the given canonical symbol.
func NewBook(symbol string) *Book {
	return &Book{symbol: symbol}
}

// Symbol returns the canonical symbol this book tracks.
func (b *Book) Symbol() string { return b.symbol }

// UpdateTop atomically replaces the top of book. Inputs with non-finite or
// non-positive prices or quantities, bid > ask, or a timestamp older than the
// current one are rejected with no state change.
func (b *Book) UpdateTop(bidPrice, bidQty, askPrice, askQty float64, tsMS int64) {
	if !finitePositive(bidPrice) || !finitePositive(bidQty) ||
		!finitePositive(askPrice) || !finitePositive(askQty) {
		return
	}
	if bidPrice > askPrice {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.top.HasData && tsMS < b.top.LastUpdateMS {
		return
	}
	b.top = domain.TopOfBook{
		BidPrice:     bidPrice,
		BidQty:       bidQty,
		AskPrice:     askPrice,
		AskQty:       askQty,
		LastUpdateMS: tsMS,
		HasData:      true,
	}
}

// ApplySnapshot replaces the full depth ladder. Levels with non-positive
// price or quantity are dropped. The top of book and its timestamp are then
// re-derived at nowMS, the ingest wall clock, as refreshTopLocked describes.
func (b *Book) ApplySnapshot(bids, asks []domain.PriceLevel, nowMS int64) {
	cleanBids := cleanLevels(bids)
	cleanAsks := cleanLevels(asks)
	sortBids(cleanBids)
	sortAsks(cleanAsks)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.bids = cleanBids
	b.asks = cleanAsks
	b.refreshTopLocked(nowMS)
}

// ApplyDelta upserts individual depth levels. A level whose price matches an
// existing one within priceEpsilon replaces it; a quantity below priceEpsilon
// removes the level. Ladders are re-sorted after application.
func (b *Book) ApplyDelta(bids, asks []domain.PriceLevel, nowMS int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bids = upsertLevels(b.bids, bids)
	b.asks = upsertLevels(b.asks, asks)
	sortBids(b.bids)
	sortAsks(b.asks)
	b.refreshTopLocked(nowMS)
}

// refreshTopLocked re-derives the top of book from the ladders when both
// sides are populated. Must be called with the mutex held.
func (b *Book) refreshTopLocked(nowMS int64) {
	if len(b.bids) == 0 || len(b.asks) == 0 {
		return
	}
	bid, ask := b.bids[0], b.asks[0]
	if bid.Price > ask.Price {
		return
	}
	if b.top.HasData && nowMS < b.top.LastUpdateMS {
		return
	}
	b.top = domain.TopOfBook{
		BidPrice:     bid.Price,
		BidQty:       bid.Quantity,
		AskPrice:     ask.Price,
		AskQty:       ask.Quantity,
		LastUpdateMS: nowMS,
		HasData:      true,
	}
}

// Snapshot returns a value copy of the current top of book.
func (b *Book) Snapshot() domain.TopOfBook {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.top
}

// TopN returns up to n best levels on the given side, best first.
func (b *Book) TopN(side Side, n int) []domain.PriceLevel {
	b.mu.Lock()
	defer b.mu.Unlock()

	src := b.bids
	if side == SideAsk {
		src = b.asks
	}
	if n > len(src) {
		n = len(src)
	}
	out := make([]domain.PriceLevel, n)
	copy(out, src[:n])
	return out
}

// IsFresh reports whether the book has data no older than maxAgeMS at nowMS.
func (b *Book) IsFresh(maxAgeMS, nowMS int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.top.HasData && nowMS-b.top.LastUpdateMS <= maxAgeMS
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func cleanLevels(levels []domain.PriceLevel) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, len(levels))
	for _, lvl := range levels {
		if finitePositive(lvl.Price) && finitePositive(lvl.Quantity) {
			out = append(out, lvl)
		}
	}
	return out
}

func upsertLevels(ladder, updates []domain.PriceLevel) []domain.PriceLevel {
	for _, upd := range updates {
		if !finitePositive(upd.Price) {
			continue
		}
		idx := -1
		for i, lvl := range ladder {
			if math.Abs(lvl.Price-upd.Price) < priceEpsilon {
				idx = i
				break
			}
		}
		remove := upd.Quantity < priceEpsilon
		switch {
		case remove && idx >= 0:
			ladder = append(ladder[:idx], ladder[idx+1:]...)
		case remove:
			// Removal of a level we never had: nothing to do.
		case !finitePositive(upd.Quantity):
			// NaN or infinite quantities are bad data, not removals.
		case idx >= 0:
			ladder[idx] = upd
		default:
			ladder = append(ladder, upd)
		}
	}
	return ladder
}

func sortBids(levels []domain.PriceLevel) {
	sort.Slice(levels, func(i, j int) bool { return levels[i].Price > levels[j].Price })
}

func sortAsks(levels []domain.PriceLevel) {
	sort.Slice(levels, func(i, j int) bool { return levels[i].Price < levels[j].Price })
}
