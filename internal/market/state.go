package market

import (
	"sort"

	"github.com/alanyoungcy/arbot/internal/domain"
)

// State maps canonical symbols to their order books. The key set is fixed at
// construction, so lookups need no lock; only the per-book mutex is taken.
type State struct {
	books   map[string]*Book
	symbols []string
}

// NewState creates a State with one empty book per symbol. Duplicate symbols
// collapse to a single book.
func NewState(symbols []string) *State {
	s := &State{books: make(map[string]*Book, len(symbols))}
	for _, sym := range symbols {
		if _, ok := s.books[sym]; ok {
			continue
		}
		s.books[sym] = NewBook(sym)
		s.symbols = append(s.symbols, sym)
	}
	sort.Strings(s.symbols)
	return s
}

// Book returns the order book for a symbol. ok is false for symbols outside
// the configured universe; the state never grows at runtime.
func (s *State) Book(symbol string) (*Book, bool) {
	b, ok := s.books[symbol]
	return b, ok
}

// GetSnapshot returns a value copy of the top of book for a symbol. Unknown
// symbols yield a zero snapshot with ok false.
func (s *State) GetSnapshot(symbol string) (domain.TopOfBook, bool) {
	b, ok := s.books[symbol]
	if !ok {
		return domain.TopOfBook{}, false
	}
	return b.Snapshot(), true
}

// Apply routes a normalized market update to the owning book. Updates for
// unknown symbols are ignored.
func (s *State) Apply(u domain.MarketUpdate) {
	b, ok := s.books[u.Symbol]
	if !ok {
		return
	}
	if u.IsSnapshot {
		b.ApplySnapshot(u.Bids, u.Asks, u.TimestampMS)
	} else {
		b.ApplyDelta(u.Bids, u.Asks, u.TimestampMS)
	}
}

// Symbols returns the universe in sorted order.
func (s *State) Symbols() []string {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}
