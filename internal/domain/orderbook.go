package domain

import "math"

// PriceLevel is a single price+quantity entry in an order-book ladder. A zero
// quantity in an incremental update is a deletion marker.
type PriceLevel struct {
	Price    float64
	Quantity float64
}

// TopOfBook is a value copy of the best bid and ask for one symbol. HasData is
// false until the book has accepted its first update.
type TopOfBook struct {
	BidPrice     float64
	BidQty       float64
	AskPrice     float64
	AskQty       float64
	LastUpdateMS int64
	HasData      bool
}

// Valid reports whether both sides carry finite, positive prices and
// quantities with bid <= ask. It does not consider freshness.
func (t TopOfBook) Valid() bool {
	if !t.HasData {
		return false
	}
	for _, v := range [4]float64{t.BidPrice, t.BidQty, t.AskPrice, t.AskQty} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	return t.BidPrice <= t.AskPrice
}

// AgeMS returns how old the snapshot is relative to nowMS.
func (t TopOfBook) AgeMS(nowMS int64) int64 {
	return nowMS - t.LastUpdateMS
}

// MarketUpdate is the normalized message an ingestion adapter pushes into the
// core. Symbol is canonical (BASE/QUOTE). When IsSnapshot is set the ladders
// replace the book's depth; otherwise they are applied as deltas.
type MarketUpdate struct {
	Symbol      string
	Bids        []PriceLevel
	Asks        []PriceLevel
	IsSnapshot  bool
	TimestampMS int64
}
