// Package binance provides the exchange-facing clients: a combined-stream
// WebSocket reader for live top-of-book and partial-depth data, and a small
// REST wrapper used to verify the symbol universe and seed depth ladders.
package binance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/alanyoungcy/arbot/internal/domain"
)

// combinedMessage is the envelope of every combined-stream payload.
type combinedMessage struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// bookTickerMessage is the raw @bookTicker payload. Prices and quantities are
// string-encoded decimals.
type bookTickerMessage struct {
	UpdateID int64  `json:"u"`
	Symbol   string `json:"s"`
	BidPrice string `json:"b"`
	BidQty   string `json:"B"`
	AskPrice string `json:"a"`
	AskQty   string `json:"A"`
}

// depthMessage is the raw @depthN payload. It carries no symbol; the stream
// name identifies it.
type depthMessage struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

// BookTicker is a decoded top-of-book update.
type BookTicker struct {
	Symbol   string // exchange-native, e.g. "ARBUSDT"
	BidPrice float64
	BidQty   float64
	AskPrice float64
	AskQty   float64
}

// DepthSnapshot is a decoded partial-depth snapshot.
type DepthSnapshot struct {
	Symbol string // exchange-native, derived from the stream name
	Bids   []domain.PriceLevel
	Asks   []domain.PriceLevel
}

func parseBookTicker(data json.RawMessage) (BookTicker, error) {
	var msg bookTickerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return BookTicker{}, fmt.Errorf("decode bookTicker: %w", err)
	}
	if msg.Symbol == "" {
		return BookTicker{}, fmt.Errorf("bookTicker: missing symbol")
	}
	bt := BookTicker{Symbol: msg.Symbol}
	var err error
	if bt.BidPrice, err = strconv.ParseFloat(msg.BidPrice, 64); err != nil {
		return BookTicker{}, fmt.Errorf("bookTicker %s: bid price %q: %w", msg.Symbol, msg.BidPrice, err)
	}
	if bt.BidQty, err = strconv.ParseFloat(msg.BidQty, 64); err != nil {
		return BookTicker{}, fmt.Errorf("bookTicker %s: bid qty %q: %w", msg.Symbol, msg.BidQty, err)
	}
	if bt.AskPrice, err = strconv.ParseFloat(msg.AskPrice, 64); err != nil {
		return BookTicker{}, fmt.Errorf("bookTicker %s: ask price %q: %w", msg.Symbol, msg.AskPrice, err)
	}
	if bt.AskQty, err = strconv.ParseFloat(msg.AskQty, 64); err != nil {
		return BookTicker{}, fmt.Errorf("bookTicker %s: ask qty %q: %w", msg.Symbol, msg.AskQty, err)
	}
	return bt, nil
}

func parseDepth(stream string, data json.RawMessage) (DepthSnapshot, error) {
	var msg depthMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return DepthSnapshot{}, fmt.Errorf("decode depth: %w", err)
	}
	sym, _, ok := strings.Cut(stream, "@")
	if !ok {
		return DepthSnapshot{}, fmt.Errorf("depth: malformed stream %q", stream)
	}
	snap := DepthSnapshot{Symbol: strings.ToUpper(sym)}
	var err error
	if snap.Bids, err = parseLevels(msg.Bids); err != nil {
		return DepthSnapshot{}, fmt.Errorf("depth %s: bids: %w", snap.Symbol, err)
	}
	if snap.Asks, err = parseLevels(msg.Asks); err != nil {
		return DepthSnapshot{}, fmt.Errorf("depth %s: asks: %w", snap.Symbol, err)
	}
	return snap, nil
}

func parseLevels(raw [][]string) ([]domain.PriceLevel, error) {
	out := make([]domain.PriceLevel, 0, len(raw))
	for _, pair := range raw {
		if len(pair) < 2 {
			return nil, fmt.Errorf("level with %d fields", len(pair))
		}
		price, err := strconv.ParseFloat(pair[0], 64)
		if err != nil {
			return nil, fmt.Errorf("price %q: %w", pair[0], err)
		}
		qty, err := strconv.ParseFloat(pair[1], 64)
		if err != nil {
			return nil, fmt.Errorf("quantity %q: %w", pair[1], err)
		}
		out = append(out, domain.PriceLevel{Price: price, Quantity: qty})
	}
	return out, nil
}
