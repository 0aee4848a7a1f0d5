package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alanyoungcy/arbot/internal/domain"
)

// JSONFileSink persists each opportunity as a standalone JSON file named
// arbitrage_YYYY-MM-DD_HH-MM-SS.json in the configured directory. Prices are
// written with eight decimals.
type JSONFileSink struct {
	dir string
}

// NewJSONFileSink creates a JSONFileSink writing into dir, creating it if
// needed. An empty dir means the current working directory.
func NewJSONFileSink(dir string) (*JSONFileSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile: create dir %s: %w", dir, err)
	}
	return &JSONFileSink{dir: dir}, nil
}

// Name returns the sink identifier.
func (s *JSONFileSink) Name() string { return "jsonfile" }

// Emit writes the opportunity record to its own file.
func (s *JSONFileSink) Emit(ctx context.Context, opp domain.Opportunity) error {
	body, err := MarshalOpportunity(opp)
	if err != nil {
		return fmt.Errorf("jsonfile: marshal: %w", err)
	}
	path := filepath.Join(s.dir, Filename(opp))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("jsonfile: write %s: %w", path, err)
	}
	return nil
}

// Filename renders the file name for an opportunity record from its detection
// time: arbitrage_YYYY-MM-DD_HH-MM-SS.json.
func Filename(opp domain.Opportunity) string {
	return "arbitrage_" + opp.DetectedAt.Format("2006-01-02_15-04-05") + ".json"
}

// opportunityRecord is the on-disk JSON shape of an emitted opportunity.
type opportunityRecord struct {
	TimestampMS         int64                  `json:"timestamp_ms"`
	Timestamp           string                 `json:"timestamp"`
	Direction           int                    `json:"direction"`
	RouteName           string                 `json:"route_name"`
	TradeSequence       string                 `json:"trade_sequence"`
	ProfitPercent       float64                `json:"profit_percent"`
	MaxTradableAmount   float64                `json:"max_tradable_amount"`
	MaxTradableCurrency string                 `json:"max_tradable_currency"`
	Prices              map[string]priceRecord `json:"prices"`
}

type priceRecord struct {
	Bid json.Number `json:"bid"`
	Ask json.Number `json:"ask"`
}

// MarshalOpportunity serializes an opportunity to the persistence format with
// eight-decimal prices.
func MarshalOpportunity(opp domain.Opportunity) ([]byte, error) {
	prices := make(map[string]priceRecord, len(opp.Prices))
	for _, p := range opp.Prices {
		prices[p.Symbol] = priceRecord{
			Bid: json.Number(strconv.FormatFloat(p.Bid, 'f', 8, 64)),
			Ask: json.Number(strconv.FormatFloat(p.Ask, 'f', 8, 64)),
		}
	}
	rec := opportunityRecord{
		TimestampMS:         opp.DetectedAt.UnixMilli(),
		Timestamp:           opp.DetectedAt.Format("2006-01-02 15:04:05"),
		Direction:           int(opp.Direction),
		RouteName:           opp.RouteName,
		TradeSequence:       opp.TradeSequence,
		ProfitPercent:       opp.ProfitPercent,
		MaxTradableAmount:   opp.MaxTradableAmount,
		MaxTradableCurrency: opp.MaxTradableCurrency,
		Prices:              prices,
	}
	return json.MarshalIndent(rec, "", "  ")
}
