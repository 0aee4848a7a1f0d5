package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/arbot/internal/domain"
)

// OpportunityStore persists emitted opportunities.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates an OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const oppSelectCols = `id, route_id, route_name, direction, trade_sequence,
	profit_percent, max_tradable_amount, max_tradable_currency, prices, detected_at`

// Insert stores a new opportunity. The referenced prices are kept as a JSONB
// document keyed by symbol.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.Opportunity) error {
	const query = `
		INSERT INTO opportunities (
			id, route_id, route_name, direction, trade_sequence,
			profit_percent, max_tradable_amount, max_tradable_currency,
			prices, detected_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10
		)`

	prices, err := marshalPrices(opp.Prices)
	if err != nil {
		return fmt.Errorf("postgres: marshal prices for %s: %w", opp.ID, err)
	}

	_, err = s.pool.Exec(ctx, query,
		opp.ID, opp.RouteID, opp.RouteName, int(opp.Direction), opp.TradeSequence,
		opp.ProfitPercent, opp.MaxTradableAmount, opp.MaxTradableCurrency,
		prices, opp.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// ListRecent returns the most recent opportunities ordered by detection time.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	query := `SELECT ` + oppSelectCols + ` FROM opportunities ORDER BY detected_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var opp domain.Opportunity
		var direction int
		var prices []byte
		if err := rows.Scan(
			&opp.ID, &opp.RouteID, &opp.RouteName, &direction, &opp.TradeSequence,
			&opp.ProfitPercent, &opp.MaxTradableAmount, &opp.MaxTradableCurrency,
			&prices, &opp.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opp.Direction = domain.Direction(direction)
		if opp.Prices, err = unmarshalPrices(prices); err != nil {
			return nil, fmt.Errorf("postgres: decode prices for %s: %w", opp.ID, err)
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities rows: %w", err)
	}
	return opps, nil
}

type storedPrice struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
}

func marshalPrices(prices []domain.SymbolPrice) ([]byte, error) {
	m := make(map[string]storedPrice, len(prices))
	for _, p := range prices {
		m[p.Symbol] = storedPrice{Bid: p.Bid, Ask: p.Ask}
	}
	return json.Marshal(m)
}

func unmarshalPrices(data []byte) ([]domain.SymbolPrice, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var m map[string]storedPrice
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	out := make([]domain.SymbolPrice, 0, len(m))
	for sym, p := range m {
		out = append(out, domain.SymbolPrice{Symbol: sym, Bid: p.Bid, Ask: p.Ask})
	}
	return out, nil
}
