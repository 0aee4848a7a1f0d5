package sink

import (
	"context"
	"log/slog"

	"github.com/alanyoungcy/arbot/internal/domain"
)

// LogSink writes each opportunity to the structured log.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink on the given logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With(slog.String("component", "opportunity_log"))}
}

// Name returns the sink identifier.
func (s *LogSink) Name() string { return "log" }

// Emit logs the opportunity at INFO.
func (s *LogSink) Emit(ctx context.Context, opp domain.Opportunity) error {
	attrs := []any{
		slog.String("route", opp.RouteName),
		slog.String("direction", opp.Direction.String()),
		slog.String("sequence", opp.TradeSequence),
		slog.Float64("profit_percent", opp.ProfitPercent),
		slog.Float64("max_tradable_amount", opp.MaxTradableAmount),
		slog.String("max_tradable_currency", opp.MaxTradableCurrency),
	}
	for _, p := range opp.Prices {
		attrs = append(attrs, slog.Group(p.Symbol,
			slog.Float64("bid", p.Bid),
			slog.Float64("ask", p.Ask),
		))
	}
	s.logger.InfoContext(ctx, "arbitrage opportunity", attrs...)
	return nil
}
