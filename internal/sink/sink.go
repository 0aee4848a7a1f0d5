// Package sink delivers emitted opportunities to their consumers: the log,
// the JSON file writer, notification channels, and optional Redis, Postgres
// and S3 backends. Sinks are synchronous and must return quickly; individual
// sink failures are swallowed so the detector never stalls on delivery.
package sink

import (
	"context"
	"log/slog"

	"github.com/alanyoungcy/arbot/internal/domain"
)

// Sink consumes one emitted opportunity. Implementations must be idempotent
// and fast; errors are logged by the fan-out and never propagated.
type Sink interface {
	// Name returns a human-readable identifier for the sink (e.g. "jsonfile").
	Name() string
	// Emit delivers the opportunity.
	Emit(ctx context.Context, opp domain.Opportunity) error
}

// Fanout dispatches each opportunity to every registered sink. A failing sink
// is logged and skipped; it does not prevent delivery to the remaining sinks.
type Fanout struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewFanout creates a Fanout over the given sinks.
func NewFanout(sinks []Sink, logger *slog.Logger) *Fanout {
	return &Fanout{
		sinks:  sinks,
		logger: logger.With(slog.String("component", "sink_fanout")),
	}
}

// Emit delivers the opportunity to all sinks, swallowing individual failures.
func (f *Fanout) Emit(ctx context.Context, opp domain.Opportunity) {
	for _, s := range f.sinks {
		if err := s.Emit(ctx, opp); err != nil {
			f.logger.WarnContext(ctx, "sink emit failed",
				slog.String("sink", s.Name()),
				slog.String("opportunity_id", opp.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Names returns the registered sink names, for startup logging.
func (f *Fanout) Names() []string {
	names := make([]string, 0, len(f.sinks))
	for _, s := range f.sinks {
		names = append(names, s.Name())
	}
	return names
}
