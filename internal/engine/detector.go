package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alanyoungcy/arbot/internal/domain"
	"github.com/alanyoungcy/arbot/internal/market"
	"github.com/alanyoungcy/arbot/internal/route"
	"github.com/alanyoungcy/arbot/internal/sink"
)

// DetectorConfig configures the detection loop.
type DetectorConfig struct {
	TickInterval time.Duration // cadence between full catalog scans
	StaleAgeMS   int64         // symbol staleness classification for stats
}

// Stats is a value copy of the detector's running counters.
type Stats struct {
	CheckCount         int64
	OpportunitiesFound int64
	MaxProfitPercent   float64
	AvgProfitPercent   float64
	ActiveSymbols      int
	StaleSymbols       int
	TotalSymbols       int
	LastOpportunity    *domain.Opportunity
	LastCheck          time.Time
}

// Detector periodically evaluates the whole route catalog, emits the best
// opportunity of each tick to the configured sinks, and keeps running
// statistics for the monitor.
type Detector struct {
	state  *market.State
	eval   *Evaluator
	routes []route.Route
	sinks  *sink.Fanout
	cfg    DetectorConfig
	now    func() time.Time
	logger *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// NewDetector creates a detector over the given evaluator and sinks. now is
// injectable for tests; pass nil for the wall clock.
func NewDetector(state *market.State, eval *Evaluator, sinks *sink.Fanout, cfg DetectorConfig, now func() time.Time, logger *slog.Logger) *Detector {
	if now == nil {
		now = time.Now
	}
	return &Detector{
		state:  state,
		eval:   eval,
		routes: route.All(),
		sinks:  sinks,
		cfg:    cfg,
		now:    now,
		logger: logger.With(slog.String("component", "detector")),
	}
}

// Run ticks at the configured cadence until ctx is cancelled. The in-flight
// tick always completes before Run returns, so no emitted opportunity is
// lost on shutdown.
func (d *Detector) Run(ctx context.Context) error {
	d.logger.InfoContext(ctx, "detector started",
		slog.Int("routes", len(d.routes)),
		slog.Duration("interval", d.cfg.TickInterval),
	)
	defer d.logger.Info("detector stopped")

	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick runs one full catalog scan: evaluate every route, pick the highest
// profit (earlier catalog entries win ties), emit it, update statistics.
func (d *Detector) Tick(ctx context.Context) {
	var best *domain.Opportunity
	for _, r := range d.routes {
		opp, ok := d.eval.Evaluate(r)
		if !ok {
			continue
		}
		if best == nil || opp.ProfitPercent > best.ProfitPercent {
			o := opp
			best = &o
		}
	}

	if best != nil {
		d.sinks.Emit(ctx, *best)
	}
	d.updateStats(best)
}

func (d *Detector) updateStats(best *domain.Opportunity) {
	active, stale, total := d.classifySymbols()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.CheckCount++
	d.stats.LastCheck = d.now()
	d.stats.ActiveSymbols = active
	d.stats.StaleSymbols = stale
	d.stats.TotalSymbols = total

	if best == nil {
		d.stats.LastOpportunity = nil
		return
	}
	d.stats.OpportunitiesFound++
	d.stats.LastOpportunity = best
	if best.ProfitPercent > d.stats.MaxProfitPercent {
		d.stats.MaxProfitPercent = best.ProfitPercent
	}
	n := float64(d.stats.OpportunitiesFound)
	d.stats.AvgProfitPercent = (d.stats.AvgProfitPercent*(n-1) + best.ProfitPercent) / n

	d.logger.Info("opportunity emitted",
		slog.String("route", best.RouteName),
		slog.String("direction", best.Direction.String()),
		slog.Float64("profit_percent", best.ProfitPercent),
		slog.Float64("max_tradable", best.MaxTradableAmount),
	)
}

// classifySymbols counts symbols with data as active or stale against the
// configured stale age; symbols with no data yet count toward total only.
func (d *Detector) classifySymbols() (active, stale, total int) {
	nowMS := d.now().UnixMilli()
	for _, sym := range d.state.Symbols() {
		total++
		snap, ok := d.state.GetSnapshot(sym)
		if !ok || !snap.HasData {
			continue
		}
		if nowMS-snap.LastUpdateMS > d.cfg.StaleAgeMS {
			stale++
		} else {
			active++
		}
	}
	return active, stale, total
}

// Stats returns a copy of the running counters.
func (d *Detector) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.stats
	if d.stats.LastOpportunity != nil {
		opp := *d.stats.LastOpportunity
		s.LastOpportunity = &opp
	}
	return s
}
