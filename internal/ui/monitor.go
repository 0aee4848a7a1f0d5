// Package ui renders a periodic plain-text monitor of the market view, the
// route board, and the detector statistics to the terminal.
package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alanyoungcy/arbot/internal/engine"
	"github.com/alanyoungcy/arbot/internal/market"
	"github.com/alanyoungcy/arbot/internal/route"
)

// clearScreen is the ANSI sequence that clears the terminal and homes the
// cursor before each frame.
const clearScreen = "\033[2J\033[H"

// Monitor periodically paints the live view. It is a pure reader: market
// snapshots, evaluator profits, and detector statistics.
type Monitor struct {
	state      *market.State
	eval       *engine.Evaluator
	detector   *engine.Detector
	routes     []route.Route
	out        io.Writer
	interval   time.Duration
	staleAgeMS int64
	now        func() time.Time
}

// New creates a Monitor writing frames to out. now is injectable for tests;
// pass nil for the wall clock.
func New(state *market.State, eval *engine.Evaluator, detector *engine.Detector, out io.Writer, interval time.Duration, staleAgeMS int64, now func() time.Time) *Monitor {
	if now == nil {
		now = time.Now
	}
	return &Monitor{
		state:      state,
		eval:       eval,
		detector:   detector,
		routes:     route.All(),
		out:        out,
		interval:   interval,
		staleAgeMS: staleAgeMS,
		now:        now,
	}
}

// Run repaints at the configured interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Render()
		}
	}
}

// Render paints one frame.
func (m *Monitor) Render() {
	fmt.Fprint(m.out, clearScreen)
	m.renderSymbols()
	m.renderRoutes()
	m.renderOpportunity()
	m.renderStats()
}

func (m *Monitor) renderSymbols() {
	nowMS := m.now().UnixMilli()
	fmt.Fprintf(m.out, "MARKET  %s\n", m.now().Format("15:04:05"))
	fmt.Fprintf(m.out, "%-10s %14s %14s %8s %s\n", "SYMBOL", "BID", "ASK", "AGE", "STATE")
	for _, sym := range m.state.Symbols() {
		snap, _ := m.state.GetSnapshot(sym)
		if !snap.HasData {
			fmt.Fprintf(m.out, "%-10s %14s %14s %8s %s\n", sym, "-", "-", "-", "WAIT")
			continue
		}
		age := snap.AgeMS(nowMS)
		state := "ACTIVE"
		if age > m.staleAgeMS {
			state = "STALE"
		}
		fmt.Fprintf(m.out, "%-10s %14.8f %14.8f %6dms %s\n",
			sym, snap.BidPrice, snap.AskPrice, age, state)
	}
	fmt.Fprintln(m.out)
}

func (m *Monitor) renderRoutes() {
	fmt.Fprintf(m.out, "%-36s %12s\n", "ROUTE", "PROFIT%")
	for _, r := range m.routes {
		if profit, ok := m.eval.CurrentProfit(r); ok {
			fmt.Fprintf(m.out, "%-36s %+12.4f\n", r.Name(), profit)
		} else {
			fmt.Fprintf(m.out, "%-36s %12s\n", r.Name(), "n/a")
		}
	}
	fmt.Fprintln(m.out)
}

func (m *Monitor) renderOpportunity() {
	stats := m.detector.Stats()
	if stats.LastOpportunity == nil {
		fmt.Fprintln(m.out, "No opportunity")
		fmt.Fprintln(m.out)
		return
	}
	opp := stats.LastOpportunity
	fmt.Fprintf(m.out, "OPPORTUNITY  %s\n", opp.RouteName)
	fmt.Fprintf(m.out, "  %s\n", opp.TradeSequence)
	fmt.Fprintf(m.out, "  profit %.4f%%  size %.4f %s\n",
		opp.ProfitPercent, opp.MaxTradableAmount, opp.MaxTradableCurrency)
	fmt.Fprintln(m.out)
}

func (m *Monitor) renderStats() {
	stats := m.detector.Stats()
	fmt.Fprintf(m.out, "checks %d  opportunities %d  max %.4f%%  mean %.4f%%  active %d  stale %d / %d\n",
		stats.CheckCount,
		stats.OpportunitiesFound,
		stats.MaxProfitPercent,
		stats.AvgProfitPercent,
		stats.ActiveSymbols,
		stats.StaleSymbols,
		stats.TotalSymbols,
	)
}
