// Package engine contains the route evaluator and the detection loop that
// together turn the shared market view into ranked arbitrage opportunities.
package engine

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/arbot/internal/domain"
	"github.com/alanyoungcy/arbot/internal/market"
	"github.com/alanyoungcy/arbot/internal/route"
)

const directPair = domain.BaseAsset + "/USDT"

// EvaluatorConfig holds the validity-gate and threshold parameters.
type EvaluatorConfig struct {
	ThresholdPercent   float64 // minimum profit to emit, in percent
	MaxAgeMS           int64   // freshness gate for every referenced snapshot
	MaxReasonablePrice float64 // prices above this are treated as bad data
}

// Evaluator computes profit and depth-limited tradable size for catalog
// routes against the current market state. A route that cannot be evaluated
// (missing book, invalid or stale prices, degenerate arithmetic) yields no
// result rather than an error; the detector simply moves on.
type Evaluator struct {
	state *market.State
	cfg   EvaluatorConfig
	now   func() time.Time
}

// NewEvaluator creates an evaluator over the given state. now is injectable
// for tests; pass nil for the wall clock.
func NewEvaluator(state *market.State, cfg EvaluatorConfig, now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{state: state, cfg: cfg, now: now}
}

// result is the outcome of one route evaluation before thresholding.
type result struct {
	profitPercent float64
	direction     domain.Direction
	tradeSequence string
	maxTradable   float64
	prices        []domain.SymbolPrice
}

// Evaluate runs the route and returns an opportunity when its best-direction
// profit meets the configured threshold.
func (e *Evaluator) Evaluate(r route.Route) (domain.Opportunity, bool) {
	res, ok := e.evaluate(r)
	if !ok || res.profitPercent < e.cfg.ThresholdPercent {
		return domain.Opportunity{}, false
	}
	return domain.Opportunity{
		ID:                  uuid.Must(uuid.NewRandom()).String(),
		RouteID:             r.ID(),
		RouteName:           r.Name(),
		Direction:           res.direction,
		TradeSequence:       res.tradeSequence,
		ProfitPercent:       res.profitPercent,
		MaxTradableAmount:   res.maxTradable,
		MaxTradableCurrency: domain.BaseAsset,
		Prices:              res.prices,
		DetectedAt:          e.now(),
	}, true
}

// CurrentProfit returns the best-direction profit for a route regardless of
// threshold, for display in the monitor. ok is false when the route is not
// evaluable at all.
func (e *Evaluator) CurrentProfit(r route.Route) (float64, bool) {
	res, ok := e.evaluate(r)
	if !ok {
		return 0, false
	}
	return res.profitPercent, true
}

func (e *Evaluator) evaluate(r route.Route) (result, bool) {
	snaps, ok := e.gatedSnapshots(r.Symbols())
	if !ok {
		return result{}, false
	}
	switch r.Kind {
	case route.TwoLeg:
		return evaluateTwoLeg(r, snaps)
	case route.DirectStable:
		return evaluateDirectStable(r, snaps)
	case route.ThreeLeg:
		return evaluateThreeLeg(r, snaps)
	default:
		return result{}, false
	}
}

// gatedSnapshots fetches a snapshot for every referenced symbol and applies
// the validity gates: present, has data, finite positive prices within the
// reasonable cap, bid <= ask, and fresh within MaxAgeMS.
func (e *Evaluator) gatedSnapshots(symbols []string) (map[string]domain.TopOfBook, bool) {
	nowMS := e.now().UnixMilli()
	snaps := make(map[string]domain.TopOfBook, len(symbols))
	for _, sym := range symbols {
		snap, ok := e.state.GetSnapshot(sym)
		if !ok || !snap.Valid() {
			return nil, false
		}
		if snap.BidPrice > e.cfg.MaxReasonablePrice || snap.AskPrice > e.cfg.MaxReasonablePrice {
			return nil, false
		}
		if nowMS-snap.LastUpdateMS > e.cfg.MaxAgeMS {
			return nil, false
		}
		snaps[sym] = snap
	}
	return snaps, true
}

func evaluateTwoLeg(r route.Route, snaps map[string]domain.TopOfBook) (result, bool) {
	arb := snaps[r.ArbPair]
	cross := snaps[r.CrossPair]
	direct := snaps[directPair]

	// Forward: buy implied, sell direct.
	fwdCost := arb.AskPrice * cross.AskPrice
	fwdProfit, fwdOK := profitPercent(direct.BidPrice, fwdCost)

	// Reverse: buy direct, sell implied.
	revProceeds := arb.BidPrice * cross.BidPrice
	revProfit, revOK := profitPercent(revProceeds, direct.AskPrice)

	if !fwdOK && !revOK {
		return result{}, false
	}

	res := result{prices: routePrices(r, snaps)}
	if fwdOK && (!revOK || fwdProfit >= revProfit) {
		res.profitPercent = fwdProfit
		res.direction = domain.DirectionForward
		res.tradeSequence = "Buy " + r.ArbPair + " -> Buy " + r.CrossPair + " -> Sell " + directPair
		res.maxTradable = twoLegForwardSize(arb, cross, direct)
	} else {
		res.profitPercent = revProfit
		res.direction = domain.DirectionReverse
		res.tradeSequence = "Buy " + directPair + " -> Sell " + r.ArbPair + " -> Sell " + r.CrossPair
		res.maxTradable = twoLegReverseSize(arb, cross, direct)
	}
	if !sizeOK(res.maxTradable) {
		return result{}, false
	}
	return res, true
}

// twoLegForwardSize bounds the tradable base quantity for a forward two-leg
// trade: the ask depth of the ARB leg, the cross-rate ask depth converted to
// base-equivalent units, and the direct bid depth.
func twoLegForwardSize(arb, cross, direct domain.TopOfBook) float64 {
	step1 := arb.AskQty
	availableCross := step1 * arb.AskPrice
	step2 := math.Min(cross.AskQty, availableCross/cross.AskPrice) / arb.AskPrice
	step3 := math.Min(direct.BidQty, step1)
	return math.Min(step1, math.Min(step2, step3))
}

// twoLegReverseSize bounds the tradable base quantity for a reverse two-leg
// trade across the direct ask, the ARB-leg bid, and the cross-rate bid depth
// in base-equivalent units.
func twoLegReverseSize(arb, cross, direct domain.TopOfBook) float64 {
	step1 := direct.AskQty
	step2 := math.Min(arb.BidQty, step1)
	step3 := math.Min(cross.BidQty, step2*arb.BidPrice) / arb.BidPrice
	return math.Min(step1, math.Min(step2, step3))
}

func evaluateDirectStable(r route.Route, snaps map[string]domain.TopOfBook) (result, bool) {
	stable := snaps[r.StablePair]
	direct := snaps[directPair]

	fwdProfit, fwdOK := profitPercent(direct.BidPrice, stable.AskPrice)
	revProfit, revOK := profitPercent(stable.BidPrice, direct.AskPrice)
	if !fwdOK && !revOK {
		return result{}, false
	}

	res := result{prices: routePrices(r, snaps)}
	if fwdOK && (!revOK || fwdProfit >= revProfit) {
		res.profitPercent = fwdProfit
		res.direction = domain.DirectionForward
		res.tradeSequence = "Buy " + r.StablePair + " -> Sell " + directPair
		res.maxTradable = math.Min(stable.AskQty, direct.BidQty)
	} else {
		res.profitPercent = revProfit
		res.direction = domain.DirectionReverse
		res.tradeSequence = "Buy " + directPair + " -> Sell " + r.StablePair
		res.maxTradable = math.Min(direct.AskQty, stable.BidQty)
	}
	if !sizeOK(res.maxTradable) {
		return result{}, false
	}
	return res, true
}

func evaluateThreeLeg(r route.Route, snaps map[string]domain.TopOfBook) (result, bool) {
	start := snaps[r.StartPair]
	middle := snaps[r.MiddlePair]
	final := snaps[r.FinalPair]
	comparison := snaps[domain.QuoteCurrency(r.StartPair)+"/USDT"]

	// One unit of the starting quote currency buys arbQty base, which sells
	// through the middle and final legs back into USDT.
	arbQty := 1.0 / start.AskPrice
	midQty := arbQty * middle.BidPrice
	finalUSDT := midQty * final.BidPrice
	initialUSDT := comparison.AskPrice

	profit, ok := profitPercent(finalUSDT, initialUSDT)
	if !ok {
		return result{}, false
	}

	res := result{
		profitPercent: profit,
		direction:     domain.DirectionForward,
		tradeSequence: "Buy " + r.StartPair + " -> Sell " + r.MiddlePair + " -> Sell " + r.FinalPair,
		prices:        routePrices(r, snaps),
	}

	step1 := start.AskQty
	step2 := math.Min(middle.BidQty, step1)
	step3 := math.Min(final.BidQty, step2*middle.BidPrice) / middle.BidPrice
	res.maxTradable = math.Min(step1, math.Min(step2, step3))
	if !sizeOK(res.maxTradable) {
		return result{}, false
	}
	return res, true
}

// profitPercent computes (proceeds/cost - 1) * 100, rejecting degenerate
// inputs and intermediates.
func profitPercent(proceeds, cost float64) (float64, bool) {
	if !finitePositive(proceeds) || !finitePositive(cost) {
		return 0, false
	}
	p := (proceeds/cost - 1.0) * 100.0
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false
	}
	return p, true
}

func sizeOK(qty float64) bool {
	return finitePositive(qty)
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// routePrices collects the referenced top-of-book prices in the route's
// symbol order for display and audit.
func routePrices(r route.Route, snaps map[string]domain.TopOfBook) []domain.SymbolPrice {
	symbols := r.Symbols()
	out := make([]domain.SymbolPrice, 0, len(symbols))
	for _, sym := range symbols {
		snap := snaps[sym]
		out = append(out, domain.SymbolPrice{Symbol: sym, Bid: snap.BidPrice, Ask: snap.AskPrice})
	}
	return out
}
