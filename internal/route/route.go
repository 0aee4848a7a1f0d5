// Package route defines the static catalog of evaluable trade paths. The
// catalog is constant for the process lifetime; adding a route family means a
// new Kind and one new evaluator arm.
package route

import "github.com/alanyoungcy/arbot/internal/domain"

// Kind tags the route family.
type Kind int

const (
	// TwoLeg trades ARB through one cross rate, e.g. ARB/BTC x BTC/USDT,
	// against the direct ARB/USDT book. Evaluated in both directions.
	TwoLeg Kind = iota
	// DirectStable compares an ARB/stablecoin book against ARB/USDT.
	// Evaluated in both directions.
	DirectStable
	// ThreeLeg starts from one unit of a non-USD quote currency, e.g.
	// ARB/EUR -> ARB/BTC -> BTC/USDT, compared against QUOTE/USDT.
	// Single direction.
	ThreeLeg
)

// directPair is the direct book every route is ultimately priced against.
const directPair = domain.BaseAsset + "/USDT"

// Route is one entry of the catalog. The populated pair fields depend on Kind.
type Route struct {
	Kind Kind

	// TwoLeg
	ArbPair   string // e.g. ARB/BTC
	CrossPair string // e.g. BTC/USDT

	// DirectStable
	StablePair string // e.g. ARB/FDUSD

	// ThreeLeg
	StartPair  string // e.g. ARB/EUR
	MiddlePair string // e.g. ARB/BTC
	FinalPair  string // e.g. BTC/USDT
}

// ID returns a stable identifier for logs and sink records.
func (r Route) ID() string {
	switch r.Kind {
	case TwoLeg:
		return r.ArbPair + ">" + r.CrossPair
	case DirectStable:
		return r.StablePair + ">" + directPair
	case ThreeLeg:
		return r.StartPair + ">" + r.MiddlePair + ">" + r.FinalPair
	default:
		return "unknown"
	}
}

// Name returns the human-readable route name shown in the monitor and sinks.
func (r Route) Name() string {
	switch r.Kind {
	case TwoLeg:
		return r.ArbPair + " -> " + r.CrossPair
	case DirectStable:
		return r.StablePair + " vs " + directPair
	case ThreeLeg:
		return r.StartPair + " -> " + r.MiddlePair + " -> " + r.FinalPair
	default:
		return "unknown"
	}
}

// Symbols returns every book the route references, including the direct
// ARB/USDT book and, for ThreeLeg, the QUOTE/USDT comparison leg.
func (r Route) Symbols() []string {
	switch r.Kind {
	case TwoLeg:
		return []string{r.ArbPair, r.CrossPair, directPair}
	case DirectStable:
		return []string{r.StablePair, directPair}
	case ThreeLeg:
		comparison := domain.QuoteCurrency(r.StartPair) + "/USDT"
		return []string{r.StartPair, r.MiddlePair, r.FinalPair, comparison}
	default:
		return nil
	}
}

// catalog holds every evaluable route in a fixed order so that the
// best-opportunity tie-break is deterministic.
var catalog = []Route{
	{Kind: TwoLeg, ArbPair: "ARB/BTC", CrossPair: "BTC/USDT"},
	{Kind: TwoLeg, ArbPair: "ARB/ETH", CrossPair: "ETH/USDT"},
	{Kind: TwoLeg, ArbPair: "ARB/EUR", CrossPair: "EUR/USDT"},
	{Kind: TwoLeg, ArbPair: "ARB/TRY", CrossPair: "TRY/USDT"},
	{Kind: DirectStable, StablePair: "ARB/FDUSD"},
	{Kind: DirectStable, StablePair: "ARB/USDC"},
	{Kind: DirectStable, StablePair: "ARB/TUSD"},
	{Kind: ThreeLeg, StartPair: "ARB/EUR", MiddlePair: "ARB/BTC", FinalPair: "BTC/USDT"},
	{Kind: ThreeLeg, StartPair: "ARB/EUR", MiddlePair: "ARB/ETH", FinalPair: "ETH/USDT"},
	{Kind: ThreeLeg, StartPair: "ARB/TRY", MiddlePair: "ARB/BTC", FinalPair: "BTC/USDT"},
	{Kind: ThreeLeg, StartPair: "ARB/TRY", MiddlePair: "ARB/ETH", FinalPair: "ETH/USDT"},
}

// All returns the full catalog in evaluation order. The returned slice is a
// copy; callers may not mutate the catalog.
func All() []Route {
	out := make([]Route, len(catalog))
	copy(out, catalog)
	return out
}
