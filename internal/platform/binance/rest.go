package binance

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	gbinance "github.com/adshao/go-binance/v2"

	"github.com/alanyoungcy/arbot/internal/domain"
)

// RESTClient wraps the public (unauthenticated) Binance REST API for the two
// bootstrap calls the detector needs: universe verification and initial depth
// snapshots.
type RESTClient struct {
	client *gbinance.Client
}

// NewRESTClient creates a RESTClient. No API keys are required; both calls
// hit public endpoints.
func NewRESTClient() *RESTClient {
	client := gbinance.NewClient("", "")
	client.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	return &RESTClient{client: client}
}

// VerifySymbols checks that every canonical symbol in the universe is listed
// and trading on the exchange. Returns an error naming the missing symbols.
func (c *RESTClient) VerifySymbols(ctx context.Context, symbols []string) error {
	info, err := c.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return fmt.Errorf("binance: exchange info: %w", err)
	}
	trading := make(map[string]bool, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status == "TRADING" {
			trading[s.Symbol] = true
		}
	}
	var missing []string
	for _, sym := range symbols {
		if !trading[domain.ExchangeSymbol(sym)] {
			missing = append(missing, sym)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("binance: symbols not trading: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DepthSnapshot fetches the current depth ladder for a canonical symbol.
func (c *RESTClient) DepthSnapshot(ctx context.Context, symbol string, limit int) (bids, asks []domain.PriceLevel, err error) {
	depth, err := c.client.NewDepthService().
		Symbol(domain.ExchangeSymbol(symbol)).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("binance: depth %s: %w", symbol, err)
	}
	for _, b := range depth.Bids {
		lvl, err := parseRESTLevel(b.Price, b.Quantity)
		if err != nil {
			return nil, nil, fmt.Errorf("binance: depth %s bids: %w", symbol, err)
		}
		bids = append(bids, lvl)
	}
	for _, a := range depth.Asks {
		lvl, err := parseRESTLevel(a.Price, a.Quantity)
		if err != nil {
			return nil, nil, fmt.Errorf("binance: depth %s asks: %w", symbol, err)
		}
		asks = append(asks, lvl)
	}
	return bids, asks, nil
}

func parseRESTLevel(priceStr, qtyStr string) (domain.PriceLevel, error) {
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return domain.PriceLevel{}, fmt.Errorf("price %q: %w", priceStr, err)
	}
	qty, err := strconv.ParseFloat(qtyStr, 64)
	if err != nil {
		return domain.PriceLevel{}, fmt.Errorf("quantity %q: %w", qtyStr, err)
	}
	return domain.PriceLevel{Price: price, Quantity: qty}, nil
}
