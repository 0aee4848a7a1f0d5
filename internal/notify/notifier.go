// Package notify pushes opportunity alerts to operator channels (Telegram,
// Discord). Alerts are dispatched to every registered sender; a single sender
// failure does not prevent delivery to the rest.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/arbot/internal/domain"
)

// Sender is one notification channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Alerter formats emitted opportunities into operator alerts and dispatches
// them to all senders. Opportunities below MinProfitPercent are dropped so a
// low detection threshold does not flood the channels.
type Alerter struct {
	senders          []Sender
	minProfitPercent float64
	logger           *slog.Logger
}

// NewAlerter creates an Alerter over the given senders.
func NewAlerter(senders []Sender, minProfitPercent float64, logger *slog.Logger) *Alerter {
	return &Alerter{
		senders:          senders,
		minProfitPercent: minProfitPercent,
		logger:           logger.With(slog.String("component", "alerter")),
	}
}

// Name returns the sink identifier.
func (a *Alerter) Name() string { return "notify" }

// Emit formats the opportunity and dispatches it to every sender. Errors from
// individual senders are logged and collected; delivery continues regardless.
func (a *Alerter) Emit(ctx context.Context, opp domain.Opportunity) error {
	if opp.ProfitPercent < a.minProfitPercent {
		return nil
	}
	title := fmt.Sprintf("Arbitrage %.4f%% — %s", opp.ProfitPercent, opp.RouteName)
	message := formatAlert(opp)

	var errs []string
	for _, s := range a.senders {
		if err := s.Send(ctx, title, message); err != nil {
			a.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %s", strings.Join(errs, "; "))
	}
	return nil
}

func formatAlert(opp domain.Opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", opp.TradeSequence)
	fmt.Fprintf(&b, "Profit: %.4f%%\n", opp.ProfitPercent)
	fmt.Fprintf(&b, "Max size: %.4f %s\n", opp.MaxTradableAmount, opp.MaxTradableCurrency)
	for _, p := range opp.Prices {
		fmt.Fprintf(&b, "%s  bid %.8f / ask %.8f\n", p.Symbol, p.Bid, p.Ask)
	}
	return b.String()
}
