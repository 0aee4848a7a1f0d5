package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/arbot/internal/domain"
)

type fakeSender struct {
	name     string
	fail     bool
	titles   []string
	messages []string
}

func (f *fakeSender) Name() string { return f.name }

func (f *fakeSender) Send(ctx context.Context, title, message string) error {
	if f.fail {
		return errors.New("channel down")
	}
	f.titles = append(f.titles, title)
	f.messages = append(f.messages, message)
	return nil
}

func testOpportunity(profit float64) domain.Opportunity {
	return domain.Opportunity{
		ID:                  "id-1",
		RouteName:           "ARB/FDUSD vs ARB/USDT",
		Direction:           domain.DirectionForward,
		TradeSequence:       "Buy ARB/FDUSD -> Sell ARB/USDT",
		ProfitPercent:       profit,
		MaxTradableAmount:   300,
		MaxTradableCurrency: "ARB",
		Prices: []domain.SymbolPrice{
			{Symbol: "ARB/FDUSD", Bid: 0.499, Ask: 0.500},
		},
		DetectedAt: time.UnixMilli(1_700_000_000_000),
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAlerterFormatsAndDispatches(t *testing.T) {
	sender := &fakeSender{name: "telegram"}
	a := NewAlerter([]Sender{sender}, 0.10, quietLogger())

	require.NoError(t, a.Emit(context.Background(), testOpportunity(0.40)))

	require.Len(t, sender.titles, 1)
	assert.Contains(t, sender.titles[0], "0.4000%")
	assert.Contains(t, sender.titles[0], "ARB/FDUSD vs ARB/USDT")
	assert.Contains(t, sender.messages[0], "Buy ARB/FDUSD -> Sell ARB/USDT")
	assert.Contains(t, sender.messages[0], "Max size: 300.0000 ARB")
}

func TestAlerterFiltersBelowMinProfit(t *testing.T) {
	sender := &fakeSender{name: "telegram"}
	a := NewAlerter([]Sender{sender}, 0.50, quietLogger())

	require.NoError(t, a.Emit(context.Background(), testOpportunity(0.40)))
	assert.Empty(t, sender.titles)
}

func TestAlerterContinuesPastFailingSender(t *testing.T) {
	failing := &fakeSender{name: "discord", fail: true}
	working := &fakeSender{name: "telegram"}
	a := NewAlerter([]Sender{failing, working}, 0.10, quietLogger())

	err := a.Emit(context.Background(), testOpportunity(0.40))
	assert.Error(t, err, "the fan-out reports the failure upstream")
	assert.Len(t, working.titles, 1, "remaining senders still receive the alert")
}
