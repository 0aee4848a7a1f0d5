package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/arbot/internal/engine"
	"github.com/alanyoungcy/arbot/internal/feed"
	"github.com/alanyoungcy/arbot/internal/ui"
)

// DetectMode starts the ingestion feed and the detector, plus the terminal
// monitor when withMonitor is set. It blocks until ctx is cancelled or a
// goroutine fails.
func (a *App) DetectMode(ctx context.Context, deps *Dependencies, withMonitor bool) error {
	a.logger.InfoContext(ctx, "starting detect mode", slog.Bool("monitor", withMonitor))

	if a.cfg.Binance.VerifySymbols {
		if err := deps.REST.VerifySymbols(ctx, deps.State.Symbols()); err != nil {
			// A symbol that is temporarily halted should not keep the
			// detector from watching the rest of the universe.
			a.logger.WarnContext(ctx, "symbol verification failed",
				slog.String("error", err.Error()),
			)
		}
	}

	evaluator := engine.NewEvaluator(deps.State, engine.EvaluatorConfig{
		ThresholdPercent:   a.cfg.Detector.ThresholdPercent,
		MaxAgeMS:           a.cfg.Detector.MaxAgeMS,
		MaxReasonablePrice: a.cfg.Detector.MaxReasonablePrice,
	}, nil)

	detector := engine.NewDetector(deps.State, evaluator, deps.Sinks, engine.DetectorConfig{
		TickInterval: time.Duration(a.cfg.Detector.TickIntervalMS) * time.Millisecond,
		StaleAgeMS:   a.cfg.Detector.StaleAgeMS,
	}, nil, a.logger)

	marketFeed := feed.New(feed.Config{
		WSEndpoint:  a.cfg.Binance.WSEndpoint,
		DepthLevels: a.cfg.Binance.DepthLevels,
		SeedDepth:   a.cfg.Binance.SeedDepth,
	}, deps.State, deps.REST, a.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return marketFeed.Run(ctx) })
	g.Go(func() error { return detector.Run(ctx) })

	if withMonitor {
		monitor := ui.New(
			deps.State, evaluator, detector, os.Stdout,
			time.Duration(a.cfg.Detector.TickIntervalMS)*time.Millisecond,
			a.cfg.Detector.StaleAgeMS,
			nil,
		)
		g.Go(func() error { return monitor.Run(ctx) })
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	return err
}
