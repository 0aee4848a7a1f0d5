package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/alanyoungcy/arbot/internal/blob/s3"
	cacheredis "github.com/alanyoungcy/arbot/internal/cache/redis"
	"github.com/alanyoungcy/arbot/internal/config"
	"github.com/alanyoungcy/arbot/internal/domain"
	"github.com/alanyoungcy/arbot/internal/market"
	"github.com/alanyoungcy/arbot/internal/notify"
	"github.com/alanyoungcy/arbot/internal/platform/binance"
	"github.com/alanyoungcy/arbot/internal/sink"
	"github.com/alanyoungcy/arbot/internal/store/postgres"
)

// Dependencies bundles everything the application modes need: the shared
// market state, the exchange clients, and the configured opportunity sinks.
// It is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	State *market.State
	REST  *binance.RESTClient
	Sinks *sink.Fanout
}

// Wire constructs all concrete dependencies from the given configuration and
// returns them with a cleanup function to be called on shutdown.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		State: market.NewState(domain.Universe()),
		REST:  binance.NewRESTClient(),
	}

	var sinks []sink.Sink

	if cfg.Sink.LogEnabled {
		sinks = append(sinks, sink.NewLogSink(logger))
	}

	if cfg.Sink.FileEnabled {
		fileSink, err := sink.NewJSONFileSink(cfg.Sink.FileDir)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: jsonfile sink: %w", err)
		}
		sinks = append(sinks, fileSink)
	}

	// --- Redis opportunity bus (optional) ---
	if cfg.RedisEnabled() {
		redisClient, err := cacheredis.New(ctx, cacheredis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		sinks = append(sinks, sink.NewRedisSink(cacheredis.NewOpportunityBus(redisClient)))
	}

	// --- PostgreSQL persistence (optional) ---
	if cfg.PostgresEnabled() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: migrations: %w", err)
			}
		}
		sinks = append(sinks, sink.NewStoreSink(postgres.NewOpportunityStore(pgClient.Pool())))
	}

	// --- S3 archive (optional) ---
	if cfg.S3Enabled() {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		if err := s3Client.Health(ctx); err != nil {
			logger.WarnContext(ctx, "s3 health check failed, archiving may not work",
				slog.String("error", err.Error()),
			)
		}
		sinks = append(sinks, sink.NewArchiveSink(s3blob.NewWriter(s3Client), cfg.S3.Prefix))
	}

	// --- Operator alerts (optional) ---
	var senders []notify.Sender
	if cfg.TelegramEnabled() {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.DiscordEnabled() {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		sinks = append(sinks, notify.NewAlerter(senders, cfg.Notify.MinProfitPercent, logger))
	}

	deps.Sinks = sink.NewFanout(sinks, logger)
	logger.InfoContext(ctx, "sinks wired", slog.Any("sinks", deps.Sinks.Names()))

	return deps, cleanup, nil
}
