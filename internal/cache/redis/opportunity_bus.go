package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// streamMaxLen is the approximate maximum length for the opportunity stream,
// enforced via XADD MAXLEN ~.
const streamMaxLen int64 = 10000

// OpportunityBus fans detector output into Redis: Pub/Sub for ephemeral
// subscribers and a capped Stream for consumers that need replay.
type OpportunityBus struct {
	rdb *redis.Client
}

// NewOpportunityBus creates an OpportunityBus backed by the given Client.
func NewOpportunityBus(c *Client) *OpportunityBus {
	return &OpportunityBus{rdb: c.Underlying()}
}

// Publish sends a serialized opportunity to a Pub/Sub channel.
func (b *OpportunityBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

// StreamAppend appends a serialized opportunity to a Redis stream with
// approximate trimming at streamMaxLen entries.
func (b *OpportunityBus) StreamAppend(ctx context.Context, stream string, payload []byte) error {
	args := &redis.XAddArgs{
		Stream: stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"payload": payload,
		},
	}
	if err := b.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis: stream append %s: %w", stream, err)
	}
	return nil
}
