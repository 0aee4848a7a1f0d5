package sink

import (
	"context"
	"fmt"

	cacheredis "github.com/alanyoungcy/arbot/internal/cache/redis"
	"github.com/alanyoungcy/arbot/internal/domain"
)

const (
	opportunityChannel = "arbot:opportunities"
	opportunityStream  = "arbot:opportunities:stream"
)

// RedisSink publishes each opportunity to a Pub/Sub channel and appends it to
// a capped stream.
type RedisSink struct {
	bus *cacheredis.OpportunityBus
}

// NewRedisSink creates a RedisSink over the given bus.
func NewRedisSink(bus *cacheredis.OpportunityBus) *RedisSink {
	return &RedisSink{bus: bus}
}

// Name returns the sink identifier.
func (s *RedisSink) Name() string { return "redis" }

// Emit publishes the serialized record to both the channel and the stream.
func (s *RedisSink) Emit(ctx context.Context, opp domain.Opportunity) error {
	payload, err := MarshalOpportunity(opp)
	if err != nil {
		return fmt.Errorf("redis sink: marshal: %w", err)
	}
	if err := s.bus.Publish(ctx, opportunityChannel, payload); err != nil {
		return fmt.Errorf("redis sink: %w", err)
	}
	if err := s.bus.StreamAppend(ctx, opportunityStream, payload); err != nil {
		return fmt.Errorf("redis sink: %w", err)
	}
	return nil
}
