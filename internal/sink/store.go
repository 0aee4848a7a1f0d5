package sink

import (
	"context"
	"fmt"

	"github.com/alanyoungcy/arbot/internal/domain"
	"github.com/alanyoungcy/arbot/internal/store/postgres"
)

// StoreSink persists each opportunity to PostgreSQL.
type StoreSink struct {
	store *postgres.OpportunityStore
}

// NewStoreSink creates a StoreSink over the given store.
func NewStoreSink(store *postgres.OpportunityStore) *StoreSink {
	return &StoreSink{store: store}
}

// Name returns the sink identifier.
func (s *StoreSink) Name() string { return "postgres" }

// Emit inserts the opportunity row.
func (s *StoreSink) Emit(ctx context.Context, opp domain.Opportunity) error {
	if err := s.store.Insert(ctx, opp); err != nil {
		return fmt.Errorf("store sink: %w", err)
	}
	return nil
}
