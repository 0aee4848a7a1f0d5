package sink

import (
	"bytes"
	"context"
	"fmt"

	s3blob "github.com/alanyoungcy/arbot/internal/blob/s3"
	"github.com/alanyoungcy/arbot/internal/domain"
)

// ArchiveSink uploads each opportunity record to an S3-compatible store under
// a date-partitioned key, e.g. opportunities/2026/08/05/arbitrage_....json.
type ArchiveSink struct {
	writer *s3blob.Writer
	prefix string
}

// NewArchiveSink creates an ArchiveSink over the given writer. prefix is the
// key prefix inside the bucket; empty means "opportunities".
func NewArchiveSink(writer *s3blob.Writer, prefix string) *ArchiveSink {
	if prefix == "" {
		prefix = "opportunities"
	}
	return &ArchiveSink{writer: writer, prefix: prefix}
}

// Name returns the sink identifier.
func (s *ArchiveSink) Name() string { return "s3" }

// Emit serializes the record and uploads it.
func (s *ArchiveSink) Emit(ctx context.Context, opp domain.Opportunity) error {
	body, err := MarshalOpportunity(opp)
	if err != nil {
		return fmt.Errorf("archive sink: marshal: %w", err)
	}
	key := fmt.Sprintf("%s/%s/%s",
		s.prefix,
		opp.DetectedAt.Format("2006/01/02"),
		Filename(opp),
	)
	if err := s.writer.Put(ctx, key, bytes.NewReader(body), "application/json"); err != nil {
		return fmt.Errorf("archive sink: %w", err)
	}
	return nil
}
