package search

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultBatchSize is used by Deliver when the caller passes a size that is
// not positive.
const DefaultBatchSize = 100

// Sink receives projected documents. AddBatch is additive; nothing becomes
// visible to searchers until Commit.
type Sink interface {
	AddBatch(ctx context.Context, docs []Document) error
	Commit(ctx context.Context) error
}

// Deliver pushes documents to the sink in order, batchSize at a time, and
// commits once after the last batch. A failed batch aborts delivery without
// committing; batches the sink already accepted are not taken back.
func Deliver(ctx context.Context, sink Sink, docs []Document, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := sink.AddBatch(ctx, docs[start:end]); err != nil {
			return fmt.Errorf("search: deliver batch %d-%d: %w", start, end, err)
		}
		if end%1000 == 0 || end == len(docs) {
			slog.Info("search: delivery progress", "delivered", end, "total", len(docs))
		}
	}

	if err := sink.Commit(ctx); err != nil {
		return fmt.Errorf("search: commit: %w", err)
	}
	return nil
}
