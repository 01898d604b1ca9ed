package deletion

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/media"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
)

// BatchEraser removes documents in chunks no larger than the store's batch
// limit. Each chunk commits atomically; chunks are independent.
type BatchEraser struct {
	store  storage.DocumentStore
	logger logrus.FieldLogger
}

// NewBatchEraser creates a batch eraser over store
func NewBatchEraser(store storage.DocumentStore, logger logrus.FieldLogger) *BatchEraser {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BatchEraser{store: store, logger: logger}
}

// Erase deletes ids from collection sequentially, one batch per chunk, and
// stops at the first failing batch. It returns the number of committed
// batches. Empty input commits nothing.
func (e *BatchEraser) Erase(ctx context.Context, collection string, ids []string) (int, error) {
	limit := e.store.BatchLimit()
	if limit <= 0 {
		limit = storage.DefaultDocumentBatchLimit
	}

	chunks := media.Chunk(ids, limit)
	for i, chunk := range chunks {
		if err := e.store.DeleteBatch(ctx, collection, chunk); err != nil {
			return i, fmt.Errorf("document batch %d of %d (%d documents): %w", i+1, len(chunks), len(chunk), err)
		}
		e.logger.WithFields(logrus.Fields{
			"collection": collection,
			"batch":      i + 1,
			"batches":    len(chunks),
			"size":       len(chunk),
		}).Debug("document batch committed")
	}
	return len(chunks), nil
}
