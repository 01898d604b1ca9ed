package deletion

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/media"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/observability"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
)

// assetSweep deletes hosted assets best-effort. Failures become warnings.
type assetSweep struct {
	store       storage.AssetStore
	concurrency int
	logger      logrus.FieldLogger
}

type sweepResult struct {
	deleted  int
	warnings []Warning
}

func (s *assetSweep) run(ctx context.Context, ids []string) sweepResult {
	limit := s.store.BatchLimit()
	if limit <= 0 {
		limit = storage.DefaultAssetBatchLimit
	}

	var (
		mu  sync.Mutex
		out sweepResult
	)

	g := new(errgroup.Group)
	g.SetLimit(max(s.concurrency, 1))

	for i, chunk := range media.Chunk(ids, limit) {
		g.Go(func() error {
			deleted, warnings := s.deleteChunk(ctx, i, chunk)

			mu.Lock()
			out.deleted += deleted
			out.warnings = append(out.warnings, warnings...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(out.warnings, func(i, j int) bool {
		if out.warnings[i].Chunk != out.warnings[j].Chunk {
			return out.warnings[i].Chunk < out.warnings[j].Chunk
		}
		return out.warnings[i].PublicIDs[0] < out.warnings[j].PublicIDs[0]
	})
	return out
}

func (s *assetSweep) deleteChunk(ctx context.Context, index int, ids []string) (deleted int, warnings []Warning) {
	defer func() {
		if perr := observability.MustRecover(recover()); perr != nil {
			s.logger.WithError(perr).WithField("chunk", index).Error("asset chunk panicked")
			deleted, warnings = 0, []Warning{{Chunk: index, PublicIDs: ids, Message: perr.Error()}}
		}
	}()

	if err := ctx.Err(); err != nil {
		return 0, []Warning{{Chunk: index, PublicIDs: ids, Code: "Skipped", Message: err.Error()}}
	}

	outcomes, err := s.store.BulkDelete(ctx, ids)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"chunk": index,
			"size":  len(ids),
		}).Warn("asset chunk deletion failed")
		return 0, []Warning{{Chunk: index, PublicIDs: ids, Message: err.Error()}}
	}

	for _, id := range ids {
		outcome, ok := outcomes[id]
		switch {
		case !ok:
			warnings = append(warnings, Warning{Chunk: index, PublicIDs: []string{id}, Code: "NoResult", Message: "asset host reported no outcome"})
		case !outcome.Deleted:
			warnings = append(warnings, Warning{Chunk: index, PublicIDs: []string{id}, Code: outcome.Code, Message: outcome.Message})
		default:
			deleted++
		}
	}
	return deleted, warnings
}
