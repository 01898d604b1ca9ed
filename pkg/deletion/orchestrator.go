package deletion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/auth"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/contextkeys"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/media"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/observability"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
)

// DefaultAssetConcurrency bounds concurrent asset chunk deletions
const DefaultAssetConcurrency = 4

// Request asks for the cascading deletion of one collection
type Request struct {
	Token string
	Slug  string
}

// Config wires an Orchestrator. Assets may be nil when no asset host is
// configured; media references are then reported as warnings.
type Config struct {
	Verifier         auth.TokenVerifier
	Registry         storage.SchemaRegistry
	Documents        storage.DocumentStore
	Assets           storage.AssetStore
	AssetConcurrency int
	Logger           logrus.FieldLogger
	Metrics          *observability.Metrics
	Tracer           trace.Tracer
}

// Orchestrator is the only path that destroys a collection
type Orchestrator struct {
	verifier  auth.TokenVerifier
	registry  storage.SchemaRegistry
	documents storage.DocumentStore
	eraser    *BatchEraser
	assets    *assetSweep
	logger    logrus.FieldLogger
	metrics   *observability.Metrics
	tracer    trace.Tracer
}

// NewOrchestrator validates cfg and builds an orchestrator
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	switch {
	case cfg.Verifier == nil:
		return nil, errors.New("deletion: token verifier is required")
	case cfg.Registry == nil:
		return nil, errors.New("deletion: schema registry is required")
	case cfg.Documents == nil:
		return nil, errors.New("deletion: document store is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("headless/deletion")
	}
	if cfg.AssetConcurrency <= 0 {
		cfg.AssetConcurrency = DefaultAssetConcurrency
	}

	o := &Orchestrator{
		verifier:  cfg.Verifier,
		registry:  cfg.Registry,
		documents: cfg.Documents,
		eraser:    NewBatchEraser(cfg.Documents, cfg.Logger),
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		tracer:    cfg.Tracer,
	}
	if cfg.Assets != nil {
		o.assets = &assetSweep{store: cfg.Assets, concurrency: cfg.AssetConcurrency, logger: cfg.Logger}
	}
	return o, nil
}

// DeleteCollection removes every document of the collection, every hosted
// asset its media fields reference, and finally the collection definition.
//
// Asset failures are reported as Result warnings. Any other failure returns
// an *Error. The caller's context is honoured until document deletion
// starts; from then on the cascade runs to completion.
func (o *Orchestrator) DeleteCollection(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "deletion.DeleteCollection",
		trace.WithAttributes(attribute.String("collection.slug", req.Slug)))
	defer span.End()

	logger := o.logger.WithField("collection", req.Slug)
	if requestID := contextkeys.GetRequestID(ctx); requestID != "" {
		logger = logger.WithField("request_id", requestID)
	}

	res, err := o.cascade(ctx, req, logger)

	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		o.metrics.ObserveDeletion(outcome, 0, 0, 0, 0)
		entry := logger.WithError(err).WithField("duration_ms", time.Since(start).Milliseconds())
		if KindOf(err) == KindInternal {
			entry.Error("collection deletion failed")
		} else {
			entry.Info("collection deletion rejected")
		}
		return nil, err
	}

	o.metrics.ObserveDeletion(outcome, res.DocumentsDeleted, res.Batches, res.AssetsDeleted, len(res.Warnings))
	span.SetAttributes(
		attribute.Int("documents.deleted", res.DocumentsDeleted),
		attribute.Int("assets.deleted", res.AssetsDeleted),
		attribute.Int("warnings", len(res.Warnings)),
	)
	logger.WithFields(logrus.Fields{
		"documents":   res.DocumentsDeleted,
		"batches":     res.Batches,
		"assets":      res.AssetsDeleted,
		"warnings":    len(res.Warnings),
		"deleted_by":  res.DeletedBy,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("collection deleted")
	return res, nil
}

func (o *Orchestrator) cascade(ctx context.Context, req Request, logger logrus.FieldLogger) (*Result, error) {
	res := &Result{Slug: req.Slug, Warnings: []Warning{}}

	// 1. Authenticate
	var identity *auth.Identity
	err := o.stage(ctx, StageAuthenticate, func(ctx context.Context) error {
		var err error
		identity, err = o.verifier.Verify(ctx, req.Token)
		return err
	})
	if err == nil && identity == nil {
		err = auth.ErrInvalidToken
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &Error{Kind: KindCanceled, Stage: StageAuthenticate, Err: ctxErr}
		}
		return nil, &Error{Kind: KindUnauthenticated, Stage: StageAuthenticate, Err: err}
	}
	res.DeletedBy = identity.Subject

	// 2. Load schema
	if req.Slug == "" {
		return nil, &Error{Kind: KindNotFound, Stage: StageLoadSchema, Err: errors.New("empty slug")}
	}
	cfg, err := stageValue(o, ctx, StageLoadSchema, func(ctx context.Context) (*schema.CollectionConfig, error) {
		return o.registry.GetCollection(ctx, req.Slug)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &Error{Kind: KindNotFound, Stage: StageLoadSchema, Err: err}
		}
		return nil, o.failure(ctx, StageLoadSchema, err)
	}

	// 3. Enumerate documents
	docs, err := stageValue(o, ctx, StageEnumerate, func(ctx context.Context) ([]schema.Document, error) {
		return o.documents.ListDocuments(ctx, cfg.Slug)
	})
	if err != nil {
		return nil, o.failure(ctx, StageEnumerate, err)
	}

	// 4. Extract media references
	var publicIDs []string
	if len(cfg.MediaFields()) > 0 {
		_ = o.stage(ctx, StageExtract, func(context.Context) error {
			publicIDs = media.ExtractPublicIDs(cfg, docs).Sorted()
			return nil
		})
	}
	res.AssetsRequested = len(publicIDs)

	// 5. Delete media assets, best-effort
	if len(publicIDs) > 0 {
		_ = o.stage(ctx, StageAssets, func(ctx context.Context) error {
			if o.assets == nil {
				res.warn(Warning{PublicIDs: publicIDs, Code: "NotConfigured", Message: "no asset store configured"})
				return nil
			}
			swept := o.assets.run(ctx, publicIDs)
			res.AssetsDeleted = swept.deleted
			for _, w := range swept.warnings {
				res.warn(w)
			}
			return nil
		})
		for _, w := range res.Warnings {
			logger.WithFields(logrus.Fields{
				"chunk":      w.Chunk,
				"public_ids": w.PublicIDs,
				"code":       w.Code,
			}).Warn("asset may have survived deletion: " + w.Message)
		}
	}

	// Last point at which the caller may abandon the cascade
	if err := ctx.Err(); err != nil {
		return nil, &Error{Kind: KindCanceled, Stage: StageDocuments, Err: err}
	}
	committed := context.WithoutCancel(ctx)

	// 6. Delete documents
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	err = o.stage(committed, StageDocuments, func(ctx context.Context) error {
		var err error
		res.Batches, err = o.eraser.Erase(ctx, cfg.Slug, ids)
		return err
	})
	if err != nil {
		o.metrics.StorageError("delete_batch")
		return nil, &Error{Kind: KindInternal, Stage: StageDocuments, Err: err}
	}
	res.DocumentsDeleted = len(ids)

	// 7. Delete schema record
	err = o.stage(committed, StageSchema, func(ctx context.Context) error {
		return o.registry.DeleteCollection(ctx, cfg.Slug)
	})
	if errors.Is(err, storage.ErrNotFound) {
		// A concurrent cascade removed it first; the end state is the same
		logger.Warn("collection definition already removed")
		err = nil
	}
	if err != nil {
		o.metrics.StorageError("delete_collection")
		return nil, &Error{Kind: KindInternal, Stage: StageSchema, Err: err}
	}

	return res, nil
}

// failure classifies an unexpected stage error, preferring cancellation
func (o *Orchestrator) failure(ctx context.Context, stage Stage, err error) error {
	if ctx.Err() != nil {
		return &Error{Kind: KindCanceled, Stage: stage, Err: fmt.Errorf("%w (%v)", ctx.Err(), err)}
	}
	return &Error{Kind: KindInternal, Stage: stage, Err: err}
}

// stage runs fn inside a span and records its duration
func (o *Orchestrator) stage(ctx context.Context, stage Stage, fn func(ctx context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, "deletion."+string(stage))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	o.metrics.ObserveStage(string(stage), time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func stageValue[T any](o *Orchestrator, ctx context.Context, stage Stage, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := o.stage(ctx, stage, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}
