package deletion

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/auth"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
)

const goodToken = "good-token"

type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if token != goodToken {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Identity{Subject: "ops", Provider: "static"}, nil
}

type fakeRegistry struct {
	mu          sync.Mutex
	collections map[string]*schema.CollectionConfig
	reads       int
	deleteErr   error
}

func newFakeRegistry(cfgs ...*schema.CollectionConfig) *fakeRegistry {
	r := &fakeRegistry{collections: map[string]*schema.CollectionConfig{}}
	for _, c := range cfgs {
		r.collections[c.Slug] = c
	}
	return r
}

func (r *fakeRegistry) GetCollection(_ context.Context, slug string) (*schema.CollectionConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	c, ok := r.collections[slug]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", slug, storage.ErrNotFound)
	}
	return c, nil
}

func (r *fakeRegistry) ListCollections(context.Context) ([]*schema.CollectionConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	var out []*schema.CollectionConfig
	for _, c := range r.collections {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeRegistry) CreateCollection(_ context.Context, cfg *schema.CollectionConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[cfg.Slug] = cfg
	return nil
}

func (r *fakeRegistry) DeleteCollection(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.collections[slug]; !ok {
		return storage.ErrNotFound
	}
	delete(r.collections, slug)
	return nil
}

func (r *fakeRegistry) has(slug string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.collections[slug]
	return ok
}

type fakeDocuments struct {
	mu        sync.Mutex
	docs      map[string]map[string]schema.Document
	limit     int
	batches   [][]string
	failBatch int // 1-based; 0 disables
	listErr   error
	lists     int
	onBatch   func()
}

func newFakeDocuments(limit int) *fakeDocuments {
	return &fakeDocuments{docs: map[string]map[string]schema.Document{}, limit: limit}
}

func (d *fakeDocuments) add(collection string, docs ...schema.Document) {
	if d.docs[collection] == nil {
		d.docs[collection] = map[string]schema.Document{}
	}
	for _, doc := range docs {
		d.docs[collection][doc.ID] = doc
	}
}

func (d *fakeDocuments) ListDocuments(_ context.Context, collection string) ([]schema.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lists++
	if d.listErr != nil {
		return nil, d.listErr
	}
	out := make([]schema.Document, 0, len(d.docs[collection]))
	for _, doc := range d.docs[collection] {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *fakeDocuments) PutDocument(_ context.Context, collection string, doc *schema.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.add(collection, *doc)
	return nil
}

func (d *fakeDocuments) DeleteBatch(ctx context.Context, collection string, ids []string) error {
	if d.onBatch != nil {
		d.onBatch()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ids) > d.limit {
		return storage.ErrBatchTooLarge
	}
	if d.failBatch > 0 && len(d.batches)+1 == d.failBatch {
		return fmt.Errorf("commit failed: deadline exceeded")
	}
	d.batches = append(d.batches, append([]string(nil), ids...))
	for _, id := range ids {
		delete(d.docs[collection], id)
	}
	return nil
}

func (d *fakeDocuments) BatchLimit() int { return d.limit }

func (d *fakeDocuments) count(collection string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.docs[collection])
}

type fakeAssets struct {
	mu      sync.Mutex
	limit   int
	calls   [][]string
	deleted map[string]bool

	// failIDs makes the whole call fail when it contains one of them
	failIDs map[string]bool

	// rejectIDs are reported as not deleted
	rejectIDs map[string]bool
}

func newFakeAssets(limit int) *fakeAssets {
	return &fakeAssets{limit: limit, deleted: map[string]bool{}, failIDs: map[string]bool{}, rejectIDs: map[string]bool{}}
}

func (a *fakeAssets) BulkDelete(_ context.Context, ids []string) (map[string]storage.AssetOutcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(ids) == 0 {
		return map[string]storage.AssetOutcome{}, nil
	}
	if len(ids) > a.limit {
		return nil, storage.ErrBatchTooLarge
	}
	a.calls = append(a.calls, append([]string(nil), ids...))
	for _, id := range ids {
		if a.failIDs[id] {
			return nil, fmt.Errorf("asset host unavailable")
		}
	}
	out := make(map[string]storage.AssetOutcome, len(ids))
	for _, id := range ids {
		if a.rejectIDs[id] {
			out[id] = storage.AssetOutcome{Code: "AccessDenied", Message: "denied"}
			continue
		}
		a.deleted[id] = true
		out[id] = storage.AssetOutcome{Deleted: true}
	}
	return out, nil
}

func (a *fakeAssets) BatchLimit() int { return a.limit }

func (a *fakeAssets) requested() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var all []string
	for _, c := range a.calls {
		all = append(all, c...)
	}
	sort.Strings(all)
	return all
}
