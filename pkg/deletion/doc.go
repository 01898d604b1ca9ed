// Package deletion implements cascading collection deletion.
//
// Deleting a collection removes its documents, the hosted media assets that
// those documents reference, and the collection definition. The stores share
// no transaction, so the order of stages is the consistency mechanism:
//
//  1. authenticate the caller
//  2. load the collection definition
//  3. list every document
//  4. extract media publicIds from media-typed fields
//  5. delete assets in chunks, best-effort (failures become Warnings)
//  6. delete documents in atomic batches (failure aborts, definition kept)
//  7. delete the collection definition
//
// A failure at stage 6 leaves the definition in place so the whole operation
// can be retried. Once stage 6 starts, cancellation of the caller's context
// is ignored.
//
//	o, err := deletion.NewOrchestrator(deletion.Config{
//		Verifier:  verifier,
//		Registry:  registry,
//		Documents: documents,
//		Assets:    assets,
//	})
//	res, err := o.DeleteCollection(ctx, deletion.Request{Token: token, Slug: "posts"})
//	switch {
//	case errors.Is(err, deletion.ErrUnauthenticated): // 401
//	case errors.Is(err, deletion.ErrNotFound): // 404
//	}
package deletion
