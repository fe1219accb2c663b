package process

import (
	"context"
	"fmt"

	"github.com/exatrkx/trackgraph/engine/domain"
	"github.com/exatrkx/trackgraph/pkg/fn"
)

// Loader fetches one event's raw tables; implemented by engine/dataset.
type Loader interface {
	LoadEvent(ctx context.Context, ref domain.EventRef) (domain.Event, error)
}

// ProcessBatch fans one task per event reference across a bounded worker
// pool. Each worker loads and processes its event independently; results
// come back in input order. Any failing event fails the whole batch.
func (b *Builder) ProcessBatch(ctx context.Context, loader Loader, refs []domain.EventRef, workers int) ([]EventResult, error) {
	results := fn.ParMapResult(refs, workers, func(ref domain.EventRef) fn.Result[EventResult] {
		ev, err := loader.LoadEvent(ctx, ref)
		if err != nil {
			return fn.Errf[EventResult]("process: load event %d: %w", ref.ID, err)
		}
		res, err := b.ProcessEvent(ctx, ev)
		if err != nil {
			return fn.Errf[EventResult]("process: event %d: %w", ref.ID, err)
		}
		return fn.Ok(res)
	})
	out, err := fn.Collect(results).Unwrap()
	if err != nil {
		return nil, fmt.Errorf("process: batch: %w", err)
	}
	return out, nil
}
