package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"wlbind/internal/diag"
)

// forEachDocument runs fn for indices [0, n) on at most jobs goroutines.
// Each call gets its own bag; bags come back in index order so merged
// diagnostics do not depend on scheduling.
func forEachDocument(ctx context.Context, n, jobs, maxDiagnostics int, fn func(ctx context.Context, i int, bag *diag.Bag)) ([]*diag.Bag, error) {
	bags := make([]*diag.Bag, n)
	if n == 0 {
		return bags, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, n))
	for i := range n {
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// индекс i уникален, мьютекс не нужен
			bags[i] = diag.NewBag(maxDiagnostics)
			fn(gctx, i, bags[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return bags, err
	}
	return bags, nil
}

// mergeBags appends the per-document bags to dst in order.
func mergeBags(dst *diag.Bag, bags []*diag.Bag) {
	for _, b := range bags {
		if b != nil {
			dst.Merge(b)
		}
	}
}
