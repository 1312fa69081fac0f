package resilience

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"
)

// GatherReport lists the keys whose policy returned an error.
type GatherReport[K comparable] struct {
	Failed []K
	Errs   map[K]error
}

// OK reports whether every key produced a result.
func (r GatherReport[K]) OK() bool { return len(r.Failed) == 0 }

// Gather runs one policy per key concurrently and concatenates the successful
// results in key order. A failed key contributes nothing; the others are kept.
func Gather[K comparable, T any](ctx context.Context, name string, keys []K, build func(K) Policy[[]T]) ([]T, GatherReport[K]) {
	results := make([][]T, len(keys))
	errs := make([]error, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			v, _, err := build(key).Do(gctx)
			results[i], errs[i] = v, err
			// Failures are reported per key, never through the group.
			return nil
		})
	}
	g.Wait()

	report := GatherReport[K]{Errs: map[K]error{}}
	var merged []T
	for i, key := range keys {
		if errs[i] != nil {
			report.Failed = append(report.Failed, key)
			report.Errs[key] = errs[i]
			continue
		}
		merged = append(merged, results[i]...)
	}
	if !report.OK() {
		log.Printf("[policy] %s: %d of %d keys failed", name, len(report.Failed), len(keys))
	}
	return merged, report
}
