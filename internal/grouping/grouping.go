package grouping

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Alias1177/Scorecard/internal/scorecard"
	"github.com/Alias1177/Scorecard/models"
)

// KeyFunc extracts a group key from a record. It must be pure: the
// aggregator may call it from multiple goroutines.
type KeyFunc[K comparable] func(models.Record) K

// Built-in extractors. ByMonth uses the same bucket format the
// monthly report keys use ("2006-01").
func ByYear(r models.Record) string { return r.Key.Time.Format("2006") }

func ByMonth(r models.Record) string { return r.Key.Time.Format("2006-01") }

func ByEntity(r models.Record) string { return r.Key.Entity }

// Partition splits a record set by key, preserving the set's order
// inside every partition so entity-scoped differencing still holds.
func Partition[K comparable](records models.RecordSet, keyFn KeyFunc[K]) map[K]models.RecordSet {
	parts := make(map[K]models.RecordSet)
	for _, r := range records {
		k := keyFn(r)
		parts[k] = append(parts[k], r)
	}
	return parts
}

// Aggregate computes one scorecard per partition. Partitions are
// independent; a key that matches no record is simply absent from the
// result rather than present with an all-NaN scorecard.
func Aggregate[K comparable](calc *scorecard.Calculator, records models.RecordSet, keyFn KeyFunc[K]) models.GroupedScorecard[K] {
	parts := Partition(records, keyFn)
	grouped := make(models.GroupedScorecard[K], len(parts))
	for k, part := range parts {
		grouped[k] = calc.Calculate(part)
	}
	return grouped
}

// AggregateParallel is Aggregate with the per-partition calculations
// fanned out over at most workers goroutines. Each task writes only
// its own slot; the result map is assembled after all tasks finish, so
// the output is identical to the sequential path.
func AggregateParallel[K comparable](ctx context.Context, calc *scorecard.Calculator, records models.RecordSet, keyFn KeyFunc[K], workers int) (models.GroupedScorecard[K], error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	parts := Partition(records, keyFn)
	keys := make([]K, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}

	cards := make([]*models.Scorecard, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, k := range keys {
		i, k := i, k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("group aggregation canceled: %w", err)
			}
			cards[i] = calc.Calculate(parts[k])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	grouped := make(models.GroupedScorecard[K], len(keys))
	for i, k := range keys {
		grouped[k] = cards[i]
	}
	return grouped, nil
}
