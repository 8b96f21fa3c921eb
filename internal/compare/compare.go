package compare

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Alias1177/Scorecard/internal/record"
	"github.com/Alias1177/Scorecard/internal/scorecard"
	"github.com/Alias1177/Scorecard/models"
)

// Run is one named prediction set to evaluate: a prediction series and
// the outcome series it is aligned with.
type Run struct {
	Pred   models.Series
	Actual models.Series
}

// Compare builds and scores each named run independently and collects
// the whole-set scorecards into a comparison table. There is no
// cross-run computation; deltas between runs are the caller's
// business. Runs are evaluated concurrently, each writing only its own
// slot; a structural build failure in any run fails the whole compare
// with the run name attached.
func Compare(ctx context.Context, calc *scorecard.Calculator, runs map[string]Run, workers int) (models.ComparisonTable, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	names := make([]string, 0, len(runs))
	for name := range runs {
		names = append(names, name)
	}
	sort.Strings(names)

	cards := make([]*models.Scorecard, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		i, name := i, name
		run := runs[name]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("run %q: %w", name, err)
			}
			records, diag, err := record.Build(run.Pred, run.Actual)
			if err != nil {
				return fmt.Errorf("run %q: %w", name, err)
			}
			log.Info().
				Str("run", name).
				Int("records", len(records)).
				Int("dropped", diag.Dropped()).
				Msg("run evaluated")
			cards[i] = calc.Calculate(records)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := make(models.ComparisonTable, len(names))
	for i, name := range names {
		table[name] = cards[i]
	}
	return table, nil
}
