package grouping

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Scorecard/internal/record"
	"github.com/Alias1177/Scorecard/internal/scorecard"
	"github.com/Alias1177/Scorecard/models"
)

type obs struct {
	date   time.Time
	entity string
	yPred  float64
	yTrue  float64
}

func buildRecords(t *testing.T, observations []obs) models.RecordSet {
	t.Helper()
	pred := make(models.Series, len(observations))
	actual := make(models.Series, len(observations))
	for _, o := range observations {
		k := models.Key{Time: o.date, Entity: o.entity}
		pred[k] = o.yPred
		actual[k] = o.yTrue
	}
	records, _, err := record.Build(pred, actual)
	require.NoError(t, err)
	return records
}

func date(year, month, d int) time.Time {
	return time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
}

func TestPartitionPreservesCountsAndOrder(t *testing.T) {
	records := buildRecords(t, []obs{
		{date(2024, 1, 1), "EUR/USD", 0.5, 0.3},
		{date(2024, 1, 2), "EUR/USD", -0.1, 0.2},
		{date(2024, 1, 1), "GBP/USD", 0.4, 0.4},
		{date(2024, 1, 2), "GBP/USD", 0.2, -0.6},
	})

	parts := Partition(records, ByEntity)
	require.Len(t, parts, 2)

	total := 0
	for _, part := range parts {
		total += len(part)
		for i := 1; i < len(part); i++ {
			assert.True(t, part[i-1].Key.Time.Before(part[i].Key.Time),
				"partition must preserve time order")
		}
	}
	assert.Equal(t, len(records), total)
}

func TestAggregateByEntity(t *testing.T) {
	records := buildRecords(t, []obs{
		{date(2024, 1, 1), "EUR/USD", 1, 2},
		{date(2024, 1, 2), "EUR/USD", -1, -1},
		{date(2024, 1, 1), "GBP/USD", 1, -1},
		{date(2024, 1, 2), "GBP/USD", 1, 3},
	})

	calc := scorecard.NewCalculator()
	grouped := Aggregate(calc, records, ByEntity)
	require.Len(t, grouped, 2)

	eur, ok := grouped["EUR/USD"].Get(scorecard.MetricAccuracy)
	require.True(t, ok)
	assert.Equal(t, 100.0, eur)

	gbp, ok := grouped["GBP/USD"].Get(scorecard.MetricAccuracy)
	require.True(t, ok)
	assert.Equal(t, 50.0, gbp)
}

func TestAggregateByYear(t *testing.T) {
	records := buildRecords(t, []obs{
		{date(2023, 6, 1), "", 1, 1},
		{date(2023, 6, 2), "", 1, -1},
		{date(2024, 6, 1), "", -1, -1},
	})

	grouped := Aggregate(scorecard.NewCalculator(), records, ByYear)
	require.Len(t, grouped, 2)
	assert.Contains(t, grouped, "2023")
	assert.Contains(t, grouped, "2024")

	acc2024, _ := grouped["2024"].Get(scorecard.MetricAccuracy)
	assert.Equal(t, 100.0, acc2024)
}

func TestNoiseDoesNotCrossEntityBoundary(t *testing.T) {
	// Adjacent entities with a large level jump between them: the jump
	// must not leak into either entity's noise, grouped or not.
	records := buildRecords(t, []obs{
		{date(2024, 1, 1), "AAA", 1.0, 1},
		{date(2024, 1, 2), "AAA", 1.5, 1},
		{date(2024, 1, 1), "BBB", 100.0, 1},
		{date(2024, 1, 2), "BBB", 100.5, 1},
	})

	grouped := Aggregate(scorecard.NewCalculator(), records, ByEntity)

	for _, entity := range []string{"AAA", "BBB"} {
		noise, ok := grouped[entity].Get(scorecard.MetricNoise)
		require.True(t, ok)
		assert.InDelta(t, 0.5, noise, 1e-12, "entity %s noise inflated by boundary jump", entity)
	}

	// The whole-set computation scopes differencing the same way.
	whole := scorecard.NewCalculator().Calculate(records)
	wholeNoise, _ := whole.Get(scorecard.MetricNoise)
	assert.InDelta(t, 0.5, wholeNoise, 1e-12)
}

func TestAggregateOmitsEmptyGroups(t *testing.T) {
	grouped := Aggregate(scorecard.NewCalculator(), nil, ByEntity)
	assert.Empty(t, grouped)
}

func TestAggregateParallelMatchesSequential(t *testing.T) {
	var observations []obs
	entities := []string{"EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD"}
	for e, entity := range entities {
		for d := 0; d < 50; d++ {
			observations = append(observations, obs{
				date:   date(2020+d%5, 1+d%12, 1+d%28),
				entity: entity,
				yPred:  math.Sin(float64(e*50 + d)),
				yTrue:  math.Cos(float64(e*50+d)) * 0.8,
			})
		}
	}
	records := buildRecords(t, observations)
	calc := scorecard.NewCalculator()

	sequential := Aggregate(calc, records, ByYear)
	parallel, err := AggregateParallel(context.Background(), calc, records, ByYear, 4)
	require.NoError(t, err)

	require.Equal(t, len(sequential), len(parallel))
	for key, seq := range sequential {
		par, ok := parallel[key]
		require.True(t, ok, "group %s missing from parallel result", key)
		require.Equal(t, seq.Names(), par.Names())
		for _, name := range seq.Names() {
			sv, _ := seq.Get(name)
			pv, _ := par.Get(name)
			if math.IsNaN(sv) {
				assert.True(t, math.IsNaN(pv), "group %s metric %s", key, name)
			} else {
				assert.Equal(t, sv, pv, "group %s metric %s", key, name)
			}
		}
	}
}

func TestAggregateParallelCanceled(t *testing.T) {
	records := buildRecords(t, []obs{
		{date(2024, 1, 1), "", 1, 1},
		{date(2024, 1, 2), "", 1, -1},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AggregateParallel(ctx, scorecard.NewCalculator(), records, ByMonth, 2)
	assert.Error(t, err)
}
