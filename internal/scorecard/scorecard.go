package scorecard

import (
	"fmt"
	"math"

	"github.com/Alias1177/Scorecard/models"
)

// Canonical metric names, in computation order. Later metrics may
// consume earlier ones, so the order is part of the contract.
const (
	MetricAccuracy    = "accuracy"
	MetricEdge        = "edge"
	MetricNoise       = "noise"
	MetricYTrueChg    = "y_true_chg"
	MetricYPredChg    = "y_pred_chg"
	MetricCalibration = "prediction_calibration"
	MetricCapture     = "capture_ratio"
	MetricEdgeLong    = "edge_long"
	MetricEdgeShort   = "edge_short"
	MetricEdgeWin     = "edge_win"
	MetricEdgeLose    = "edge_lose"
)

// Reduction computes one extension metric from the record set. The
// scorecard passed in already holds every earlier metric, so derived
// metrics can re-aggregate instead of re-deriving.
type Reduction func(records models.RecordSet, sc *models.Scorecard) float64

type namedReduction struct {
	name string
	fn   Reduction
}

// Calculator computes the named metric vector for a record set. The
// canonical metrics are fixed; extensions registered with Register are
// appended after them in registration order. A zero-value Calculator
// computes only the canonical metrics.
type Calculator struct {
	extensions []namedReduction
}

// NewCalculator returns a calculator with no extension metrics.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Register adds an extension metric. Names must not collide with the
// canonical metrics or with each other.
func (c *Calculator) Register(name string, fn Reduction) error {
	if fn == nil {
		return fmt.Errorf("metric %q: nil reduction", name)
	}
	for _, canonical := range canonicalNames {
		if name == canonical {
			return fmt.Errorf("metric %q: name collides with a canonical metric", name)
		}
	}
	for _, ext := range c.extensions {
		if ext.name == name {
			return fmt.Errorf("metric %q: already registered", name)
		}
	}
	c.extensions = append(c.extensions, namedReduction{name: name, fn: fn})
	return nil
}

var canonicalNames = []string{
	MetricAccuracy, MetricEdge, MetricNoise,
	MetricYTrueChg, MetricYPredChg,
	MetricCalibration, MetricCapture,
	MetricEdgeLong, MetricEdgeShort, MetricEdgeWin, MetricEdgeLose,
}

// Calculate computes the full scorecard for a record set. Degenerate
// inputs (empty set, no predicted records, empty long/short/win/lose
// subsets, zero true magnitude) produce NaN metric values and never an
// error: sparse groups must still yield partial scorecards.
func (c *Calculator) Calculate(records models.RecordSet) *models.Scorecard {
	agg := reduce(records)
	sc := models.NewScorecard()

	sc.Set(MetricAccuracy, div(agg.sumCorrect, agg.sumPredicted)*100)
	sc.Set(MetricEdge, div(agg.sumResult, agg.n))
	sc.Set(MetricNoise, div(agg.sumPredDiff, agg.nPredDiff))
	sc.Set(MetricYTrueChg, div(agg.sumAbsTrue, agg.n))
	sc.Set(MetricYPredChg, div(agg.sumAbsPred, agg.n))

	// Ratio metrics reuse the stored values so they reproduce exactly
	// from the scorecard itself.
	edge, _ := sc.Get(MetricEdge)
	yTrueChg, _ := sc.Get(MetricYTrueChg)
	yPredChg, _ := sc.Get(MetricYPredChg)
	sc.Set(MetricCalibration, ratio(yPredChg, yTrueChg))
	sc.Set(MetricCapture, ratio(edge, yTrueChg)*100)

	meanTrue := div(agg.sumTrue, agg.n)
	sc.Set(MetricEdgeLong, div(agg.sumResultLong, agg.nLong)-meanTrue)
	sc.Set(MetricEdgeShort, div(agg.sumResultShort, agg.nShort)-meanTrue)
	sc.Set(MetricEdgeWin, div(agg.sumResultWin, agg.nWin)-meanTrue)
	sc.Set(MetricEdgeLose, div(agg.sumResultLose, agg.nLose)-meanTrue)

	for _, ext := range c.extensions {
		sc.Set(ext.name, ext.fn(records, sc))
	}

	return sc
}

// aggregates holds every running sum the metrics need, collected in a
// single pass so the calculator stays cheap when invoked per group.
type aggregates struct {
	n            float64
	sumCorrect   float64
	sumPredicted float64
	sumResult    float64
	sumTrue      float64
	sumAbsTrue   float64
	sumAbsPred   float64

	sumResultLong  float64
	nLong          float64
	sumResultShort float64
	nShort         float64
	sumResultWin   float64
	nWin           float64
	sumResultLose  float64
	nLose          float64

	// Prediction differencing is entity-scoped: a pair of adjacent
	// records belonging to different entities contributes no term.
	sumPredDiff float64
	nPredDiff   float64
}

func reduce(records models.RecordSet) aggregates {
	var agg aggregates
	for i, r := range records {
		agg.n++
		agg.sumCorrect += float64(r.IsCorrect)
		agg.sumPredicted += float64(r.IsPredicted)
		agg.sumResult += r.Result
		agg.sumTrue += r.YTrue
		agg.sumAbsTrue += math.Abs(r.YTrue)
		agg.sumAbsPred += math.Abs(r.YPred)

		switch r.SignPred {
		case 1:
			agg.sumResultLong += r.Result
			agg.nLong++
		case -1:
			agg.sumResultShort += r.Result
			agg.nShort++
		}
		if r.IsCorrect == 1 {
			agg.sumResultWin += r.Result
			agg.nWin++
		}
		if r.IsIncorrect == 1 {
			agg.sumResultLose += r.Result
			agg.nLose++
		}

		if i > 0 && records[i-1].Key.Entity == r.Key.Entity {
			agg.sumPredDiff += math.Abs(r.YPred - records[i-1].YPred)
			agg.nPredDiff++
		}
	}
	return agg
}

// div is mean/ratio with the NaN-on-zero-denominator policy.
func div(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// ratio divides two already-computed metrics; NaN denominators stay NaN.
func ratio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) {
		return math.NaN()
	}
	return num / den
}
