package record

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Scorecard/models"
)

// Diagnostics reports what the builder dropped while aligning the two
// input series. Dropped keys are not errors; callers that care about
// coverage can log or persist these counts.
type Diagnostics struct {
	DroppedPredOnly int // key present only in the prediction series
	DroppedTrueOnly int // key present only in the outcome series
	DroppedMissing  int // key present in both but one side is NaN

	// Audit retains the pairs excluded for a missing value, so
	// coverage reports can show what was aligned but never scored.
	Audit []models.PredictionOutcomePair
}

// Dropped returns the total number of keys that did not form a record.
func (d *Diagnostics) Dropped() int {
	return d.DroppedPredOnly + d.DroppedTrueOnly + d.DroppedMissing
}

// Build aligns a prediction series with an outcome series and derives
// the directional and profit fields for every key present, with a
// non-missing value, in both. Keys in only one series are dropped and
// counted. The returned set is sorted by entity then time, so repeated
// builds of the same inputs produce identical output.
//
// Build fails fast on structurally invalid input (infinite values,
// zero-time keys) before any record is produced.
func Build(pred, actual models.Series) (models.RecordSet, *Diagnostics, error) {
	if err := validate("prediction", pred); err != nil {
		return nil, nil, err
	}
	if err := validate("outcome", actual); err != nil {
		return nil, nil, err
	}

	diag := &Diagnostics{}
	records := make(models.RecordSet, 0, len(pred))

	for key, yPred := range pred {
		yTrue, ok := actual[key]
		if !ok {
			diag.DroppedPredOnly++
			continue
		}
		if math.IsNaN(yPred) || math.IsNaN(yTrue) {
			diag.DroppedMissing++
			diag.Audit = append(diag.Audit, models.PredictionOutcomePair{
				Key:   key,
				YPred: yPred,
				YTrue: yTrue,
			})
			continue
		}
		records = append(records, derive(key, yPred, yTrue))
	}
	for key := range actual {
		if _, ok := pred[key]; !ok {
			diag.DroppedTrueOnly++
		}
	}

	sortRecords(records)
	sortAudit(diag.Audit)

	if diag.Dropped() > 0 {
		log.Debug().
			Int("records", len(records)).
			Int("dropped_pred_only", diag.DroppedPredOnly).
			Int("dropped_true_only", diag.DroppedTrueOnly).
			Int("dropped_missing", diag.DroppedMissing).
			Msg("alignment gaps while building record set")
	}

	return records, diag, nil
}

// derive computes the building-block fields for one aligned pair.
func derive(key models.Key, yPred, yTrue float64) models.Record {
	r := models.Record{
		Key:      key,
		YPred:    yPred,
		YTrue:    yTrue,
		SignPred: models.Sign(yPred),
		SignTrue: models.Sign(yTrue),
	}
	product := r.SignPred * r.SignTrue
	if product > 0 {
		r.IsCorrect = 1
	} else if product < 0 {
		r.IsIncorrect = 1
	}
	r.IsPredicted = r.IsCorrect + r.IsIncorrect
	r.Result = float64(r.SignPred) * yTrue
	return r
}

// validate rejects malformed series before any derivation happens.
// NaN is a legal missing-value marker; infinities never are.
func validate(label string, s models.Series) error {
	for key, v := range s {
		if key.Time.IsZero() {
			return fmt.Errorf("%s series: key %q has a zero time period", label, key)
		}
		if math.IsInf(v, 0) {
			return fmt.Errorf("%s series: key %q has an infinite value", label, key)
		}
	}
	return nil
}

func sortRecords(records models.RecordSet) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Key.Entity != records[j].Key.Entity {
			return records[i].Key.Entity < records[j].Key.Entity
		}
		return records[i].Key.Time.Before(records[j].Key.Time)
	})
}

func sortAudit(pairs []models.PredictionOutcomePair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Key.Entity != pairs[j].Key.Entity {
			return pairs[i].Key.Entity < pairs[j].Key.Entity
		}
		return pairs[i].Key.Time.Before(pairs[j].Key.Time)
	})
}
