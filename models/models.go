package models

import (
	"fmt"
	"time"
)

// Key identifies one observation in an aligned series. Entity is empty
// for single-series use, where the time period alone identifies the
// observation.
type Key struct {
	Time   time.Time `json:"time"`
	Entity string    `json:"entity,omitempty"`
}

// String returns a readable representation for diagnostics and errors.
func (k Key) String() string {
	if k.Entity == "" {
		return k.Time.Format(time.RFC3339)
	}
	return fmt.Sprintf("%s/%s", k.Entity, k.Time.Format(time.RFC3339))
}

// Series is a key-indexed numeric series. A NaN value marks a missing
// observation (no prediction made, or outcome not yet realized).
type Series map[Key]float64

// PredictionOutcomePair is one aligned observation before derivation.
// Either side may be NaN; such pairs never become records but are
// retained for coverage audit.
type PredictionOutcomePair struct {
	Key   Key     `json:"key"`
	YPred float64 `json:"y_pred"`
	YTrue float64 `json:"y_true"`
}

// Record is one aligned prediction/outcome observation with its
// derived directional and profit fields. Immutable once built.
//
// IsCorrect and IsIncorrect are mutually exclusive; IsPredicted is
// their sum and is 0 whenever either sign is zero. Result is the
// profit of betting one unit in the predicted direction and is defined
// even for unpredicted records (a zero predicted sign yields 0).
type Record struct {
	Key         Key     `json:"key"`
	YPred       float64 `json:"y_pred"`
	YTrue       float64 `json:"y_true"`
	SignPred    int     `json:"sign_pred"`
	SignTrue    int     `json:"sign_true"`
	IsCorrect   int     `json:"is_correct"`
	IsIncorrect int     `json:"is_incorrect"`
	IsPredicted int     `json:"is_predicted"`
	Result      float64 `json:"result"`
}

// RecordSet is an ordered set of records, sorted by entity then time.
// The ordering is deterministic and keeps each entity's records
// contiguous, which sequential metrics rely on.
type RecordSet []Record

// Sign returns -1, 0 or +1; zero only for an exactly zero value.
func Sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
