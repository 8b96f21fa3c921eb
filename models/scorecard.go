package models

// Scorecard is an ordered mapping from metric name to scalar value.
// Iteration order is insertion order, so the canonical metrics come
// out in their computation order and registered extensions follow.
// A NaN value means the metric was undefined for the input (empty
// subset or zero denominator), not that computation failed.
type Scorecard struct {
	names  []string
	values map[string]float64
}

// NewScorecard returns an empty scorecard.
func NewScorecard() *Scorecard {
	return &Scorecard{values: make(map[string]float64)}
}

// Set stores a metric value. First insertion fixes the position;
// setting an existing name overwrites in place.
func (s *Scorecard) Set(name string, value float64) {
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = value
}

// Get returns the value for a metric name.
func (s *Scorecard) Get(name string) (float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Names returns the metric names in insertion order.
func (s *Scorecard) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of metrics.
func (s *Scorecard) Len() int {
	return len(s.names)
}

// GroupedScorecard maps each group key to that partition's scorecard.
type GroupedScorecard[K comparable] map[K]*Scorecard

// ComparisonTable maps a run name to its whole-set scorecard.
type ComparisonTable map[string]*Scorecard
