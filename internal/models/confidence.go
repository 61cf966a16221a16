package models

// ConfidenceBand is a {low, mid, high} triple bucketed into a label:
// low <= mid <= high, each in [0,1].
type ConfidenceBand struct {
	Low            float64  `json:"low"`
	Mid            float64  `json:"mid"`
	High           float64  `json:"high"`
	KeyAssumptions []string `json:"key_assumptions,omitempty"`
}

// Label buckets the band by its midpoint: high >= 0.80, moderate >= 0.55, else low.
func (b ConfidenceBand) Label() string {
	switch {
	case b.Mid >= 0.80:
		return "high"
	case b.Mid >= 0.55:
		return "moderate"
	default:
		return "low"
	}
}

// Valid reports whether low <= mid <= high <= 1.
func (b ConfidenceBand) Valid() bool {
	return b.Low <= b.Mid && b.Mid <= b.High && b.High <= 1 && b.Low >= 0
}

// ZeroBand is the guard value returned for an empty cluster, avoiding a
// division by zero when averaging.
var ZeroBand = ConfidenceBand{Low: 0, Mid: 0, High: 0}
