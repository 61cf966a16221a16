package models

// SourceReliability is the per-source aggregate maintained by the
// credibility tracker.
type SourceReliability struct {
	Source             string  `json:"source"`
	ReliabilityScore   float64 `json:"reliability"`
	HistoricalAccuracy float64 `json:"accuracy"`
	CorroborationRate  float64 `json:"corroboration"`
	TotalItemsSeen     int64   `json:"seen"`
}

// TrustFactor is the weighted blend:
// 0.5*reliability + 0.3*accuracy + 0.2*corroboration.
func (s SourceReliability) TrustFactor() float64 {
	return 0.5*s.ReliabilityScore + 0.3*s.HistoricalAccuracy + 0.2*s.CorroborationRate
}
