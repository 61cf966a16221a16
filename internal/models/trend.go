package models

// TrendSnapshot is a per-topic trend/anomaly record.
type TrendSnapshot struct {
	Topic          string  `json:"topic"`
	Velocity       float64 `json:"velocity"`
	BaselineVelocity float64 `json:"baseline_velocity"`
	AnomalyScore   float64 `json:"anomaly_score"`
	IsEmerging     bool    `json:"is_emerging"`
}
