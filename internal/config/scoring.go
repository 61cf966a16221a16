package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync/atomic"
)

// ScoreWeights mirrors models.ScoreWeights but lives in config so the
// pipelines.json loader doesn't need to import the models package.
type ScoreWeights struct {
	Evidence         float64 `json:"evidence"`
	Novelty          float64 `json:"novelty"`
	PreferenceFit    float64 `json:"preference_fit"`
	PredictionSignal float64 `json:"prediction_signal"`
}

const weightSumTolerance = 1e-6

// Validate rejects configs whose weights don't sum to 1.
func (w ScoreWeights) Validate() error {
	sum := w.Evidence + w.Novelty + w.PreferenceFit + w.PredictionSignal
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("score weights must sum to 1, got %.6f", sum)
	}
	return nil
}

// StageToggles controls which optional intelligence stages run for a
// request. Every stage is optional and failures in one must not block
// the others.
type StageToggles struct {
	Credibility   bool `json:"credibility"`
	Corroboration bool `json:"corroboration"`
	Diversity     bool `json:"diversity"`
	Urgency       bool `json:"urgency"`
	Clustering    bool `json:"clustering"`
	GeoRisk       bool `json:"geo_risk"`
	Trends        bool `json:"trends"`
	Enrichment    bool `json:"enrichment"`
	Editorial     bool `json:"editorial"`
}

// PipelinesConfig is the contents of pipelines.json: scoring weights,
// stage enable/disable, and assorted tunable limits.
type PipelinesConfig struct {
	Weights ScoreWeights `json:"weights"`
	Stages  StageToggles `json:"stages"`

	MaxPerSource               int     `json:"max_per_source"`
	SimilarityThreshold        float64 `json:"similarity_threshold"`
	CrossSourceFactor          float64 `json:"cross_source_factor"`
	VelocityWindowMinutes      int     `json:"velocity_window_minutes"`
	BreakingSourceThreshold    int     `json:"breaking_source_threshold"`
	RecencyElevatedMinutes     int     `json:"recency_elevated_minutes"`
	WaningNoveltyThreshold     float64 `json:"waning_novelty_threshold"`
	BaselineDecay              float64 `json:"baseline_decay"`
	AnomalyThreshold           float64 `json:"anomaly_threshold"`
	GeoEscalationThreshold     float64 `json:"geo_escalation_threshold"`
	KeepThreshold              float64 `json:"keep_threshold"`
	ConfidenceMin               float64 `json:"confidence_min"`
	ConfidenceMax               float64 `json:"confidence_max"`
	MinVotesToAccept            string  `json:"min_votes_to_accept"` // "majority" | "unanimous"
	FailureThreshold            int     `json:"circuit_breaker_failure_threshold"`
	RecoverySeconds             int     `json:"circuit_breaker_recovery_seconds"`
	ZeroYieldStreakThreshold    int     `json:"zero_yield_streak_threshold"`
	DomainMinIntervalSeconds    float64 `json:"domain_min_interval_seconds"`
	ArticleCacheTTLHours        int     `json:"article_cache_ttl_hours"`
}

// DefaultPipelinesConfig returns the fallback weights/limits asserted across
// used when no pipelines.json is present.
func DefaultPipelinesConfig() *PipelinesConfig {
	return &PipelinesConfig{
		Weights: ScoreWeights{Evidence: 0.4, Novelty: 0.25, PreferenceFit: 0.25, PredictionSignal: 0.1},
		Stages: StageToggles{
			Credibility: true, Corroboration: true, Diversity: true, Urgency: true,
			Clustering: true, GeoRisk: true, Trends: true, Enrichment: true, Editorial: true,
		},
		MaxPerSource:             3,
		SimilarityThreshold:      0.6,
		CrossSourceFactor:        0.85,
		VelocityWindowMinutes:    60,
		BreakingSourceThreshold:  3,
		RecencyElevatedMinutes:   30,
		WaningNoveltyThreshold:   0.2,
		BaselineDecay:            0.9,
		AnomalyThreshold:         2.0,
		GeoEscalationThreshold:   0.05,
		KeepThreshold:            0.5,
		ConfidenceMin:            0.3,
		ConfidenceMax:            0.95,
		MinVotesToAccept:         "majority",
		FailureThreshold:         5,
		RecoverySeconds:          60,
		ZeroYieldStreakThreshold: 5,
		DomainMinIntervalSeconds: 0.5,
		ArticleCacheTTLHours:     24,
	}
}

// LoadPipelinesConfig reads pipelines.json from path, falling back to
// defaults when the file is absent; absence at first boot is not an error.
func LoadPipelinesConfig(path string) (*PipelinesConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultPipelinesConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pipelines config: %w", err)
	}
	cfg := DefaultPipelinesConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse pipelines config: %w", err)
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipelines config: %w", err)
	}
	return cfg, nil
}

// LivePipelinesConfig is a read-mostly holder for the scoring config,
// atomically swapped on SIGHUP reload.
type LivePipelinesConfig struct {
	ptr atomic.Pointer[PipelinesConfig]
}

// NewLivePipelinesConfig wraps an initial config for atomic hot-swapping.
func NewLivePipelinesConfig(initial *PipelinesConfig) *LivePipelinesConfig {
	l := &LivePipelinesConfig{}
	l.ptr.Store(initial)
	return l
}

// Get returns the currently active config.
func (l *LivePipelinesConfig) Get() *PipelinesConfig {
	return l.ptr.Load()
}

// Reload reads path and swaps in the new config if it parses and validates;
// on any error the previous config remains active.
func (l *LivePipelinesConfig) Reload(path string) error {
	cfg, err := LoadPipelinesConfig(path)
	if err != nil {
		return err
	}
	l.ptr.Store(cfg)
	return nil
}
