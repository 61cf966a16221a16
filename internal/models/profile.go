package models

import (
	"math"
)

// MaxWeights is the entry count above which Validate prunes zero-weighted
// entries from a profile's weight maps. Non-zero entries are kept even when
// a map stays above it.
const MaxWeights = 100

const (
	maxTrackedStories = 20
	maxBookmarks       = 50
	maxCustomSources   = 10
)

// UserProfile is per-user configuration and learned state.
type UserProfile struct {
	UserID string `json:"user_id"`

	TopicWeights  map[string]float64 `json:"topic_weights"`
	SourceWeights map[string]float64 `json:"source_weights"`

	Tone            string `json:"tone"`
	Format          string `json:"format"`
	MaxItems        int    `json:"max_items"`
	BriefingCadence string `json:"briefing_cadence"`
	Timezone        string `json:"timezone"`

	MutedTopics        []string `json:"muted_topics"`
	RegionsOfInterest  []string `json:"regions_of_interest"`
	WatchlistCrypto    []string `json:"watchlist_crypto"`
	WatchlistStocks    []string `json:"watchlist_stocks"`
	ConfidenceMin      float64  `json:"confidence_min"`
	UrgencyMin         Urgency  `json:"urgency_min"`
	MaxPerSource       int      `json:"max_per_source"`

	AlertKeywords         []string `json:"alert_keywords"`
	AlertGeoriskThreshold float64  `json:"alert_georisk_threshold"`
	AlertTrendThreshold   float64  `json:"alert_trend_threshold"`

	TrackedStories []TrackedStory            `json:"tracked_stories"`
	Bookmarks      []Bookmark                `json:"bookmarks"`
	Presets        map[string]ProfileSnapshot `json:"presets"`
	CustomSources  []string                  `json:"custom_sources"`

	Email      string `json:"email"`
	WebhookURL string `json:"webhook_url"`

	// Version is the optimistic-concurrency token bumped by every mutation.
	Version int64 `json:"version"`
}

// ProfileSnapshot is a saved configuration preset (subset of UserProfile's
// mutable style/filter fields), used by the `presets` map.
type ProfileSnapshot struct {
	TopicWeights  map[string]float64 `json:"topic_weights"`
	Tone          string             `json:"tone"`
	Format        string             `json:"format"`
	MaxItems      int                `json:"max_items"`
	MutedTopics   []string           `json:"muted_topics"`
}

// DefaultProfile returns a freshly created profile for userID, matching the
// defaults asserted in original_source memory/store.py's reset() method.
func DefaultProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:          userID,
		TopicWeights:    map[string]float64{},
		SourceWeights:   map[string]float64{},
		Tone:            "concise",
		Format:          "bullet",
		MaxItems:        10,
		BriefingCadence: "on_demand",
		Timezone:        "UTC",
		UrgencyMin:      UrgencyRoutine,
		MaxPerSource:    3,
		Presets:         map[string]ProfileSnapshot{},
		Version:         0,
	}
}

// Validate enforces list caps and float-validity invariants when restoring
// a persisted profile: non-finite floats reset to defaults, oversized
// collections are truncated to their cap (keeping the most recent entries).
func (p *UserProfile) Validate() {
	if len(p.TrackedStories) > maxTrackedStories {
		p.TrackedStories = p.TrackedStories[len(p.TrackedStories)-maxTrackedStories:]
	}
	if len(p.Bookmarks) > maxBookmarks {
		p.Bookmarks = p.Bookmarks[len(p.Bookmarks)-maxBookmarks:]
	}
	if len(p.CustomSources) > maxCustomSources {
		p.CustomSources = p.CustomSources[len(p.CustomSources)-maxCustomSources:]
	}
	if !isFiniteUnit(p.ConfidenceMin, 0, 1) {
		p.ConfidenceMin = 0.0
	}
	if p.MaxItems <= 0 {
		p.MaxItems = 10
	}
	if p.Tone == "" {
		p.Tone = "concise"
	}
	if p.Format == "" {
		p.Format = "bullet"
	}
	if p.Timezone == "" {
		p.Timezone = "UTC"
	}
	for topic, w := range p.TopicWeights {
		if !isFiniteUnit(w, -1, 1) {
			delete(p.TopicWeights, topic)
		}
	}
	for source, w := range p.SourceWeights {
		if !isFiniteUnit(w, -2, 2) {
			delete(p.SourceWeights, source)
		}
	}
	pruneWeightsAtCap(p.TopicWeights)
	pruneWeightsAtCap(p.SourceWeights)
}

// isFiniteUnit reports whether v is a finite number. The [lo,hi] bounds are
// informational only; values outside the weight range get clamped by the
// store's mutators, not discarded here. This only screens out the NaN and
// Inf values a corrupted persisted profile could carry.
func isFiniteUnit(v, lo, hi float64) bool {
	_ = lo
	_ = hi
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// pruneWeightsAtCap removes zero-valued entries while a weight map holds
// more than MaxWeights entries.
func pruneWeightsAtCap(weights map[string]float64) {
	if len(weights) <= MaxWeights {
		return
	}
	for k, v := range weights {
		if v == 0 {
			delete(weights, k)
		}
		if len(weights) <= MaxWeights {
			return
		}
	}
}
