// Package models contains the domain types shared across the briefing pipeline.
package models

import (
	"math"
	"net/url"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Urgency is the closed set of urgency classifications for a candidate or thread.
type Urgency string

const (
	UrgencyRoutine  Urgency = "routine"
	UrgencyElevated Urgency = "elevated"
	UrgencyBreaking Urgency = "breaking"
	UrgencyCritical Urgency = "critical"
)

// urgencyRank gives urgency an explicit severity order: higher rank means
// more urgent.
var urgencyRank = map[Urgency]int{
	UrgencyRoutine:  0,
	UrgencyElevated: 1,
	UrgencyBreaking: 2,
	UrgencyCritical: 3,
}

// Rank returns the ordinal severity of u, defaulting unknown values to routine.
func (u Urgency) Rank() int {
	if r, ok := urgencyRank[u]; ok {
		return r
	}
	return 0
}

// MaxUrgency returns whichever of a, b ranks higher.
func MaxUrgency(a, b Urgency) Urgency {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Lifecycle is the closed set of story lifecycle stages.
type Lifecycle string

const (
	LifecycleDeveloping Lifecycle = "developing"
	LifecycleBreaking   Lifecycle = "breaking"
	LifecycleOngoing    Lifecycle = "ongoing"
	LifecycleWaning     Lifecycle = "waning"
	LifecycleResolved   Lifecycle = "resolved"
)

var lifecycleRank = map[Lifecycle]int{
	LifecycleResolved:   0,
	LifecycleWaning:     1,
	LifecycleDeveloping: 2,
	LifecycleOngoing:    3,
	LifecycleBreaking:   4,
}

// Rank gives lifecycle an order so clustering can take the max over a cluster.
func (l Lifecycle) Rank() int {
	if r, ok := lifecycleRank[l]; ok {
		return r
	}
	return 0
}

// MaxLifecycle returns whichever of a, b ranks higher.
func MaxLifecycle(a, b Lifecycle) Lifecycle {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

const (
	maxTitleLen   = 500
	maxSummaryLen = 2000
)

// allowedURLSchemes lists the URL schemes a candidate may carry; anything
// else is cleared.
var allowedURLSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"":      true,
}

// Candidate is a scored news item proposed by one research agent.
type Candidate struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	URL          string    `json:"url"`
	Source       string    `json:"source"`
	Topic        string    `json:"topic"`
	DiscoveredBy string    `json:"discovered_by"`
	CreatedAt    time.Time `json:"created_at"`

	Evidence         float64 `json:"evidence"`
	Novelty          float64 `json:"novelty"`
	PreferenceFit    float64 `json:"preference_fit"`
	PredictionSignal float64 `json:"prediction_signal"`

	Urgency   Urgency   `json:"urgency"`
	Lifecycle Lifecycle `json:"lifecycle"`

	Regions          []string `json:"regions,omitempty"`
	CorroboratedBy   []string `json:"corroborated_by,omitempty"`
	ContrarianSignal string   `json:"contrarian_signal,omitempty"`
}

// clampUnit clamps v to [0,1], treating non-finite values as 0.
func clampUnit(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sanitizeText NFC-normalizes text, strips control characters and bidi
// override characters, and caps its length.
func sanitizeText(s string, maxLen int) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isBidiOverride(r) {
			continue
		}
		if r == '\n' || r == '\t' {
			b.WriteRune(' ')
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}

// isBidiOverride reports whether r is one of the Unicode bidirectional
// override/embedding control characters (U+202A-U+202E, U+2066-U+2069).
func isBidiOverride(r rune) bool {
	switch {
	case r >= 0x202A && r <= 0x202E:
		return true
	case r >= 0x2066 && r <= 0x2069:
		return true
	default:
		return false
	}
}

// sanitizeURL clears the URL if its scheme is outside {http, https, ftp, ""}.
func sanitizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if !allowedURLSchemes[strings.ToLower(u.Scheme)] {
		return ""
	}
	return raw
}

// NewCandidate builds a Candidate, sanitizing text/URL fields and clamping
// scores into range.
func NewCandidate(id, title, summary, rawURL, source, topic, discoveredBy string,
	evidence, novelty, prefFit, predSignal float64) Candidate {
	return Candidate{
		ID:               id,
		Title:            sanitizeText(title, maxTitleLen),
		Summary:          sanitizeText(summary, maxSummaryLen),
		URL:              sanitizeURL(rawURL),
		Source:           source,
		Topic:            topic,
		DiscoveredBy:     discoveredBy,
		CreatedAt:        time.Now().UTC(),
		Evidence:         clampUnit(evidence),
		Novelty:          clampUnit(novelty),
		PreferenceFit:    clampUnit(prefFit),
		PredictionSignal: clampUnit(predSignal),
		Urgency:          UrgencyRoutine,
		Lifecycle:        LifecycleDeveloping,
	}
}

// ScoreWeights is the configurable weighting for Candidate.CompositeScore.
// The weights must sum to 1; config.ScoreWeights.Validate enforces this
// at load time.
type ScoreWeights struct {
	Evidence         float64
	Novelty          float64
	PreferenceFit    float64
	PredictionSignal float64
}

// CompositeScore computes the weighted composite score for the candidate.
func (c Candidate) CompositeScore(w ScoreWeights) float64 {
	return clampUnit(
		w.Evidence*c.Evidence +
			w.Novelty*c.Novelty +
			w.PreferenceFit*c.PreferenceFit +
			w.PredictionSignal*c.PredictionSignal,
	)
}

// Valid reports whether c's scores are all finite and in [0,1], and its
// title, source, and topic are non-empty.
func (c Candidate) Valid() bool {
	if c.Title == "" || c.Source == "" || c.Topic == "" {
		return false
	}
	for _, v := range []float64{c.Evidence, c.Novelty, c.PreferenceFit, c.PredictionSignal} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// AddCorroboration records source as having corroborated c, with set semantics.
func (c *Candidate) AddCorroboration(source string) {
	for _, s := range c.CorroboratedBy {
		if s == source {
			return
		}
	}
	c.CorroboratedBy = append(c.CorroboratedBy, source)
}
