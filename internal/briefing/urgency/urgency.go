// Package urgency classifies candidates by how urgent and how far along
// their story's lifecycle is, combining keyword signals, cross-source
// velocity, and recency.
package urgency

import (
	"strings"
	"time"

	"github.com/alexroessner/newsfeed/internal/models"
)

// breakingKeywords nudge a candidate toward breaking/critical urgency when
// present in its title, grounded on the kind of wire-service language that
// accompanies fast-moving stories.
var breakingKeywords = map[string]bool{
	"breaking": true, "urgent": true, "alert": true, "just in": true,
	"developing": true, "live": true, "emergency": true,
}

var criticalKeywords = map[string]bool{
	"explosion": true, "attack": true, "collapse": true, "crisis": true,
	"declares war": true, "martial law": true, "evacuate": true,
}

func containsAny(title string, keywords map[string]bool) bool {
	lower := strings.ToLower(title)
	for kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Detector classifies candidates into urgency/lifecycle levels using
// configured thresholds.
type Detector struct {
	VelocityWindow         time.Duration
	BreakingSourceCount     int
	RecencyElevatedWindow   time.Duration
	WaningNoveltyThreshold  float64
}

// NewDetector builds a Detector from pipeline tunables.
func NewDetector(velocityWindowMinutes, breakingSourceThreshold, recencyElevatedMinutes int, waningNoveltyThreshold float64) *Detector {
	return &Detector{
		VelocityWindow:         time.Duration(velocityWindowMinutes) * time.Minute,
		BreakingSourceCount:     breakingSourceThreshold,
		RecencyElevatedWindow:   time.Duration(recencyElevatedMinutes) * time.Minute,
		WaningNoveltyThreshold:  waningNoveltyThreshold,
	}
}

// Classify assigns an urgency and lifecycle stage to c, taking into account
// how many independent sources have corroborated it within the velocity
// window and how recently it was discovered.
func (d *Detector) Classify(c models.Candidate, now time.Time) (models.Urgency, models.Lifecycle) {
	urgency := models.UrgencyRoutine
	if containsAny(c.Title, criticalKeywords) {
		urgency = models.UrgencyCritical
	} else if containsAny(c.Title, breakingKeywords) {
		urgency = models.UrgencyBreaking
	}

	sourceCount := len(c.CorroboratedBy) + 1
	age := now.Sub(c.CreatedAt)
	if age <= d.VelocityWindow && sourceCount >= d.BreakingSourceCount {
		urgency = models.MaxUrgency(urgency, models.UrgencyBreaking)
	}
	if age <= d.RecencyElevatedWindow {
		urgency = models.MaxUrgency(urgency, models.UrgencyElevated)
	}

	lifecycle := models.LifecycleDeveloping
	switch {
	case urgency == models.UrgencyCritical || urgency == models.UrgencyBreaking:
		lifecycle = models.LifecycleBreaking
	case sourceCount >= d.BreakingSourceCount:
		lifecycle = models.LifecycleOngoing
	case c.Novelty < d.WaningNoveltyThreshold && age > d.VelocityWindow:
		lifecycle = models.LifecycleWaning
	}

	return urgency, lifecycle
}

// Apply classifies every candidate in place and returns the slice.
func (d *Detector) Apply(candidates []models.Candidate, now time.Time) []models.Candidate {
	for i := range candidates {
		u, l := d.Classify(candidates[i], now)
		candidates[i].Urgency = u
		candidates[i].Lifecycle = l
	}
	return candidates
}
