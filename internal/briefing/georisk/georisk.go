// Package georisk tracks a rolling risk level per region and flags when it
// escalates sharply between briefings.
package georisk

import (
	"sort"
	"strings"
	"sync"

	"github.com/alexroessner/newsfeed/internal/models"
)

// riskKeywords contribute to a region's risk level when present in a
// candidate's title, grounded on the kind of language geopolitical wire
// reporting uses for active conflict or instability.
var riskKeywords = map[string]float64{
	"conflict": 0.15, "war": 0.2, "sanctions": 0.1, "coup": 0.25,
	"unrest": 0.15, "military": 0.1, "strike": 0.1, "protest": 0.1,
	"invasion": 0.25, "ceasefire": -0.1, "peace talks": -0.15,
}

// Tracker holds the last-known risk level per region so escalation deltas
// can be computed across requests.
type Tracker struct {
	mu    sync.Mutex
	level map[string]float64
}

// NewTracker builds an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{level: make(map[string]float64)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Assess computes a GeoRiskEntry per region referenced by candidates,
// blending keyword signal from this batch with the tracker's memory of the
// region's previous level.
func (t *Tracker) Assess(candidates []models.Candidate) []models.GeoRiskEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	regionDelta := make(map[string]float64)
	regionDrivers := make(map[string]map[string]bool)

	for _, c := range candidates {
		for _, region := range c.Regions {
			for kw, weight := range riskKeywords {
				if strings.Contains(strings.ToLower(c.Title), kw) {
					regionDelta[region] += weight
					if regionDrivers[region] == nil {
						regionDrivers[region] = make(map[string]bool)
					}
					regionDrivers[region][kw] = true
				}
			}
			if _, ok := regionDelta[region]; !ok {
				regionDelta[region] = 0
			}
		}
	}

	regions := make([]string, 0, len(regionDelta))
	for r := range regionDelta {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	out := make([]models.GeoRiskEntry, 0, len(regions))
	for _, region := range regions {
		previous := t.level[region]
		current := clamp01(previous + regionDelta[region])

		var drivers []string
		for d := range regionDrivers[region] {
			drivers = append(drivers, d)
		}
		sort.Strings(drivers)

		out = append(out, models.GeoRiskEntry{
			Region:          region,
			RiskLevel:       current,
			PreviousLevel:   previous,
			EscalationDelta: current - previous,
			Drivers:         drivers,
		})
		t.level[region] = current
	}
	return out
}

// Snapshot returns the tracker's current per-region risk levels for
// persistence, sorted by region for deterministic output.
func (t *Tracker) Snapshot() []models.GeoRiskEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	regions := make([]string, 0, len(t.level))
	for r := range t.level {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	out := make([]models.GeoRiskEntry, 0, len(regions))
	for _, r := range regions {
		out = append(out, models.GeoRiskEntry{Region: r, RiskLevel: t.level[r]})
	}
	return out
}

// Restore replaces the tracker's memory with a persisted snapshot.
func (t *Tracker) Restore(entries []models.GeoRiskEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.level = make(map[string]float64, len(entries))
	for _, e := range entries {
		t.level[e.Region] = e.RiskLevel
	}
}
