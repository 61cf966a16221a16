// Package trends tracks per-topic mention velocity against a decaying
// baseline and flags anomalous spikes.
package trends

import (
	"sort"
	"sync"

	"github.com/alexroessner/newsfeed/internal/models"
)

// minBaseline floors the decaying baseline so a topic with a single
// historical mention doesn't register an infinite anomaly ratio the first
// time it recurs.
const minBaseline = 0.1

// Tracker maintains an exponentially decaying baseline count per topic.
type Tracker struct {
	mu       sync.Mutex
	baseline map[string]float64
	decay    float64
	anomaly  float64
}

// NewTracker builds a tracker with the given baseline decay factor and
// anomaly ratio threshold.
func NewTracker(decay, anomalyThreshold float64) *Tracker {
	return &Tracker{baseline: make(map[string]float64), decay: decay, anomaly: anomalyThreshold}
}

// Observe updates the baseline for every topic present in candidates and
// returns a TrendSnapshot per topic describing this batch's velocity
// against history.
func (t *Tracker) Observe(candidates []models.Candidate) []models.TrendSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts := make(map[string]int)
	for _, c := range candidates {
		counts[c.Topic]++
	}

	topics := make([]string, 0, len(counts))
	for topic := range counts {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	out := make([]models.TrendSnapshot, 0, len(topics))
	for _, topic := range topics {
		count := counts[topic]
		prevBaseline := t.baseline[topic]
		if prevBaseline < minBaseline {
			prevBaseline = minBaseline
		}

		velocity := float64(count)
		ratio := velocity / prevBaseline
		isAnomaly := ratio >= t.anomaly

		out = append(out, models.TrendSnapshot{
			Topic:            topic,
			Velocity:         velocity,
			BaselineVelocity: prevBaseline,
			AnomalyScore:     ratio,
			IsEmerging:       isAnomaly,
		})

		t.baseline[topic] = prevBaseline*t.decay + float64(count)*(1-t.decay)
	}
	return out
}

// Restore replaces the tracker's baseline memory with persisted values.
func (t *Tracker) Restore(snapshots []models.TrendSnapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.baseline = make(map[string]float64, len(snapshots))
	for _, s := range snapshots {
		t.baseline[s.Topic] = s.BaselineVelocity
	}
}
