// Package clustering groups selected candidates that describe the same
// story into narrative threads.
package clustering

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/alexroessner/newsfeed/internal/models"
)

func titleTokens(title string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(title)) {
		word = strings.Trim(word, ".,!?\"'()[]{}:;")
		if len(word) > 3 {
			tokens[word] = true
		}
	}
	return tokens
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for t := range a {
		if b[t] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func threadID(candidates []models.Candidate) string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	sort.Strings(ids)
	h := sha1.New()
	h.Write([]byte(strings.Join(ids, "|")))
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// Cluster groups candidates into NarrativeThreads using simple single-link
// title-token similarity: any candidate similar enough to any existing
// member of a cluster joins it. Candidates that join no cluster are left
// out of the result; the caller keeps presenting them individually.
//
// A same-source pair must clear threshold to merge; a cross-source pair
// only needs to clear threshold*crossSourceFactor, since independent
// outlets covering the same story tend to phrase headlines less alike
// than a single outlet's own follow-ups, and cross-source agreement is
// the more interesting signal to surface as one thread.
//
// Each thread's headline is the title of its highest composite-scoring
// member, not simply the first one encountered. Each thread's Confidence
// band is built from the mean of credibility(source) across its members,
// via the ConfidenceBand+-0.15 convention used elsewhere in this package's
// caller; an empty group (never produced by this function, but guarded
// regardless) yields models.ZeroBand rather than dividing by zero.
func Cluster(candidates []models.Candidate, threshold, crossSourceFactor float64,
	weights models.ScoreWeights, credibility func(source string) float64) []models.NarrativeThread {
	tokens := make([]map[string]bool, len(candidates))
	for i, c := range candidates {
		tokens[i] = titleTokens(c.Title)
	}

	parent := make([]int, len(candidates))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			parent[ri] = rj
		}
	}

	for i := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			effectiveThreshold := threshold
			if candidates[i].Source != candidates[j].Source {
				effectiveThreshold = threshold * crossSourceFactor
			}
			if jaccard(tokens[i], tokens[j]) >= effectiveThreshold {
				union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	for i := range candidates {
		root := find(i)
		groups[root] = append(groups[root], i)
	}

	var threads []models.NarrativeThread
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		group := make([]models.Candidate, len(members))
		maxLifecycle := models.LifecycleDeveloping
		maxUrgency := models.UrgencyRoutine
		for idx, m := range members {
			group[idx] = candidates[m]
			maxLifecycle = models.MaxLifecycle(maxLifecycle, candidates[m].Lifecycle)
			maxUrgency = models.MaxUrgency(maxUrgency, candidates[m].Urgency)
		}
		sources := make(map[string]bool)
		for _, c := range group {
			sources[c.Source] = true
		}
		threads = append(threads, models.NarrativeThread{
			ThreadID:    threadID(group),
			Headline:    headline(group, weights),
			Candidates:  group,
			Lifecycle:   maxLifecycle,
			Urgency:     maxUrgency,
			SourceCount: len(sources),
			Confidence:  confidenceBand(group, credibility),
		})
	}

	sort.Slice(threads, func(i, j int) bool { return threads[i].ThreadID < threads[j].ThreadID })
	return threads
}

// headline returns the title of group's highest composite-scoring member.
func headline(group []models.Candidate, weights models.ScoreWeights) string {
	best := group[0]
	bestScore := best.CompositeScore(weights)
	for _, c := range group[1:] {
		if s := c.CompositeScore(weights); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best.Title
}

// confidenceBand builds a thread's confidence band from the mean of
// credibility(source) across group, offsetting +-0.15 the way the
// per-item confidence band is built in the engine package.
func confidenceBand(group []models.Candidate, credibility func(source string) float64) *models.ConfidenceBand {
	if len(group) == 0 || credibility == nil {
		return &models.ZeroBand
	}
	var sum float64
	for _, c := range group {
		sum += credibility(c.Source)
	}
	mean := sum / float64(len(group))
	return &models.ConfidenceBand{
		Low:  clamp01(mean - 0.15),
		Mid:  clamp01(mean),
		High: clamp01(mean + 0.15),
	}
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
