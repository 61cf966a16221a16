// Package corroboration cross-references candidates from independent
// sources covering the same story and links them together.
package corroboration

import (
	"net/url"
	"strings"

	"github.com/alexroessner/newsfeed/internal/models"
)

// placeholderHosts are URL hosts that never count as independent
// corroboration, regardless of title similarity: aggregator/placeholder
// domains that research agents sometimes emit when a real source can't be
// resolved (e.g. a simulated agent's synthetic link).
var placeholderHosts = map[string]bool{
	"example.com":     true,
	"localhost":       true,
	"placeholder.com": true,
}

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

func isPlaceholderHost(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return placeholderHosts[strings.ToLower(u.Hostname())]
}

// isGatedURL reports whether rawURL should be excluded from corroboration
// entirely: an empty URL or a known placeholder/aggregator host.
func isGatedURL(rawURL string) bool {
	return rawURL == "" || isPlaceholderHost(rawURL)
}

// Detect finds groups of candidates from distinct sources whose titles
// overlap above threshold and marks each as corroborated by the others.
// A candidate whose URL is empty or points to a placeholder host is
// skipped from corroboration altogether, in either direction: it can
// neither corroborate nor be corroborated by another candidate, since
// that would manufacture cross-source confirmation that doesn't exist.
func Detect(candidates []models.Candidate, threshold float64) []models.Candidate {
	tokens := make([]map[string]bool, len(candidates))
	for i, c := range candidates {
		tokens[i] = titleTokens(c.Title)
	}

	for i := range candidates {
		if isGatedURL(candidates[i].URL) {
			continue
		}
		for j := range candidates {
			if i == j {
				continue
			}
			if candidates[i].Source == candidates[j].Source {
				continue
			}
			if isGatedURL(candidates[j].URL) {
				continue
			}
			if jaccard(tokens[i], tokens[j]) >= threshold {
				candidates[i].AddCorroboration(candidates[j].Source)
			}
		}
	}
	return candidates
}

// BoostForCorroboration returns the evidence multiplier applied to a
// candidate backed by independent sources: crossSourceFactor scales down
// how much extra weight additional corroborations add, so the third
// confirming source matters less than the second.
func BoostForCorroboration(corroboratedBy []string, crossSourceFactor float64) float64 {
	n := len(corroboratedBy)
	if n == 0 {
		return 1.0
	}
	boost := 1.0
	increment := 0.1
	for i := 0; i < n; i++ {
		boost += increment
		increment *= crossSourceFactor
	}
	return boost
}
