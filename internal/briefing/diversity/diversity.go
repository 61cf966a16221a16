// Package diversity enforces a per-source cap so one prolific source
// cannot crowd out the rest of a briefing.
package diversity

import "github.com/alexroessner/newsfeed/internal/models"

// Enforce keeps candidates in their existing order but drops any candidate
// once its source has already contributed maxPerSource items. Candidates
// are expected to already be sorted best-first by the caller, so the kept
// items per source are each source's strongest contributions.
func Enforce(candidates []models.Candidate, maxPerSource int) []models.Candidate {
	if maxPerSource <= 0 {
		return candidates
	}
	counts := make(map[string]int)
	out := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if counts[c.Source] >= maxPerSource {
			continue
		}
		counts[c.Source]++
		out = append(out, c)
	}
	return out
}
