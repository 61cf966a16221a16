// Package audit records every research, vote, selection, review, config,
// preference, and delivery decision the pipeline makes, for post-hoc
// review, expert accountability, and user-facing transparency.
package audit

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexroessner/newsfeed/internal/models"
)

// Trail is the append-only, request-indexed audit log. It keeps only the
// most recent maxRequests requests, trimming in batches to amortize the
// cost of rebuilding the request index.
type Trail struct {
	mu           sync.Mutex
	events       []models.AuditEvent
	maxRequests  int
	requestIndex map[string][]int
}

// NewTrail builds a Trail retaining at most maxRequests distinct requests.
func NewTrail(maxRequests int) *Trail {
	return &Trail{
		maxRequests:  maxRequests,
		requestIndex: make(map[string][]int),
	}
}

// Record appends one audit event.
func (t *Trail) Record(eventType models.AuditEventType, requestID string, details map[string]interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := len(t.events)
	t.events = append(t.events, models.AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		RequestID: requestID,
		Details:   details,
	})
	t.requestIndex[requestID] = append(t.requestIndex[requestID], idx)
	t.trimLocked()
}

// RecordResearch logs one research agent's contribution to a request.
func (t *Trail) RecordResearch(requestID, agentID, source string, candidateCount int, latencyMS float64) {
	t.Record(models.AuditResearch, requestID, map[string]interface{}{
		"agent_id":        agentID,
		"source":          source,
		"candidate_count": candidateCount,
		"latency_ms":      latencyMS,
		"summary":         fmt.Sprintf("%s produced %d candidates in %.0fms", agentID, candidateCount, latencyMS),
	})
}

// RecordVote logs one expert's ballot on one candidate.
func (t *Trail) RecordVote(requestID, expertID, candidateID string, keep bool, confidence float64, rationale, riskNote string, arbitrated bool) {
	verdict := "DROP"
	if keep {
		verdict = "KEEP"
	}
	arbSuffix := ""
	if arbitrated {
		arbSuffix = " [arbitrated]"
	}
	t.Record(models.AuditVote, requestID, map[string]interface{}{
		"expert_id":    expertID,
		"candidate_id": candidateID,
		"keep":         keep,
		"confidence":   confidence,
		"rationale":    rationale,
		"risk_note":    riskNote,
		"arbitrated":   arbitrated,
		"summary":      fmt.Sprintf("%s %s %s (conf=%.2f)%s", expertID, verdict, candidateID, confidence, arbSuffix),
	})
}

// RecordSelection logs the accept/reject decision for one candidate.
func (t *Trail) RecordSelection(requestID, candidateID, title string, selected bool, reason string, compositeScore float64) {
	verdict := "REJECTED"
	if selected {
		verdict = "SELECTED"
	}
	shortTitle := title
	if len(shortTitle) > 50 {
		shortTitle = shortTitle[:50]
	}
	t.Record(models.AuditSelection, requestID, map[string]interface{}{
		"candidate_id":    candidateID,
		"title":           title,
		"selected":        selected,
		"reason":          reason,
		"composite_score": compositeScore,
		"summary":         fmt.Sprintf("%s %s (score=%.3f): %s", verdict, shortTitle, compositeScore, reason),
	})
}

// RecordReview logs one editorial field rewrite.
func (t *Trail) RecordReview(requestID, reviewerID, candidateID, fieldName, before, after string) {
	changed := before != after
	verb := "kept"
	if changed {
		verb = "rewrote"
	}
	t.Record(models.AuditReview, requestID, map[string]interface{}{
		"reviewer_id": reviewerID,
		"candidate_id": candidateID,
		"field":        fieldName,
		"changed":      changed,
		"before_len":   len(before),
		"after_len":    len(after),
		"summary":      fmt.Sprintf("%s %s %s for %s", reviewerID, verb, fieldName, candidateID),
	})
}

// RecordConfigChange logs a hot-reloaded or admin-issued config change.
func (t *Trail) RecordConfigChange(requestID, path string, oldValue, newValue interface{}, source string) {
	t.Record(models.AuditConfig, requestID, map[string]interface{}{
		"path":   path,
		"old":    oldValue,
		"new":    newValue,
		"source": source,
		"summary": fmt.Sprintf("Config %s: %v -> %v (by %s)", path, oldValue, newValue, source),
	})
}

// RecordPreference logs a user preference mutation.
func (t *Trail) RecordPreference(requestID, userID, action, detail string) {
	t.Record(models.AuditPreference, requestID, map[string]interface{}{
		"user_id": userID,
		"action":  action,
		"detail":  detail,
		"summary": fmt.Sprintf("Preference update for %s: %s - %s", userID, action, detail),
	})
}

// RecordDelivery logs a completed briefing delivery.
func (t *Trail) RecordDelivery(requestID, userID string, itemCount int, briefingType string, totalElapsed time.Duration) {
	t.Record(models.AuditDelivery, requestID, map[string]interface{}{
		"user_id":         userID,
		"item_count":      itemCount,
		"briefing_type":   briefingType,
		"total_elapsed_s": totalElapsed.Seconds(),
		"summary": fmt.Sprintf("Delivered %d items (%s) to %s in %.2fs",
			itemCount, briefingType, userID, totalElapsed.Seconds()),
	})
}

// traceEntry is one event rendered for a request trace, detail fields
// merged flat alongside ts/type/summary.
type traceEntry map[string]interface{}

func (t *Trail) traceLocked(requestID string) []traceEntry {
	indices := t.requestIndex[requestID]
	trace := make([]traceEntry, 0, len(indices))
	for _, i := range indices {
		e := t.events[i]
		entry := traceEntry{
			"ts":      e.Timestamp,
			"type":    string(e.EventType),
			"summary": e.Details["summary"],
		}
		for k, v := range e.Details {
			entry[k] = v
		}
		trace = append(trace, entry)
	}
	return trace
}

// RequestTrace returns every recorded event for requestID in order.
func (t *Trail) RequestTrace(requestID string) []traceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.traceLocked(requestID)
}

// CandidateTrace returns only the events in requestID's trace concerning
// candidateID.
func (t *Trail) CandidateTrace(requestID, candidateID string) []traceEntry {
	trace := t.RequestTrace(requestID)
	var out []traceEntry
	for _, e := range trace {
		if id, ok := e["candidate_id"].(string); ok && id == candidateID {
			out = append(out, e)
		}
	}
	return out
}

// ExpertVotes groups requestID's vote events by expert ID.
func (t *Trail) ExpertVotes(requestID string) map[string][]traceEntry {
	trace := t.RequestTrace(requestID)
	votes := make(map[string][]traceEntry)
	for _, e := range trace {
		if e["type"] != string(models.AuditVote) {
			continue
		}
		expertID, _ := e["expert_id"].(string)
		votes[expertID] = append(votes[expertID], e)
	}
	return votes
}

// RecentRequests returns up to limit request IDs, most recent first.
func (t *Trail) RecentRequests(limit int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var seen []string
	seenSet := make(map[string]bool)
	for i := len(t.events) - 1; i >= 0; i-- {
		rid := t.events[i].RequestID
		if seenSet[rid] {
			continue
		}
		seenSet[rid] = true
		seen = append(seen, rid)
		if len(seen) >= limit {
			break
		}
	}
	return seen
}

// FormatRequestReport renders a human-readable multi-section report for
// requestID, grouped by phase.
func (t *Trail) FormatRequestReport(requestID string) string {
	trace := t.RequestTrace(requestID)
	if len(trace) == 0 {
		return fmt.Sprintf("No audit data for request %s", requestID)
	}

	byType := make(map[string][]traceEntry)
	for _, e := range trace {
		typ, _ := e["type"].(string)
		byType[typ] = append(byType[typ], e)
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("AUDIT REPORT: %s", requestID), strings.Repeat("=", 60))

	if research := byType[string(models.AuditResearch)]; len(research) > 0 {
		lines = append(lines, "", "--- RESEARCH PHASE ---")
		total := 0
		for _, e := range research {
			lines = append(lines, "  "+fmt.Sprint(e["summary"]))
			if n, ok := e["candidate_count"].(int); ok {
				total += n
			}
		}
		lines = append(lines, fmt.Sprintf("  Total raw candidates: %d", total))
	}

	if votes := byType[string(models.AuditVote)]; len(votes) > 0 {
		lines = append(lines, "", "--- EXPERT COUNCIL ---")
		type counts struct{ keep, drop int }
		summary := make(map[string]*counts)
		var order []string
		arbitrated := 0
		for _, e := range votes {
			cid, _ := e["candidate_id"].(string)
			if _, ok := summary[cid]; !ok {
				summary[cid] = &counts{}
				order = append(order, cid)
			}
			if keep, _ := e["keep"].(bool); keep {
				summary[cid].keep++
			} else {
				summary[cid].drop++
			}
			if arb, _ := e["arbitrated"].(bool); arb {
				arbitrated++
			}
		}
		for _, cid := range order {
			c := summary[cid]
			verdict := "REJECTED"
			if c.keep > c.drop {
				verdict = "ACCEPTED"
			}
			lines = append(lines, fmt.Sprintf("  %s: %d keep / %d drop -> %s", cid, c.keep, c.drop, verdict))
		}
		if arbitrated > 0 {
			lines = append(lines, fmt.Sprintf("  (%d votes revised through arbitration)", arbitrated))
		}
	}

	if selection := byType[string(models.AuditSelection)]; len(selection) > 0 {
		lines = append(lines, "", "--- SELECTION ---")
		for _, e := range selection {
			lines = append(lines, "  "+fmt.Sprint(e["summary"]))
		}
	}

	if review := byType[string(models.AuditReview)]; len(review) > 0 {
		lines = append(lines, "", "--- EDITORIAL REVIEW ---")
		rewritten := 0
		for _, e := range review {
			if changed, _ := e["changed"].(bool); changed {
				rewritten++
			}
		}
		lines = append(lines, fmt.Sprintf("  %d/%d fields rewritten by editorial agents", rewritten, len(review)))
	}

	if delivery := byType[string(models.AuditDelivery)]; len(delivery) > 0 {
		lines = append(lines, "", "--- DELIVERY ---")
		for _, e := range delivery {
			lines = append(lines, "  "+fmt.Sprint(e["summary"]))
		}
	}

	if cfg := byType[string(models.AuditConfig)]; len(cfg) > 0 {
		lines = append(lines, "", "--- CONFIGURATION CHANGES ---")
		for _, e := range cfg {
			lines = append(lines, "  "+fmt.Sprint(e["summary"]))
		}
	}

	return strings.Join(lines, "\n")
}

// Stats returns aggregate counters across the whole trail.
func (t *Trail) Stats() map[string]interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	byType := make(map[string]int)
	for _, e := range t.events {
		byType[string(e.EventType)]++
	}
	return map[string]interface{}{
		"total_events":      len(t.events),
		"tracked_requests":  len(t.requestIndex),
		"events_by_type":    byType,
	}
}

// trimLocked evicts the oldest requests once the index is at least 20%
// over capacity, batching the O(n) rebuild so it doesn't run on every
// Record call once the trail is full.
func (t *Trail) trimLocked() {
	overshoot := len(t.requestIndex) - t.maxRequests
	threshold := t.maxRequests / 5
	if threshold < 1 {
		threshold = 1
	}
	if overshoot < threshold {
		return
	}

	requestsByFirst := make([]string, 0, len(t.requestIndex))
	for rid := range t.requestIndex {
		requestsByFirst = append(requestsByFirst, rid)
	}
	sort.Slice(requestsByFirst, func(i, j int) bool {
		fi := t.requestIndex[requestsByFirst[i]]
		fj := t.requestIndex[requestsByFirst[j]]
		return fi[0] < fj[0]
	})

	toDrop := make(map[string]bool, overshoot)
	for _, rid := range requestsByFirst[:overshoot] {
		toDrop[rid] = true
	}
	dropIndices := make(map[int]bool)
	for rid := range toDrop {
		for _, i := range t.requestIndex[rid] {
			dropIndices[i] = true
		}
		delete(t.requestIndex, rid)
	}
	if len(dropIndices) == 0 {
		return
	}

	oldEvents := t.events
	t.events = t.events[:0]
	for i, e := range oldEvents {
		if !dropIndices[i] {
			t.events = append(t.events, e)
		}
	}
	for rid := range t.requestIndex {
		delete(t.requestIndex, rid)
	}
	for i, e := range t.events {
		t.requestIndex[e.RequestID] = append(t.requestIndex[e.RequestID], i)
	}
}
