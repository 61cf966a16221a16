package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordResearchAndTrace(t *testing.T) {
	tr := NewTrail(50)
	tr.RecordResearch("req1", "agent-a", "reuters", 5, 120.5)
	trace := tr.RequestTrace("req1")
	assert.Len(t, trace, 1)
	assert.Equal(t, "research", trace[0]["type"])
}

func TestRecordVoteSummaryReflectsKeep(t *testing.T) {
	tr := NewTrail(50)
	tr.RecordVote("req1", "expert_quality_agent", "c1", true, 0.82, "good evidence", "", false)
	votes := tr.ExpertVotes("req1")
	assert.Len(t, votes["expert_quality_agent"], 1)
	assert.Contains(t, votes["expert_quality_agent"][0]["summary"], "KEEP")
}

func TestCandidateTraceFiltersByID(t *testing.T) {
	tr := NewTrail(50)
	tr.RecordSelection("req1", "c1", "Title A", true, "top score", 0.9)
	tr.RecordSelection("req1", "c2", "Title B", false, "low score", 0.2)
	trace := tr.CandidateTrace("req1", "c1")
	assert.Len(t, trace, 1)
}

func TestRecentRequestsOrdersMostRecentFirst(t *testing.T) {
	tr := NewTrail(50)
	tr.RecordDelivery("req1", "user1", 3, "morning", time.Second)
	tr.RecordDelivery("req2", "user1", 4, "morning", time.Second)
	recent := tr.RecentRequests(2)
	assert.Equal(t, []string{"req2", "req1"}, recent)
}

func TestFormatRequestReportIncludesAllPhases(t *testing.T) {
	tr := NewTrail(50)
	tr.RecordResearch("req1", "agent-a", "reuters", 3, 100)
	tr.RecordVote("req1", "expert_quality_agent", "c1", true, 0.8, "r", "n", false)
	tr.RecordSelection("req1", "c1", "Title", true, "high score", 0.9)
	tr.RecordDelivery("req1", "user1", 1, "morning", time.Second)
	report := tr.FormatRequestReport("req1")
	assert.Contains(t, report, "RESEARCH PHASE")
	assert.Contains(t, report, "EXPERT COUNCIL")
	assert.Contains(t, report, "SELECTION")
	assert.Contains(t, report, "DELIVERY")
}

func TestFormatRequestReportEmptyForUnknownRequest(t *testing.T) {
	tr := NewTrail(50)
	report := tr.FormatRequestReport("nope")
	assert.Contains(t, report, "No audit data")
}

func TestTrimEvictsOldestRequestsOnceOvershootThreshold(t *testing.T) {
	tr := NewTrail(5)
	for i := 0; i < 20; i++ {
		tr.RecordDelivery(string(rune('a'+i)), "user1", 1, "morning", time.Second)
	}
	stats := tr.Stats()
	assert.LessOrEqual(t, stats["tracked_requests"].(int), 6)
}
