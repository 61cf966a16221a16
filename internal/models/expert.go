package models

import "time"

// DebateVote is a single expert's ballot on a candidate, grounded on
// original_source/agents/experts.py's vote records.
type DebateVote struct {
	Expert     string  `json:"expert"`
	Keep       bool    `json:"keep"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
	RiskNote   string  `json:"risk_note,omitempty"`
	ViaLLM     bool    `json:"via_llm"`
	Flipped    bool    `json:"flipped"`
}

// DebateRecord is the full council deliberation for one candidate.
type DebateRecord struct {
	CandidateID string       `json:"candidate_id"`
	Votes       []DebateVote `json:"votes"`
	KeepVotes   int          `json:"keep_votes"`
	Required    int          `json:"required_votes"`
	Accepted    bool         `json:"accepted"`
	Arbitrated  bool         `json:"arbitrated"`
}

// ExpertChair is a per-expert influence/accuracy record. Nothing in this
// repository constructs, saves or loads it.
type ExpertChair struct {
	Expert     string  `json:"expert"`
	Influence  float64 `json:"influence"`
	Accuracy   float64 `json:"accuracy"`
	TotalVotes int64   `json:"total_votes"`
}

// AuditEventType is the closed set of audit event categories.
type AuditEventType string

const (
	AuditResearch   AuditEventType = "research"
	AuditVote       AuditEventType = "vote"
	AuditSelection  AuditEventType = "selection"
	AuditReview     AuditEventType = "review"
	AuditConfig     AuditEventType = "config"
	AuditPreference AuditEventType = "preference"
	AuditDelivery   AuditEventType = "delivery"
)

// AuditEvent is one append-only audit-trail entry.
type AuditEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	EventType AuditEventType         `json:"event_type"`
	RequestID string                 `json:"request_id"`
	Details   map[string]interface{} `json:"details"`
}

// AgentMetric is a per-research-agent counter set.
type AgentMetric struct {
	AgentID         string
	TotalRuns       int64
	TotalCandidates int64
	TotalSelected   int64
	TotalLatencyMS  int64
	ErrorCount      int64
	ZeroYieldStreak int64
	TotalZeroYields int64
}

// AvgLatency returns the mean per-run latency in milliseconds.
func (m AgentMetric) AvgLatency() float64 {
	if m.TotalRuns == 0 {
		return 0
	}
	return float64(m.TotalLatencyMS) / float64(m.TotalRuns)
}

// AvgYield returns the mean number of candidates produced per run.
func (m AgentMetric) AvgYield() float64 {
	if m.TotalRuns == 0 {
		return 0
	}
	return float64(m.TotalCandidates) / float64(m.TotalRuns)
}

// KeepRate returns the fraction of produced candidates that survived to
// selection.
func (m AgentMetric) KeepRate() float64 {
	if m.TotalCandidates == 0 {
		return 0
	}
	return float64(m.TotalSelected) / float64(m.TotalCandidates)
}

// ErrorRate returns the fraction of runs that errored.
func (m AgentMetric) ErrorRate() float64 {
	if m.TotalRuns == 0 {
		return 0
	}
	return float64(m.ErrorCount) / float64(m.TotalRuns)
}

// StageMetric is a per-pipeline-stage counter set.
type StageMetric struct {
	Stage      string
	TotalRuns  int64
	ErrorCount int64
}

// FailureRate returns the fraction of stage runs that errored.
func (m StageMetric) FailureRate() float64 {
	if m.TotalRuns == 0 {
		return 0
	}
	return float64(m.ErrorCount) / float64(m.TotalRuns)
}
