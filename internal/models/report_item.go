package models

import "time"

// ReportItem is a candidate promoted into the final briefing with generated
// analysis. WhyItMatters must never equal Candidate.Summary verbatim.
type ReportItem struct {
	Candidate         Candidate       `json:"candidate"`
	WhyItMatters      string          `json:"why_it_matters"`
	WhatChanged       string          `json:"what_changed"`
	PredictiveOutlook string          `json:"predictive_outlook"`
	AdjacentReads     []string        `json:"adjacent_reads,omitempty"`
	Confidence        *ConfidenceBand `json:"confidence,omitempty"`
	ThreadID          string          `json:"thread_id,omitempty"`
	ContrarianNote    string          `json:"contrarian_note,omitempty"`
}

// PipelineHealth summarizes this request's execution for observability,
// carried in DeliveryPayload.Metadata.
type PipelineHealth struct {
	AgentsTotal        int      `json:"agents_total"`
	AgentsContributing int      `json:"agents_contributing"`
	AgentsFailed       []string `json:"agents_failed"`
	StagesEnabled      []string `json:"stages_enabled"`
	StagesFailed       []string `json:"stages_failed"`
	TotalCandidates    int      `json:"total_candidates"`
}

// DeliveryPayload is the final immutable result of a request.
type DeliveryPayload struct {
	UserID       string            `json:"user_id"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Items        []ReportItem      `json:"items"`
	BriefingType string            `json:"briefing_type"`
	Threads      []NarrativeThread `json:"threads,omitempty"`
	GeoRisks     []GeoRiskEntry    `json:"geo_risks,omitempty"`
	Trends       []TrendSnapshot   `json:"trends,omitempty"`
	Metadata     Metadata          `json:"metadata"`
}

// Metadata wraps pipeline health plus free-form diagnostic fields, such as
// the error type/message carried on failure payloads.
type Metadata struct {
	PipelineHealth PipelineHealth `json:"pipeline_health"`
	ErrorType      string         `json:"error_type,omitempty"`
	ErrorMessage   string         `json:"error_message,omitempty"`
}

// ErrorPayload builds an empty-items payload for caller-visible failures
// such as a timeout or backpressure rejection.
func ErrorPayload(userID, errType, errMsg string) DeliveryPayload {
	return DeliveryPayload{
		UserID:      userID,
		GeneratedAt: time.Now().UTC(),
		Items:       []ReportItem{},
		Metadata: Metadata{
			ErrorType:    errType,
			ErrorMessage: errMsg,
		},
	}
}
