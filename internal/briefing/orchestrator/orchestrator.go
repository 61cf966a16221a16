// Package orchestrator compiles weighted research briefs from user intent,
// routes them to capable research agents, and tracks each request through
// its lifecycle stages.
package orchestrator

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexroessner/newsfeed/internal/config"
	"github.com/alexroessner/newsfeed/internal/models"
)

// Stage is one lifecycle stage a request moves through, in order.
type Stage string

const (
	StageQueued           Stage = "queued"
	StageCompilingBrief   Stage = "compiling_brief"
	StageResearching      Stage = "researching"
	StageEnriching        Stage = "enriching"
	StageExpertReview     Stage = "expert_review"
	StageEditorialReview  Stage = "editorial_review"
	StageFormatting       Stage = "formatting"
	StageDelivering       Stage = "delivering"
	StageComplete         Stage = "complete"
	StageFailed           Stage = "failed"
)

// Lifecycle tracks one request's progress through Stage transitions,
// recording how long each stage took.
type Lifecycle struct {
	RequestID      string
	UserID         string
	Stage          Stage
	CreatedAt      time.Time
	StageTimes     map[string]float64
	stageEnteredAt time.Time
	CandidateCount int
	SelectedCount  int
	Error          string
}

// NewLifecycle starts a lifecycle at StageQueued.
func NewLifecycle(requestID, userID string) *Lifecycle {
	now := time.Now()
	return &Lifecycle{
		RequestID:      requestID,
		UserID:         userID,
		Stage:          StageQueued,
		CreatedAt:      now,
		StageTimes:     make(map[string]float64),
		stageEnteredAt: now,
	}
}

// Advance moves the lifecycle to newStage, recording the elapsed time
// spent in the stage it's leaving.
func (l *Lifecycle) Advance(newStage Stage) {
	now := time.Now()
	l.StageTimes[string(l.Stage)] = now.Sub(l.stageEnteredAt).Seconds()
	l.Stage = newStage
	l.stageEnteredAt = now
}

// Fail marks the lifecycle failed with the given error and advances to
// StageFailed.
func (l *Lifecycle) Fail(err string) {
	l.Error = err
	l.Advance(StageFailed)
}

// TotalElapsed returns how long the request has been running in total.
func (l *Lifecycle) TotalElapsed() time.Duration {
	return time.Since(l.CreatedAt)
}

// Snapshot is a point-in-time, JSON-friendly view of a Lifecycle.
type Snapshot struct {
	RequestID  string             `json:"request_id"`
	UserID     string             `json:"user_id"`
	Stage      string             `json:"stage"`
	ElapsedS   float64            `json:"elapsed_s"`
	StageTimes map[string]float64 `json:"stage_times"`
	Candidates int                `json:"candidates"`
	Selected   int                `json:"selected"`
	Error      string             `json:"error,omitempty"`
}

// Snapshot renders the lifecycle's current state.
func (l *Lifecycle) Snapshot() Snapshot {
	return Snapshot{
		RequestID:  l.RequestID,
		UserID:     l.UserID,
		Stage:      string(l.Stage),
		ElapsedS:   l.TotalElapsed().Seconds(),
		StageTimes: l.StageTimes,
		Candidates: l.CandidateCount,
		Selected:   l.SelectedCount,
		Error:      l.Error,
	}
}

// topicCapabilities maps topics to the agent sources most capable of
// covering them, ordered by descending relevance.
var topicCapabilities = map[string][]string{
	"geopolitics": {"reuters", "ap", "bbc", "guardian", "ft", "aljazeera", "gdelt", "x", "reddit", "web"},
	"ai_policy":   {"arxiv", "hackernews", "x", "reddit", "guardian", "web", "reuters", "bbc"},
	"technology":  {"hackernews", "arxiv", "x", "reddit", "web", "guardian", "bbc"},
	"markets":     {"ft", "reuters", "x", "web", "reddit", "hackernews", "bbc"},
	"crypto":      {"x", "reddit", "web", "hackernews", "ft"},
	"climate":     {"guardian", "bbc", "reuters", "ap", "web", "reddit", "arxiv"},
	"science":     {"arxiv", "hackernews", "guardian", "bbc", "reddit", "web"},
	"middle_east": {"aljazeera", "bbc", "reuters", "ap", "guardian", "gdelt", "x"},
	"africa":      {"aljazeera", "bbc", "reuters", "gdelt", "guardian", "web"},
}

var sourcePriority = map[string]float64{
	"reuters": 0.95, "ap": 0.93, "bbc": 0.90, "guardian": 0.88, "ft": 0.90,
	"aljazeera": 0.80, "arxiv": 0.78, "hackernews": 0.65, "reddit": 0.58,
	"x": 0.55, "gdelt": 0.60, "web": 0.50,
}

var defaultWeightedTopics = map[string]float64{
	"geopolitics": 0.8,
	"ai_policy":   0.7,
	"technology":  0.6,
	"markets":     0.5,
}

// Orchestrator is the central planner: it compiles briefs, routes them to
// capable agents, and tracks requests through their lifecycle.
type Orchestrator struct {
	mu              sync.Mutex
	agentConfigs    []config.AgentConfig
	defaultMaxItems int

	activeRequests map[string]*Lifecycle // most recent lifecycle per user
	completed      []Snapshot
	maxHistory     int
}

// New builds an Orchestrator over the given agent roster.
func New(agentConfigs []config.AgentConfig, defaultMaxItems int) *Orchestrator {
	return &Orchestrator{
		agentConfigs:    agentConfigs,
		defaultMaxItems: defaultMaxItems,
		activeRequests:  make(map[string]*Lifecycle),
		maxHistory:      100,
	}
}

// CompileBrief builds a weighted ResearchTask from the user's prompt and
// profile, starting a new Lifecycle for the request.
func (o *Orchestrator) CompileBrief(userID, prompt string, profile models.UserProfile, now time.Time) (models.ResearchTask, *Lifecycle) {
	requestID := fmt.Sprintf("req-%d-%s", now.Unix(), shortID(userID))
	lifecycle := NewLifecycle(requestID, userID)
	lifecycle.Advance(StageCompilingBrief)

	weightedTopics := make(map[string]float64, len(profile.TopicWeights))
	for k, v := range profile.TopicWeights {
		weightedTopics[k] = v
	}
	if len(weightedTopics) == 0 {
		for k, v := range defaultWeightedTopics {
			weightedTopics[k] = v
		}
	}

	promptLower := strings.ToLower(prompt)
	candidateTopics := make(map[string]bool, len(weightedTopics)+len(topicCapabilities))
	for t := range weightedTopics {
		candidateTopics[t] = true
	}
	for t := range topicCapabilities {
		candidateTopics[t] = true
	}
	for topic := range candidateTopics {
		keywords := strings.Fields(strings.ReplaceAll(topic, "_", " "))
		for _, kw := range keywords {
			if strings.Contains(promptLower, kw) {
				base := weightedTopics[topic]
				if base == 0 {
					base = 0.3
				}
				weightedTopics[topic] = minF(1.0, base+0.3)
				break
			}
		}
	}

	for _, region := range profile.RegionsOfInterest {
		if _, ok := topicCapabilities[region]; ok {
			base := weightedTopics[region]
			if base == 0 {
				base = 0.3
			}
			weightedTopics[region] = minF(1.0, base+0.2)
		}
	}

	task := models.ResearchTask{
		RequestID:      requestID,
		UserID:         userID,
		Prompt:         prompt,
		WeightedTopics: weightedTopics,
	}

	o.mu.Lock()
	o.activeRequests[userID] = lifecycle
	o.mu.Unlock()

	return task, lifecycle
}

func shortID(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

type scoredAgent struct {
	cfg   config.AgentConfig
	score float64
}

// SelectAgents ranks the configured agent roster by relevance to task's
// weighted topics, most relevant first.
func (o *Orchestrator) SelectAgents(task models.ResearchTask) []config.AgentConfig {
	type topicWeight struct {
		topic  string
		weight float64
	}
	topics := make([]topicWeight, 0, len(task.WeightedTopics))
	for t, w := range task.WeightedTopics {
		topics = append(topics, topicWeight{t, w})
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].weight > topics[j].weight })
	if len(topics) > 5 {
		topics = topics[:5]
	}

	scored := make([]scoredAgent, 0, len(o.agentConfigs))
	for _, agentCfg := range o.agentConfigs {
		score := 0.0
		for _, tw := range topics {
			capable := topicCapabilities[tw.topic]
			pos := indexOf(capable, agentSource(agentCfg))
			if pos < 0 {
				continue
			}
			positionBonus := 1.0 - (float64(pos)/maxF(float64(len(capable)), 1))*0.3
			score += tw.weight * positionBonus
		}
		score += sourcePriorityFor(agentSource(agentCfg)) * 0.1
		scored = append(scored, scoredAgent{cfg: agentCfg, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	selected := make([]config.AgentConfig, len(scored))
	for i, s := range scored {
		selected[i] = s.cfg
	}
	return selected
}

// agentSource derives an agent's source identity from its configured ID;
// concrete agents (rss/api) are configured with the real source name
// ("reuters", "bbc") as their ID, while simulated fallback agents use
// synthetic IDs that simply won't match any capability list.
func agentSource(cfg config.AgentConfig) string {
	return cfg.ID
}

func sourcePriorityFor(source string) float64 {
	if v, ok := sourcePriority[source]; ok {
		return v
	}
	return 0.50
}

func indexOf(list []string, v string) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// RecordResearchResults logs the research phase's yield and advances the
// lifecycle to enrichment.
func (o *Orchestrator) RecordResearchResults(l *Lifecycle, candidateCount int) {
	l.CandidateCount = candidateCount
	l.Advance(StageEnriching)
}

// RecordSelection logs the expert council's yield and advances the
// lifecycle to editorial review.
func (o *Orchestrator) RecordSelection(l *Lifecycle, selectedCount int) {
	l.SelectedCount = selectedCount
	l.Advance(StageEditorialReview)
}

// RecordCompletion advances the lifecycle to StageComplete and archives
// its snapshot for the rolling metrics window.
func (o *Orchestrator) RecordCompletion(l *Lifecycle) {
	l.Advance(StageComplete)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = append(o.completed, l.Snapshot())
	if len(o.completed) > o.maxHistory {
		o.completed = o.completed[len(o.completed)-o.maxHistory:]
	}
}

// GetLifecycle returns the most recently compiled lifecycle for userID,
// if one is active.
func (o *Orchestrator) GetLifecycle(userID string) (*Lifecycle, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.activeRequests[userID]
	return l, ok
}

// Metrics is the aggregate view over completed requests.
type Metrics struct {
	TotalRequests int     `json:"total_requests"`
	AvgElapsedS   float64 `json:"avg_elapsed_s"`
	AvgCandidates float64 `json:"avg_candidates"`
	AvgSelected   float64 `json:"avg_selected"`
	FailedCount   int     `json:"failed_count"`
}

// Metrics summarizes the rolling window of completed requests.
func (o *Orchestrator) Metrics() Metrics {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.completed) == 0 {
		return Metrics{}
	}
	var totalElapsed, totalCandidates, totalSelected float64
	failed := 0
	for _, r := range o.completed {
		totalElapsed += r.ElapsedS
		totalCandidates += float64(r.Candidates)
		totalSelected += float64(r.Selected)
		if r.Error != "" {
			failed++
		}
	}
	n := float64(len(o.completed))
	return Metrics{
		TotalRequests: len(o.completed),
		AvgElapsedS:   totalElapsed / n,
		AvgCandidates: totalCandidates / n,
		AvgSelected:   totalSelected / n,
		FailedCount:   failed,
	}
}
