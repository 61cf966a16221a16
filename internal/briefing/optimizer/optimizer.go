// Package optimizer tracks per-agent and per-stage pipeline health, trips
// circuit breakers on failing agents, and proposes tuning actions.
package optimizer

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexroessner/newsfeed/internal/models"
)

// CircuitState is the closed set of per-agent circuit breaker states.
type CircuitState string

const (
	StateClosed   CircuitState = "closed"
	StateOpen     CircuitState = "open"
	StateHalfOpen CircuitState = "half_open"
)

type breakerEntry struct {
	state       CircuitState
	failures    int
	lastFailure time.Time
}

// CircuitBreaker is a per-agent breaker with automatic recovery: an agent
// failing failureThreshold times in a row is skipped until recoverySeconds
// has elapsed, at which point exactly one probe request is let through.
type CircuitBreaker struct {
	mu               sync.Mutex
	failureThreshold int
	recovery         time.Duration
	breakers         map[string]*breakerEntry
}

// NewCircuitBreaker builds a breaker with the given trip threshold and
// recovery window.
func NewCircuitBreaker(failureThreshold int, recoverySeconds float64) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		recovery:         time.Duration(recoverySeconds * float64(time.Second)),
		breakers:         make(map[string]*breakerEntry),
	}
}

func (c *CircuitBreaker) entry(agentID string) *breakerEntry {
	e, ok := c.breakers[agentID]
	if !ok {
		e = &breakerEntry{state: StateClosed}
		c.breakers[agentID] = e
	}
	return e
}

// AllowRequest reports whether agentID should run this cycle.
func (c *CircuitBreaker) AllowRequest(agentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(agentID)
	switch e.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(e.lastFailure) >= c.recovery {
			e.state = StateHalfOpen
			return true
		}
		return false
	default: // half-open: the single probe was admitted on the open->half-open transition
		return false
	}
}

// RecordSuccess resets the breaker for agentID to closed.
func (c *CircuitBreaker) RecordSuccess(agentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(agentID)
	e.state = StateClosed
	e.failures = 0
}

// RecordFailure counts a consecutive failure, tripping the breaker open
// once failureThreshold is reached. A prior success resets the counter, so
// a recovered agent needs a fresh run of failures to trip again.
func (c *CircuitBreaker) RecordFailure(agentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(agentID)
	e.failures++
	e.lastFailure = time.Now()
	if e.failures >= c.failureThreshold {
		e.state = StateOpen
	}
}

// State returns the current circuit state for agentID.
func (c *CircuitBreaker) State(agentID string) CircuitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry(agentID).state
}

// BreakerSnapshot is a reporting view of one agent's circuit state.
type BreakerSnapshot struct {
	AgentID             string       `json:"agent_id"`
	State               CircuitState `json:"state"`
	ConsecutiveFailures int          `json:"consecutive_failures"`
	LastFailureAgoSec   float64      `json:"last_failure_ago_s"`
}

// Snapshot reports the state of every breaker that isn't in its default
// closed-and-clean state.
func (c *CircuitBreaker) Snapshot() []BreakerSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []BreakerSnapshot
	for id, e := range c.breakers {
		if e.state == StateClosed && e.failures == 0 {
			continue
		}
		ago := 0.0
		if !e.lastFailure.IsZero() {
			ago = time.Since(e.lastFailure).Seconds()
		}
		out = append(out, BreakerSnapshot{AgentID: id, State: e.state, ConsecutiveFailures: e.failures, LastFailureAgoSec: ago})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out
}

// Recommendation is a proposed tuning action against an agent or stage.
type Recommendation struct {
	AgentID  string `json:"agent_id"`
	Action   string `json:"action"` // disable, reduce_weight, increase_weight, investigate
	Reason   string `json:"reason"`
	Severity string `json:"severity"` // low, medium, high
}

// Thresholds configures when Analyze emits a recommendation.
type Thresholds struct {
	ErrorRate        float64
	MinYield         float64
	LatencyMS        float64
	KeepRate         float64
	ZeroYieldStreak  int64
}

// DefaultThresholds mirrors the original agent's defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{ErrorRate: 0.3, MinYield: 0.5, LatencyMS: 10000, KeepRate: 0.1, ZeroYieldStreak: 5}
}

// Optimizer tracks agent/stage metrics, runs the circuit breaker, and
// proposes tuning recommendations over time.
type Optimizer struct {
	mu       sync.Mutex
	agents   map[string]*models.AgentMetric
	stages   map[string]*models.StageMetric
	disabled map[string]bool
	weights  map[string]float64
	th       Thresholds

	Breaker *CircuitBreaker
}

// New builds an Optimizer with the given thresholds and circuit breaker
// tuning.
func New(th Thresholds, circuitFailureThreshold int, circuitRecoverySeconds float64) *Optimizer {
	return &Optimizer{
		agents:   make(map[string]*models.AgentMetric),
		stages:   make(map[string]*models.StageMetric),
		disabled: make(map[string]bool),
		weights:  make(map[string]float64),
		th:       th,
		Breaker:  NewCircuitBreaker(circuitFailureThreshold, circuitRecoverySeconds),
	}
}

// RecordAgentRun records one research-agent execution.
func (o *Optimizer) RecordAgentRun(agentID string, candidateCount int, latency time.Duration, errored bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	m, ok := o.agents[agentID]
	if !ok {
		m = &models.AgentMetric{AgentID: agentID}
		o.agents[agentID] = m
	}
	m.TotalRuns++
	m.TotalCandidates += int64(candidateCount)
	m.TotalLatencyMS += latency.Milliseconds()
	if errored {
		m.ErrorCount++
	}
	if candidateCount == 0 && !errored {
		m.ZeroYieldStreak++
		m.TotalZeroYields++
	} else {
		m.ZeroYieldStreak = 0
	}

	if errored {
		o.Breaker.RecordFailure(agentID)
	} else {
		o.Breaker.RecordSuccess(agentID)
	}
}

// RecordAgentSelection records how many of an agent's candidates survived
// expert selection.
func (o *Optimizer) RecordAgentSelection(agentID string, selected int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if m, ok := o.agents[agentID]; ok {
		m.TotalSelected += int64(selected)
	}
}

// RecordStageRun records one pipeline-stage execution.
func (o *Optimizer) RecordStageRun(stage string, latency time.Duration, failed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	m, ok := o.stages[stage]
	if !ok {
		m = &models.StageMetric{Stage: stage}
		o.stages[stage] = m
	}
	m.TotalRuns++
	if failed {
		m.ErrorCount++
	}
}

// IsAgentDisabled reports whether the optimizer has disabled agentID.
func (o *Optimizer) IsAgentDisabled(agentID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disabled[agentID]
}

// WeightOverride returns the weight multiplier for agentID (1.0 if none).
func (o *Optimizer) WeightOverride(agentID string) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if w, ok := o.weights[agentID]; ok {
		return w
	}
	return 1.0
}

// Analyze inspects all tracked metrics and returns tuning recommendations.
func (o *Optimizer) Analyze() []Recommendation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.analyzeLocked()
}

func (o *Optimizer) analyzeLocked() []Recommendation {
	var recs []Recommendation

	ids := make([]string, 0, len(o.agents))
	for id := range o.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, agentID := range ids {
		m := o.agents[agentID]
		if m.TotalRuns < 3 {
			continue
		}
		if m.ErrorRate() > o.th.ErrorRate {
			severity := "medium"
			if m.ErrorRate() > 0.5 {
				severity = "high"
			}
			recs = append(recs, Recommendation{AgentID: agentID, Action: "investigate", Reason: "error rate exceeds threshold", Severity: severity})
		}
		if m.AvgYield() < o.th.MinYield {
			recs = append(recs, Recommendation{AgentID: agentID, Action: "investigate", Reason: "average yield below minimum", Severity: "medium"})
		}
		if m.TotalCandidates > 10 && m.KeepRate() < o.th.KeepRate {
			recs = append(recs, Recommendation{AgentID: agentID, Action: "reduce_weight", Reason: "experts consistently reject this agent's candidates", Severity: "medium"})
		}
		if m.AvgLatency() > o.th.LatencyMS {
			recs = append(recs, Recommendation{AgentID: agentID, Action: "investigate", Reason: "average latency exceeds threshold", Severity: "low"})
		}
		if m.ZeroYieldStreak >= o.th.ZeroYieldStreak {
			recs = append(recs, Recommendation{AgentID: agentID, Action: "investigate", Reason: "agent returned zero candidates for consecutive runs without error", Severity: "high"})
		}
	}

	stageIDs := make([]string, 0, len(o.stages))
	for id := range o.stages {
		stageIDs = append(stageIDs, id)
	}
	sort.Strings(stageIDs)
	for _, stage := range stageIDs {
		m := o.stages[stage]
		if m.TotalRuns >= 3 && m.FailureRate() > o.th.ErrorRate {
			recs = append(recs, Recommendation{AgentID: "stage:" + stage, Action: "investigate", Reason: "pipeline stage failure rate exceeds threshold", Severity: "high"})
		}
	}
	return recs
}

// ApplyRecommendations analyzes current metrics and applies weight
// reductions (and, if autoDisable is set, disables agents flagged high
// severity). Returns a human-readable description of each action taken.
func (o *Optimizer) ApplyRecommendations(autoDisable bool) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	recs := o.analyzeLocked()
	var actions []string
	for _, r := range recs {
		if r.Severity == "high" && r.Action == "investigate" && autoDisable {
			if !o.disabled[r.AgentID] && !strings.HasPrefix(r.AgentID, "stage:") {
				o.disabled[r.AgentID] = true
				actions = append(actions, "disabled "+r.AgentID+": "+r.Reason)
			}
		}
		if r.Action == "reduce_weight" {
			current, ok := o.weights[r.AgentID]
			if !ok {
				current = 1.0
			}
			next := current * 0.7
			if next < 0.1 {
				next = 0.1
			}
			o.weights[r.AgentID] = next
			actions = append(actions, "reduced weight for "+r.AgentID)
		}
	}
	return actions
}

// HealthReport is the full observability snapshot of the optimizer's state.
type HealthReport struct {
	Agents          map[string]models.AgentMetric  `json:"agents"`
	Stages          map[string]models.StageMetric  `json:"stages"`
	Recommendations []Recommendation               `json:"recommendations"`
	DisabledAgents  []string                       `json:"disabled_agents"`
	WeightOverrides map[string]float64              `json:"weight_overrides"`
	CircuitBreakers []BreakerSnapshot               `json:"circuit_breakers"`
}

// HealthReport assembles the current state for the status endpoint.
func (o *Optimizer) HealthReport() HealthReport {
	o.mu.Lock()
	agents := make(map[string]models.AgentMetric, len(o.agents))
	for id, m := range o.agents {
		agents[id] = *m
	}
	stages := make(map[string]models.StageMetric, len(o.stages))
	for id, m := range o.stages {
		stages[id] = *m
	}
	disabled := make([]string, 0, len(o.disabled))
	for id := range o.disabled {
		disabled = append(disabled, id)
	}
	sort.Strings(disabled)
	weights := make(map[string]float64, len(o.weights))
	for id, w := range o.weights {
		weights[id] = w
	}
	recs := o.analyzeLocked()
	o.mu.Unlock()

	return HealthReport{
		Agents:          agents,
		Stages:          stages,
		Recommendations: recs,
		DisabledAgents:  disabled,
		WeightOverrides: weights,
		CircuitBreakers: o.Breaker.Snapshot(),
	}
}
