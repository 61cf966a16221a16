package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerTripsAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, 60)
	assert.True(t, cb.AllowRequest("agent-a"))

	cb.RecordFailure("agent-a")
	cb.RecordFailure("agent-a")
	assert.Equal(t, StateClosed, cb.State("agent-a"))

	cb.RecordFailure("agent-a")
	assert.Equal(t, StateOpen, cb.State("agent-a"))
	assert.False(t, cb.AllowRequest("agent-a"))
}

func TestCircuitBreakerHalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker(1, 0)
	cb.RecordFailure("agent-b")
	assert.Equal(t, StateOpen, cb.State("agent-b"))

	time.Sleep(time.Millisecond)
	assert.True(t, cb.AllowRequest("agent-b"))
	assert.Equal(t, StateHalfOpen, cb.State("agent-b"))

	cb.RecordSuccess("agent-b")
	assert.Equal(t, StateClosed, cb.State("agent-b"))
}

func TestOptimizerFlagsHighErrorRate(t *testing.T) {
	o := New(DefaultThresholds(), 3, 120)
	for i := 0; i < 5; i++ {
		o.RecordAgentRun("flaky", 1, time.Millisecond, true)
	}
	recs := o.Analyze()
	assert.NotEmpty(t, recs)
	assert.Equal(t, "flaky", recs[0].AgentID)
}

func TestOptimizerZeroYieldStreak(t *testing.T) {
	o := New(DefaultThresholds(), 3, 120)
	for i := 0; i < 6; i++ {
		o.RecordAgentRun("silent", 0, time.Millisecond, false)
	}
	recs := o.Analyze()
	found := false
	for _, r := range recs {
		if r.AgentID == "silent" && r.Severity == "high" {
			found = true
		}
	}
	assert.True(t, found, "expected a high-severity zero-yield recommendation")
}

func TestApplyRecommendationsReducesWeight(t *testing.T) {
	o := New(DefaultThresholds(), 3, 120)
	for i := 0; i < 15; i++ {
		o.RecordAgentRun("rejected", 1, time.Millisecond, false)
	}
	actions := o.ApplyRecommendations(false)
	assert.NotEmpty(t, actions)
	assert.Less(t, o.WeightOverride("rejected"), 1.0)
}
