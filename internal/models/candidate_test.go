package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCandidateClampsAndSanitizes(t *testing.T) {
	c := NewCandidate("c1", "Headline\x00‮title", "summary", "javascript:alert(1)",
		"reuters", "tech", "agent-a", 1.5, -0.2, 0.5, 3.0)

	assert.Equal(t, 1.0, c.Evidence)
	assert.Equal(t, 0.0, c.Novelty)
	assert.Equal(t, 0.5, c.PreferenceFit)
	assert.Equal(t, 1.0, c.PredictionSignal)
	assert.Equal(t, "", c.URL, "disallowed scheme must be cleared")
	assert.NotContains(t, c.Title, "\x00")
	assert.NotContains(t, c.Title, "‮")
	assert.True(t, c.Valid())
}

func TestCandidateValidRejectsNonFiniteScores(t *testing.T) {
	c := Candidate{Title: "t", Source: "s", Topic: "x", Evidence: 2}
	assert.False(t, c.Valid())
}

func TestCompositeScoreWeighting(t *testing.T) {
	c := Candidate{Evidence: 1, Novelty: 0, PreferenceFit: 0, PredictionSignal: 0}
	w := ScoreWeights{Evidence: 0.4, Novelty: 0.3, PreferenceFit: 0.2, PredictionSignal: 0.1}
	assert.InDelta(t, 0.4, c.CompositeScore(w), 1e-9)
}

func TestAddCorroborationDeduplicates(t *testing.T) {
	c := Candidate{}
	c.AddCorroboration("bbc")
	c.AddCorroboration("bbc")
	c.AddCorroboration("cnn")
	assert.Equal(t, []string{"bbc", "cnn"}, c.CorroboratedBy)
}

func TestUrgencyRankOrdering(t *testing.T) {
	assert.True(t, UrgencyCritical.Rank() > UrgencyBreaking.Rank())
	assert.Equal(t, UrgencyBreaking, MaxUrgency(UrgencyRoutine, UrgencyBreaking))
}
