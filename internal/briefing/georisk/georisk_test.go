package georisk

import (
	"testing"

	"github.com/alexroessner/newsfeed/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAssessComputesEscalation(t *testing.T) {
	tr := NewTracker()
	first := []models.Candidate{
		func() models.Candidate {
			c := models.NewCandidate("1", "Military tension rises near border", "", "", "reuters", "geopolitics", "a", 0.5, 0.5, 0.5, 0.5)
			c.Regions = []string{"eastern-europe"}
			return c
		}(),
	}
	entries := tr.Assess(first)
	assert.Len(t, entries, 1)
	assert.Greater(t, entries[0].RiskLevel, 0.0)

	second := []models.Candidate{
		func() models.Candidate {
			c := models.NewCandidate("2", "Coup attempt reported overnight", "", "", "ap", "geopolitics", "b", 0.5, 0.5, 0.5, 0.5)
			c.Regions = []string{"eastern-europe"}
			return c
		}(),
	}
	entries2 := tr.Assess(second)
	assert.True(t, entries2[0].IsEscalating())
}

func TestAssessEmptyRegionsProducesNoEntries(t *testing.T) {
	tr := NewTracker()
	entries := tr.Assess([]models.Candidate{
		models.NewCandidate("1", "No region mentioned here", "", "", "reuters", "tech", "a", 0.5, 0.5, 0.5, 0.5),
	})
	assert.Empty(t, entries)
}
