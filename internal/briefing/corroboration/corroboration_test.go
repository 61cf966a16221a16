package corroboration

import (
	"testing"

	"github.com/alexroessner/newsfeed/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDetectLinksSimilarTitlesFromDifferentSources(t *testing.T) {
	candidates := []models.Candidate{
		models.NewCandidate("1", "Central bank raises interest rates sharply", "", "https://reuters.com/a", "reuters", "markets", "agent-a", 0.5, 0.5, 0.5, 0.5),
		models.NewCandidate("2", "Central bank raises interest rates sharply today", "", "https://ap.org/b", "ap", "markets", "agent-b", 0.5, 0.5, 0.5, 0.5),
	}
	out := Detect(candidates, 0.5)
	assert.Contains(t, out[0].CorroboratedBy, "ap")
	assert.Contains(t, out[1].CorroboratedBy, "reuters")
}

func TestDetectIgnoresSameSource(t *testing.T) {
	candidates := []models.Candidate{
		models.NewCandidate("1", "Market selloff continues into the afternoon", "", "", "reuters", "markets", "agent-a", 0.5, 0.5, 0.5, 0.5),
		models.NewCandidate("2", "Market selloff continues into the afternoon", "", "", "reuters", "markets", "agent-b", 0.5, 0.5, 0.5, 0.5),
	}
	out := Detect(candidates, 0.5)
	assert.Empty(t, out[0].CorroboratedBy)
}

func TestDetectIgnoresPlaceholderHosts(t *testing.T) {
	candidates := []models.Candidate{
		models.NewCandidate("1", "A synthetic simulated headline about markets", "", "https://example.com/a", "sim-a", "markets", "agent-a", 0.5, 0.5, 0.5, 0.5),
		models.NewCandidate("2", "A synthetic simulated headline about markets", "", "https://example.com/b", "sim-b", "markets", "agent-b", 0.5, 0.5, 0.5, 0.5),
	}
	out := Detect(candidates, 0.5)
	assert.Empty(t, out[0].CorroboratedBy)
}

func TestDetectGatesIndividualPlaceholderHostEvenAgainstRealSource(t *testing.T) {
	candidates := []models.Candidate{
		models.NewCandidate("1", "Central bank raises interest rates sharply", "", "https://example.com/a", "sim-a", "markets", "agent-a", 0.5, 0.5, 0.5, 0.5),
		models.NewCandidate("2", "Central bank raises interest rates sharply today", "", "https://reuters.com/b", "reuters", "markets", "agent-b", 0.5, 0.5, 0.5, 0.5),
	}
	out := Detect(candidates, 0.5)
	assert.Empty(t, out[0].CorroboratedBy, "placeholder-host candidate must not corroborate a real source")
	assert.Empty(t, out[1].CorroboratedBy, "real source must not be corroborated by a placeholder-host candidate")
}

func TestDetectGatesEmptyURL(t *testing.T) {
	candidates := []models.Candidate{
		models.NewCandidate("1", "Central bank raises interest rates sharply", "", "", "sim-a", "markets", "agent-a", 0.5, 0.5, 0.5, 0.5),
		models.NewCandidate("2", "Central bank raises interest rates sharply today", "", "https://reuters.com/b", "reuters", "markets", "agent-b", 0.5, 0.5, 0.5, 0.5),
	}
	out := Detect(candidates, 0.5)
	assert.Empty(t, out[0].CorroboratedBy, "empty-URL candidate must not corroborate")
	assert.Empty(t, out[1].CorroboratedBy, "real source must not be corroborated by an empty-URL candidate")
}

func TestBoostForCorroborationDiminishes(t *testing.T) {
	one := BoostForCorroboration([]string{"a"}, 0.85)
	two := BoostForCorroboration([]string{"a", "b"}, 0.85)
	three := BoostForCorroboration([]string{"a", "b", "c"}, 0.85)
	assert.Greater(t, two-one, 0.0)
	assert.Less(t, three-two, two-one)
}
