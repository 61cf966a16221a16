package credibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedAppliesTierDefaults(t *testing.T) {
	tr := NewTracker()
	tr.Seed("reuters", "tier1")
	rec := tr.Get("reuters")
	assert.Equal(t, TierDefaults["tier1"].ReliabilityScore, rec.ReliabilityScore)
}

func TestGetSeedsUnknownSourceAsTier2(t *testing.T) {
	tr := NewTracker()
	rec := tr.Get("some-random-blog")
	assert.Equal(t, TierDefaults["tier2"].ReliabilityScore, rec.ReliabilityScore)
}

func TestRecordCorroborationIncreasesRate(t *testing.T) {
	tr := NewTracker()
	tr.Seed("ap", "tier1")
	before := tr.Get("ap").CorroborationRate
	tr.RecordCorroboration("ap")
	after := tr.Get("ap").CorroborationRate
	assert.Greater(t, after, before)
}

func TestApplyFeedbackMovesAccuracy(t *testing.T) {
	tr := NewTracker()
	tr.Seed("blog", "tier2")
	before := tr.Get("blog").HistoricalAccuracy
	tr.ApplyFeedback("blog", false)
	after := tr.Get("blog").HistoricalAccuracy
	assert.Less(t, after, before)
}

func TestTrustFactorWeightedBlend(t *testing.T) {
	tr := NewTracker()
	tr.Seed("reuters", "tier1")
	rec := tr.Get("reuters")
	expected := rec.TrustFactor()
	assert.InDelta(t, expected, tr.TrustFactor("reuters"), 1e-9)
}

func TestRestoreReplacesContents(t *testing.T) {
	tr := NewTracker()
	tr.Seed("old-source", "tier1")
	tr.Restore(nil)
	rec := tr.Get("old-source")
	assert.Equal(t, TierDefaults["tier2"].ReliabilityScore, rec.ReliabilityScore)
}
