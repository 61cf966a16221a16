package feedback

import (
	"testing"

	"github.com/alexroessner/newsfeed/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestParseMoreAndLessTopicDeltas(t *testing.T) {
	cmds := Parse("more geopolitics and less crypto", 0, 0)
	assert.Contains(t, cmds, Command{Action: "topic_delta", Topic: "geopolitics", Value: "+0.20"})
	assert.Contains(t, cmds, Command{Action: "topic_delta", Topic: "crypto", Value: "-0.20"})
}

func TestParseToneAndFormat(t *testing.T) {
	cmds := Parse("tone: executive, format=bullet", 0, 0)
	assert.Contains(t, cmds, Command{Action: "tone", Value: "executive"})
	assert.Contains(t, cmds, Command{Action: "format", Value: "bullet"})
}

func TestParseRegionAddAndRemove(t *testing.T) {
	add := Parse("region: middle east", 0, 0)
	assert.Contains(t, add, Command{Action: "region", Value: "middle_east"})

	remove := Parse("remove region middle east", 0, 0)
	assert.Contains(t, remove, Command{Action: "remove_region", Value: "middle_east"})
}

func TestParseCadenceAndMaxItems(t *testing.T) {
	cmds := Parse("cadence: morning, max: 15", 0, 0)
	assert.Contains(t, cmds, Command{Action: "cadence", Value: "morning"})
	assert.Contains(t, cmds, Command{Action: "max_items", Value: "15"})
}

func TestParseSourceBoostAndDemoteFiltersNoise(t *testing.T) {
	cmds := Parse("prefer reuters and demote buzzsite", 0, 0)
	assert.Contains(t, cmds, Command{Action: "source_boost", Topic: "reuters", Value: "+1.0"})
	assert.Contains(t, cmds, Command{Action: "source_demote", Topic: "buzzsite", Value: "-1.0"})

	noiseOnly := Parse("demote your performance", 0, 0)
	for _, c := range noiseOnly {
		assert.NotEqual(t, "your", c.Topic)
	}
}

func TestParseReset(t *testing.T) {
	cmds := Parse("please reset preferences", 0, 0)
	assert.Contains(t, cmds, Command{Action: "reset"})
}

func TestParseRichFuzzyCorrectsTopic(t *testing.T) {
	known := map[string]bool{"geopolitics": true, "crypto": true}
	result := ParseRich("more geopolitcs", known, 0, 0)
	assert.Len(t, result.Commands, 1)
	assert.Equal(t, "geopolitics", result.Commands[0].Topic)
	assert.NotEmpty(t, result.Corrections)
}

func TestParseRichFuzzyCorrectsTone(t *testing.T) {
	known := map[string]bool{}
	result := ParseRich("tone: consise", known, 0, 0)
	assert.Len(t, result.Commands, 1)
	assert.Equal(t, "concise", result.Commands[0].Value)
	assert.NotEmpty(t, result.Corrections)
}

func TestParseRichUnrecognizedTone(t *testing.T) {
	known := map[string]bool{}
	result := ParseRich("tone: zzzzzzz", known, 0, 0)
	assert.Empty(t, result.Commands)
	assert.NotEmpty(t, result.Unrecognized)
}

func TestApplyTopicDeltaClamps(t *testing.T) {
	profile := models.DefaultProfile("u1")
	profile.TopicWeights["ai"] = 0.95
	err := Apply(profile, Command{Action: "topic_delta", Topic: "ai", Value: "+0.20"})
	assert.NoError(t, err)
	assert.Equal(t, 1.0, profile.TopicWeights["ai"])
}

func TestApplyMaxItemsClamps(t *testing.T) {
	profile := models.DefaultProfile("u1")
	err := Apply(profile, Command{Action: "max_items", Value: "500"})
	assert.NoError(t, err)
	assert.Equal(t, 50, profile.MaxItems)
}

func TestApplyRegionAddIsIdempotent(t *testing.T) {
	profile := models.DefaultProfile("u1")
	assert.NoError(t, Apply(profile, Command{Action: "region", Value: "asia"}))
	assert.NoError(t, Apply(profile, Command{Action: "region", Value: "asia"}))
	assert.Equal(t, []string{"asia"}, profile.RegionsOfInterest)
}

func TestApplyRemoveRegion(t *testing.T) {
	profile := models.DefaultProfile("u1")
	profile.RegionsOfInterest = []string{"asia", "europe"}
	assert.NoError(t, Apply(profile, Command{Action: "remove_region", Value: "asia"}))
	assert.Equal(t, []string{"europe"}, profile.RegionsOfInterest)
}

func TestApplyReset(t *testing.T) {
	profile := models.DefaultProfile("u1")
	profile.Tone = "deep"
	profile.TopicWeights["ai"] = 0.9
	assert.NoError(t, Apply(profile, Command{Action: "reset"}))
	assert.Equal(t, "concise", profile.Tone)
	assert.Empty(t, profile.TopicWeights)
}

func TestApplyTextAppliesEveryParsedCommand(t *testing.T) {
	profile := models.DefaultProfile("u1")
	known := map[string]bool{"geopolitics": true}
	result := ApplyText(profile, "more geopolitics, tone: analyst", known)
	assert.Len(t, result.Commands, 2)
	assert.Equal(t, "analyst", profile.Tone)
	assert.Greater(t, profile.TopicWeights["geopolitics"], 0.0)
}
