// Package feedback parses natural-language preference commands ("more
// geopolitics, less crypto", "tone: executive") and applies them to a
// user's profile, with fuzzy correction for near-miss topic/tone/format
// values.
package feedback

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alexroessner/newsfeed/internal/models"
)

// Command is one parsed preference instruction.
type Command struct {
	Action string // topic_delta, tone, format, region, remove_region, cadence, max_items, source_boost, source_demote, reset
	Topic  string
	Value  string
}

// ParseResult carries the parsed commands plus diagnostics so the caller
// can tell the user what was corrected or couldn't be understood.
type ParseResult struct {
	Commands     []Command
	Corrections  []string
	Unrecognized []string
}

var validTones = []string{"concise", "analyst", "brief", "deep", "executive"}
var validFormats = []string{"bullet", "sections", "narrative"}
var validCadences = []string{"on_demand", "morning", "evening", "realtime"}

var sourceNoise = map[string]bool{
	"your": true, "my": true, "the": true, "this": true, "that": true, "it": true,
	"its": true, "our": true, "all": true, "any": true, "more": true, "less": true,
	"a": true, "an": true, "in": true, "on": true, "is": true, "performance": true,
	"judgment": true, "judgement": true,
}

var (
	toneRe         = regexp.MustCompile(`(?i)\btone\s*[:=]?\s*(concise|analyst|brief|deep|executive)\b`)
	rawToneRe      = regexp.MustCompile(`(?i)\btone\s*[:=]?\s*(\w+)\b`)
	formatRe       = regexp.MustCompile(`(?i)\bformat\s*[:=]?\s*(bullet|sections|narrative)\b`)
	rawFormatRe    = regexp.MustCompile(`(?i)\bformat\s*[:=]?\s*(\w+)\b`)
	cadenceRe      = regexp.MustCompile(`(?i)\bcadence\s*[:=]?\s*(on_demand|morning|evening|realtime)\b`)
	rawCadenceRe   = regexp.MustCompile(`(?i)\bcadence\s*[:=]?\s*(\w+)\b`)
	maxItemsRe     = regexp.MustCompile(`(?i)\bmax\s*[:=]?\s*(\d+)\b`)
	sourcePreferRe = regexp.MustCompile(`(?i)\b(?:prefer|trust|boost)\s+(\w{2,})`)
	sourceDemoteRe = regexp.MustCompile(`(?i)\b(?:demote|distrust|penalize)\s+(\w{2,})`)
	resetRe        = regexp.MustCompile(`(?i)\breset\s+(?:all\s+)?preferences?\b`)
	moreKeywordRe  = regexp.MustCompile(`(?i)\bmore\s+`)
	lessKeywordRe  = regexp.MustCompile(`(?i)\bless\s+`)
	regionKeywordRe      = regexp.MustCompile(`(?i)\bregion\s*[:=]?\s*`)
	removeRegionKeywordRe = regexp.MustCompile(`(?i)\b(?:remove|drop)\s+region\s*[:=]?\s*`)
	moreStopRe  = regexp.MustCompile(`(?i)\b(?:and\s+less|less|tone|format|region|cadence)\b|[.,;]`)
	lessStopRe  = regexp.MustCompile(`(?i)\b(?:and\s+more|more|tone|format|region|cadence)\b|[.,;]`)
	regionStopRe = regexp.MustCompile(`(?i)\b(?:tone|format|more|less|cadence)\b|[.,;]`)
)

// cleanTopic lowercases and underscore-joins raw topic text.
func cleanTopic(raw string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	return strings.Trim(strings.Join(fields, "_"), "_")
}

// captureAfterKeyword finds every occurrence of keywordRe in text and
// captures the run of characters up to (but not including) the next
// match of stopRe, or the end of the string.
func captureAfterKeyword(text string, keywordRe, stopRe *regexp.Regexp) []string {
	var out []string
	matches := keywordRe.FindAllStringIndex(text, -1)
	for _, m := range matches {
		rest := text[m[1]:]
		end := len(rest)
		if loc := stopRe.FindStringIndex(rest); loc != nil {
			end = loc[0]
		}
		captured := strings.TrimSpace(rest[:end])
		if captured != "" {
			out = append(out, captured)
		}
	}
	return out
}

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

// similarityRatio returns a [0,1] similarity score, 1 meaning identical.
func similarityRatio(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// closestMatch returns the candidate from options with the highest
// similarity to target, provided it clears cutoff.
func closestMatch(target string, options []string, cutoff float64) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, opt := range options {
		score := similarityRatio(target, opt)
		if score > bestScore {
			bestScore = score
			best = opt
		}
	}
	if bestScore >= cutoff {
		return best, true
	}
	return "", false
}

// fuzzyCorrectTopic matches topic against knownTopics, returning a
// correction hint when a close-but-not-exact match is found. Unknown
// topics with no close match are passed through unchanged to allow new
// topics.
func fuzzyCorrectTopic(topic string, knownTopics map[string]bool) (string, string) {
	if knownTopics[topic] {
		return topic, ""
	}
	options := make([]string, 0, len(knownTopics))
	for t := range knownTopics {
		options = append(options, t)
	}
	if match, ok := closestMatch(topic, options, 0.6); ok {
		readable := strings.ReplaceAll(match, "_", " ")
		return match, fmt.Sprintf(`Did you mean "%s"? Applied as "%s".`, readable, readable)
	}
	return topic, ""
}

func fuzzyMatchValue(raw string, valid []string) (string, bool) {
	val := strings.ToLower(strings.TrimSpace(raw))
	for _, v := range valid {
		if v == val {
			return v, true
		}
	}
	return closestMatch(val, valid, 0.6)
}

// Parse extracts preference commands from free-form text, without fuzzy
// diagnostics. moreDelta/lessDelta default to +0.2/-0.2 when zero.
func Parse(text string, moreDelta, lessDelta float64) []Command {
	if moreDelta == 0 {
		moreDelta = 0.2
	}
	if lessDelta == 0 {
		lessDelta = -0.2
	}

	var commands []Command
	for _, topic := range captureAfterKeyword(text, moreKeywordRe, moreStopRe) {
		if t := cleanTopic(topic); t != "" {
			commands = append(commands, Command{Action: "topic_delta", Topic: t, Value: fmt.Sprintf("+%.2f", moreDelta)})
		}
	}
	for _, topic := range captureAfterKeyword(text, lessKeywordRe, lessStopRe) {
		if t := cleanTopic(topic); t != "" {
			commands = append(commands, Command{Action: "topic_delta", Topic: t, Value: fmt.Sprintf("%.2f", lessDelta)})
		}
	}
	if m := toneRe.FindStringSubmatch(text); m != nil {
		commands = append(commands, Command{Action: "tone", Value: strings.ToLower(m[1])})
	}
	if m := formatRe.FindStringSubmatch(text); m != nil {
		commands = append(commands, Command{Action: "format", Value: strings.ToLower(m[1])})
	}
	if regions := captureAfterKeyword(text, removeRegionKeywordRe, regionStopRe); len(regions) > 0 {
		commands = append(commands, Command{Action: "remove_region", Value: cleanTopic(regions[0])})
	} else if regions := captureAfterKeyword(text, regionKeywordRe, regionStopRe); len(regions) > 0 {
		commands = append(commands, Command{Action: "region", Value: cleanTopic(regions[0])})
	}
	if m := cadenceRe.FindStringSubmatch(text); m != nil {
		commands = append(commands, Command{Action: "cadence", Value: strings.ToLower(m[1])})
	}
	if m := maxItemsRe.FindStringSubmatch(text); m != nil {
		commands = append(commands, Command{Action: "max_items", Value: m[1]})
	}
	for _, m := range sourcePreferRe.FindAllStringSubmatch(text, -1) {
		src := strings.ToLower(m[1])
		if !sourceNoise[src] {
			commands = append(commands, Command{Action: "source_boost", Topic: src, Value: "+1.0"})
		}
	}
	for _, m := range sourceDemoteRe.FindAllStringSubmatch(text, -1) {
		src := strings.ToLower(m[1])
		if !sourceNoise[src] {
			commands = append(commands, Command{Action: "source_demote", Topic: src, Value: "-1.0"})
		}
	}
	if resetRe.MatchString(text) {
		commands = append(commands, Command{Action: "reset"})
	}
	return commands
}

// ParseRich parses text like Parse but fuzzy-corrects topic/tone/
// format/cadence values against knownTopics, recording a correction
// message for every near-miss and an unrecognized message for anything
// that doesn't come close to a valid value.
func ParseRich(text string, knownTopics map[string]bool, moreDelta, lessDelta float64) ParseResult {
	if moreDelta == 0 {
		moreDelta = 0.2
	}
	if lessDelta == 0 {
		lessDelta = -0.2
	}

	var result ParseResult

	for _, topic := range captureAfterKeyword(text, moreKeywordRe, moreStopRe) {
		if t := cleanTopic(topic); t != "" {
			corrected, hint := fuzzyCorrectTopic(t, knownTopics)
			if hint != "" {
				result.Corrections = append(result.Corrections, hint)
			}
			result.Commands = append(result.Commands, Command{Action: "topic_delta", Topic: corrected, Value: fmt.Sprintf("+%.2f", moreDelta)})
		}
	}
	for _, topic := range captureAfterKeyword(text, lessKeywordRe, lessStopRe) {
		if t := cleanTopic(topic); t != "" {
			corrected, hint := fuzzyCorrectTopic(t, knownTopics)
			if hint != "" {
				result.Corrections = append(result.Corrections, hint)
			}
			result.Commands = append(result.Commands, Command{Action: "topic_delta", Topic: corrected, Value: fmt.Sprintf("%.2f", lessDelta)})
		}
	}

	if m := toneRe.FindStringSubmatch(text); m != nil {
		result.Commands = append(result.Commands, Command{Action: "tone", Value: strings.ToLower(m[1])})
	} else if m := rawToneRe.FindStringSubmatch(text); m != nil {
		if fuzzy, ok := fuzzyMatchValue(m[1], validTones); ok {
			result.Commands = append(result.Commands, Command{Action: "tone", Value: fuzzy})
			result.Corrections = append(result.Corrections, fmt.Sprintf(`Tone "%s" corrected to "%s".`, m[1], fuzzy))
		} else {
			result.Unrecognized = append(result.Unrecognized, fmt.Sprintf(`Unknown tone "%s". Valid: %s`, m[1], strings.Join(validTones, ", ")))
		}
	}

	if m := formatRe.FindStringSubmatch(text); m != nil {
		result.Commands = append(result.Commands, Command{Action: "format", Value: strings.ToLower(m[1])})
	} else if m := rawFormatRe.FindStringSubmatch(text); m != nil {
		if fuzzy, ok := fuzzyMatchValue(m[1], validFormats); ok {
			result.Commands = append(result.Commands, Command{Action: "format", Value: fuzzy})
			result.Corrections = append(result.Corrections, fmt.Sprintf(`Format "%s" corrected to "%s".`, m[1], fuzzy))
		} else {
			result.Unrecognized = append(result.Unrecognized, fmt.Sprintf(`Unknown format "%s". Valid: %s`, m[1], strings.Join(validFormats, ", ")))
		}
	}

	if m := cadenceRe.FindStringSubmatch(text); m != nil {
		result.Commands = append(result.Commands, Command{Action: "cadence", Value: strings.ToLower(m[1])})
	} else if m := rawCadenceRe.FindStringSubmatch(text); m != nil {
		if fuzzy, ok := fuzzyMatchValue(m[1], validCadences); ok {
			result.Commands = append(result.Commands, Command{Action: "cadence", Value: fuzzy})
			result.Corrections = append(result.Corrections, fmt.Sprintf(`Cadence "%s" corrected to "%s".`, m[1], fuzzy))
		} else {
			result.Unrecognized = append(result.Unrecognized, fmt.Sprintf(`Unknown cadence "%s". Valid: %s`, m[1], strings.Join(validCadences, ", ")))
		}
	}

	if regions := captureAfterKeyword(text, removeRegionKeywordRe, regionStopRe); len(regions) > 0 {
		result.Commands = append(result.Commands, Command{Action: "remove_region", Value: cleanTopic(regions[0])})
	} else if regions := captureAfterKeyword(text, regionKeywordRe, regionStopRe); len(regions) > 0 {
		result.Commands = append(result.Commands, Command{Action: "region", Value: cleanTopic(regions[0])})
	}

	if m := maxItemsRe.FindStringSubmatch(text); m != nil {
		result.Commands = append(result.Commands, Command{Action: "max_items", Value: m[1]})
	}

	for _, m := range sourcePreferRe.FindAllStringSubmatch(text, -1) {
		src := strings.ToLower(m[1])
		if !sourceNoise[src] {
			result.Commands = append(result.Commands, Command{Action: "source_boost", Topic: src, Value: "+1.0"})
		}
	}
	for _, m := range sourceDemoteRe.FindAllStringSubmatch(text, -1) {
		src := strings.ToLower(m[1])
		if !sourceNoise[src] {
			result.Commands = append(result.Commands, Command{Action: "source_demote", Topic: src, Value: "-1.0"})
		}
	}

	if resetRe.MatchString(text) {
		result.Commands = append(result.Commands, Command{Action: "reset"})
	}

	return result
}

// Apply mutates profile in place according to cmd, clamping adjusted
// weights into their valid ranges.
func Apply(profile *models.UserProfile, cmd Command) error {
	switch cmd.Action {
	case "topic_delta":
		delta, err := strconv.ParseFloat(cmd.Value, 64)
		if err != nil {
			return fmt.Errorf("invalid topic delta %q: %w", cmd.Value, err)
		}
		if profile.TopicWeights == nil {
			profile.TopicWeights = map[string]float64{}
		}
		current := profile.TopicWeights[cmd.Topic]
		profile.TopicWeights[cmd.Topic] = clamp(current+delta, -1.0, 1.0)
	case "source_boost", "source_demote":
		delta, err := strconv.ParseFloat(cmd.Value, 64)
		if err != nil {
			return fmt.Errorf("invalid source delta %q: %w", cmd.Value, err)
		}
		if profile.SourceWeights == nil {
			profile.SourceWeights = map[string]float64{}
		}
		current := profile.SourceWeights[cmd.Topic]
		profile.SourceWeights[cmd.Topic] = clamp(current+delta, -2.0, 2.0)
	case "tone":
		profile.Tone = cmd.Value
	case "format":
		profile.Format = cmd.Value
	case "cadence":
		profile.BriefingCadence = cmd.Value
	case "region":
		if !containsString(profile.RegionsOfInterest, cmd.Value) {
			profile.RegionsOfInterest = append(profile.RegionsOfInterest, cmd.Value)
		}
	case "remove_region":
		profile.RegionsOfInterest = removeString(profile.RegionsOfInterest, cmd.Value)
	case "max_items":
		n, err := strconv.Atoi(cmd.Value)
		if err != nil {
			return fmt.Errorf("invalid max_items %q: %w", cmd.Value, err)
		}
		profile.MaxItems = clampInt(n, 1, 50)
	case "reset":
		resetProfile(profile)
	default:
		return fmt.Errorf("unknown preference action %q", cmd.Action)
	}
	profile.Version++
	return nil
}

// ApplyText parses text and applies every resulting command to profile,
// returning the parse diagnostics for user-facing feedback. Commands
// that fail to apply are skipped rather than aborting the whole batch.
func ApplyText(profile *models.UserProfile, text string, knownTopics map[string]bool) ParseResult {
	result := ParseRich(text, knownTopics, 0, 0)
	for _, cmd := range result.Commands {
		_ = Apply(profile, cmd)
	}
	return result
}

func resetProfile(profile *models.UserProfile) {
	profile.TopicWeights = map[string]float64{}
	profile.SourceWeights = map[string]float64{}
	profile.RegionsOfInterest = nil
	profile.MutedTopics = nil
	profile.Tone = "concise"
	profile.Format = "bullet"
	profile.MaxItems = 10
	profile.BriefingCadence = "on_demand"
	profile.Timezone = "UTC"
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
