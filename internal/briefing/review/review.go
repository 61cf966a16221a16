// Package review rewrites compiled report items for voice, tone, and
// clarity before delivery.
package review

import (
	"regexp"
	"sort"
	"strings"

	"github.com/alexroessner/newsfeed/internal/models"
)

// ToneTemplate controls content style for one tone setting. The prefix
// fields exist for forward compatibility with configs that want a literal
// label prefix; the default templates leave them empty since the report
// formatter already labels each field.
type ToneTemplate struct {
	WhyPrefix      string
	ChangedPrefix  string
	OutlookPrefix  string
	Style          string
}

// DefaultToneTemplates is the fallback tone set used when a user profile's
// tone isn't present in a custom configuration.
var DefaultToneTemplates = map[string]ToneTemplate{
	"concise":  {Style: "Short, direct sentences. No filler. Lead with the key fact."},
	"analyst":  {Style: "Technical, evidence-anchored language. Quantify when possible."},
	"executive": {Style: "High-level framing. Decision-relevant. Skip operational detail."},
	"brief":    {Style: "Minimum viable context. One sentence per field."},
	"deep":     {Style: "Thorough analysis. Include nuance, uncertainty, alternative readings."},
}

// DefaultUrgencyFraming is the lead-in sentence fragment prepended to
// why-it-matters text for each urgency level.
var DefaultUrgencyFraming = map[models.Urgency]string{
	models.UrgencyCritical: "Immediate attention required. ",
	models.UrgencyBreaking: "Developing rapidly. ",
	models.UrgencyElevated: "Worth monitoring closely. ",
	models.UrgencyRoutine:  "",
}

// DefaultWatchpoints is the topic-keyed actionable follow-up sentence added
// to an outlook that doesn't already suggest one.
var DefaultWatchpoints = map[string]string{
	"geopolitics": "Watch for official statements and alliance responses in next 24-48h.",
	"ai_policy":   "Track regulatory body announcements and industry response.",
	"markets":     "Monitor market open and sector rotation for follow-through.",
	"technology":  "Watch for adoption signals and competitive responses.",
	"crypto":      "Track on-chain metrics and exchange flows for confirmation.",
	"climate":     "Monitor policy responses and institutional commitments.",
	"science":     "Watch for peer review outcomes and replication attempts.",
}

var defaultFallbackReads = map[string][]string{
	"geopolitics": {
		"Historical context: prior escalation patterns in %s",
		"Stakeholder analysis: key actors and their stated positions",
		"Timeline: sequence of events leading to current development",
	},
	"ai_policy": {
		"Technical assessment: capabilities and limitations at play",
		"Regulatory landscape: existing and proposed frameworks",
		"Industry response: major player positions and commitments",
	},
	"markets": {
		"Sector impact analysis: direct and indirect exposure",
		"Historical parallel: similar market events and outcomes",
		"Policy implications: regulatory and central bank response potential",
	},
	"technology": {
		"Technical deep-dive: architecture and implementation details",
		"Competitive landscape: market positioning and alternatives",
		"Adoption trajectory: deployment timeline and barriers",
	},
}

type fillerRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var defaultFillerPatterns = []fillerRule{
	{regexp.MustCompile(`(?i)\bit is worth noting that\b`), ""},
	{regexp.MustCompile(`(?i)\bit should be noted that\b`), ""},
	{regexp.MustCompile(`(?i)\bin terms of\b`), "regarding"},
	{regexp.MustCompile(`(?i)\bat this point in time\b`), "now"},
	{regexp.MustCompile(`(?i)\bat the end of the day\b`), "ultimately"},
	{regexp.MustCompile(`(?i)\bdue to the fact that\b`), "because"},
	{regexp.MustCompile(`(?i)\bin order to\b`), "to"},
	{regexp.MustCompile(`(?i)\ba significant amount of\b`), "substantial"},
	{regexp.MustCompile(`(?i)\bthe fact that\b`), "that"},
	{regexp.MustCompile(`(?i)\bin the process of\b`), ""},
	{regexp.MustCompile(`(?i)\bon a going-forward basis\b`), "going forward"},
}

var doubleSpace = regexp.MustCompile(`  +`)

// LLMRewriter is an optional reasoning backend for either review pass.
// Implementations must preserve all factual claims; Style/Clarity fall back
// to their heuristic pass on any error.
type LLMRewriter interface {
	RewriteStyle(item models.ReportItem, profile models.UserProfile) (models.ReportItem, error)
	RewriteClarity(item models.ReportItem, profile models.UserProfile) (models.ReportItem, error)
}

// StyleReviewer reframes an item's narrative fields by urgency,
// corroboration, regions and prediction signal, adding a note when the
// story's regions overlap the profile's regions of interest. It never
// rewrites the underlying facts, only their framing. The heuristic pass
// does not read profile.Tone or the Templates table; only an LLMRewriter,
// when configured, receives the profile's tone.
type StyleReviewer struct {
	Templates      map[string]ToneTemplate
	UrgencyFraming map[models.Urgency]string
	LLM            LLMRewriter
}

// NewStyleReviewer builds a StyleReviewer over the default tone/urgency
// tables. llm may be nil.
func NewStyleReviewer(llm LLMRewriter) *StyleReviewer {
	return &StyleReviewer{Templates: DefaultToneTemplates, UrgencyFraming: DefaultUrgencyFraming, LLM: llm}
}

// Review rewrites item's narrative fields through the LLM rewriter when one
// is configured and succeeds, and through the heuristic pass otherwise.
func (s *StyleReviewer) Review(item models.ReportItem, profile models.UserProfile) models.ReportItem {
	if s.LLM != nil {
		if out, err := s.LLM.RewriteStyle(item, profile); err == nil {
			return out
		}
	}
	return s.reviewHeuristic(item, profile)
}

func (s *StyleReviewer) reviewHeuristic(item models.ReportItem, profile models.UserProfile) models.ReportItem {
	c := item.Candidate
	item.WhyItMatters = s.rewriteWhy(item.WhyItMatters, c)
	item.WhatChanged = s.rewriteChanged(item.WhatChanged, c)
	item.PredictiveOutlook = s.rewriteOutlook(item.PredictiveOutlook, c, profile)
	return item
}

func (s *StyleReviewer) rewriteWhy(base string, c models.Candidate) string {
	text := strings.TrimSpace(base)
	if text == "" {
		text = strings.TrimSpace(c.Title)
	}
	prefix := s.UrgencyFraming[c.Urgency]
	trimmedPrefix := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(prefix), "."))
	if prefix != "" && trimmedPrefix != "" && !strings.Contains(strings.ToLower(text), trimmedPrefix) {
		text = prefix + text
	}
	return text
}

func (s *StyleReviewer) rewriteChanged(base string, c models.Candidate) string {
	titleHint := c.Title
	if len(titleHint) > 80 {
		titleHint = titleHint[:80]
	}
	titleHint = strings.TrimRight(titleHint, ".")

	var parts []string
	switch {
	case c.Urgency == models.UrgencyBreaking || c.Urgency == models.UrgencyCritical:
		parts = append(parts, titleHint+" — developing now")
	case c.Lifecycle == models.LifecycleDeveloping:
		parts = append(parts, titleHint+" — new development")
	default:
		parts = append(parts, titleHint)
	}

	if len(c.CorroboratedBy) > 0 {
		n := len(c.CorroboratedBy)
		if n > 2 {
			n = 2
		}
		parts = append(parts, "confirmed by "+strings.Join(c.CorroboratedBy[:n], ", "))
	}

	return strings.Join(parts, "; ") + "."
}

func (s *StyleReviewer) rewriteOutlook(base string, c models.Candidate, profile models.UserProfile) string {
	var parts []string
	switch {
	case c.PredictionSignal > 0.7:
		parts = append(parts, "Strong forward-looking signal")
	case c.PredictionSignal > 0.4:
		parts = append(parts, "Moderate predictive indicators present")
	default:
		parts = append(parts, "Limited predictive signal at this stage")
	}

	if len(c.Regions) > 0 {
		n := len(c.Regions)
		if n > 2 {
			n = 2
		}
		parts = append(parts, "regional focus: "+strings.Join(c.Regions[:n], ", "))
	}

	if overlap := regionOverlap(profile.RegionsOfInterest, c.Regions); len(overlap) > 0 {
		parts = append(parts, "intersects your region focus ("+strings.Join(overlap, ", ")+")")
	}

	if c.ContrarianSignal != "" {
		parts = append(parts, "contrarian perspective worth noting")
	}

	return strings.Join(parts, "; ") + "."
}

func regionOverlap(userRegions, storyRegions []string) []string {
	userSet := make(map[string]bool, len(userRegions))
	for _, r := range userRegions {
		userSet[r] = true
	}
	var overlap []string
	seen := make(map[string]bool)
	for _, r := range storyRegions {
		if userSet[r] && !seen[r] {
			overlap = append(overlap, r)
			seen[r] = true
		}
	}
	sort.Strings(overlap)
	return overlap
}

// ClarityReviewer compresses filler, adds actionable watchpoints, and
// rewrites adjacent reads. It does not remove phrases repeated across a
// batch of items.
type ClarityReviewer struct {
	Watchpoints          map[string]string
	FillerPatterns       []fillerRule
	TopicAdjacentReads   map[string][]string
	DefaultAdjacentReads []string
	LLM                  LLMRewriter
}

// NewClarityReviewer builds a ClarityReviewer over the default filler and
// watchpoint tables. llm may be nil.
func NewClarityReviewer(llm LLMRewriter) *ClarityReviewer {
	return &ClarityReviewer{
		Watchpoints:    DefaultWatchpoints,
		FillerPatterns: defaultFillerPatterns,
		LLM:            llm,
	}
}

// ReviewBatch reviews every item. It records the three-word phrases of
// each item's WhyItMatters and WhatChanged in a batch-wide set, but leaves
// the text unchanged, so phrases repeated across items stay as they are.
func (cl *ClarityReviewer) ReviewBatch(items []models.ReportItem, profile models.UserProfile) []models.ReportItem {
	seen := make(map[string]bool)
	for i := range items {
		items[i] = cl.Review(items[i], profile)
		items[i].WhyItMatters = deduplicatePhrase(items[i].WhyItMatters, seen)
		items[i].WhatChanged = deduplicatePhrase(items[i].WhatChanged, seen)
	}
	return items
}

// Review applies clarity rules to a single item.
func (cl *ClarityReviewer) Review(item models.ReportItem, profile models.UserProfile) models.ReportItem {
	if cl.LLM != nil {
		if out, err := cl.LLM.RewriteClarity(item, profile); err == nil {
			return out
		}
	}
	return cl.reviewHeuristic(item)
}

func (cl *ClarityReviewer) reviewHeuristic(item models.ReportItem) models.ReportItem {
	item.WhyItMatters = cl.compress(item.WhyItMatters)
	item.WhatChanged = cl.compress(item.WhatChanged)
	item.PredictiveOutlook = cl.compress(item.PredictiveOutlook)

	c := item.Candidate
	lower := strings.ToLower(item.PredictiveOutlook)
	if !strings.Contains(lower, "watch") && !strings.Contains(lower, "monitor") &&
		!strings.Contains(lower, "track") && !strings.Contains(lower, "expect") {
		item.PredictiveOutlook = cl.addWatchpoint(item.PredictiveOutlook, c)
	}

	if len(item.AdjacentReads) > 0 {
		item.AdjacentReads = cl.improveAdjacentReads(item.AdjacentReads, c)
	}
	return item
}

func (cl *ClarityReviewer) compress(text string) string {
	result := text
	for _, rule := range cl.FillerPatterns {
		result = rule.pattern.ReplaceAllString(result, rule.replacement)
	}
	return strings.TrimSpace(doubleSpace.ReplaceAllString(result, " "))
}

func (cl *ClarityReviewer) addWatchpoint(outlook string, c models.Candidate) string {
	watchpoint, ok := cl.Watchpoints[c.Topic]
	if !ok {
		watchpoint = "Monitor for follow-up developments."
	}
	return outlook + " " + watchpoint
}

func (cl *ClarityReviewer) improveAdjacentReads(reads []string, c models.Candidate) []string {
	region := "this region"
	if len(c.Regions) > 0 {
		region = c.Regions[0]
	}

	var specific []string
	switch {
	case len(cl.TopicAdjacentReads[c.Topic]) > 0:
		for _, t := range cl.TopicAdjacentReads[c.Topic] {
			specific = append(specific, formatRead(t, region, c.Topic))
		}
	case len(cl.DefaultAdjacentReads) > 0:
		for _, t := range cl.DefaultAdjacentReads {
			specific = append(specific, formatRead(t, region, c.Topic))
		}
	default:
		if fallback, ok := defaultFallbackReads[c.Topic]; ok {
			for _, t := range fallback {
				specific = append(specific, formatRead(t, region, c.Topic))
			}
		} else {
			specific = []string{
				"Background context for " + c.Topic,
				"Expert analysis on " + c.Topic + " implications",
				"Related developments in " + c.Topic,
			}
		}
	}

	if len(specific) > len(reads) {
		specific = specific[:len(reads)]
	}
	return specific
}

func formatRead(template, region, topic string) string {
	out := strings.ReplaceAll(template, "%s", region)
	out = strings.ReplaceAll(out, "{region}", region)
	out = strings.ReplaceAll(out, "{topic}", topic)
	return out
}

func deduplicatePhrase(text string, seen map[string]bool) string {
	words := strings.Fields(text)
	for i := 0; i+2 < len(words); i++ {
		phrase := strings.ToLower(strings.Join(words[i:i+3], " "))
		if len(phrase) > 15 {
			seen[phrase] = true
		}
	}
	return text
}
