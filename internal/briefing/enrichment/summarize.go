package enrichment

import (
	"regexp"
	"sort"
	"strings"
)

var capsPhrase = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
var numberRun = regexp.MustCompile(`\b\d[\d,.]*\b`)

func paragraphScore(para string, position, total int) float64 {
	score := 0.0

	positionWeight := 1.0 - (float64(position)/float64(maxInt(total, 1)))*0.7
	if positionWeight < 0.1 {
		positionWeight = 0.1
	}
	score += positionWeight * 3.0

	switch {
	case len(para) >= 300:
		score += 0.5
	case len(para) > 50:
		score += 1.0
	}

	caps := len(capsPhrase.FindAllString(para, -1))
	if boost := float64(caps) * 0.3; boost < 2.0 {
		score += boost
	} else {
		score += 2.0
	}

	numbers := len(numberRun.FindAllString(para, -1))
	if boost := float64(numbers) * 0.3; boost < 1.5 {
		score += boost
	} else {
		score += 1.5
	}

	if strings.Contains(para, `"`) || strings.Contains(para, "“") {
		score += 1.0
	}

	if boilerplate.MatchString(para) {
		score -= 5.0
	}

	return score
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ExtractiveSummary picks the most information-dense paragraphs from
// articleText up to roughly targetChars, preserving their original order
// so the result still reads as a coherent narrative.
func ExtractiveSummary(articleText string, targetChars int) string {
	if articleText == "" {
		return ""
	}
	var paragraphs []string
	for _, p := range strings.Split(articleText, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return ""
	}

	type scored struct {
		score float64
		idx   int
		text  string
	}
	var candidates []scored
	for i, p := range paragraphs {
		if len(p) < 30 {
			continue
		}
		candidates = append(candidates, scored{score: paragraphScore(p, i, len(paragraphs)), idx: i, text: p})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	var selected []scored
	total := 0
	for _, c := range candidates {
		if total+len(c.text) > int(float64(targetChars)*1.2) {
			if total >= int(float64(targetChars)*0.6) {
				break
			}
		}
		selected = append(selected, c)
		total += len(c.text)
		if total >= targetChars {
			break
		}
	}

	if len(selected) == 0 {
		if len(paragraphs[0]) > targetChars {
			return paragraphs[0][:targetChars]
		}
		return paragraphs[0]
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].idx < selected[j].idx })

	var parts []string
	for _, c := range selected {
		parts = append(parts, c.text)
	}
	result := strings.Join(parts, " ")

	if len(result) > targetChars {
		cut := strings.LastIndex(result[:targetChars], ". ")
		if cut > int(float64(targetChars)*0.5) {
			result = result[:cut+1]
		} else {
			result = result[:targetChars-3] + "..."
		}
	}
	return result
}

// Summarizer produces a summary for an enriched article. LLMSummarizer
// implementations wrap an external model API; ExtractiveSummary always
// works offline and is the fallback when no LLM is configured or it fails.
type Summarizer interface {
	Summarize(articleText, title, source string) (string, error)
}
