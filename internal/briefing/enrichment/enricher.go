package enrichment

import (
	"context"
	"time"

	"github.com/alexroessner/newsfeed/internal/models"
)

// targetSummaryChars is how long an enriched summary should roughly be;
// long enough that the reader rarely needs to click through.
const targetSummaryChars = 500

// Enricher fetches full articles for selected candidates and replaces
// their thin RSS-teaser summary with a substantial one, preferring an LLM
// summary when configured and falling back to extractive summarization
// otherwise. It only runs on the final selected set, never on the full
// candidate pool, since fetching every candidate's article would be far
// too slow and expensive.
type Enricher struct {
	fetcher *Fetcher
	cache   *TTLCache
	llm     Summarizer // nil when no LLM key is configured
	timeout time.Duration
}

// NewEnricher builds an Enricher. llm may be nil.
func NewEnricher(fetcher *Fetcher, cache *TTLCache, llm Summarizer, perArticleTimeout time.Duration) *Enricher {
	return &Enricher{fetcher: fetcher, cache: cache, llm: llm, timeout: perArticleTimeout}
}

// Enrich rewrites each candidate's Summary field with a fetched-article
// summary where possible, leaving the original RSS teaser untouched on any
// failure.
func (e *Enricher) Enrich(ctx context.Context, candidates []models.Candidate) []models.Candidate {
	for i := range candidates {
		candidates[i].Summary = e.summarizeOne(ctx, candidates[i])
	}
	return candidates
}

func (e *Enricher) summarizeOne(ctx context.Context, c models.Candidate) string {
	if c.URL == "" {
		return c.Summary
	}
	if cached, ok := e.cache.Get(c.URL); ok {
		return cached
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	html := e.fetcher.Fetch(fetchCtx, c.URL)
	if html == "" {
		return c.Summary
	}
	articleText := ExtractArticleText(html)
	if articleText == "" {
		return c.Summary
	}

	summary := ""
	if e.llm != nil {
		if s, err := e.llm.Summarize(articleText, c.Title, c.Source); err == nil && s != "" {
			summary = s
		}
	}
	if summary == "" {
		summary = ExtractiveSummary(articleText, targetSummaryChars)
	}
	if summary == "" {
		return c.Summary
	}

	e.cache.Set(c.URL, summary)
	return summary
}
