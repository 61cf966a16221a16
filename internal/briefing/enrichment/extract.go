package enrichment

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// boilerplate matches paragraph text that is site chrome rather than
// article content.
var boilerplate = regexp.MustCompile(`(?i)cookie|subscribe|sign up|newsletter|advertisement|read more|` +
	`share this|follow us|related articles|recommended|most popular|` +
	`all rights reserved|terms of service|privacy policy|` +
	`click here|sponsored content`)

var whitespaceRun = regexp.MustCompile(`\s+`)

func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// ExtractArticleText pulls the main article text out of raw HTML using a
// readability-style heuristic: prefer <article>, then fall back to <p>
// tags across the whole document, dropping anything that looks like
// boilerplate or is too short to be real content.
func ExtractArticleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, nav, header, footer, aside, form, iframe, noscript").Remove()

	scope := doc.Selection
	if article := doc.Find("article").First(); article.Length() > 0 {
		scope = article
	}

	var paragraphs []string
	scope.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := normalizeWhitespace(s.Text())
		if len(text) < 40 {
			return
		}
		if boilerplate.MatchString(text) {
			return
		}
		paragraphs = append(paragraphs, text)
	})

	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n\n")
	}

	// Fall back to the document's whole text when no <p> tags survive.
	fallback := normalizeWhitespace(scope.Text())
	if len(fallback) < 40 {
		return ""
	}
	return fallback
}
