package common

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Elements that never carry posting text
const noiseSelector = "nav, footer, header, script, style, noscript, iframe, svg, form, .cookie-banner, .popup, .apply-button"

// Block elements that end a line of text
const blockSelector = "p, div, li, ul, ol, h1, h2, h3, h4, h5, h6, tr, section, article, br, dd, dt, blockquote, pre"

// PostingSelectors are tried in order to find the posting body.
var PostingSelectors = []string{
	".job-description",
	"#job-description",
	".job-content",
	".posting",
	"[itemprop=description]",
	"main",
	"article",
}

// ExtractPostingText returns the readable text of an HTML job posting. Page
// chrome is dropped and block elements become line breaks, so list items do
// not run into each other.
func ExtractPostingText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})

	var content *goquery.Selection
	for _, selector := range PostingSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			content = selection.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	return cleanLines(content.Text()), nil
}

// IsHTML reports whether content looks like an HTML document or fragment.
func IsHTML(content string) bool {
	head := strings.ToLower(strings.TrimSpace(content))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<body") ||
		(strings.HasPrefix(head, "<") && strings.Contains(head, "</"))
}

func cleanLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
