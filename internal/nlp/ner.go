package nlp

import (
	"regexp"
	"sort"
	"strings"
)

var (
	moneyRe   = regexp.MustCompile(`(?i)\$\s?\d[\d,]*(?:\.\d+)?[km]?(?:\s?(?:-|to)\s?\$?\d[\d,]*(?:\.\d+)?[km]?)?\b`)
	percentRe = regexp.MustCompile(`\d+(?:\.\d+)?\s?%`)
	dateRe    = regexp.MustCompile(`(?i)\b\d+\+?\s*(?:-\s*\d+\s*)?(?:years?|months?|weeks?)\b|\b(?:19|20)\d{2}\b|\b(?:january|february|march|april|june|july|august|september|october|november|december)(?:\s+\d{1,2})?(?:,?\s+\d{4})?\b`)
)

// connectors may join capitalized words inside one entity span.
var connectors = wordSet("of", "&")

// patternSpans returns money, percentage and date spans, marking each one
// in taken. Earlier patterns win over later ones.
func patternSpans(text string, idx runeIndex, taken []bool) []Span {
	var spans []Span
	for _, p := range []struct {
		re    *regexp.Regexp
		label string
	}{
		{moneyRe, "MONEY"},
		{percentRe, "PERCENT"},
		{dateRe, "DATE"},
	} {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			start, end := idx.at(loc[0]), idx.at(loc[1])
			if overlaps(taken, start, end) {
				continue
			}
			mark(taken, start, end)
			spans = append(spans, Span{
				Text:  strings.TrimSpace(text[loc[0]:loc[1]]),
				Label: p.label,
				Start: start,
				End:   end,
			})
		}
	}
	return spans
}

// recognize finds entity spans. Pattern based spans (money, percentages,
// dates) take precedence over capitalized-word spans.
func (p *HeuristicPipeline) recognize(text string, idx runeIndex, tokens []Token) []Span {
	taken := make([]bool, idx.at(len(text))+1)
	spans := patternSpans(text, idx, taken)

	for i := 0; i < len(tokens); {
		if tokens[i].POS != POSPropn || overlaps(taken, tokens[i].Start, tokens[i].End) {
			i++
			continue
		}
		j := i + 1
		for j < len(tokens) && !p.isVocabulary(strings.ToLower(tokens[i].Text)) {
			if p.continuesEntity(tokens[j]) && !overlaps(taken, tokens[j].Start, tokens[j].End) {
				j++
				continue
			}
			// allow "Bank of America" style connectors between name parts
			if j+1 < len(tokens) && isConnector(tokens[j]) && p.continuesEntity(tokens[j+1]) {
				j += 2
				continue
			}
			break
		}
		words := trimLeading(tokens[i:j])
		if len(words) == 0 {
			i = j
			continue
		}
		start, end := words[0].Start, words[len(words)-1].End
		spanText := text[words[0].byteStart:words[len(words)-1].byteEnd]
		mark(taken, start, end)
		spans = append(spans, Span{
			Text:  spanText,
			Label: p.classify(words, spanText),
			Start: start,
			End:   end,
		})
		i = j
	}

	sort.SliceStable(spans, func(a, b int) bool { return spans[a].Start < spans[b].Start })
	return spans
}

// trimLeading drops leading role and verb words, so "Contact John Smith"
// yields "John Smith" and a bare "Engineer" yields nothing.
func trimLeading(words []Token) []Token {
	for len(words) > 0 && isRoleOrVerb(strings.ToLower(words[0].Text)) && !isAllCaps(words[0].Text) {
		words = words[1:]
	}
	return words
}

func isRoleOrVerb(lower string) bool {
	if _, ok := titleWords[lower]; ok {
		return true
	}
	if _, ok := knownVerbs[lower]; ok {
		return true
	}
	_, ok := stopWords[lower]
	return ok
}

func (p *HeuristicPipeline) continuesEntity(tok Token) bool {
	if p.isVocabulary(strings.ToLower(tok.Text)) {
		return false
	}
	if tok.POS == POSPropn {
		return true
	}
	_, suffix := orgSuffixes[strings.ToLower(tok.Text)]
	return suffix && isCapitalized(tok.Text)
}

func isConnector(tok Token) bool {
	_, ok := connectors[strings.ToLower(tok.Text)]
	return tok.Text == "&" || (ok && !isCapitalized(tok.Text))
}

func (p *HeuristicPipeline) classify(words []Token, text string) string {
	lower := strings.ToLower(text)
	last := strings.ToLower(words[len(words)-1].Text)

	if _, ok := orgSuffixes[last]; ok && len(words) > 1 {
		return "ORG"
	}
	if _, ok := places[lower]; ok {
		return "GPE"
	}
	if _, ok := languages[lower]; ok {
		return "LANGUAGE"
	}
	if len(words) == 2 {
		if _, ok := firstNames[strings.ToLower(words[0].Text)]; ok {
			return "PERSON"
		}
	}
	if len(words) == 1 && p.isVocabulary(lower) {
		return "PRODUCT"
	}
	return "ORG"
}

func overlaps(taken []bool, start, end int) bool {
	for i := start; i < end && i < len(taken); i++ {
		if taken[i] {
			return true
		}
	}
	return false
}

func mark(taken []bool, start, end int) {
	for i := start; i < end && i < len(taken); i++ {
		taken[i] = true
	}
}
