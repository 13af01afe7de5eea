package nlp

import (
	"strings"
)

var adjectiveSuffixes = []string{"ive", "ous", "able", "ible", "ful", "ic", "ical", "less", "ish"}

// tag assigns coarse POS tags, stop flags and lemmas in place.
func (p *HeuristicPipeline) tag(tokens []Token) {
	sentenceStart := true
	prevPOS := ""
	for i := range tokens {
		tok := &tokens[i]
		lower := strings.ToLower(tok.Text)
		_, tok.IsStop = stopWords[lower]

		switch {
		case tok.IsSpace:
			tok.POS = POSSpace
			tok.Lemma = tok.Text
			continue
		case tok.IsPunct:
			tok.POS = POSPunct
			tok.Lemma = tok.Text
			if strings.ContainsAny(tok.Text, ".!?:;") {
				sentenceStart = true
			}
			prevPOS = POSPunct
			continue
		case isSymbol(tok.Text):
			tok.POS = POSSym
		case strings.HasPrefix(tok.Text, "$") || strings.HasSuffix(tok.Text, "%") || isNumeric(tok.Text):
			tok.POS = POSNum
		default:
			tok.POS = p.wordPOS(tok.Text, lower, sentenceStart, nextCapitalized(tokens, i), prevPOS)
		}

		tok.Lemma = lemmatize(tok.Text, lower, tok.POS, p.isVocabulary(lower))
		sentenceStart = false
		prevPOS = tok.POS
	}
}

func nextCapitalized(tokens []Token, i int) bool {
	return i+1 < len(tokens) && !tokens[i+1].IsPunct && isCapitalized(tokens[i+1].Text)
}

func (p *HeuristicPipeline) wordPOS(text, lower string, sentenceStart, nextCap bool, prevPOS string) string {
	if pos, ok := closedClass[lower]; ok {
		return pos
	}
	if p.isVocabulary(lower) {
		if isCapitalized(text) {
			return POSPropn
		}
		return POSNoun
	}
	if isAllCaps(text) {
		return POSPropn
	}
	if _, ok := titleWords[lower]; ok && isCapitalized(text) {
		if _, adj := knownAdjectives[lower]; adj {
			return POSAdj
		}
		return POSNoun
	}
	if isCapitalized(text) && !sentenceStart {
		return POSPropn
	}

	if _, ok := knownVerbs[lower]; ok {
		if prevPOS == POSDet || prevPOS == POSAdj {
			return POSNoun
		}
		return POSVerb
	}
	if _, ok := knownAdjectives[lower]; ok {
		return POSAdj
	}
	if strings.HasSuffix(lower, "ly") && len(lower) > 4 {
		return POSAdv
	}
	if len(lower) > 5 && (strings.HasSuffix(lower, "ing") || strings.HasSuffix(lower, "ed")) {
		if _, ok := knownVerbs[verbStem(lower)]; ok || prevPOS != POSDet {
			return POSVerb
		}
	}
	for _, suffix := range adjectiveSuffixes {
		if len(lower) > len(suffix)+3 && strings.HasSuffix(lower, suffix) {
			return POSAdj
		}
	}
	if prevPOS == POSPart || prevPOS == POSAux {
		if _, ok := knownVerbs[singular(lower)]; ok {
			return POSVerb
		}
	}
	// a sentence-initial capital only marks a name when the next word is capitalized too
	if isCapitalized(text) && sentenceStart && nextCap && !p.looksCommon(lower) {
		return POSPropn
	}
	return POSNoun
}

// looksCommon reports whether a sentence-initial capitalized word is more
// likely an ordinary word than a name.
func (p *HeuristicPipeline) looksCommon(lower string) bool {
	if _, ok := stopWords[lower]; ok {
		return true
	}
	if _, ok := knownVerbs[singular(lower)]; ok {
		return true
	}
	if _, ok := knownAdjectives[lower]; ok {
		return true
	}
	for _, suffix := range []string{"tion", "ment", "ness", "ity", "ance", "ence", "ship", "ing", "er", "ed", "s"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// lemmatize derives a dictionary form using suffix rules. Proper nouns and
// vocabulary terms keep their surface form.
func lemmatize(text, lower, pos string, protected bool) string {
	if lemma, ok := irregularLemmas[lower]; ok {
		return lemma
	}
	switch {
	case protected:
		return lower
	case pos == POSPropn:
		return text
	case pos == POSVerb:
		return verbStem(lower)
	case pos == POSNoun:
		return singular(lower)
	}
	return lower
}

func singular(w string) string {
	switch {
	case len(w) <= 3:
		return w
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "sses"), strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "shes"), strings.HasSuffix(w, "xes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"), strings.HasSuffix(w, "is"):
		return w
	case strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}

var eRestoringEndings = []string{"at", "iz", "is", "iv", "ur", "ag", "ud", "ov", "uc", "bl", "lv", "rv", "rg", "dg", "ut", "ir", "ib", "in"}

func verbStem(w string) string {
	if lemma, ok := irregularLemmas[w]; ok {
		return lemma
	}
	var stem string
	switch {
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		stem = w[:len(w)-3]
	case strings.HasSuffix(w, "ied") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		stem = w[:len(w)-2]
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "es") && (strings.HasSuffix(w, "shes") || strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "sses") || strings.HasSuffix(w, "xes")):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 3:
		return w[:len(w)-1]
	default:
		return w
	}

	if _, ok := knownVerbs[stem]; ok {
		return stem
	}
	if _, ok := knownVerbs[stem+"e"]; ok {
		return stem + "e"
	}
	n := len(stem)
	if n >= 3 && stem[n-1] == stem[n-2] && !strings.ContainsRune("lsz", rune(stem[n-1])) {
		return stem[:n-1]
	}
	for _, ending := range eRestoringEndings {
		if strings.HasSuffix(stem, ending) {
			return stem + "e"
		}
	}
	return stem
}
