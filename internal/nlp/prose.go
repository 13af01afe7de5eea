package nlp

import (
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"
)

// ProsePipeline tags and recognizes entities with the prose statistical
// models. Money, percentage and date spans and vocabulary product names
// come from the same rules the heuristic pipeline uses. Documents prose
// cannot process are handed to the heuristic pipeline.
type ProsePipeline struct {
	fallback *HeuristicPipeline
}

// NewProsePipeline returns a prose backed pipeline that treats the given
// terms as domain vocabulary.
func NewProsePipeline(vocabulary ...string) *ProsePipeline {
	return &ProsePipeline{fallback: NewHeuristicPipeline(vocabulary...)}
}

// Process runs prose tokenization, tagging and entity extraction over text.
func (p *ProsePipeline) Process(text string) *Doc {
	doc, err := p.process(text)
	if err != nil || doc == nil {
		return p.fallback.Process(text)
	}
	return doc
}

func (p *ProsePipeline) process(text string) (doc *Doc, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
		}
	}()

	pd, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}

	idx := newRuneIndex(text)
	tokens := p.tokens(text, idx, pd.Tokens())
	return &Doc{
		Text:     text,
		Tokens:   tokens,
		Entities: p.entities(text, idx, tokens, pd.Entities()),
	}, nil
}

// tokens converts prose tokens, locating each one in text by scanning
// forward from the end of the previous token.
func (p *ProsePipeline) tokens(text string, idx runeIndex, in []prose.Token) []Token {
	out := make([]Token, 0, len(in))
	cursor := 0
	for _, pt := range in {
		if pt.Text == "" {
			continue
		}
		off := strings.Index(text[cursor:], pt.Text)
		if off < 0 {
			continue
		}
		bs := cursor + off
		be := bs + len(pt.Text)
		cursor = be

		lower := strings.ToLower(pt.Text)
		tok := Token{
			Text:      pt.Text,
			POS:       universalPOS(pt.Tag, lower),
			IsPunct:   isPunctuation(pt.Text),
			Start:     idx.at(bs),
			End:       idx.at(be),
			byteStart: bs,
			byteEnd:   be,
		}
		_, tok.IsStop = stopWords[lower]
		switch {
		case tok.IsPunct:
			tok.POS = POSPunct
		case tok.POS == "":
			tok.POS = POSNoun
		}
		if p.fallback.isVocabulary(lower) && tok.POS != POSPunct {
			if isCapitalized(pt.Text) {
				tok.POS = POSPropn
			} else {
				tok.POS = POSNoun
			}
		}
		if tok.POS == POSPunct || tok.POS == POSSym {
			tok.Lemma = tok.Text
		} else {
			tok.Lemma = lemmatize(tok.Text, lower, tok.POS, p.fallback.isVocabulary(lower))
		}
		out = append(out, tok)
	}
	return out
}

// entities merges rule based spans with prose entity mentions. Rule based
// spans win on overlap.
func (p *ProsePipeline) entities(text string, idx runeIndex, tokens []Token, found []prose.Entity) []Span {
	taken := make([]bool, idx.at(len(text))+1)
	spans := patternSpans(text, idx, taken)

	for _, tok := range tokens {
		lower := strings.ToLower(tok.Text)
		if !p.fallback.isVocabulary(lower) || !isCapitalized(tok.Text) || overlaps(taken, tok.Start, tok.End) {
			continue
		}
		mark(taken, tok.Start, tok.End)
		spans = append(spans, Span{Text: tok.Text, Label: "PRODUCT", Start: tok.Start, End: tok.End})
	}

	cursor := 0
	for _, ent := range found {
		if _, ok := labelDescriptions[ent.Label]; !ok {
			continue
		}
		words := tokensIn(tokens, ent.Text, &cursor)
		words = trimLeading(words)
		if len(words) == 0 {
			continue
		}
		start, end := words[0].Start, words[len(words)-1].End
		if overlaps(taken, start, end) {
			continue
		}
		mark(taken, start, end)
		spans = append(spans, Span{
			Text:  text[words[0].byteStart:words[len(words)-1].byteEnd],
			Label: ent.Label,
			Start: start,
			End:   end,
		})
	}

	sort.SliceStable(spans, func(a, b int) bool { return spans[a].Start < spans[b].Start })
	return spans
}

// tokensIn returns the run of tokens that spells mention, starting the
// search at *cursor. prose joins entity tokens with single spaces, so the
// match is made token by token rather than on the raw text.
func tokensIn(tokens []Token, mention string, cursor *int) []Token {
	parts := strings.Fields(mention)
	if len(parts) == 0 {
		return nil
	}
	for i := *cursor; i+len(parts) <= len(tokens); i++ {
		match := true
		for k, part := range parts {
			if tokens[i+k].Text != part {
				match = false
				break
			}
		}
		if match {
			*cursor = i + len(parts)
			return tokens[i : i+len(parts)]
		}
	}
	return nil
}

// universalPOS maps a Penn Treebank tag to the coarse tag set. Forms of
// be, have and do tagged as verbs become auxiliaries. Tags outside the
// mapping yield an empty string.
func universalPOS(tag, lower string) string {
	switch {
	case tag == "NNP" || tag == "NNPS":
		return POSPropn
	case strings.HasPrefix(tag, "NN"), tag == "FW":
		return POSNoun
	case tag == "MD":
		return POSAux
	case strings.HasPrefix(tag, "VB"):
		if closedClass[lower] == POSAux {
			return POSAux
		}
		return POSVerb
	case strings.HasPrefix(tag, "JJ"):
		return POSAdj
	case strings.HasPrefix(tag, "RB"), tag == "WRB":
		return POSAdv
	case tag == "IN":
		if closedClass[lower] == POSSconj {
			return POSSconj
		}
		return POSAdp
	case tag == "DT", tag == "PDT", tag == "WDT":
		return POSDet
	case strings.HasPrefix(tag, "PRP"), strings.HasPrefix(tag, "WP"), tag == "EX":
		return POSPron
	case tag == "CC":
		return POSCconj
	case tag == "TO", tag == "RP", tag == "POS":
		return POSPart
	case tag == "CD":
		return POSNum
	case tag == "SYM", tag == "$", tag == "#":
		return POSSym
	}
	return ""
}
