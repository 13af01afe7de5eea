package nlp

import "strings"

// HeuristicPipeline is a rule based English pipeline. Vocabulary terms are
// kept intact by the lemmatizer and treated as product names by the entity
// recognizer.
type HeuristicPipeline struct {
	vocabulary map[string]struct{}
}

// NewHeuristicPipeline returns a pipeline that treats the given terms as
// domain vocabulary. Terms are matched case-insensitively.
func NewHeuristicPipeline(vocabulary ...string) *HeuristicPipeline {
	vocab := make(map[string]struct{}, len(vocabulary))
	for _, term := range vocabulary {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			vocab[term] = struct{}{}
		}
	}
	return &HeuristicPipeline{vocabulary: vocab}
}

// Process tokenizes, tags and runs entity recognition over text.
func (p *HeuristicPipeline) Process(text string) *Doc {
	idx := newRuneIndex(text)
	tokens := tokenize(text, idx)
	p.tag(tokens)
	return &Doc{
		Text:     text,
		Tokens:   tokens,
		Entities: p.recognize(text, idx, tokens),
	}
}

func (p *HeuristicPipeline) isVocabulary(lower string) bool {
	_, ok := p.vocabulary[lower]
	return ok
}
