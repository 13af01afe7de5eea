// Package nlp provides the tokenization, tagging and entity recognition
// pipeline used by the entity and keyword extractors.
package nlp

// Coarse part-of-speech tags, following the Universal Dependencies tag set.
const (
	POSNoun  = "NOUN"
	POSPropn = "PROPN"
	POSVerb  = "VERB"
	POSAux   = "AUX"
	POSAdj   = "ADJ"
	POSAdv   = "ADV"
	POSAdp   = "ADP"
	POSDet   = "DET"
	POSPron  = "PRON"
	POSCconj = "CCONJ"
	POSSconj = "SCONJ"
	POSPart  = "PART"
	POSNum   = "NUM"
	POSPunct = "PUNCT"
	POSSym   = "SYM"
	POSSpace = "SPACE"
)

// Token is a single token of a processed document. Start and End are
// character (rune) offsets into the processed text.
type Token struct {
	Text    string
	Lemma   string
	POS     string
	IsStop  bool
	IsPunct bool
	IsSpace bool
	Start   int
	End     int

	byteStart, byteEnd int
}

// Span is a labeled entity mention. Start and End are character offsets.
type Span struct {
	Text  string
	Label string
	Start int
	End   int
}

// Doc is the output of a pipeline run.
type Doc struct {
	Text     string
	Tokens   []Token
	Entities []Span
}

// Pipeline turns text into a tagged document.
// Implementations must be safe for concurrent use.
type Pipeline interface {
	Process(text string) *Doc
}

var labelDescriptions = map[string]string{
	"PERSON":      "People, including fictional",
	"NORP":        "Nationalities or religious or political groups",
	"FAC":         "Buildings, airports, highways, bridges, etc.",
	"ORG":         "Companies, agencies, institutions, etc.",
	"GPE":         "Countries, cities, states",
	"LOC":         "Non-GPE locations, mountain ranges, bodies of water",
	"PRODUCT":     "Objects, vehicles, foods, etc. (not services)",
	"EVENT":       "Named hurricanes, battles, wars, sports events, etc.",
	"WORK_OF_ART": "Titles of books, songs, etc.",
	"LAW":         "Named documents made into laws.",
	"LANGUAGE":    "Any named language",
	"DATE":        "Absolute or relative dates or periods",
	"TIME":        "Times smaller than a day",
	"PERCENT":     `Percentage, including "%"`,
	"MONEY":       "Monetary values, including unit",
	"QUANTITY":    "Measurements, as of weight or distance",
	"ORDINAL":     `"first", "second", etc.`,
	"CARDINAL":    "Numerals that do not fall under another type",
}

// Explain returns a human readable description of an entity label, or the
// label itself when it is unknown.
func Explain(label string) string {
	if desc, ok := labelDescriptions[label]; ok {
		return desc
	}
	return label
}
