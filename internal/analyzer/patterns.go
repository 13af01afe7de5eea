package analyzer

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"jobanalyzer/internal/errors"
)

// Category is a named group of known skill terms.
type Category struct {
	Name  string   `yaml:"name" json:"name"`
	Terms []string `yaml:"terms" json:"terms"`
}

// DefaultCategories returns the curated skill categories in matching order.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Programming Languages", Terms: []string{
			"python", "java", "javascript", "typescript", "c++", "c#", "go", "rust",
			"kotlin", "swift", "ruby", "php", "scala", "r", "matlab", "perl", "dart",
			"objective-c", "shell", "bash", "powershell", "sql",
		}},
		{Name: "Web Technologies", Terms: []string{
			"html", "css", "html5", "css3", "sass", "less", "bootstrap", "tailwind",
			"jquery", "ajax", "json", "xml", "rest api", "graphql", "websocket",
		}},
		{Name: "Frameworks & Libraries", Terms: []string{
			"react", "angular", "vue.js", "django", "flask", "fastapi", "spring boot",
			"express.js", "node.js", "next.js", "nuxt.js", "svelte", "ember.js",
			"laravel", "symfony", "codeigniter", ".net", "asp.net",
		}},
		{Name: "Databases", Terms: []string{
			"mysql", "postgresql", "mongodb", "redis", "elasticsearch", "cassandra",
			"oracle", "sql server", "sqlite", "neo4j", "dynamodb", "firebase",
			"mariadb", "couchdb", "influxdb",
		}},
		{Name: "Cloud & DevOps", Terms: []string{
			"aws", "azure", "google cloud platform", "gcp", "heroku", "digitalocean",
			"kubernetes", "docker", "terraform", "ansible", "jenkins", "gitlab ci",
			"github actions", "circleci", "travis ci",
		}},
		{Name: "Data Science & ML", Terms: []string{
			"pandas", "numpy", "scikit-learn", "tensorflow", "pytorch", "keras",
			"matplotlib", "seaborn", "plotly", "jupyter", "apache spark", "hadoop",
			"tableau", "power bi", "excel", "r studio",
		}},
		{Name: "Mobile Development", Terms: []string{
			"android", "ios", "react native", "flutter", "xamarin", "cordova",
			"ionic", "swift", "kotlin", "objective-c",
		}},
		{Name: "Tools & Platforms", Terms: []string{
			"git", "github", "gitlab", "bitbucket", "jira", "confluence",
			"slack", "teams", "figma", "sketch", "adobe xd", "photoshop",
		}},
	}
}

// Match is one whole-word occurrence of a registry term.
type Match struct {
	Text  string
	Start int
	End   int
}

type categoryMatcher struct {
	name  string
	union *regexp.Regexp
	terms []*regexp.Regexp
}

// Registry holds the compiled category matchers. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	categories []Category
	matchers   []categoryMatcher
	technical  map[string]struct{}
}

// NewRegistry compiles the categories. In fast mode every term is matched
// literally; otherwise whitespace inside multi-word terms matches any run of
// whitespace. A category that fails to compile is logged and skipped.
func NewRegistry(categories []Category, fastMode bool, logger *errors.Logger) *Registry {
	r := &Registry{
		categories: categories,
		technical:  make(map[string]struct{}),
	}
	for _, cat := range categories {
		for _, term := range cat.Terms {
			r.technical[strings.ToLower(term)] = struct{}{}
		}
		m, err := compileCategory(cat, fastMode)
		if err != nil {
			if logger != nil {
				logger.Warn("Failed to compile skill patterns", "category", cat.Name, "error", err.Error())
			}
			continue
		}
		r.matchers = append(r.matchers, m)
	}
	return r
}

func compileCategory(cat Category, fastMode bool) (categoryMatcher, error) {
	m := categoryMatcher{name: cat.Name}
	alternatives := make([]string, 0, len(cat.Terms))
	for _, term := range cat.Terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		pattern := regexp.QuoteMeta(term)
		if !fastMode && strings.Contains(term, " ") {
			pattern = strings.Join(strings.Fields(pattern), `\s+`)
		}
		re, err := regexp.Compile(`(?i)^(?:` + pattern + `)`)
		if err != nil {
			return m, fmt.Errorf("term %q: %w", term, err)
		}
		m.terms = append(m.terms, re)
		alternatives = append(alternatives, pattern)
	}
	if len(alternatives) == 0 {
		return m, fmt.Errorf("category has no terms")
	}
	union, err := regexp.Compile(`(?i)(?:` + strings.Join(alternatives, "|") + `)`)
	if err != nil {
		return m, err
	}
	m.union = union
	return m, nil
}

// findAll returns non-overlapping whole-word matches, left to right. At each
// candidate position the first term in registry order that forms a whole
// word wins.
func (m categoryMatcher) findAll(text string) []Match {
	var matches []Match
	pos := 0
	for pos < len(text) {
		loc := m.union.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		if end, ok := m.matchAt(text, start); ok {
			matches = append(matches, Match{Text: text[start:end], Start: start, End: end})
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + max(size, 1)
	}
	return matches
}

func (m categoryMatcher) matchAt(text string, start int) (int, bool) {
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(prev) {
			return 0, false
		}
	}
	for _, re := range m.terms {
		loc := re.FindStringIndex(text[start:])
		if loc == nil || loc[1] == 0 {
			continue
		}
		end := start + loc[1]
		if end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if isWordRune(next) {
				continue
			}
		}
		return end, true
	}
	return 0, false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Categories returns the category names that compiled, in matching order.
func (r *Registry) Categories() []string {
	names := make([]string, len(r.matchers))
	for i, m := range r.matchers {
		names[i] = m.name
	}
	return names
}

// Terms returns every registry term, lowercased.
func (r *Registry) Terms() []string {
	terms := make([]string, 0, len(r.technical))
	for _, cat := range r.categories {
		for _, term := range cat.Terms {
			terms = append(terms, strings.ToLower(term))
		}
	}
	return terms
}

// IsTechnical reports whether a lowercase term is listed in any category.
func (r *Registry) IsTechnical(term string) bool {
	_, ok := r.technical[strings.ToLower(term)]
	return ok
}

// LoadCategories reads extra categories from a YAML file of the form
//
//	categories:
//	  - name: Messaging
//	    terms: [kafka, rabbitmq]
func LoadCategories(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read patterns file", err).
			WithContext("path", path)
	}
	var doc struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "malformed patterns file", err).
			WithContext("path", path)
	}
	return doc.Categories, nil
}

// MergeCategories appends extra terms to same-named categories and adds new
// categories at the end, keeping the order of base.
func MergeCategories(base, extra []Category) []Category {
	out := make([]Category, len(base))
	index := make(map[string]int, len(base))
	for i, cat := range base {
		out[i] = Category{Name: cat.Name, Terms: append([]string{}, cat.Terms...)}
		index[strings.ToLower(cat.Name)] = i
	}
	for _, cat := range extra {
		if cat.Name == "" {
			continue
		}
		if i, ok := index[strings.ToLower(cat.Name)]; ok {
			out[i].Terms = append(out[i].Terms, cat.Terms...)
			continue
		}
		index[strings.ToLower(cat.Name)] = len(out)
		out = append(out, Category{Name: cat.Name, Terms: append([]string{}, cat.Terms...)})
	}
	return out
}
