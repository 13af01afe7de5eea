package formatters

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"jobanalyzer/internal/analyzer"
)

// Data type keys used by the registry
const (
	TypeAny          = "any"
	TypeJobAnalysis  = "JobAnalysisResult"
	TypeBatchReport  = "BatchReport"
	TypeProfileMatch = "ProfileMatch"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})
	registry.RegisterFormatter("text", TypeJobAnalysis, &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", TypeJobAnalysis, &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("csv", TypeJobAnalysis, &AnalysisCSVFormatter{})
	registry.RegisterFormatter("text", TypeBatchReport, &BatchTextFormatter{})
	registry.RegisterFormatter("markdown", TypeBatchReport, &BatchMarkdownFormatter{})
	registry.RegisterFormatter("csv", TypeBatchReport, &BatchCSVFormatter{})
	registry.RegisterFormatter("text", TypeProfileMatch, &MatchTextFormatter{})
	registry.RegisterFormatter("markdown", TypeProfileMatch, &MatchMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case *analyzer.JobAnalysisResult, analyzer.JobAnalysisResult:
		return TypeJobAnalysis
	case *analyzer.BatchReport, analyzer.BatchReport:
		return TypeBatchReport
	case *analyzer.ProfileMatch, analyzer.ProfileMatch:
		return TypeProfileMatch
	default:
		return TypeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

// AnalysisCSVFormatter writes one row per extracted skill
type AnalysisCSVFormatter struct{}

func (acf *AnalysisCSVFormatter) Format(data any) (string, error) {
	result, err := asResult(data)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{{"job_id", "name", "surface_form", "confidence", "skill_type", "source"}}
	for _, s := range result.Skills {
		rows = append(rows, []string{
			result.JobID,
			s.Name,
			s.SurfaceForm,
			strconv.FormatFloat(s.Confidence, 'f', -1, 64),
			s.SkillType,
			s.Source,
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (acf *AnalysisCSVFormatter) SupportedType() string {
	return TypeJobAnalysis
}

// BatchCSVFormatter writes the per-job batch summary
type BatchCSVFormatter struct{}

func (bcf *BatchCSVFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := analyzer.WriteReport(&buf, report, "csv"); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (bcf *BatchCSVFormatter) SupportedType() string {
	return TypeBatchReport
}

func asResult(data any) (*analyzer.JobAnalysisResult, error) {
	switch v := data.(type) {
	case *analyzer.JobAnalysisResult:
		if v != nil {
			return v, nil
		}
	case analyzer.JobAnalysisResult:
		return &v, nil
	}
	return nil, fmt.Errorf("expected JobAnalysisResult, got %T", data)
}

func asReport(data any) (*analyzer.BatchReport, error) {
	switch v := data.(type) {
	case *analyzer.BatchReport:
		if v != nil {
			return v, nil
		}
	case analyzer.BatchReport:
		return &v, nil
	}
	return nil, fmt.Errorf("expected BatchReport, got %T", data)
}

func asMatch(data any) (analyzer.ProfileMatch, error) {
	switch v := data.(type) {
	case *analyzer.ProfileMatch:
		if v != nil {
			return *v, nil
		}
	case analyzer.ProfileMatch:
		return v, nil
	}
	return analyzer.ProfileMatch{}, fmt.Errorf("expected ProfileMatch, got %T", data)
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
