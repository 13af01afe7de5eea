package common

import (
	"fmt"
	"slices"
	"strings"
)

// ExportFormats are the formats a batch report can be exported as
var ExportFormats = []string{"json", "csv"}

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ValidateExportFormat validates a batch export format. Empty means no export.
func ValidateExportFormat(format string) error {
	if format == "" || slices.Contains(ExportFormats, strings.ToLower(format)) {
		return nil
	}
	return fmt.Errorf("unsupported export format '%s'. Supported formats: %v", format, ExportFormats)
}

// GetSupportedFormats returns the list of supported formats
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}

// SplitList splits a comma separated flag value, dropping blank entries.
// It returns nil when nothing is left.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
