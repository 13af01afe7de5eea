package analyzer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"jobanalyzer/internal/errors"
)

const topSkillsInCSV = 5

var csvHeader = []string{
	"job_id", "processing_time", "cache_hit",
	"skills_count", "entities_count", "keywords_count", "top_skills",
}

// ExportFilename returns the default export file name for a format.
func ExportFilename(format string, now time.Time) string {
	return fmt.Sprintf("job_analysis_results_%s.%s", now.Format("20060102_150405"), format)
}

// Export writes a batch report to filename as indented JSON or a per-job
// CSV summary, and returns the file name written. An empty filename is
// replaced by ExportFilename.
func Export(report *BatchReport, filename, format string) (string, error) {
	format = strings.ToLower(format)
	if filename == "" {
		filename = ExportFilename(format, time.Now())
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, report, format); err != nil {
		return "", err
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return "", errors.NewIOError(errors.ErrCodeExportFailed, "failed to write export file", err).
			WithContext("filename", filename)
	}
	return filename, nil
}

// WriteReport encodes a batch report as json or csv.
func WriteReport(w io.Writer, report *BatchReport, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(report); err != nil {
			return errors.NewInternalError(errors.ErrCodeExportFailed, "failed to encode report", err)
		}
		return nil
	case "csv":
		return writeCSV(w, report)
	default:
		return errors.NewValidationError(errors.ErrCodeUnsupportedFormat, "unsupported export format", nil).
			WithContext("format", format)
	}
}

func writeCSV(w io.Writer, report *BatchReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.NewIOError(errors.ErrCodeExportFailed, "failed to write csv header", err)
	}
	for _, r := range report.IndividualResults {
		names := make([]string, 0, topSkillsInCSV)
		for i, s := range r.Skills {
			if i == topSkillsInCSV {
				break
			}
			names = append(names, s.Name)
		}
		row := []string{
			r.JobID,
			strconv.FormatFloat(r.ProcessingTime, 'f', -1, 64),
			strconv.FormatBool(r.CacheHit),
			strconv.Itoa(len(r.Skills)),
			strconv.Itoa(len(r.Entities)),
			strconv.Itoa(len(r.Keywords)),
			strings.Join(names, ", "),
		}
		if err := cw.Write(row); err != nil {
			return errors.NewIOError(errors.ErrCodeExportFailed, "failed to write csv row", err).
				WithContext("job_id", r.JobID)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.NewIOError(errors.ErrCodeExportFailed, "failed to flush csv", err)
	}
	return nil
}
