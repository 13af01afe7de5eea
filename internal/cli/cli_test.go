package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobanalyzer/internal/config"
	"jobanalyzer/internal/errors"
)

const samplePosting = "Looking for a Python developer with Docker and PostgreSQL experience"

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown", "csv"},
			MaxFileSize:      1024 * 1024,
		},
		Analyzer: config.AnalyzerConfig{
			Model: config.ModelConfig{Provider: config.ModelProviderNone},
		},
	}
}

// run executes the root command with args. Flag values from earlier runs
// are reset first since the commands are package globals.
func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	for _, c := range rootCmd.Commands() {
		resetFlags(c)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute(context.Background(), cfg, errors.NewDiscardLogger())
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func writePosting(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded), string(data))
	return decoded
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, testConfig(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "jobanalyzer version "+Version)
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	posting := writePosting(t, dir, "backend.txt", samplePosting)

	tests := []struct {
		name   string
		args   []string
		wantID string
	}{
		{name: "id from file name", wantID: "backend"},
		{name: "explicit job id", args: []string{"--job-id", "req-42"}, wantID: "req-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outFile := filepath.Join(t.TempDir(), "result.json")
			args := append([]string{"analyze", posting, "-o", outFile}, tt.args...)

			_, err := run(t, testConfig(), args...)
			require.NoError(t, err)

			result := readJSON(t, outFile)
			assert.Equal(t, tt.wantID, result["job_id"])

			var names []string
			for _, s := range result["skills"].([]any) {
				names = append(names, s.(map[string]any)["name"].(string))
			}
			assert.ElementsMatch(t, []string{"Python", "Docker", "Postgresql"}, names)
		})
	}
}

func TestAnalyzeCommandErrors(t *testing.T) {
	dir := t.TempDir()
	posting := writePosting(t, dir, "backend.txt", samplePosting)
	writePosting(t, dir, "frontend.txt", "React developer")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unsupported format", args: []string{"analyze", posting, "--format", "yaml"}, wantErr: "unsupported output format"},
		{name: "directory with many postings", args: []string{"analyze", dir}, wantErr: "expected 1 job posting, got 2"},
		{name: "missing file", args: []string{"analyze", filepath.Join(dir, "nope.txt")}, wantErr: "nope.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, testConfig(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBatchCommandWithExport(t *testing.T) {
	dir := t.TempDir()
	writePosting(t, dir, "a.txt", samplePosting)
	writePosting(t, dir, "b.txt", "Senior React and TypeScript engineer, Kubernetes a plus")

	out := t.TempDir()
	reportFile := filepath.Join(out, "report.json")
	exportFile := filepath.Join(out, "summary.csv")

	_, err := run(t, testConfig(), "batch", dir,
		"-o", reportFile,
		"--ids", "backend, frontend",
		"--export", "csv",
		"--export-file", exportFile)
	require.NoError(t, err)

	report := readJSON(t, reportFile)
	summary := report["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["total_jobs_analyzed"])

	f, err := os.Open(exportFile)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "job_id", rows[0][0])
	assert.ElementsMatch(t, []string{"backend", "frontend"}, []string{rows[1][0], rows[2][0]})
}

func TestBatchCommandErrors(t *testing.T) {
	dir := t.TempDir()
	writePosting(t, dir, "a.txt", samplePosting)
	writePosting(t, dir, "b.txt", "Go developer")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "id count mismatch", args: []string{"batch", dir, "--ids", "only-one"}, wantErr: "--ids must name one job id per posting"},
		{name: "unknown export format", args: []string{"batch", dir, "--export", "xml"}, wantErr: "unsupported export format"},
		{name: "empty directory", args: []string{"batch", t.TempDir()}, wantErr: "No job postings found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, testConfig(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMatchCommand(t *testing.T) {
	posting := writePosting(t, t.TempDir(), "backend.txt", samplePosting)
	outFile := filepath.Join(t.TempDir(), "match.json")

	_, err := run(t, testConfig(), "match", posting, "--profile", "python, rust", "-o", outFile)
	require.NoError(t, err)

	match := readJSON(t, outFile)
	assert.Equal(t, []any{"python"}, match["matched_skills"])
	assert.Equal(t, float64(2), match["profile_skill_count"])
}

func TestMatchCommandRequiresProfile(t *testing.T) {
	posting := writePosting(t, t.TempDir(), "backend.txt", samplePosting)

	_, err := run(t, testConfig(), "match", posting, "--profile", " , ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--profile must list at least one skill")
}

func TestNewEngine(t *testing.T) {
	t.Run("dictionary model enables the primary extractor", func(t *testing.T) {
		cfg := testConfig()
		cfg.Analyzer.Model.Provider = config.ModelProviderDictionary

		eng, err := newEngine(context.Background(), cfg, errors.NewDiscardLogger(), nil, nil)
		require.NoError(t, err)
		defer eng.Close()

		a, err := eng.build()
		require.NoError(t, err)
		assert.True(t, a.PrimaryEnabled())
		assert.Nil(t, eng.sharedCache())
	})

	t.Run("no model", func(t *testing.T) {
		eng, err := newEngine(context.Background(), testConfig(), errors.NewDiscardLogger(), nil, nil)
		require.NoError(t, err)

		a, err := eng.build()
		require.NoError(t, err)
		assert.False(t, a.PrimaryEnabled())
	})

	t.Run("missing patterns file", func(t *testing.T) {
		cfg := testConfig()
		cfg.Analyzer.PatternsFile = filepath.Join(t.TempDir(), "missing.yaml")

		_, err := newEngine(context.Background(), cfg, errors.NewDiscardLogger(), nil, nil)
		require.Error(t, err)
	})

	t.Run("unreachable shared cache is skipped", func(t *testing.T) {
		cfg := testConfig()
		cfg.Analyzer.SharedCache = config.SharedCacheConfig{Enabled: true, URL: "redis://127.0.0.1:1/0"}

		eng, err := newEngine(context.Background(), cfg, errors.NewDiscardLogger(), nil, nil)
		require.NoError(t, err)
		assert.Nil(t, eng.sharedCache())
	})
}

func TestFormatExtension(t *testing.T) {
	tests := map[string]string{"markdown": "md", "text": "txt", "json": "json", "csv": "csv"}
	for format, want := range tests {
		assert.Equal(t, want, formatExtension(format), format)
	}
}
