package analyzer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"jobanalyzer/internal/errors"
)

//go:embed data/skills.yaml
var defaultSkillDatabase []byte

// SkillEntry is one normalized skill database record.
type SkillEntry struct {
	ID           string
	Name         string
	SkillType    string
	SurfaceForms []string
}

// SkillDatabase is the typed lookup table built from a loosely typed skill
// database document. Entries are sorted by ID.
type SkillDatabase struct {
	Entries []SkillEntry
	names   map[string]string
}

// Name returns the display name for a skill id.
func (db *SkillDatabase) Name(id string) (string, bool) {
	if db == nil {
		return "", false
	}
	name, ok := db.names[id]
	return name, ok
}

// Len returns the number of entries.
func (db *SkillDatabase) Len() int {
	if db == nil {
		return 0
	}
	return len(db.Entries)
}

// DefaultSkillDatabase parses the embedded skill database.
func DefaultSkillDatabase(logger *errors.Logger) *SkillDatabase {
	db, err := ParseSkillDatabase(defaultSkillDatabase, "yaml", logger)
	if err != nil {
		// the embedded document is part of the build; a parse failure is a programming error
		panic(fmt.Sprintf("embedded skill database: %v", err))
	}
	return db
}

// LoadSkillDatabase reads a JSON or YAML skill database, chosen by file
// extension. An empty path yields the embedded database. An unreadable or
// malformed file yields an empty database and a warning.
func LoadSkillDatabase(path string, logger *errors.Logger) *SkillDatabase {
	if path == "" {
		return DefaultSkillDatabase(logger)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if logger != nil {
			logger.Warn("Failed to load skill database", "path", path, "error", err.Error())
		}
		return &SkillDatabase{names: map[string]string{}}
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	db, err := ParseSkillDatabase(data, format, logger)
	if err != nil {
		if logger != nil {
			logger.Warn("Failed to parse skill database", "path", path, "error", err.Error())
		}
		return &SkillDatabase{names: map[string]string{}}
	}
	if logger != nil {
		logger.Info("Loaded skill mappings", "count", db.Len(), "path", path)
	}
	return db
}

// ParseSkillDatabase decodes a document mapping skill id to entry. Each
// entry resolves its name from skill_name, then the first surface form, then
// the id. Non-object entries map to their string form.
func ParseSkillDatabase(data []byte, format string, logger *errors.Logger) (*SkillDatabase, error) {
	raw := map[string]any{}
	var err error
	switch format {
	case "json":
		err = json.Unmarshal(data, &raw)
	case "yaml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, errors.NewValidationError(errors.ErrCodeUnsupportedFormat, "unsupported skill database format", nil).
			WithContext("format", format)
	}
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "malformed skill database", err)
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	db := &SkillDatabase{
		Entries: make([]SkillEntry, 0, len(ids)),
		names:   make(map[string]string, len(ids)),
	}
	for _, id := range ids {
		entry, ok := normalizeSkillEntry(id, raw[id])
		if !ok {
			if logger != nil {
				logger.Warn("Skipping malformed skill database entry", "skill_id", id)
			}
			continue
		}
		db.Entries = append(db.Entries, entry)
		db.names[id] = entry.Name
	}
	return db, nil
}

func normalizeSkillEntry(id string, value any) (SkillEntry, bool) {
	entry := SkillEntry{ID: id}
	record, isRecord := value.(map[string]any)
	if !isRecord {
		if value == nil {
			return entry, false
		}
		entry.Name = strings.TrimSpace(fmt.Sprint(value))
		if entry.Name == "" {
			return entry, false
		}
		entry.SurfaceForms = []string{strings.ToLower(entry.Name)}
		return entry, true
	}

	if forms, ok := record["surface_forms"].([]any); ok {
		for _, f := range forms {
			if s, ok := f.(string); ok && strings.TrimSpace(s) != "" {
				entry.SurfaceForms = append(entry.SurfaceForms, strings.TrimSpace(s))
			}
		}
	}

	var firstForm string
	if len(entry.SurfaceForms) > 0 {
		firstForm = entry.SurfaceForms[0]
	}
	entry.Name = firstNonEmpty(stringField(record, "skill_name"), firstForm, id)
	entry.SkillType = firstNonEmpty(stringField(record, "skill_type"), stringField(record, "type"))
	if len(entry.SurfaceForms) == 0 {
		entry.SurfaceForms = []string{strings.ToLower(entry.Name)}
	}
	return entry, true
}

func stringField(record map[string]any, key string) string {
	if s, ok := record[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
