package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/minutemind/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Hours        int    `json:"hours"`
	Minutes      int    `json:"minutes"`
	TotalMinutes int    `json:"total_minutes"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// ToJSON writes entries to path as an indented document, newest date first.
func ToJSON(entries []store.StudyEntry, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(entries),
	}

	for _, e := range sorted(entries) {
		export.Entries = append(export.Entries, jsonEntry{
			ID:           e.ID,
			Date:         e.Date,
			Hours:        e.Hours(),
			Minutes:      e.Minutes(),
			TotalMinutes: e.DurationMinutes,
			CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:    e.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// Path builds dir/minutemind-data-<date>.<ext> and creates dir if needed.
func Path(dir, date, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	return filepath.Join(dir, fmt.Sprintf("minutemind-data-%s.%s", date, ext)), nil
}
