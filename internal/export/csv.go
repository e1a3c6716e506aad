package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/minutemind/internal/store"
)

var csvHeader = []string{"Date", "Hours", "Minutes", "TotalMinutes", "CreatedAt"}

// ToCSV writes entries to path, newest date first.
func ToCSV(entries []store.StudyEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range sorted(entries) {
		row := []string{
			e.Date,
			strconv.Itoa(e.Hours()),
			strconv.Itoa(e.Minutes()),
			strconv.Itoa(e.DurationMinutes),
			e.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// sorted returns a newest-first copy.
func sorted(entries []store.StudyEntry) []store.StudyEntry {
	out := append([]store.StudyEntry(nil), entries...)
	store.SortByDateDesc(out)
	return out
}
