package insights

import (
	"fmt"

	"github.com/sadopc/minutemind/internal/dateutil"
	"github.com/sadopc/minutemind/internal/store"
)

// Reasons reported in DataIntegrityError.
const (
	ReasonInvalidDate      = "invalid-date"
	ReasonNegativeDuration = "negative-duration"
	ReasonDuplicateDate    = "duplicate-date"
)

// DataIntegrityError describes an entry that could not be used as stored.
type DataIntegrityError struct {
	EntryID string
	Date    string
	Reason  string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("entry %s (%q): %s", e.EntryID, e.Date, e.Reason)
}

// Sanitize drops entries with an unparseable date or a negative duration and
// folds entries sharing a date into the first one seen by summing their
// minutes. It returns a new slice in input order plus one error per problem.
func Sanitize(entries []store.StudyEntry) ([]store.StudyEntry, []*DataIntegrityError) {
	var (
		clean    []store.StudyEntry
		problems []*DataIntegrityError
	)
	byDate := make(map[string]int, len(entries))

	for _, e := range entries {
		switch {
		case !dateutil.IsValidDate(e.Date):
			problems = append(problems, &DataIntegrityError{EntryID: e.ID, Date: e.Date, Reason: ReasonInvalidDate})
			continue
		case e.DurationMinutes < 0:
			problems = append(problems, &DataIntegrityError{EntryID: e.ID, Date: e.Date, Reason: ReasonNegativeDuration})
			continue
		}

		if i, ok := byDate[e.Date]; ok {
			clean[i].DurationMinutes += e.DurationMinutes
			problems = append(problems, &DataIntegrityError{EntryID: e.ID, Date: e.Date, Reason: ReasonDuplicateDate})
			continue
		}
		byDate[e.Date] = len(clean)
		clean = append(clean, e)
	}
	return clean, problems
}
