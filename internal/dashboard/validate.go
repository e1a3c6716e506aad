package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sadopc/minutemind/internal/dateutil"
)

// MaxDailyMinutes is the longest single submission accepted.
const MaxDailyMinutes = 24 * 60

// ValidationError rejects user input before it reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Submission is the raw form input for logging or editing a day. Hours and
// Minutes are strings so non-numeric input can be reported.
type Submission struct {
	Date    string
	Hours   string
	Minutes string
}

// SubmissionFor pre-fills a form for date with a total duration.
func SubmissionFor(date string, totalMinutes int) Submission {
	return Submission{
		Date:    date,
		Hours:   strconv.Itoa(totalMinutes / 60),
		Minutes: strconv.Itoa(totalMinutes % 60),
	}
}

// Validate checks the submission against today and returns the date and the
// total minutes to store.
func (s Submission) Validate(today string) (date string, minutes int, err error) {
	date = strings.TrimSpace(s.Date)
	if date == "" {
		return "", 0, &ValidationError{Field: "date", Reason: "required"}
	}
	if !dateutil.IsValidDate(date) {
		return "", 0, &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	if dateutil.Before(today, date) {
		return "", 0, &ValidationError{Field: "date", Reason: "cannot be in the future"}
	}

	hours, err := parsePart("hours", s.Hours)
	if err != nil {
		return "", 0, err
	}
	// Bound hours before multiplying so huge input cannot wrap around.
	if hours > MaxDailyMinutes/60 {
		return "", 0, &ValidationError{Field: "duration", Reason: "cannot exceed 24 hours"}
	}
	mins, err := parsePart("minutes", s.Minutes)
	if err != nil {
		return "", 0, err
	}
	if mins >= 60 {
		return "", 0, &ValidationError{Field: "minutes", Reason: "must be below 60"}
	}

	total := hours*60 + mins
	switch {
	case total <= 0:
		return "", 0, &ValidationError{Field: "duration", Reason: "must be greater than zero"}
	case total > MaxDailyMinutes:
		return "", 0, &ValidationError{Field: "duration", Reason: "cannot exceed 24 hours"}
	}
	return date, total, nil
}

// parsePart reads one whole-number field. Blank means zero.
func parsePart(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: "must be a whole number"}
	}
	if n < 0 {
		return 0, &ValidationError{Field: field, Reason: "cannot be negative"}
	}
	return n, nil
}
