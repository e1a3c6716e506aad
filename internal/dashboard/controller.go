// Package dashboard sequences store I/O with the insight and chart
// computations behind the UI.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/sadopc/minutemind/internal/charts"
	"github.com/sadopc/minutemind/internal/dateutil"
	"github.com/sadopc/minutemind/internal/insights"
	"github.com/sadopc/minutemind/internal/observability"
	"github.com/sadopc/minutemind/internal/store"
)

// Snapshot is the result of one refresh.
type Snapshot struct {
	Generation    uint64
	ReferenceDate string
	Entries       []store.StudyEntry // sanitized, newest first
	Insights      insights.Monthly
	Charts        charts.Set
	Problems      []*insights.DataIntegrityError
}

// Recent returns up to n of the newest entries.
func (s Snapshot) Recent(n int) []store.StudyEntry {
	if n > len(s.Entries) {
		n = len(s.Entries)
	}
	return s.Entries[:n]
}

// MinutesOn returns the minutes logged on date.
func (s Snapshot) MinutesOn(date string) int {
	for _, e := range s.Entries {
		if e.Date == date {
			return e.DurationMinutes
		}
	}
	return 0
}

type Controller struct {
	store   store.EntryStore
	owner   string
	log     *slog.Logger
	metrics *observability.Metrics
	now     func() time.Time

	generation atomic.Uint64
}

// New builds a controller for owner's entries. A nil logger discards output
// and a nil clock uses time.Now.
func New(st store.EntryStore, owner string, log *slog.Logger, m *observability.Metrics, now func() time.Time) *Controller {
	if log == nil {
		log = observability.Discard()
	}
	if now == nil {
		now = time.Now
	}
	return &Controller{store: st, owner: owner, log: log, metrics: m, now: now}
}

// Today is the current local calendar date.
func (c *Controller) Today() string {
	return dateutil.Today(c.now())
}

// Owner is the user whose data the controller reads and writes.
func (c *Controller) Owner() string { return c.owner }

// Refresh fetches every entry, then recomputes insights and charts for
// referenceDate. The generation is taken before the fetch so that of two
// overlapping refreshes the later call always wins in a ChartRegistry.
func (c *Controller) Refresh(ctx context.Context, referenceDate string) (Snapshot, error) {
	gen := c.generation.Add(1)
	started := time.Now()

	entries, err := c.store.ListEntries(ctx, c.owner)
	if err != nil {
		c.log.Error("list entries", "owner", c.owner, "err", err)
		return Snapshot{}, fmt.Errorf("refresh: %w", err)
	}

	clean, problems := insights.Sanitize(entries)
	for _, p := range problems {
		c.log.Warn("skipping malformed entry", "id", p.EntryID, "date", p.Date, "reason", p.Reason)
		c.metrics.RecordSkipped(p.Reason)
	}
	store.SortByDateDesc(clean)

	monthly, err := insights.Compute(clean, referenceDate)
	if err != nil {
		return Snapshot{}, fmt.Errorf("refresh: %w", err)
	}
	set, err := charts.Build(clean, referenceDate)
	if err != nil {
		return Snapshot{}, fmt.Errorf("refresh: %w", err)
	}

	c.metrics.ObserveRefresh(started)
	c.log.Debug("refreshed", "generation", gen, "entries", len(clean), "reference", referenceDate)

	return Snapshot{
		Generation:    gen,
		ReferenceDate: referenceDate,
		Entries:       clean,
		Insights:      monthly,
		Charts:        set,
		Problems:      problems,
	}, nil
}

// LogStudy adds a submission to its date, merging with any existing entry.
func (c *Controller) LogStudy(ctx context.Context, sub Submission) (*store.StudyEntry, error) {
	date, minutes, err := sub.Validate(c.Today())
	if err != nil {
		return nil, err
	}
	e, err := c.store.CreateOrMergeEntry(ctx, date, minutes, c.owner)
	if err != nil {
		c.log.Error("log study", "date", date, "minutes", minutes, "err", err)
		return nil, fmt.Errorf("log study: %w", err)
	}
	c.log.Info("logged study", "date", date, "minutes", minutes, "total", e.DurationMinutes)
	return e, nil
}

// EditEntry replaces an entry's date and duration.
func (c *Controller) EditEntry(ctx context.Context, id string, sub Submission) (*store.StudyEntry, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Reason: "required"}
	}
	date, minutes, err := sub.Validate(c.Today())
	if err != nil {
		return nil, err
	}
	e, err := c.store.UpdateEntry(ctx, id, date, minutes)
	if err != nil {
		c.log.Error("edit entry", "id", id, "err", err)
		return nil, fmt.Errorf("edit entry: %w", err)
	}
	c.log.Info("edited entry", "id", id, "date", date, "minutes", minutes)
	return e, nil
}

func (c *Controller) DeleteEntry(ctx context.Context, id string) error {
	if id == "" {
		return &ValidationError{Field: "id", Reason: "required"}
	}
	if err := c.store.DeleteEntry(ctx, id); err != nil {
		c.log.Error("delete entry", "id", id, "err", err)
		return fmt.Errorf("delete entry: %w", err)
	}
	c.log.Info("deleted entry", "id", id)
	return nil
}

// Progress is today's study time against the daily goal.
type Progress struct {
	Minutes     int
	GoalMinutes int
	Percent     int // may exceed 100
}

// TodayProgress measures the snapshot's reference date against goalMinutes.
func TodayProgress(s Snapshot, goalMinutes int) Progress {
	p := Progress{Minutes: s.MinutesOn(s.ReferenceDate), GoalMinutes: goalMinutes}
	if goalMinutes > 0 {
		p.Percent = int(math.Round(100 * float64(p.Minutes) / float64(goalMinutes)))
	}
	return p
}

// IsValidation reports whether err was caused by rejected input.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
