// Package schedule builds the list views of the shift calendar.
package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/arnavshah/shiftledger-api/pkg/models"
	"github.com/arnavshah/shiftledger-api/pkg/store"
)

// SameDay reports whether two times fall on the same calendar day
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ForDay returns the non-cancelled shifts starting on day, earliest first
func ForDay(records []models.Shift, day time.Time) []models.Shift {
	out := []models.Shift{}
	for _, s := range records {
		if s.Status == models.StatusCancelled || !SameDay(s.StartTime, day) {
			continue
		}
		out = append(out, s)
	}
	sortByStart(out)
	return out
}

// Upcoming returns non-cancelled shifts starting at or after now, earliest
// first. A limit of zero or less returns them all.
func Upcoming(records []models.Shift, now time.Time, limit int) []models.Shift {
	out := []models.Shift{}
	for _, s := range records {
		if s.Status == models.StatusCancelled || s.StartTime.Before(now) {
			continue
		}
		out = append(out, s)
	}
	sortByStart(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Cancel moves a shift to CANCELLED by full replacement. Shifts are never deleted.
func Cancel(ctx context.Context, s store.SessionStore, id string) (*models.Shift, error) {
	shift, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	shift.Status = models.StatusCancelled
	if err := s.Upsert(ctx, *shift); err != nil {
		return nil, fmt.Errorf("cancelling shift %s: %w", id, err)
	}
	return shift, nil
}

func sortByStart(shifts []models.Shift) {
	sort.SliceStable(shifts, func(i, j int) bool {
		return shifts[i].StartTime.Before(shifts[j].StartTime)
	})
}
