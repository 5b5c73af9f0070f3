package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/arnavshah/shiftledger-api/pkg/models"
	"github.com/arnavshah/shiftledger-api/pkg/schedule"
	"github.com/arnavshah/shiftledger-api/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mk(id string, start time.Time, status models.Status) models.Shift {
	return models.Shift{ID: id, WorkName: "Live", StartTime: start, EndTime: start.Add(2 * time.Hour), Status: status}
}

func ids(shifts []models.Shift) []string {
	out := make([]string, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, s.ID)
	}
	return out
}

func TestForDay(t *testing.T) {
	records := []models.Shift{
		mk("evening", time.Date(2024, 12, 8, 19, 0, 0, 0, time.UTC), models.StatusUpcoming),
		mk("morning", time.Date(2024, 12, 8, 9, 0, 0, 0, time.UTC), models.StatusCompleted),
		mk("cancelled", time.Date(2024, 12, 8, 12, 0, 0, 0, time.UTC), models.StatusCancelled),
		mk("next-day", time.Date(2024, 12, 9, 9, 0, 0, 0, time.UTC), models.StatusUpcoming),
	}

	got := schedule.ForDay(records, time.Date(2024, 12, 8, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, []string{"morning", "evening"}, ids(got))
	assert.Empty(t, schedule.ForDay(records, time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC)))
}

func TestUpcoming(t *testing.T) {
	now := time.Date(2024, 12, 8, 12, 0, 0, 0, time.UTC)
	records := []models.Shift{
		mk("past", time.Date(2024, 12, 8, 9, 0, 0, 0, time.UTC), models.StatusCompleted),
		mk("c", time.Date(2024, 12, 10, 9, 0, 0, 0, time.UTC), models.StatusUpcoming),
		mk("a", now, models.StatusUpcoming),
		mk("b", time.Date(2024, 12, 9, 9, 0, 0, 0, time.UTC), models.StatusUpcoming),
		mk("cancelled", time.Date(2024, 12, 9, 10, 0, 0, 0, time.UTC), models.StatusCancelled),
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(schedule.Upcoming(records, now, 0)))
	assert.Equal(t, []string{"a", "b"}, ids(schedule.Upcoming(records, now, 2)))
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Upsert(ctx, mk("a", time.Date(2024, 12, 8, 9, 0, 0, 0, time.UTC), models.StatusUpcoming)))

	got, err := schedule.Cancel(ctx, s, "a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)

	stored, err := s.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = schedule.Cancel(ctx, s, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
