package store

import (
	"context"
	"time"

	"github.com/arnavshah/shiftledger-api/pkg/models"
	"github.com/google/uuid"
)

var (
	demoNames     = []string{"Evening Stream", "Brand Showcase", "Product Launch"}
	demoLocations = []string{"Binjiang Studio", "Shanghai Tower", "Home Studio"}
)

// Seed fills an empty store with fifteen demo shifts around now: 19:00-23:00
// on days -5 through +9, completed in the past and upcoming otherwise.
// It reports how many shifts were written; a non-empty store is left alone.
func Seed(ctx context.Context, s SessionStore, now time.Time) (int, error) {
	existing, err := s.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	written := 0
	for i := -5; i < 10; i++ {
		day := now.AddDate(0, 0, i)
		start := time.Date(day.Year(), day.Month(), day.Day(), 19, 0, 0, 0, now.Location())
		idx := abs(i) % len(demoNames)

		status := models.StatusUpcoming
		if i < 0 {
			status = models.StatusCompleted
		}
		notes := ""
		if i == 0 {
			notes = "Bring spare fill-light batteries"
		}

		shift := models.Shift{
			ID:         uuid.NewString(),
			WorkName:   demoNames[idx],
			Location:   demoLocations[idx],
			HourlyRate: float64(500 + abs(i)*50),
			StartTime:  start,
			EndTime:    start.Add(4 * time.Hour),
			Status:     status,
			Notes:      notes,
		}
		if err := s.Upsert(ctx, shift); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
