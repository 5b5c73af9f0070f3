// Package store persists shifts behind the SessionStore contract.
//
// Every implementation treats each call as one full read or one full
// replace; callers add no locking of their own.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/arnavshah/shiftledger-api/pkg/models"
)

// ErrNotFound is returned by GetByID when no shift has the id
var ErrNotFound = errors.New("shift not found")

// SessionStore is the durable map from shift id to shift
type SessionStore interface {
	GetAll(ctx context.Context) ([]models.Shift, error)
	GetByID(ctx context.Context, id string) (*models.Shift, error)
	// Upsert replaces the shift with the same id or inserts it.
	Upsert(ctx context.Context, shift models.Shift) error
}

// sortShifts orders by start time, then id, so listings are stable
func sortShifts(shifts []models.Shift) {
	sort.SliceStable(shifts, func(i, j int) bool {
		if !shifts[i].StartTime.Equal(shifts[j].StartTime) {
			return shifts[i].StartTime.Before(shifts[j].StartTime)
		}
		return shifts[i].ID < shifts[j].ID
	})
}
