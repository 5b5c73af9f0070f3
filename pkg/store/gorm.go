package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/shiftledger-api/pkg/database"
	"github.com/arnavshah/shiftledger-api/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps shifts in the shifts table of a postgres or sqlite database
type GormStore struct {
	db   *gorm.DB
	zone *time.Location
}

// NewGormStore wraps an open database. Timestamps read back keep the UTC
// offset they were written with, so their calendar fields are unchanged;
// rows without a stored offset are shown in zone.
func NewGormStore(db *gorm.DB, zone *time.Location) *GormStore {
	if zone == nil {
		zone = time.Local
	}
	return &GormStore{db: db, zone: zone}
}

// GetAll returns every shift ordered by start time
func (g *GormStore) GetAll(ctx context.Context) ([]models.Shift, error) {
	var rows []database.ShiftRow
	if err := g.db.WithContext(ctx).Order("start_time asc, id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("storage error listing shifts: %w", err)
	}

	out := make([]models.Shift, 0, len(rows))
	for _, r := range rows {
		out = append(out, g.toShift(r))
	}
	return out, nil
}

// GetByID returns ErrNotFound when the id is unknown
func (g *GormStore) GetByID(ctx context.Context, id string) (*models.Shift, error) {
	var row database.ShiftRow
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading shift %s: %w", id, err)
	}
	s := g.toShift(row)
	return &s, nil
}

// Upsert replaces or inserts by id in a single statement
func (g *GormStore) Upsert(ctx context.Context, shift models.Shift) error {
	row := fromShift(shift)
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"work_name", "location", "hourly_rate", "start_time",
			"end_time", "status", "notes", "updated_at",
			"start_offset", "end_offset",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("storage error saving shift %s: %w", shift.ID, err)
	}
	return nil
}

func (g *GormStore) toShift(r database.ShiftRow) models.Shift {
	return models.Shift{
		ID:         r.ID,
		WorkName:   r.WorkName,
		Location:   r.Location,
		HourlyRate: r.HourlyRate,
		StartTime:  g.wallClock(r.StartTime, r.StartOffset),
		EndTime:    g.wallClock(r.EndTime, r.EndOffset),
		Status:     models.Status(r.Status),
		Notes:      r.Notes,
	}
}

// wallClock restores the offset t was written in, preferring the store zone
// when it has the same offset at that instant
func (g *GormStore) wallClock(t time.Time, offset *int) time.Time {
	local := t.In(g.zone)
	if offset == nil {
		return local
	}
	if _, off := local.Zone(); off == *offset {
		return local
	}
	return t.In(time.FixedZone("", *offset))
}

func fromShift(s models.Shift) database.ShiftRow {
	_, startOffset := s.StartTime.Zone()
	_, endOffset := s.EndTime.Zone()
	return database.ShiftRow{
		ID:         s.ID,
		WorkName:   s.WorkName,
		Location:   s.Location,
		HourlyRate: s.HourlyRate,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		Status:     string(s.Status),
		Notes:      s.Notes,

		StartOffset: &startOffset,
		EndOffset:   &endOffset,
	}
}
