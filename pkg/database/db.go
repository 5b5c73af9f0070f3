package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ShiftRow represents the shifts table
type ShiftRow struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	WorkName   string    `gorm:"not null" json:"work_name"`
	Location   string    `json:"location"`
	HourlyRate float64   `gorm:"not null;default:0" json:"hourly_rate"`
	StartTime  time.Time `gorm:"index;not null" json:"start_time"`
	EndTime    time.Time `gorm:"not null" json:"end_time"`
	Status     string    `gorm:"index;not null" json:"status"`
	Notes      string    `json:"notes"`
	UpdatedAt  time.Time `json:"updated_at"`
	// UTC offsets in seconds of the wall clocks the times were written in.
	// Nil on rows written before the columns existed.
	StartOffset *int `json:"start_offset"`
	EndOffset   *int `json:"end_offset"`
}

// TableName pins the table name independent of the struct name
func (ShiftRow) TableName() string { return "shifts" }

// APIKey represents the api_keys table; keys are issued to import clients
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	Revoked    bool       `gorm:"not null;default:false" json:"revoked"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// ImportUsage represents the import_usages table, one row per key per day
type ImportUsage struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	KeyID          uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date           string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	Batches        int    `gorm:"default:0" json:"batches"`
	AcceptedShifts int    `gorm:"default:0" json:"accepted_shifts"`
	RejectedTokens int    `gorm:"default:0" json:"rejected_tokens"`
}

// Owner represents the owners table; there is a single implicit owner
type Owner struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Open connects to postgres when dsn is set and to the sqlite file at
// dataPath otherwise, then migrates the schema.
func Open(dsn, dataPath string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if dsn != "" {
		cfg.PrepareStmt = false
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), cfg)
	} else {
		if dataPath == "" {
			dataPath = "shifts.db"
		}
		db, err = gorm.Open(sqlite.Open(dataPath), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service owns
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ShiftRow{}, &APIKey{}, &ImportUsage{}, &Owner{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
