package models

import (
	"errors"
	"fmt"
	"time"
)

// DefaultWorkName is used when a shift has no usable name
const DefaultWorkName = "Live"

// Status is the lifecycle state of a shift
type Status string

const (
	StatusUpcoming  Status = "UPCOMING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Shift represents one work session with a resolved start and end
type Shift struct {
	ID         string    `json:"id"`
	WorkName   string    `json:"workName"`
	Location   string    `json:"location"`
	HourlyRate float64   `json:"hourlyRate"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Status     Status    `json:"status"`
	Notes      string    `json:"notes"`
}

// DurationHours returns the unrounded length of the shift in hours
func (s Shift) DurationHours() float64 {
	return s.EndTime.Sub(s.StartTime).Hours()
}

// Earnings returns duration times hourly rate
func (s Shift) Earnings() float64 {
	return s.DurationHours() * s.HourlyRate
}

// Validate checks the invariants every stored shift must hold
func (s Shift) Validate() error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.WorkName == "" {
		return errors.New("workName is required")
	}
	if s.HourlyRate < 0 {
		return fmt.Errorf("hourlyRate must not be negative, got %v", s.HourlyRate)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("unknown status %q", s.Status)
	}
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return errors.New("startTime and endTime are required")
	}
	if !s.EndTime.After(s.StartTime) {
		return errors.New("endTime must be after startTime")
	}
	return nil
}

// RawShiftToken is one unvalidated candidate shift taken from extracted text
type RawShiftToken struct {
	DateStr        string `json:"dateStr"`
	StartTimeOfDay string `json:"startTime"`
	EndTimeOfDay   string `json:"endTime"`
	RawWorkName    string `json:"workName"`
	RawNotes       string `json:"notes"`
	RestDay        bool   `json:"restDay,omitempty"`
}

// ExtractedShift is one array element produced by the image-understanding service
type ExtractedShift struct {
	DateStr   string `json:"dateStr"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	WorkName  string `json:"workName"`
	Notes     string `json:"notes"`
	RestDay   bool   `json:"restDay,omitempty"`
}

// Period is a calendar granularity used to bucket shifts
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Stats holds hour and earnings totals for one period
type Stats struct {
	TotalHours    float64 `json:"totalHours"`
	TotalEarnings float64 `json:"totalEarnings"`
}

// Summary is the combined day/month/year report
type Summary struct {
	Day   Stats `json:"day"`
	Month Stats `json:"month"`
	Year  Stats `json:"year"`
}

// ImportResult is the response body of every import endpoint
type ImportResult struct {
	Accepted []Shift         `json:"accepted"`
	Rejected []RejectedToken `json:"rejected"`
	Saved    bool            `json:"saved"`
}

// RejectedToken pairs a token with the reason it was not accepted
type RejectedToken struct {
	Token  RawShiftToken `json:"token"`
	Reason string        `json:"reason"`
	Detail string        `json:"detail,omitempty"`
}
