// Package stats aggregates shifts into hour and earnings totals per calendar period.
package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/arnavshah/shiftledger-api/pkg/models"
)

// Aggregate totals the non-cancelled shifts whose start falls in the same
// period bucket as now. Hours are rounded to one decimal after summation;
// earnings are left unrounded.
func Aggregate(records []models.Shift, now time.Time, period models.Period) models.Stats {
	if _, err := ParsePeriod(string(period)); err != nil {
		panic("stats: " + err.Error())
	}

	var hours, earnings float64
	for _, s := range records {
		if s.Status == models.StatusCancelled {
			continue
		}
		if !InPeriod(s.StartTime, now, period) {
			continue
		}
		d := s.DurationHours()
		hours += d
		earnings += d * s.HourlyRate
	}
	return models.Stats{
		TotalHours:    RoundHours(hours),
		TotalEarnings: earnings,
	}
}

// Summarize builds the day, month and year report for now
func Summarize(records []models.Shift, now time.Time) models.Summary {
	return models.Summary{
		Day:   Aggregate(records, now, models.PeriodDay),
		Month: Aggregate(records, now, models.PeriodMonth),
		Year:  Aggregate(records, now, models.PeriodYear),
	}
}

// InPeriod compares the calendar fields of t and ref, each in its own location.
// It panics on a period outside the enumerated set.
func InPeriod(t, ref time.Time, period models.Period) bool {
	ty, tm, td := t.Date()
	ry, rm, rd := ref.Date()
	switch period {
	case models.PeriodDay:
		return ty == ry && tm == rm && td == rd
	case models.PeriodMonth:
		return ty == ry && tm == rm
	case models.PeriodYear:
		return ty == ry
	default:
		panic(fmt.Sprintf("stats: unknown period %q", period))
	}
}

// ParsePeriod validates a period name from an outer surface
func ParsePeriod(s string) (models.Period, error) {
	switch p := models.Period(s); p {
	case models.PeriodDay, models.PeriodMonth, models.PeriodYear:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q (want day, month or year)", s)
}

// RoundHours rounds to one decimal place
func RoundHours(h float64) float64 {
	return math.Round(h*10) / 10
}
