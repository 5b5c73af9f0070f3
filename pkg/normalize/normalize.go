// Package normalize turns raw extracted shift tokens into validated shifts.
//
// Normalization is a pure function of the token batch and the reference
// year: it never touches a store, never reads the clock and keeps no state
// between calls. Each token succeeds or fails on its own.
package normalize

import (
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/shiftledger-api/pkg/models"
	"github.com/google/uuid"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidTime     = errors.New("invalid time")
	ErrInvalidInterval = errors.New("invalid interval")
)

// Reason explains why a token was not accepted
type Reason string

const (
	ReasonInvalidDate     Reason = "InvalidDate"
	ReasonInvalidTime     Reason = "InvalidTime"
	ReasonInvalidInterval Reason = "InvalidInterval"
	ReasonRestDay         Reason = "RestDay"
)

// Rejection pairs a token with the reason it was dropped
type Rejection struct {
	Token  models.RawShiftToken
	Reason Reason
	Detail string
}

// Result is the outcome of normalizing one batch
type Result struct {
	Accepted []models.Shift
	Rejected []Rejection
}

// Rejections converts the rejected list to its wire shape
func (r Result) Rejections() []models.RejectedToken {
	out := make([]models.RejectedToken, 0, len(r.Rejected))
	for _, rej := range r.Rejected {
		out = append(out, models.RejectedToken{
			Token:  rej.Token,
			Reason: string(rej.Reason),
			Detail: rej.Detail,
		})
	}
	return out
}

// Normalizer carries the caller defaults applied to every accepted shift
type Normalizer struct {
	// Location is copied onto every accepted shift.
	Location string
	// Zone is the wall-clock zone timestamps are built in. Nil means time.Local.
	Zone *time.Location
	// NewID generates shift identifiers. Nil means a random UUID.
	NewID func() string
}

// New creates a normalizer that stamps the given default location
func New(location string) *Normalizer {
	return &Normalizer{Location: location}
}

// Normalize runs a batch through a normalizer with no defaults
func Normalize(tokens []models.RawShiftToken, referenceYear int) Result {
	return (&Normalizer{}).Normalize(tokens, referenceYear)
}

// Normalize resolves every token independently. Accepted shifts keep input order.
func (n *Normalizer) Normalize(tokens []models.RawShiftToken, referenceYear int) Result {
	res := Result{
		Accepted: []models.Shift{},
		Rejected: []Rejection{},
	}
	for _, tok := range tokens {
		if tok.RestDay {
			res.Rejected = append(res.Rejected, Rejection{Token: tok, Reason: ReasonRestDay})
			continue
		}

		shift, err := n.resolve(tok, referenceYear)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{
				Token:  tok,
				Reason: reasonFor(err),
				Detail: err.Error(),
			})
			continue
		}
		res.Accepted = append(res.Accepted, shift)
	}
	return res
}

func (n *Normalizer) resolve(tok models.RawShiftToken, referenceYear int) (models.Shift, error) {
	zone := n.Zone
	if zone == nil {
		zone = time.Local
	}

	day, err := ParseDate(tok.DateStr, referenceYear, zone)
	if err != nil {
		return models.Shift{}, err
	}

	startClock, err := ParseClock(tok.StartTimeOfDay)
	if err != nil {
		return models.Shift{}, fmt.Errorf("start %w", err)
	}
	if startClock.Hour == 24 {
		return models.Shift{}, fmt.Errorf("start %w: 24:00 only marks the end of a day", ErrInvalidTime)
	}
	endClock, err := ParseClock(tok.EndTimeOfDay)
	if err != nil {
		return models.Shift{}, fmt.Errorf("end %w", err)
	}

	start := startClock.On(day)
	end := resolveEnd(day, startClock, endClock)
	if !end.After(start) {
		return models.Shift{}, fmt.Errorf("%w: %s-%s on %s", ErrInvalidInterval,
			tok.StartTimeOfDay, tok.EndTimeOfDay, day.Format("2006-01-02"))
	}

	id := uuid.NewString()
	if n.NewID != nil {
		id = n.NewID()
	}

	return models.Shift{
		ID:         id,
		WorkName:   CleanWorkName(tok.RawWorkName),
		Location:   n.Location,
		HourlyRate: 0,
		StartTime:  start,
		EndTime:    end,
		Status:     models.StatusUpcoming,
		Notes:      tok.RawNotes,
	}, nil
}

// resolveEnd applies the midnight rules in order: end-of-day marker, then
// an end hour earlier than the start hour, then same day.
func resolveEnd(day time.Time, start, end Clock) time.Time {
	switch {
	case end.EndOfDay():
		return Clock{}.On(day.AddDate(0, 0, 1))
	case end.Hour < start.Hour:
		return end.On(day.AddDate(0, 0, 1))
	default:
		return end.On(day)
	}
}

func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, ErrInvalidDate):
		return ReasonInvalidDate
	case errors.Is(err, ErrInvalidTime):
		return ReasonInvalidTime
	default:
		return ReasonInvalidInterval
	}
}
