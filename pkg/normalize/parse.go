package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/arnavshah/shiftledger-api/pkg/models"
)

var (
	isoDateRe   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	shortDateRe = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})$`)
	clockRe     = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

	// standalone numbers ahead of the name are duration hints ("5", "3.5", "4h")
	durationPrefixRe = regexp.MustCompile(`^(?:\d+(?:\.\d+)?\s*(?:h|H|小时)?(?:\s+|$))+`)
	spaceRunRe       = regexp.MustCompile(`\s{2,}`)
)

// ParseDate resolves "M.D", "MM.DD", "M/D" or "YYYY-MM-DD" to midnight of that
// calendar date in zone. Short forms take referenceYear; the ISO form keeps its own.
func ParseDate(s string, referenceYear int, zone *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)

	var year, month, day int
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	} else if m := shortDateRe.FindStringSubmatch(s); m != nil {
		year = referenceYear
		month, _ = strconv.Atoi(m[1])
		day, _ = strconv.Atoi(m[2])
	} else {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, zone)
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q has no day %d", ErrInvalidDate, s, day)
	}
	return t, nil
}

// Clock is a wall-clock time of day. Hour 24 appears only as 24:00.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "H:MM" or "HH:MM" with hour in [0,24] and minute in [0,59]
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 24 || minute > 59 || (hour == 24 && minute != 0) {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// EndOfDay reports whether c, used as an end time, means the following midnight
func (c Clock) EndOfDay() bool {
	return (c.Hour == 24 || c.Hour == 0) && c.Minute == 0
}

// On places the clock on the calendar date of day
func (c Clock) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// String formats the clock as HH:MM
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// CleanWorkName drops decorative glyphs and leading duration hints.
// An empty result becomes the default work name.
func CleanWorkName(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if isGlyph(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}

	name := strings.TrimSpace(b.String())
	name = durationPrefixRe.ReplaceAllString(name, "")
	name = spaceRunRe.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return models.DefaultWorkName
	}
	return name
}

func isGlyph(r rune) bool {
	switch {
	case r == '\u200d', r == '\u20e3':
		return true
	case r >= 0x1f3fb && r <= 0x1f3ff:
		return true
	case unicode.Is(unicode.Variation_Selector, r):
		return true
	}
	return unicode.In(r, unicode.So, unicode.Sk, unicode.Cs, unicode.Co, unicode.Me)
}
