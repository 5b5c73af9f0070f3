// Package tokenize turns extraction output and raw schedule text into typed
// raw shift tokens. It recognizes structure only; every value judgement
// (valid dates, rollover, name cleanup) belongs to the normalize package.
package tokenize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/arnavshah/shiftledger-api/pkg/models"
)

// RestMarker flags a line as a rest/off day
const RestMarker = "休"

var (
	leadingDateRe = regexp.MustCompile(`^(\d{4}-\d{1,2}-\d{1,2}|\d{1,2}[./]\d{1,2})`)
	weekdayRe     = regexp.MustCompile(`^\s*[(（][^)）]*[)）]`)
	timeRangeRe   = regexp.MustCompile(`(\d{1,2})(?:[:：](\d{2}))?\s*[-~～–—]\s*(\d{1,2})(?:[:：](\d{2}))?`)
)

// FromExtraction maps the image service's output schema onto tokens
func FromExtraction(items []models.ExtractedShift) []models.RawShiftToken {
	tokens := make([]models.RawShiftToken, 0, len(items))
	for _, it := range items {
		tokens = append(tokens, models.RawShiftToken{
			DateStr:        strings.TrimSpace(it.DateStr),
			StartTimeOfDay: strings.TrimSpace(it.StartTime),
			EndTimeOfDay:   strings.TrimSpace(it.EndTime),
			RawWorkName:    it.WorkName,
			RawNotes:       it.Notes,
			RestDay:        it.RestDay || isRestNote(it),
		})
	}
	return tokens
}

// isRestNote catches services that echo a rest line without setting restDay
func isRestNote(it models.ExtractedShift) bool {
	return it.StartTime == "" && it.EndTime == "" && strings.Contains(it.Notes, RestMarker)
}

// ParseText tokenizes a whole schedule note, one line at a time. Lines
// without a leading date continue the date of the line before them.
func ParseText(text string) []models.RawShiftToken {
	var tokens []models.RawShiftToken
	date := ""
	for _, line := range strings.Split(text, "\n") {
		var lineTokens []models.RawShiftToken
		lineTokens, date = ParseLine(line, date)
		tokens = append(tokens, lineTokens...)
	}
	return tokens
}

// ParseLine tokenizes one line such as "12.4(周四) 🦶 9-12 3 十九 🍚💅".
// The leading date may also be written as YYYY-MM-DD.
// Every time range yields one token whose raw work name is the text up to
// the next range. It returns the date in effect after the line.
func ParseLine(line, prevDate string) ([]models.RawShiftToken, string) {
	raw := strings.TrimRight(line, "\r")
	rest := strings.TrimSpace(raw)
	if rest == "" {
		return nil, prevDate
	}

	date := prevDate
	if m := leadingDateRe.FindString(rest); m != "" {
		date = m
		rest = rest[len(m):]
		if w := weekdayRe.FindString(rest); w != "" {
			rest = rest[len(w):]
		}
	}

	ranges := findRanges(rest)
	if len(ranges) == 0 {
		if strings.Contains(rest, RestMarker) {
			return []models.RawShiftToken{{
				DateStr:  date,
				RawNotes: strings.TrimSpace(raw),
				RestDay:  true,
			}}, date
		}
		return nil, date
	}

	tokens := make([]models.RawShiftToken, 0, len(ranges))
	for i, m := range ranges {
		nameEnd := len(rest)
		if i+1 < len(ranges) {
			nameEnd = ranges[i+1][0]
		}
		tokens = append(tokens, models.RawShiftToken{
			DateStr:        date,
			StartTimeOfDay: clock(rest, m[2], m[3], m[4], m[5]),
			EndTimeOfDay:   clock(rest, m[6], m[7], m[8], m[9]),
			RawWorkName:    strings.TrimSpace(rest[m[1]:nameEnd]),
			RawNotes:       strings.TrimSpace(raw),
		})
	}
	return tokens, date
}

// findRanges returns the time ranges of s that stand on their own. A match
// touching another digit, dot, colon, slash or dash is part of a longer
// number such as a date. After the first range, a bare range (no minutes)
// directly after a Latin word belongs to the name, as in "Room 1-2".
func findRanges(s string) [][]int {
	var out [][]int
	for _, m := range timeRangeRe.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > 0 && isNumberRune(s[m[0]-1]) {
			continue
		}
		if m[1] < len(s) && isNumberRune(s[m[1]]) {
			continue
		}
		bare := m[4] < 0 && m[8] < 0
		if len(out) > 0 && bare && followsLatinWord(s[:m[0]]) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func isNumberRune(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.' || b == ':' || b == '/' || b == '-'
}

func followsLatinWord(before string) bool {
	trimmed := strings.TrimRight(before, " \t")
	if trimmed == "" {
		return false
	}
	last := trimmed[len(trimmed)-1]
	return (last >= 'a' && last <= 'z') || (last >= 'A' && last <= 'Z')
}

// clock renders an hour group and optional minute group as HH:MM
func clock(s string, hStart, hEnd, mStart, mEnd int) string {
	hour, _ := strconv.Atoi(s[hStart:hEnd])
	minute := 0
	if mStart >= 0 {
		minute, _ = strconv.Atoi(s[mStart:mEnd])
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
