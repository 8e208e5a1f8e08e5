package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jakechorley/dispatch-rota/pkg/core/model"
)

const (
	// DateLayout is the boundary format for all dates
	DateLayout = "2006-01-02"

	MsPerMinute int64 = 60 * 1000
	MsPerHour   int64 = 60 * MsPerMinute
	MsPerDay    int64 = 24 * MsPerHour
)

var timeOfDayPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// TimeFormatError is returned for unparsable HH:MM strings and out-of-range millisecond values
type TimeFormatError struct {
	Value  string
	Reason string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("invalid time %q: %s", e.Value, e.Reason)
}

// ParseTimeToMs converts "HH:MM" into milliseconds since midnight
func ParseTimeToMs(value string) (int64, error) {
	if !timeOfDayPattern.MatchString(value) {
		return 0, &TimeFormatError{Value: value, Reason: "expected HH:MM in 24-hour format"}
	}

	hours, minutes, _ := strings.Cut(value, ":")
	h, _ := strconv.ParseInt(hours, 10, 64)
	m, _ := strconv.ParseInt(minutes, 10, 64)

	return h*MsPerHour + m*MsPerMinute, nil
}

// FormatMsToTime converts milliseconds since midnight into a zero-padded "HH:MM"
func FormatMsToTime(ms int64) (string, error) {
	if ms < 0 || ms >= MsPerDay {
		return "", &TimeFormatError{Value: strconv.FormatInt(ms, 10), Reason: "milliseconds must be within [0, 86400000)"}
	}

	hours := ms / MsPerHour
	minutes := (ms % MsPerHour) / MsPerMinute
	return fmt.Sprintf("%02d:%02d", hours, minutes), nil
}

// DoTimeRangesOverlap tests two same-day ranges for half-open overlap.
// Ranges that wrap past midnight must be normalized by the caller (see WindowsOverlap).
func DoTimeRangesOverlap(start1, end1, start2, end2 string) (bool, error) {
	s1, e1, err := parseRange(start1, end1)
	if err != nil {
		return false, err
	}
	s2, e2, err := parseRange(start2, end2)
	if err != nil {
		return false, err
	}
	return s1 < e2 && e1 > s2, nil
}

// CrossesMidnight returns true if the end time of day is before the start time of day
func CrossesMidnight(start, end string) (bool, error) {
	s, e, err := parseRange(start, end)
	if err != nil {
		return false, err
	}
	return e < s, nil
}

type msWindow struct {
	start int64
	end   int64
}

// splitWindow breaks a possibly wrapping time-of-day window into same-day pieces
func splitWindow(start, end int64) []msWindow {
	switch {
	case end > start:
		return []msWindow{{start, end}}
	case end < start:
		pieces := []msWindow{{start, MsPerDay}}
		if end > 0 {
			pieces = append(pieces, msWindow{0, end})
		}
		return pieces
	default:
		return nil
	}
}

// WindowsOverlap is the wrap-aware form of DoTimeRangesOverlap.
// A window whose end is before its start covers [start, 24:00) and [00:00, end).
func WindowsOverlap(start1, end1, start2, end2 string) (bool, error) {
	s1, e1, err := parseRange(start1, end1)
	if err != nil {
		return false, err
	}
	s2, e2, err := parseRange(start2, end2)
	if err != nil {
		return false, err
	}

	for _, a := range splitWindow(s1, e1) {
		for _, b := range splitWindow(s2, e2) {
			if a.start < b.end && a.end > b.start {
				return true, nil
			}
		}
	}
	return false, nil
}

// WindowOverlapsMs reports whether a (possibly wrapping) time-of-day window overlaps
// the half-open range [from, to) of a single day, both given in milliseconds since midnight
func WindowOverlapsMs(start, end string, from, to int64) (bool, error) {
	s, e, err := parseRange(start, end)
	if err != nil {
		return false, err
	}
	for _, piece := range splitWindow(s, e) {
		if piece.start < to && piece.end > from {
			return true, nil
		}
	}
	return false, nil
}

func parseRange(start, end string) (int64, int64, error) {
	s, err := ParseTimeToMs(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := ParseTimeToMs(end)
	if err != nil {
		return 0, 0, err
	}
	return s, e, nil
}

// ShiftBounds anchors a shift to a date and returns its true start and end instants.
// When the end time of day is before the start, the end falls on the following day.
func ShiftBounds(shift model.Shift, date time.Time) (time.Time, time.Time, error) {
	s, e, err := parseRange(shift.StartTime, shift.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	day := Midnight(date)
	start := day.Add(time.Duration(s) * time.Millisecond)
	end := day.Add(time.Duration(e) * time.Millisecond)
	if e < s {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// RestHours returns the hours between the end of the previous shift and the start of the next one
func RestHours(prev model.Shift, prevDate time.Time, next model.Shift, nextDate time.Time) (float64, error) {
	_, prevEnd, err := ShiftBounds(prev, prevDate)
	if err != nil {
		return 0, err
	}
	nextStart, _, err := ShiftBounds(next, nextDate)
	if err != nil {
		return 0, err
	}
	return GetHoursBetween(prevEnd, nextStart), nil
}

// GetHoursBetween returns the signed number of hours from start to end
func GetHoursBetween(start, end time.Time) float64 {
	return float64(end.Sub(start).Milliseconds()) / float64(MsPerHour)
}
