package timeutil

import (
	"fmt"
	"sort"
	"time"
)

// ParseDate parses a YYYY-MM-DD string into a UTC midnight
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// FormatDate formats a date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight normalizes a time to the start of its calendar day in UTC
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from one date to another (negative if to is earlier)
func DaysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)).Hours() / 24)
}

// DateRange returns every calendar date in [start, end]
func DateRange(start, end time.Time) []time.Time {
	var dates []time.Time
	for d := Midnight(start); !d.After(Midnight(end)); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// cyclePosition returns the position of date within its rotation cycle, always in [0, cycleLength)
func cyclePosition(date, rotationStart time.Time, cycleLength int) int {
	position := DaysBetween(rotationStart, date) % cycleLength
	if position < 0 {
		position += cycleLength
	}
	return position
}

// CalculateWorkingDays returns the dates in [start, end] that fall in the "on" part of a rotation
// anchored at rotationStart.
//
// Example - 4 on / 3 off anchored at 2024-01-01:
//   - 2024-01-01..2024-01-07 → 01-01, 01-02, 01-03, 01-04
//   - 2024-01-03..2024-01-07 → 01-03, 01-04 (starts mid-cycle at position 2)
//   - 2024-01-03..2024-01-09 → 01-03, 01-04, 01-08, 01-09 (01-08 opens the next cycle)
func CalculateWorkingDays(start, end, rotationStart time.Time, daysOn, daysOff int) []time.Time {
	cycleLength := daysOn + daysOff
	if cycleLength <= 0 || daysOn <= 0 {
		return nil
	}

	var workingDays []time.Time
	position := cyclePosition(start, rotationStart, cycleLength)
	for d := Midnight(start); !d.After(Midnight(end)); d = d.AddDate(0, 0, 1) {
		if position < daysOn {
			workingDays = append(workingDays, d)
		}
		position = (position + 1) % cycleLength
	}
	return workingDays
}

// IsWorkingDay reports whether a single date is an "on" day of the rotation
func IsWorkingDay(date, rotationStart time.Time, daysOn, daysOff int) bool {
	cycleLength := daysOn + daysOff
	if cycleLength <= 0 {
		return false
	}
	return cyclePosition(date, rotationStart, cycleLength) < daysOn
}

// CycleIndex returns which rotation cycle a date belongs to, counted from rotationStart.
// Dates before the anchor have negative indices.
func CycleIndex(date, rotationStart time.Time, cycleLength int) int {
	if cycleLength <= 0 {
		return 0
	}
	days := DaysBetween(rotationStart, date)
	index := days / cycleLength
	if days < 0 && days%cycleLength != 0 {
		index--
	}
	return index
}

// CycleStart returns the first date of the given rotation cycle
func CycleStart(rotationStart time.Time, cycleLength, index int) time.Time {
	return Midnight(rotationStart).AddDate(0, 0, index*cycleLength)
}

// GetConsecutiveWorkingDays returns the longest run of calendar-adjacent dates
func GetConsecutiveWorkingDays(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	seen := make(map[time.Time]bool, len(dates))
	normalized := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		m := Midnight(d)
		if seen[m] {
			continue
		}
		seen[m] = true
		normalized = append(normalized, m)
	}
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Before(normalized[j])
	})

	longest := 1
	current := 1
	for i := 1; i < len(normalized); i++ {
		if DaysBetween(normalized[i-1], normalized[i]) == 1 {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

// WeekStart returns the Sunday that starts the week containing t
func WeekStart(t time.Time) time.Time {
	day := Midnight(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// GroupDatesByWeek buckets dates by the Sunday starting their week, keyed by that Sunday's date string
func GroupDatesByWeek(dates []time.Time) map[string][]time.Time {
	weeks := make(map[string][]time.Time)
	for _, d := range dates {
		key := FormatDate(WeekStart(d))
		weeks[key] = append(weeks[key], d)
	}
	return weeks
}
