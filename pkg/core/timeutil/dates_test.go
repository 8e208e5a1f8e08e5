package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateWorkingDays_FullCycle(t *testing.T) {
	days := CalculateWorkingDays(
		mustDate(t, "2024-01-01"),
		mustDate(t, "2024-01-07"),
		mustDate(t, "2024-01-01"),
		4, 3,
	)

	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"}, formatDates(days))
}

func TestCalculateWorkingDays_MidCycleStart(t *testing.T) {
	days := CalculateWorkingDays(
		mustDate(t, "2024-01-03"),
		mustDate(t, "2024-01-07"),
		mustDate(t, "2024-01-01"),
		4, 3,
	)

	assert.Equal(t, []string{"2024-01-03", "2024-01-04"}, formatDates(days))
}

func TestCalculateWorkingDays_WrapsIntoNextCycle(t *testing.T) {
	days := CalculateWorkingDays(
		mustDate(t, "2024-01-03"),
		mustDate(t, "2024-01-09"),
		mustDate(t, "2024-01-01"),
		4, 3,
	)

	// 01-08 starts the next cycle
	assert.Equal(t, []string{"2024-01-03", "2024-01-04", "2024-01-08", "2024-01-09"}, formatDates(days))
}

func TestCalculateWorkingDays_AgreesWithIsWorkingDay(t *testing.T) {
	anchor := mustDate(t, "2024-01-01")
	start, end := mustDate(t, "2024-01-03"), mustDate(t, "2024-01-09")

	var expected []string
	for _, d := range DateRange(start, end) {
		if IsWorkingDay(d, anchor, 4, 3) {
			expected = append(expected, FormatDate(d))
		}
	}

	assert.Equal(t, expected, formatDates(CalculateWorkingDays(start, end, anchor, 4, 3)))
}

func TestCalculateWorkingDays_AnchorAfterWindow(t *testing.T) {
	// Anchor in the future: 2023-12-29 is 3 days before, position (-3 mod 7) = 4 → off
	days := CalculateWorkingDays(
		mustDate(t, "2023-12-29"),
		mustDate(t, "2024-01-02"),
		mustDate(t, "2024-01-01"),
		4, 3,
	)

	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, formatDates(days))
}

func TestCalculateWorkingDays_InvalidCycle(t *testing.T) {
	assert.Nil(t, CalculateWorkingDays(mustDate(t, "2024-01-01"), mustDate(t, "2024-01-07"), mustDate(t, "2024-01-01"), 0, 0))
}

func TestIsWorkingDay(t *testing.T) {
	anchor := mustDate(t, "2024-01-01")
	assert.True(t, IsWorkingDay(mustDate(t, "2024-01-04"), anchor, 4, 3))
	assert.False(t, IsWorkingDay(mustDate(t, "2024-01-05"), anchor, 4, 3))
	assert.True(t, IsWorkingDay(mustDate(t, "2024-01-08"), anchor, 4, 3))
	assert.False(t, IsWorkingDay(mustDate(t, "2023-12-31"), anchor, 4, 3))
}

func TestCycleIndex(t *testing.T) {
	anchor := mustDate(t, "2024-01-01")
	assert.Equal(t, 0, CycleIndex(mustDate(t, "2024-01-07"), anchor, 7))
	assert.Equal(t, 1, CycleIndex(mustDate(t, "2024-01-08"), anchor, 7))
	assert.Equal(t, -1, CycleIndex(mustDate(t, "2023-12-31"), anchor, 7))
	assert.Equal(t, -1, CycleIndex(mustDate(t, "2023-12-25"), anchor, 7))
	assert.Equal(t, -2, CycleIndex(mustDate(t, "2023-12-24"), anchor, 7))

	assert.Equal(t, "2024-01-08", FormatDate(CycleStart(anchor, 7, 1)))
	assert.Equal(t, "2023-12-25", FormatDate(CycleStart(anchor, 7, -1)))
}

func TestGetConsecutiveWorkingDays(t *testing.T) {
	assert.Equal(t, 0, GetConsecutiveWorkingDays(nil))

	dates := []time.Time{
		mustDate(t, "2024-01-05"),
		mustDate(t, "2024-01-01"),
		mustDate(t, "2024-01-02"),
		mustDate(t, "2024-01-03"),
		mustDate(t, "2024-01-06"),
	}
	assert.Equal(t, 3, GetConsecutiveWorkingDays(dates))

	// Times of day are ignored and duplicates collapse
	withTimes := []time.Time{
		time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 7, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 19, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 2, GetConsecutiveWorkingDays(withTimes))
}

func TestGroupDatesByWeek(t *testing.T) {
	dates := []time.Time{
		mustDate(t, "2024-01-06"), // Saturday
		mustDate(t, "2024-01-07"), // Sunday
		mustDate(t, "2024-01-08"),
		mustDate(t, "2023-12-31"), // Sunday
	}

	weeks := GroupDatesByWeek(dates)
	require.Len(t, weeks, 2)
	assert.Equal(t, []string{"2024-01-06", "2023-12-31"}, formatDates(weeks["2023-12-31"]))
	assert.Equal(t, []string{"2024-01-07", "2024-01-08"}, formatDates(weeks["2024-01-07"]))
}

func TestDateRange(t *testing.T) {
	dates := DateRange(mustDate(t, "2024-02-27"), mustDate(t, "2024-03-01"))
	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}, formatDates(dates))
	assert.Equal(t, -3, DaysBetween(mustDate(t, "2024-03-01"), mustDate(t, "2024-02-27")))
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("2024-13-01")
	assert.Error(t, err)
}
