package coverage

import (
	"fmt"
	"sort"
	"time"

	"github.com/jakechorley/dispatch-rota/pkg/core/model"
	"github.com/jakechorley/dispatch-rota/pkg/core/timeutil"
)

// Segment is the part of a shift that falls on a single calendar date
type Segment struct {
	Date  string
	Start time.Time
	End   time.Time
	Hours float64
}

// Schedule is an assignment resolved against its shift and employee
type Schedule struct {
	Assignment model.ScheduleAssignment
	Shift      model.Shift
	Employee   model.Employee
}

// Gap is a requirement period on a date that is understaffed or lacks a required supervisor
type Gap struct {
	Date              string
	Period            string
	RequirementID     string
	Required          int
	Actual            int
	Supervisors       int
	SupervisorMissing bool
}

// shiftHours returns the shift's declared duration, or the anchored length when none is declared
func shiftHours(shift model.Shift, start, end time.Time) float64 {
	if shift.DurationHours > 0 {
		return shift.DurationHours
	}
	return timeutil.GetHoursBetween(start, end)
}

// SplitShiftAcrossDays anchors a shift to a date and splits it at midnight.
// A shift ending after the following midnight yields two segments whose hours sum to the
// shift's duration. Otherwise a single segment is returned.
func SplitShiftAcrossDays(shift model.Shift, date time.Time) ([]Segment, error) {
	start, end, err := timeutil.ShiftBounds(shift, date)
	if err != nil {
		return nil, err
	}

	total := shiftHours(shift, start, end)
	day := timeutil.Midnight(date)
	nextMidnight := day.AddDate(0, 0, 1)

	if !end.After(nextMidnight) {
		return []Segment{{
			Date:  timeutil.FormatDate(day),
			Start: start,
			End:   end,
			Hours: total,
		}}, nil
	}

	firstHours := timeutil.GetHoursBetween(start, nextMidnight)
	return []Segment{
		{
			Date:  timeutil.FormatDate(day),
			Start: start,
			End:   nextMidnight,
			Hours: firstHours,
		},
		{
			Date:  timeutil.FormatDate(nextMidnight),
			Start: nextMidnight,
			End:   end,
			Hours: total - firstHours,
		},
	}, nil
}

// segmentOverlaps checks a requirement window against a segment's time of day
func segmentOverlaps(seg Segment, req model.StaffingRequirement) (bool, error) {
	dayStart := timeutil.Midnight(seg.Start)
	from := seg.Start.Sub(dayStart).Milliseconds()
	to := seg.End.Sub(dayStart).Milliseconds()
	return timeutil.WindowOverlapsMs(req.StartTime, req.EndTime, from, to)
}

// overtimeFlags marks schedules whose employee has exceeded their weekly target
// by the end of that schedule's date (hours accumulate per Sunday-anchored week)
func overtimeFlags(schedules []Schedule, dates []time.Time) []bool {
	type weekKey struct {
		employeeID string
		week       string
	}

	order := make([]int, len(schedules))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dates[order[a]].Before(dates[order[b]])
	})

	flags := make([]bool, len(schedules))
	weekly := make(map[weekKey]float64)
	for _, i := range order {
		s := schedules[i]
		key := weekKey{s.Employee.ID, timeutil.FormatDate(timeutil.WeekStart(dates[i]))}
		weekly[key] += s.Shift.DurationHours
		if s.Employee.WeeklyHoursScheduled > 0 && weekly[key] > s.Employee.WeeklyHoursScheduled {
			flags[i] = true
		}
	}
	return flags
}

// newReport initialises every requirement period of a date with its required headcount.
// Requirements sharing a period keep the largest minimum.
func newReport(date string, requirements []model.StaffingRequirement) *model.CoverageReport {
	report := &model.CoverageReport{Date: date, Periods: make(map[string]*model.PeriodCoverage)}
	for _, req := range requirements {
		minimum := req.MinimumFor(date)
		period, exists := report.Periods[req.PeriodKey()]
		if !exists {
			report.Periods[req.PeriodKey()] = &model.PeriodCoverage{Required: minimum}
		} else if minimum > period.Required {
			period.Required = minimum
		}
	}
	return report
}

// EnsureDates adds an empty report for each date that has none, so dates nobody works still show their requirements
func EnsureDates(reports map[string]*model.CoverageReport, requirements []model.StaffingRequirement, dates []string) {
	for _, date := range dates {
		if _, ok := reports[date]; !ok {
			reports[date] = newReport(date, requirements)
		}
	}
}

// CalculateCoverage tallies, for every date touched by a schedule, how many employees and
// supervisors cover each staffing requirement period. Shifts crossing midnight count towards
// the date on which each of their segments falls.
func CalculateCoverage(schedules []Schedule, requirements []model.StaffingRequirement) (map[string]*model.CoverageReport, error) {
	reports := make(map[string]*model.CoverageReport)

	ensureReport := func(date string) *model.CoverageReport {
		report, ok := reports[date]
		if !ok {
			report = newReport(date, requirements)
			reports[date] = report
		}
		return report
	}

	dates := make([]time.Time, len(schedules))
	for i, s := range schedules {
		date, err := timeutil.ParseDate(s.Assignment.Date)
		if err != nil {
			return nil, fmt.Errorf("assignment for employee %s: %w", s.Assignment.EmployeeID, err)
		}
		dates[i] = date
		ensureReport(s.Assignment.Date)
	}

	overtime := overtimeFlags(schedules, dates)

	for i, s := range schedules {
		segments, err := SplitShiftAcrossDays(s.Shift, dates[i])
		if err != nil {
			return nil, err
		}

		for _, seg := range segments {
			report := ensureReport(seg.Date)
			counted := make(map[string]bool)

			for _, req := range requirements {
				key := req.PeriodKey()
				if counted[key] {
					continue
				}

				overlaps, err := segmentOverlaps(seg, req)
				if err != nil {
					return nil, err
				}
				if !overlaps {
					continue
				}

				counted[key] = true
				period := report.Periods[key]
				period.Actual++
				if s.Employee.IsSupervisor() {
					period.Supervisors++
				}
				if overtime[i] {
					period.Overtime++
				}
			}
		}
	}

	return reports, nil
}

// SupervisorMissing reports whether a period that needs a supervisor has none. A period with
// nobody required and nobody working needs no supervisor.
func SupervisorMissing(req model.StaffingRequirement, period *model.PeriodCoverage) bool {
	if !req.ShiftSupervisorRequired || period.Supervisors > 0 {
		return false
	}
	return period.Required > 0 || period.Actual > 0
}

// Gaps lists every period that is below its required headcount or missing a required supervisor,
// ordered by date then period
func Gaps(reports map[string]*model.CoverageReport, requirements []model.StaffingRequirement) []Gap {
	dates := make([]string, 0, len(reports))
	for date := range reports {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var gaps []Gap
	for _, date := range dates {
		report := reports[date]
		seen := make(map[string]bool)
		for _, req := range requirements {
			key := req.PeriodKey()
			period, ok := report.Periods[key]
			if !ok || seen[key] {
				continue
			}

			understaffed := period.Actual < period.Required
			supervisorMissing := SupervisorMissing(req, period)
			if !understaffed && !supervisorMissing {
				continue
			}

			seen[key] = true
			gaps = append(gaps, Gap{
				Date:              date,
				Period:            key,
				RequirementID:     req.ID,
				Required:          period.Required,
				Actual:            period.Actual,
				Supervisors:       period.Supervisors,
				SupervisorMissing: supervisorMissing,
			})
		}
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Date != gaps[j].Date {
			return gaps[i].Date < gaps[j].Date
		}
		return gaps[i].Period < gaps[j].Period
	})
	return gaps
}
