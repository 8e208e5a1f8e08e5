package generator

import (
	"github.com/jakechorley/dispatch-rota/pkg/core/model"
	"github.com/jakechorley/dispatch-rota/pkg/core/timeutil"
)

// activePattern returns the pattern bound to the employee on the given date
func (g *ScheduleGenerator) activePattern(employeeID, date string) (model.EmployeePattern, model.ShiftPattern, bool) {
	binding, ok := model.FindActivePattern(g.input.EmployeePatterns, employeeID, date, date)
	if !ok {
		return model.EmployeePattern{}, model.ShiftPattern{}, false
	}
	pattern, ok := g.catalog.Patterns[binding.PatternID]
	if !ok {
		return model.EmployeePattern{}, model.ShiftPattern{}, false
	}
	return binding, pattern, true
}

// latestPrior returns the employee's assignment with the latest end instant on a date strictly before date
func (g *ScheduleGenerator) latestPrior(employeeID, date string, existing []model.ScheduleAssignment) (model.ScheduleAssignment, bool) {
	var latest model.ScheduleAssignment
	found := false
	for _, a := range existing {
		if a.EmployeeID != employeeID || a.Date >= date {
			continue
		}
		if !found || a.Date > latest.Date {
			latest = a
			found = true
			continue
		}
		if a.Date == latest.Date && g.endsAfter(a, latest) {
			latest = a
		}
	}
	return latest, found
}

// endsAfter compares two same-date assignments by end instant
func (g *ScheduleGenerator) endsAfter(a, b model.ScheduleAssignment) bool {
	shiftA, okA := g.catalog.Shifts[a.ShiftID]
	shiftB, okB := g.catalog.Shifts[b.ShiftID]
	if !okA || !okB {
		return false
	}
	date, err := timeutil.ParseDate(a.Date)
	if err != nil {
		return false
	}
	_, endA, errA := timeutil.ShiftBounds(shiftA, date)
	_, endB, errB := timeutil.ShiftBounds(shiftB, date)
	return errA == nil && errB == nil && endA.After(endB)
}

// Score rates placing an employee on a shift on a date, given the assignments made so far.
// A score of 0 means the placement is not allowed.
func (g *ScheduleGenerator) Score(shift model.Shift, employee model.Employee, date string, existing []model.ScheduleAssignment) (float64, error) {
	if _, pattern, ok := g.activePattern(employee.ID, date); ok && !pattern.AllowsDuration(shift.DurationBucket()) {
		return 0, nil
	}

	score := g.weights.Base

	if shift.ShiftTypeID != "" && shift.ShiftTypeID == employee.DefaultShiftTypeID {
		score += g.weights.PreferenceBonus
	}

	if prior, ok := g.latestPrior(employee.ID, date, existing); ok {
		if prevShift, known := g.catalog.Shifts[prior.ShiftID]; known {
			prevDate, err := timeutil.ParseDate(prior.Date)
			if err != nil {
				return 0, err
			}
			nextDate, err := timeutil.ParseDate(date)
			if err != nil {
				return 0, err
			}
			rest, err := timeutil.RestHours(prevShift, prevDate, shift, nextDate)
			if err != nil {
				return 0, err
			}
			if rest < g.opts.MinimumRestHours {
				return 0, nil
			}
		}
	}

	needsCover, err := g.needsCoverage(shift, date, existing)
	if err != nil {
		return 0, err
	}
	if needsCover {
		score += g.weights.CoverageBonus
	}

	return score, nil
}

// needsCoverage reports whether fewer assignments overlap the shift on the date than the
// largest minimum of the requirements it overlaps
func (g *ScheduleGenerator) needsCoverage(shift model.Shift, date string, existing []model.ScheduleAssignment) (bool, error) {
	needed := 0
	for _, req := range g.input.StaffingRequirements {
		overlaps, err := timeutil.WindowsOverlap(req.StartTime, req.EndTime, shift.StartTime, shift.EndTime)
		if err != nil {
			return false, err
		}
		if overlaps {
			needed = max(needed, req.MinimumFor(date))
		}
	}
	if needed == 0 {
		return false, nil
	}

	covering := 0
	for _, a := range existing {
		if a.Date != date {
			continue
		}
		other, ok := g.catalog.Shifts[a.ShiftID]
		if !ok {
			continue
		}
		overlaps, err := timeutil.WindowsOverlap(other.StartTime, other.EndTime, shift.StartTime, shift.EndTime)
		if err != nil {
			return false, err
		}
		if overlaps {
			covering++
		}
	}
	return covering < needed, nil
}

// bestShift scores every candidate and returns the highest-scoring one.
// Ties keep the earlier candidate.
func (g *ScheduleGenerator) bestShift(candidates []model.Shift, employee model.Employee, date string) (model.Shift, float64, error) {
	var best model.Shift
	bestScore := 0.0
	for _, shift := range candidates {
		score, err := g.Score(shift, employee, date, g.assignments)
		if err != nil {
			return model.Shift{}, 0, err
		}
		if score > bestScore {
			best = shift
			bestScore = score
		}
	}
	return best, bestScore, nil
}
