package generator

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/jakechorley/dispatch-rota/pkg/core/model"
)

// optimize tries swapping the shifts of every pair of employees working the same date, keeping a swap
// only when it strictly raises the pair's combined score. Each pass evaluates at most
// MaxOptimizationIterations pairs and the loop ends early after a pass with no swap.
func (g *ScheduleGenerator) optimize(ctx context.Context) error {
	for pass := 1; pass <= g.opts.MaxOptimizationPasses; pass++ {
		swaps, err := g.optimizePass(ctx)
		if err != nil {
			return err
		}

		g.logger.Debug("Optimization pass", zap.Int("pass", pass), zap.Int("swaps", swaps))

		if swaps == 0 {
			return nil
		}
	}
	return nil
}

func (g *ScheduleGenerator) optimizePass(ctx context.Context) (int, error) {
	byDate := make(map[string][]int)
	for i, a := range g.assignments {
		byDate[a.Date] = append(byDate[a.Date], i)
	}
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	swaps := 0
	evaluations := 0
	for _, date := range dates {
		indices := byDate[date]
		for x := 0; x < len(indices); x++ {
			for y := x + 1; y < len(indices); y++ {
				if evaluations >= g.opts.MaxOptimizationIterations {
					return swaps, nil
				}
				if err := ctx.Err(); err != nil {
					return swaps, err
				}

				i, j := indices[x], indices[y]
				if g.assignments[i].ShiftID == g.assignments[j].ShiftID {
					continue
				}
				evaluations++

				improved, err := g.swapImproves(i, j)
				if err != nil {
					return swaps, err
				}
				if improved {
					g.assignments[i].ShiftID, g.assignments[j].ShiftID = g.assignments[j].ShiftID, g.assignments[i].ShiftID
					swaps++
				}
			}
		}
	}
	return swaps, nil
}

// swapImproves compares the pair's combined score before and after exchanging their shifts.
// Both are scored against the schedule without either assignment.
func (g *ScheduleGenerator) swapImproves(i, j int) (bool, error) {
	a, b := g.assignments[i], g.assignments[j]

	employeeA, okA := g.catalog.Employees[a.EmployeeID]
	employeeB, okB := g.catalog.Employees[b.EmployeeID]
	shiftA, okShiftA := g.catalog.Shifts[a.ShiftID]
	shiftB, okShiftB := g.catalog.Shifts[b.ShiftID]
	if !okA || !okB || !okShiftA || !okShiftB {
		return false, nil
	}

	others := make([]model.ScheduleAssignment, 0, len(g.assignments)-2)
	for k, other := range g.assignments {
		if k != i && k != j {
			others = append(others, other)
		}
	}

	current, err := g.pairScore(employeeA, shiftA, employeeB, shiftB, a.Date, others)
	if err != nil {
		return false, err
	}
	swapped, err := g.pairScore(employeeA, shiftB, employeeB, shiftA, a.Date, others)
	if err != nil {
		return false, err
	}
	return swapped > current, nil
}

func (g *ScheduleGenerator) pairScore(
	employeeA model.Employee, shiftA model.Shift,
	employeeB model.Employee, shiftB model.Shift,
	date string, others []model.ScheduleAssignment,
) (float64, error) {
	scoreA, err := g.Score(shiftA, employeeA, date, others)
	if err != nil {
		return 0, err
	}
	scoreB, err := g.Score(shiftB, employeeB, date, others)
	if err != nil {
		return 0, err
	}
	return scoreA + scoreB, nil
}
