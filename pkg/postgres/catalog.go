package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/dispatch-rota/pkg/core/model"
)

const dateLayout = "2006-01-02"

func parseRole(s string) (model.Role, error) {
	role := model.Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// GetEmployees retrieves all employees ordered by ID
func (d *DB) GetEmployees(ctx context.Context) ([]model.Employee, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, role, weekly_hours_scheduled, default_shift_type_id
		FROM employees
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []model.Employee
	for rows.Next() {
		var e model.Employee
		var role string
		var defaultShiftTypeID *string
		if err := rows.Scan(&e.ID, &e.Name, &role, &e.WeeklyHoursScheduled, &defaultShiftTypeID); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		e.Role, err = parseRole(role)
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", e.ID, err)
		}
		if defaultShiftTypeID != nil {
			e.DefaultShiftTypeID = *defaultShiftTypeID
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}

	return employees, nil
}

// GetShifts retrieves the shift catalog in its configured order
func (d *DB) GetShifts(ctx context.Context) ([]model.Shift, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, shift_type_id, start_time, end_time, duration_hours, duration_category
		FROM shifts
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []model.Shift
	for rows.Next() {
		var s model.Shift
		var shiftTypeID *string
		if err := rows.Scan(&s.ID, &s.Name, &shiftTypeID, &s.StartTime, &s.EndTime, &s.DurationHours, &s.DurationCategory); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		if shiftTypeID != nil {
			s.ShiftTypeID = *shiftTypeID
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// GetShiftPatterns retrieves all rotation patterns
func (d *DB) GetShiftPatterns(ctx context.Context) ([]model.ShiftPattern, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, pattern_type, days_on, days_off, shift_duration
		FROM shift_patterns
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift patterns: %w", err)
	}
	defer rows.Close()

	var patterns []model.ShiftPattern
	for rows.Next() {
		var p model.ShiftPattern
		var patternType string
		if err := rows.Scan(&p.ID, &p.Name, &patternType, &p.DaysOn, &p.DaysOff, &p.ShiftDuration); err != nil {
			return nil, fmt.Errorf("failed to scan shift pattern: %w", err)
		}
		p.PatternType = model.PatternType(patternType)
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shift patterns: %w", err)
	}

	return patterns, nil
}

// GetEmployeePatterns retrieves every employee-to-pattern binding, earliest effective first
func (d *DB) GetEmployeePatterns(ctx context.Context) ([]model.EmployeePattern, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, employee_id, pattern_id, rotation_start_date, effective_from, effective_to
		FROM employee_patterns
		ORDER BY employee_id, effective_from NULLS FIRST, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee patterns: %w", err)
	}
	defer rows.Close()

	var bindings []model.EmployeePattern
	for rows.Next() {
		var b model.EmployeePattern
		var rotationStart time.Time
		var effectiveFrom, effectiveTo *time.Time
		if err := rows.Scan(&b.ID, &b.EmployeeID, &b.PatternID, &rotationStart, &effectiveFrom, &effectiveTo); err != nil {
			return nil, fmt.Errorf("failed to scan employee pattern: %w", err)
		}
		b.RotationStartDate = rotationStart.Format(dateLayout)
		if effectiveFrom != nil {
			b.EffectiveFrom = effectiveFrom.Format(dateLayout)
		}
		if effectiveTo != nil {
			b.EffectiveTo = effectiveTo.Format(dateLayout)
		}
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employee patterns: %w", err)
	}

	return bindings, nil
}

// GetStaffingRequirements retrieves all staffing requirements ordered by start time.
// Date-specific overrides come from configuration, not the database.
func (d *DB) GetStaffingRequirements(ctx context.Context) ([]model.StaffingRequirement, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, start_time, end_time, minimum_employees, shift_supervisor_required
		FROM staffing_requirements
		ORDER BY start_time, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query staffing requirements: %w", err)
	}
	defer rows.Close()

	var requirements []model.StaffingRequirement
	for rows.Next() {
		var r model.StaffingRequirement
		if err := rows.Scan(&r.ID, &r.Name, &r.StartTime, &r.EndTime, &r.MinimumEmployees, &r.ShiftSupervisorRequired); err != nil {
			return nil, fmt.Errorf("failed to scan staffing requirement: %w", err)
		}
		requirements = append(requirements, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staffing requirements: %w", err)
	}

	return requirements, nil
}
