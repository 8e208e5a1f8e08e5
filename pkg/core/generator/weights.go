package generator

// Built-in scoring weights for choosing a shift for an employee on a date
const (
	// WeightBase is the score every eligible shift starts from
	WeightBase = 100

	// WeightPreferenceBonus is added when the shift's type matches the employee's default shift type
	WeightPreferenceBonus = 50

	// WeightCoverageBonus is added when the shift covers a requirement period that is still short of its minimum
	WeightCoverageBonus = 30
)

// Weights are the scoring constants used by the scorer. Zero values fall back to the built-in weights.
type Weights struct {
	Base            float64
	PreferenceBonus float64
	CoverageBonus   float64
}

// DefaultWeights returns the built-in weights
func DefaultWeights() Weights {
	return Weights{
		Base:            WeightBase,
		PreferenceBonus: WeightPreferenceBonus,
		CoverageBonus:   WeightCoverageBonus,
	}
}

func (w Weights) withDefaults() Weights {
	defaults := DefaultWeights()
	if w.Base == 0 {
		w.Base = defaults.Base
	}
	if w.PreferenceBonus == 0 {
		w.PreferenceBonus = defaults.PreferenceBonus
	}
	if w.CoverageBonus == 0 {
		w.CoverageBonus = defaults.CoverageBonus
	}
	return w
}
