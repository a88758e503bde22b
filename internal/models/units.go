package models

// UnitSystem is the user's ambient measurement preference. It is threaded
// explicitly into every operation that creates sets; core logic never reads
// it from global state.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// Unit tags a logged set with the measurement unit captured at creation.
type Unit string

const (
	Kilograms Unit = "kg"
	Pounds    Unit = "lbs"
	Kilometer Unit = "km"
	Mile      Unit = "mi"
)

// LbsPerKg converts kilograms to pounds for volume and 1RM normalization.
const LbsPerKg = 2.20462

// ResolveUnit picks the unit a new set is stamped with: distance units for
// cardio exercises, weight units otherwise.
func ResolveUnit(t ExerciseType, sys UnitSystem) Unit {
	if t == Cardio {
		if sys == Metric {
			return Kilometer
		}
		return Mile
	}
	if sys == Metric {
		return Kilograms
	}
	return Pounds
}

// IsMetric reports whether the unit belongs to the metric system.
func (u Unit) IsMetric() bool {
	return u == Kilograms || u == Kilometer
}

// WeightLbs normalizes a weight recorded in this unit to pounds.
func (u Unit) WeightLbs(weight float64) float64 {
	if u.IsMetric() {
		return weight * LbsPerKg
	}
	return weight
}
