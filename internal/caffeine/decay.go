// Package caffeine estimates caffeine levels from a log of doses using
// first-order exponential decay
package caffeine

import (
	"math"
	"time"
)

const (
	// DefaultHalfLife is the approximate half-life of caffeine, in hours
	DefaultHalfLife = 5.0

	// Cutoff is the age, in hours, at which a dose stops contributing
	Cutoff = 12.0
)

// DoseEvent is a single intake of caffeine
type DoseEvent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AmountMg  float64   `json:"amount_mg"`
	Timestamp time.Time `json:"timestamp"`
}

// Model evaluates doses with a fixed half-life
type Model struct {
	HalfLife float64
}

// Default is the model used by the package level functions
var Default = Model{HalfLife: DefaultHalfLife}

func (m Model) halfLife() float64 {
	if m.HalfLife <= 0 {
		return DefaultHalfLife
	}
	return m.HalfLife
}

// RemainingFromDose returns how much of a dose of amountMg is left after
// elapsedHours. Doses in the future and doses at least Cutoff hours old
// contribute nothing.
func RemainingFromDose(amountMg, elapsedHours, halfLifeHours float64) float64 {
	if elapsedHours < 0 {
		return 0
	}
	if elapsedHours >= Cutoff {
		return 0
	}
	return amountMg * math.Pow(0.5, elapsedHours/halfLifeHours)
}

// ElapsedHours returns the time from a dose to the target instant in hours.
// An unset dose time yields NaN.
func ElapsedHours(dose, target time.Time) float64 {
	if dose.IsZero() {
		return math.NaN()
	}
	return target.Sub(dose).Hours()
}

// Remaining returns what is left of a single event at target
func (m Model) Remaining(e DoseEvent, target time.Time) float64 {
	return RemainingFromDose(e.AmountMg, ElapsedHours(e.Timestamp, target), m.halfLife())
}

// TotalLevel sums the remaining caffeine of every event at target
func (m Model) TotalLevel(events []DoseEvent, target time.Time) float64 {
	total := 0.0
	for _, e := range events {
		total += m.Remaining(e, target)
	}
	return total
}

// TotalLevel sums the remaining caffeine of every event at target using the
// default half-life
func TotalLevel(events []DoseEvent, target time.Time) float64 {
	return Default.TotalLevel(events, target)
}
