// Package catalog holds the drinks a dose can be recorded from and turns a
// drink and a volume into milligrams of caffeine
package catalog

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/baely/caffeine/internal/common/errors"
)

// DefaultVolumeMl is the serving size assumed when none is given
const DefaultVolumeMl = 200

// Drink is a named caffeine concentration
type Drink struct {
	Name       string  `json:"name"`
	MgPer100Ml float64 `json:"mg_per_100ml"`
	Custom     bool    `json:"custom"`
}

// Defaults are the built-in drinks
var Defaults = []Drink{
	{Name: "Coffee", MgPer100Ml: 80},
	{Name: "Espresso", MgPer100Ml: 210},
	{Name: "Tea", MgPer100Ml: 11},
	{Name: "Soda", MgPer100Ml: 11},
	{Name: "Energy Drink", MgPer100Ml: 32},
}

// Dose returns the whole milligrams of caffeine in volumeMl of a drink
func Dose(mgPer100Ml, volumeMl float64) float64 {
	return math.Round(volumeMl / 100 * mgPer100Ml)
}

// Dose returns the caffeine in volumeMl of d
func (d Drink) Dose(volumeMl float64) float64 {
	return Dose(d.MgPer100Ml, volumeMl)
}

// Merge lists the defaults followed by the custom drinks
func Merge(custom []Drink) []Drink {
	drinks := make([]Drink, 0, len(Defaults)+len(custom))
	drinks = append(drinks, Defaults...)
	for _, d := range custom {
		d.Custom = true
		drinks = append(drinks, d)
	}
	return drinks
}

// Find looks a drink up by name, ignoring case
func Find(drinks []Drink, name string) (Drink, bool) {
	name = strings.TrimSpace(name)
	for _, d := range drinks {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return Drink{}, false
}

// IsDefault reports whether name belongs to a built-in drink
func IsDefault(name string) bool {
	_, ok := Find(Defaults, name)
	return ok
}

// Validate checks a custom drink before it is saved
func Validate(d Drink) error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.Invalid("drink name is required")
	}
	if !(d.MgPer100Ml > 0) || math.IsInf(d.MgPer100Ml, 0) {
		return errors.Invalid("caffeine per 100ml must be positive, got %v", d.MgPer100Ml)
	}
	if IsDefault(d.Name) {
		return errors.Wrap(errors.ErrAlreadyExists, "drink %q", d.Name)
	}
	return nil
}

// TimeOfDay places an "HH:MM" clock time on now's calendar date, in now's
// location
func TimeOfDay(now time.Time, hhmm string) (time.Time, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok {
		return time.Time{}, errors.Invalid("time %q is not HH:MM", hhmm)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > 23 {
		return time.Time{}, errors.Invalid("hour %q out of range", hs)
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return time.Time{}, errors.Invalid("minute %q out of range", ms)
	}

	y, mo, d := now.Date()
	return time.Date(y, mo, d, h, m, 0, 0, now.Location()), nil
}
