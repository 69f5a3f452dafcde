package domain

import "fmt"

const kgToLb = 2.2046226218

// Unit is a display unit for body mass. Everything is stored in kilograms.
type Unit string

const (
	Kilograms Unit = "kg"
	Pounds    Unit = "lb"
)

// ParseUnit accepts "kg" or "lb"; the empty string means kilograms.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case "", Kilograms:
		return Kilograms, nil
	case Pounds:
		return Pounds, nil
	}
	return "", invalid("unit", "must be %q or %q", Kilograms, Pounds)
}

// ConvertWeight converts a weight value between "kg" and "lb".
// Returns v unchanged if from == to or if the units are unrecognised.
func ConvertWeight(v float64, from, to Unit) float64 {
	switch {
	case from == to:
		return v
	case from == Kilograms && to == Pounds:
		return v * kgToLb
	case from == Pounds && to == Kilograms:
		return v / kgToLb
	}
	return v
}

// FormatWeight renders a kilogram value in the requested unit with one decimal.
func FormatWeight(kg float64, u Unit) string {
	return fmt.Sprintf("%.1f %s", ConvertWeight(kg, Kilograms, u), u)
}
