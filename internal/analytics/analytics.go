// Package analytics derives trend statistics and energy estimates from an
// entry series. Every function is pure. Entry slices are expected in the
// repository order: most recent first.
//
// Functions that can be undefined return (value, ok); ok is false when the
// inputs do not support a result.
package analytics

import (
	"math"

	"bodylog/internal/domain"
)

// KcalPerKg is the energy density used to turn weekly mass change into a
// daily calorie shift.
const KcalPerKg = 7700.0

// CutFloorKcal is the lowest value the aggressive deficit band may report.
const CutFloorKcal = 1200.0

// Daily calorie shifts for 0.5 and 0.25 kg per week.
const (
	FullShiftKcal = KcalPerKg * 0.5 / 7
	HalfShiftKcal = KcalPerKg * 0.25 / 7
)

// BMR sex constants for the Mifflin-St Jeor equation. The unspecified value
// is the midpoint of the other two.
const (
	bmrMale        = 5.0
	bmrFemale      = -161.0
	bmrUnspecified = -78.0
)

// MovingAverage returns the trailing mean of values over window elements.
// The window shrinks near the start so the output has the same length as
// the input. A window below 1 is treated as 1.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Average returns the mean weight of the n most recent entries, or of all
// of them when there are fewer than n.
func Average(entries []domain.Entry, n int) (float64, bool) {
	if n > len(entries) {
		n = len(entries)
	}
	if n <= 0 {
		return 0, false
	}
	return meanWeight(entries[:n]), true
}

// RollingAverage7 is Average over the last seven entries.
func RollingAverage7(entries []domain.Entry) (float64, bool) {
	return Average(entries, 7)
}

// Trend7 compares the mean of the seven most recent entries with the mean
// of the seven before them. Entries are counted, not calendar days, so gaps
// in logging stretch the window.
func Trend7(entries []domain.Entry) (float64, bool) {
	if len(entries) < 14 {
		return 0, false
	}
	return meanWeight(entries[:7]) - meanWeight(entries[7:14]), true
}

func meanWeight(entries []domain.Entry) float64 {
	sum := 0.0
	for _, e := range entries {
		sum += e.Weight
	}
	return sum / float64(len(entries))
}

// BMI returns weight / height² with height converted to metres.
func BMI(weightKg float64, heightCm *float64) (float64, bool) {
	if heightCm == nil || *heightCm <= 0 || weightKg <= 0 {
		return 0, false
	}
	h := *heightCm / 100
	return weightKg / (h * h), true
}

// BMR estimates basal metabolic rate in kcal/day with Mifflin-St Jeor.
func BMR(sex domain.Sex, age *int, heightCm *float64, weightKg float64) (float64, bool) {
	if age == nil || heightCm == nil || *heightCm <= 0 || weightKg <= 0 {
		return 0, false
	}
	c := bmrUnspecified
	switch sex {
	case domain.SexMale:
		c = bmrMale
	case domain.SexFemale:
		c = bmrFemale
	}
	return 10*weightKg + 6.25**heightCm - 5*float64(*age) + c, true
}

// TDEE scales a BMR by the activity factor.
func TDEE(bmr float64, bmrOK bool, activity float64) (float64, bool) {
	if !bmrOK || activity <= 0 || math.IsNaN(activity) {
		return 0, false
	}
	return bmr * activity, true
}

// Bands are daily calorie targets around maintenance.
type Bands struct {
	Cut      float64 `json:"cut"`
	MildCut  float64 `json:"mild_cut"`
	Maintain float64 `json:"maintain"`
	MildBulk float64 `json:"mild_bulk"`
	Bulk     float64 `json:"bulk"`
}

// CalorieBands derives the targets from tdee. Cut never drops below
// CutFloorKcal.
func CalorieBands(tdee float64) Bands {
	return Bands{
		Cut:      math.Max(CutFloorKcal, tdee-FullShiftKcal),
		MildCut:  tdee - HalfShiftKcal,
		Maintain: tdee,
		MildBulk: tdee + HalfShiftKcal,
		Bulk:     tdee + FullShiftKcal,
	}
}

// Chronological returns a copy of entries in ascending date order.
func Chronological(entries []domain.Entry) []domain.Entry {
	out := make([]domain.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}
