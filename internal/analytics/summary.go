package analytics

import "bodylog/internal/domain"

// ChartWindow is the number of most recent entries plotted by the summary.
const ChartWindow = 60

// Point is one chart sample.
type Point struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	MA7    float64 `json:"ma7"`
}

// Summary is the dashboard view of a profile. Nil fields have no value.
type Summary struct {
	ProfileID  string   `json:"profileId"`
	Count      int      `json:"count"`
	LastDate   string   `json:"last_date,omitempty"`
	LastWeight *float64 `json:"last_weight"`
	Delta      *float64 `json:"delta"`
	Avg7       *float64 `json:"avg7"`
	Trend7     *float64 `json:"trend7"`
	BMI        *float64 `json:"bmi"`
	GoalKg     *float64 `json:"goal_kg"`
	ToGoal     *float64 `json:"to_goal"`
	LastWaist  *float64 `json:"last_waist_cm"`
	LastBF     *float64 `json:"last_bodyfat_pct"`
	BMR        *float64 `json:"bmr"`
	TDEE       *float64 `json:"tdee"`
	Bands      *Bands   `json:"bands"`
	Series     []Point  `json:"series"`
}

func some(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

// Summarize computes every statistic for p over entries, which must be in
// repository order (most recent first).
func Summarize(p domain.Profile, entries []domain.Entry) Summary {
	s := Summary{ProfileID: p.ID, Count: len(entries), GoalKg: p.GoalKg, Series: []Point{}}
	if len(entries) == 0 {
		return s
	}

	last := entries[0]
	s.LastDate = last.Date
	s.LastWeight = some(last.Weight, true)
	if len(entries) > 1 {
		s.Delta = some(last.Weight-entries[1].Weight, true)
	}
	s.Avg7 = some(RollingAverage7(entries))
	s.Trend7 = some(Trend7(entries))
	s.BMI = some(BMI(last.Weight, p.HeightCm))
	if p.GoalKg != nil {
		s.ToGoal = some(last.Weight-*p.GoalKg, true)
	}
	s.LastWaist = last.WaistCm
	s.LastBF = last.BodyFatPct

	bmr, ok := BMR(p.Sex, p.Age, p.HeightCm, last.Weight)
	s.BMR = some(bmr, ok)
	if tdee, ok := TDEE(bmr, ok, p.ActivityFactor()); ok {
		s.TDEE = &tdee
		b := CalorieBands(tdee)
		s.Bands = &b
	}

	window := Chronological(entries[:min(len(entries), ChartWindow)])
	weights := make([]float64, len(window))
	for i, e := range window {
		weights[i] = e.Weight
	}
	for i, ma := range MovingAverage(weights, 7) {
		s.Series = append(s.Series, Point{Date: window[i].Date, Weight: weights[i], MA7: ma})
	}
	return s
}
