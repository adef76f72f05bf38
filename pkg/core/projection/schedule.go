package projection

import (
	"math"

	"fcf_valuation/pkg/core/valerr"
)

const (
	StageInitial = "initial"
	StageReduced = "reduced"
)

// Stage applies one growth rate for a number of consecutive years.
type Stage struct {
	Name  string  `json:"name"`
	Rate  float64 `json:"rate"`
	Years int     `json:"years"`
}

// Schedule is an ordered list of stages; the horizon is the sum of their years.
type Schedule struct {
	Stages []Stage `json:"stages"`
}

// TwoStage builds the initial/reduced schedule: `split` years at the initial
// rate followed by `horizon-split` years at the reduced rate. A split of 0 or
// of horizon collapses to a single stage.
func TwoStage(initialRate, reducedRate float64, horizon, split int) (Schedule, error) {
	if horizon <= 0 {
		return Schedule{}, valerr.New(valerr.KindInvalidAssumption, "projection_years", horizon,
			"projection horizon must be positive")
	}
	if split < 0 || split > horizon {
		return Schedule{}, valerr.New(valerr.KindInvalidAssumption, "stage_split", split,
			"stage split must be between 0 and %d", horizon)
	}
	if err := checkRate("initial_growth", initialRate); err != nil {
		return Schedule{}, err
	}
	if err := checkRate("reduced_growth", reducedRate); err != nil {
		return Schedule{}, err
	}

	var stages []Stage
	if split > 0 {
		stages = append(stages, Stage{Name: StageInitial, Rate: initialRate, Years: split})
	}
	if horizon-split > 0 {
		stages = append(stages, Stage{Name: StageReduced, Rate: reducedRate, Years: horizon - split})
	}
	return Schedule{Stages: stages}, nil
}

// Horizon returns the total number of projected years.
func (s Schedule) Horizon() int {
	n := 0
	for _, st := range s.Stages {
		n += st.Years
	}
	return n
}

// ProjectedYear is one year of the explicit forecast.
type ProjectedYear struct {
	Year  int     `json:"year"`
	Stage string  `json:"stage"`
	Rate  float64 `json:"rate"`
	Value float64 `json:"value"`
}

// Project compounds lastFCF through every stage in order. Each stage starts
// from the final value of the previous one, never from the original base.
func Project(lastFCF float64, schedule Schedule) []ProjectedYear {
	out := make([]ProjectedYear, 0, schedule.Horizon())
	value := lastFCF
	year := 0
	for _, st := range schedule.Stages {
		step := GrowthStrategy{GrowthRate: st.Rate}
		for i := 0; i < st.Years; i++ {
			year++
			value = step.Calculate(Context{Year: year, LastYearValue: value})
			out = append(out, ProjectedYear{Year: year, Stage: st.Name, Rate: st.Rate, Value: value})
		}
	}
	return out
}

// Values flattens projected years into their cash flows.
func Values(years []ProjectedYear) []float64 {
	vals := make([]float64, len(years))
	for i, y := range years {
		vals[i] = y.Value
	}
	return vals
}

// ProjectConstant grows lastFCF at a single rate for the given number of years.
//
// FORMULA: FCF_t = FCF_0 × (1 + g)^t
func ProjectConstant(lastFCF, rate float64, years int) []float64 {
	if years <= 0 {
		return nil
	}
	out := make([]float64, years)
	for t := 1; t <= years; t++ {
		out[t-1] = lastFCF * math.Pow(1+rate, float64(t))
	}
	return out
}

// A rate at or below -100% wipes out or flips the cash flow, which no
// compounding schedule can represent.
func checkRate(field string, rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return valerr.New(valerr.KindInvalidAssumption, field, rate, "growth rate must be a finite number")
	}
	if rate <= -1 {
		return valerr.New(valerr.KindInvalidAssumption, field, rate, "growth rate must be greater than -100%%")
	}
	return nil
}
