// Package projection extends the last known free cash flow over an explicit
// forecast horizon using a staged growth schedule.
package projection

// Context provides data needed for one projection step
type Context struct {
	Year          int     // Target projection year (1-indexed)
	LastYearValue float64 // Previous year's value
}

// GrowthStrategy implements simple percentage growth
// Formula: Value(t) = Value(t-1) * (1 + GrowthRate)
type GrowthStrategy struct {
	GrowthRate float64 `json:"growth_rate"` // e.g., 0.05 for 5%
}

func (s GrowthStrategy) Name() string { return "GrowthRate" }

func (s GrowthStrategy) Calculate(ctx Context) float64 {
	return ctx.LastYearValue * (1 + s.GrowthRate)
}
