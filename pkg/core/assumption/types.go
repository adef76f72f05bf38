// Package assumption implements the modeling inputs of one valuation request.
// A Set is validated before use and treated as a value: the With* helpers
// return modified copies so a Set is never mutated during a calculation.
package assumption

import (
	"math"

	"fcf_valuation/pkg/core/valerr"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultHorizon        = 10
	DefaultStageSplit     = 5
	DefaultDiscountRate   = 0.10
	DefaultTerminalGrowth = 0.02
	// DefaultFadeFactor scales the initial growth rate into the reduced-stage
	// rate when no explicit reduced rate is given.
	DefaultFadeFactor = 0.5
)

// =============================================================================
// ASSUMPTION SET
// =============================================================================

// Set holds every caller-supplied input of a valuation.
type Set struct {
	Horizon        int     `json:"projection_years" yaml:"projection_years"`
	StageSplit     int     `json:"stage_split" yaml:"stage_split"`
	DiscountRate   float64 `json:"discount_rate" yaml:"discount_rate"`
	TerminalGrowth float64 `json:"terminal_growth_rate" yaml:"terminal_growth_rate"`
	FadeFactor     float64 `json:"fade_factor" yaml:"fade_factor"`

	// Optional overrides; nil means derive.
	InitialGrowth *float64 `json:"initial_growth,omitempty" yaml:"initial_growth,omitempty"`
	ReducedGrowth *float64 `json:"reduced_growth,omitempty" yaml:"reduced_growth,omitempty"`
}

// Defaults returns the standard 5+5 year, 10% / 2% set.
func Defaults() Set {
	return Set{
		Horizon:        DefaultHorizon,
		StageSplit:     DefaultStageSplit,
		DiscountRate:   DefaultDiscountRate,
		TerminalGrowth: DefaultTerminalGrowth,
		FadeFactor:     DefaultFadeFactor,
	}
}

// WithInitialGrowth returns a copy with the initial-stage rate pinned.
func (s Set) WithInitialGrowth(rate float64) Set {
	s.InitialGrowth = &rate
	return s
}

// WithReducedGrowth returns a copy with the reduced-stage rate pinned.
func (s Set) WithReducedGrowth(rate float64) Set {
	s.ReducedGrowth = &rate
	return s
}

// Clone returns a copy that shares no override pointers with s.
func (s Set) Clone() Set {
	if s.InitialGrowth != nil {
		v := *s.InitialGrowth
		s.InitialGrowth = &v
	}
	if s.ReducedGrowth != nil {
		v := *s.ReducedGrowth
		s.ReducedGrowth = &v
	}
	return s
}

// Validate checks every field and reports the first offending input.
func (s Set) Validate() error {
	if s.Horizon <= 0 {
		return valerr.New(valerr.KindInvalidAssumption, "projection_years", s.Horizon,
			"projection horizon must be positive")
	}
	if s.StageSplit < 0 || s.StageSplit > s.Horizon {
		return valerr.New(valerr.KindInvalidAssumption, "stage_split", s.StageSplit,
			"stage split must be between 0 and the horizon (%d)", s.Horizon)
	}
	if !finite(s.DiscountRate) {
		return valerr.New(valerr.KindInvalidAssumption, "discount_rate", s.DiscountRate,
			"discount rate must be a finite number")
	}
	if s.DiscountRate <= 0 {
		return valerr.New(valerr.KindInvalidAssumption, "discount_rate", s.DiscountRate,
			"discount rate must be greater than zero")
	}
	if !finite(s.TerminalGrowth) {
		return valerr.New(valerr.KindInvalidAssumption, "terminal_growth_rate", s.TerminalGrowth,
			"terminal growth rate must be a finite number")
	}
	if !finite(s.FadeFactor) {
		return valerr.New(valerr.KindInvalidAssumption, "fade_factor", s.FadeFactor,
			"fade factor must be a finite number")
	}
	if err := checkOverride("initial_growth", s.InitialGrowth); err != nil {
		return err
	}
	if err := checkOverride("reduced_growth", s.ReducedGrowth); err != nil {
		return err
	}
	if s.DiscountRate <= s.TerminalGrowth {
		return valerr.New(valerr.KindInvalidTerminalSpread, "terminal_growth_rate", s.TerminalGrowth,
			"discount rate %.4f must exceed terminal growth rate %.4f", s.DiscountRate, s.TerminalGrowth)
	}
	return nil
}

// =============================================================================
// GROWTH RESOLUTION
// =============================================================================

// Source records where a resolved growth rate came from.
type Source string

const (
	SourceOverride   Source = "override"
	SourceHistorical Source = "historical"
	SourceFaded      Source = "faded"
)

// Growth is the pair of stage rates a projection will use.
type Growth struct {
	Initial       float64 `json:"initial"`
	Reduced       float64 `json:"reduced"`
	InitialSource Source  `json:"initial_source"`
	ReducedSource Source  `json:"reduced_source"`
}

// ResolveGrowth applies override-or-derive independently to each stage:
// initial = override else historical; reduced = override else initial × fade.
// The reduced fallback fades whichever initial rate was actually chosen.
func (s Set) ResolveGrowth(historical float64) Growth {
	initial, initialSrc := resolve(s.InitialGrowth, SourceHistorical, func() float64 { return historical })
	reduced, reducedSrc := resolve(s.ReducedGrowth, SourceFaded, func() float64 { return initial * s.FadeFactor })
	return Growth{
		Initial:       initial,
		Reduced:       reduced,
		InitialSource: initialSrc,
		ReducedSource: reducedSrc,
	}
}

func resolve(override *float64, fallbackSrc Source, fallback func() float64) (float64, Source) {
	if override != nil {
		return *override, SourceOverride
	}
	return fallback(), fallbackSrc
}

func checkOverride(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if !finite(*v) {
		return valerr.New(valerr.KindInvalidAssumption, field, *v, "growth override must be a finite number")
	}
	if *v <= -1 {
		return valerr.New(valerr.KindInvalidAssumption, field, *v, "growth override must be greater than -100%%")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
