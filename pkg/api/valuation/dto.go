package valuation

import (
	"time"

	"fcf_valuation/pkg/core/assumption"
	corevaluation "fcf_valuation/pkg/core/valuation"
)

// Assumptions are the optional modeling inputs of a request. Rates are
// decimals (0.10 = 10%). Omitted fields take the server defaults.
type Assumptions struct {
	ProjectionYears    *int     `json:"projection_years,omitempty" minimum:"1" maximum:"50" doc:"Explicit forecast horizon in years"`
	StageSplit         *int     `json:"stage_split,omitempty" minimum:"0" doc:"Years at the initial growth rate"`
	DiscountRate       *float64 `json:"discount_rate,omitempty" doc:"Required return per year" example:"0.1"`
	TerminalGrowthRate *float64 `json:"terminal_growth_rate,omitempty" doc:"Perpetual growth after the horizon" example:"0.02"`
	FadeFactor         *float64 `json:"fade_factor,omitempty" doc:"Reduced rate = initial rate x fade factor when no reduced rate is given"`
	InitialGrowth      *float64 `json:"initial_growth,omitempty" doc:"Overrides the historical CAGR for the first stage"`
	ReducedGrowth      *float64 `json:"reduced_growth,omitempty" doc:"Overrides the faded rate for the second stage"`
}

// apply overlays the request on the defaults without touching them.
func (a Assumptions) apply(defaults assumption.Set) assumption.Set {
	set := defaults
	if a.ProjectionYears != nil {
		set.Horizon = *a.ProjectionYears
		if a.StageSplit == nil && set.StageSplit > set.Horizon {
			set.StageSplit = set.Horizon
		}
	}
	if a.StageSplit != nil {
		set.StageSplit = *a.StageSplit
	}
	if a.DiscountRate != nil {
		set.DiscountRate = *a.DiscountRate
	}
	if a.TerminalGrowthRate != nil {
		set.TerminalGrowth = *a.TerminalGrowthRate
	}
	if a.FadeFactor != nil {
		set.FadeFactor = *a.FadeFactor
	}
	if a.InitialGrowth != nil {
		set = set.WithInitialGrowth(*a.InitialGrowth)
	}
	if a.ReducedGrowth != nil {
		set = set.WithReducedGrowth(*a.ReducedGrowth)
	}
	return set
}

type ValuationRequest struct {
	Ticker string `json:"ticker" minLength:"1" maxLength:"32" example:"INFY.NS"`
	Assumptions
}

type BatchRequest struct {
	Tickers []string `json:"tickers" minItems:"1" maxItems:"50"`
	Assumptions
}

// PriceResponse is the best-effort market price; Display is "N/A" when unavailable.
type PriceResponse struct {
	Available bool     `json:"available"`
	Value     *float64 `json:"value,omitempty"`
	Currency  string   `json:"currency,omitempty"`
	Display   string   `json:"display"`
	Reason    string   `json:"reason,omitempty"`
}

type ValuationResponse struct {
	ID            string                    `json:"id"`
	Ticker        string                    `json:"ticker"`
	CompanyName   string                    `json:"company_name,omitempty"`
	Sector        string                    `json:"sector,omitempty"`
	Result        corevaluation.View        `json:"result"`
	CurrentPrice  PriceResponse             `json:"current_price"`
	Upside        *float64                  `json:"upside,omitempty"`
	CostOfCapital *corevaluation.WACCResult `json:"cost_of_capital,omitempty" doc:"CAPM reference rate for comparison with discount_rate"`
	GeneratedAt   time.Time                 `json:"generated_at"`
}

type BatchItemResponse struct {
	Ticker string             `json:"ticker"`
	Report *ValuationResponse `json:"report,omitempty"`
	Error  *apiErrorBody      `json:"error,omitempty"`
}

type BatchResponse struct {
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Items     []BatchItemResponse `json:"items"`
}

type CacheClearResponse struct {
	Ticker  string `json:"ticker"`
	Cleared bool   `json:"cleared"`
}

// NewValuationResponse shapes a report for JSON output.
func NewValuationResponse(r *corevaluation.Report) ValuationResponse {
	price := PriceResponse{Available: r.Price.Available, Currency: r.Price.Currency, Display: "N/A", Reason: r.Price.Reason}
	if r.Price.Available {
		v := r.Price.Value
		price.Value = &v
		price.Display = formatPrice(v)
	}
	return ValuationResponse{
		ID:            r.ID,
		Ticker:        r.Ticker,
		CompanyName:   r.Profile.CompanyName,
		Sector:        r.Profile.Sector,
		Result:        r.Result.View(),
		CurrentPrice:  price,
		Upside:        r.Upside,
		CostOfCapital: r.CostOfCapital,
		GeneratedAt:   r.GeneratedAt,
	}
}
