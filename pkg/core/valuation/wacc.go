package valuation

import "fcf_valuation/pkg/models"

// CapitalMarket holds the market-wide inputs of the cost of capital.
// A zero MarketRiskPremium disables the calculation.
type CapitalMarket struct {
	RiskFreeRate      float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	MarketRiskPremium float64 `json:"market_risk_premium" yaml:"market_risk_premium"`
	PreTaxCostOfDebt  float64 `json:"pre_tax_cost_of_debt" yaml:"pre_tax_cost_of_debt"`
	TaxRate           float64 `json:"tax_rate" yaml:"tax_rate"`
}

// Enabled reports whether a reference rate should be computed.
func (m CapitalMarket) Enabled() bool { return m.MarketRiskPremium > 0 }

// WACCInput parameters for calculating Cost of Capital
type WACCInput struct {
	LeveredBeta       float64
	RiskFreeRate      float64
	MarketRiskPremium float64
	PreTaxCostOfDebt  float64
	TaxRate           float64
	Debt              float64 // book debt as a proxy for market value
	Equity            float64 // market capitalization
}

// WACCResult holds the calculated rates
type WACCResult struct {
	Beta         float64 `json:"beta"`
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"` // After-tax
	WACC         float64 `json:"wacc"`
	WeightDebt   float64 `json:"weight_debt"`
	WeightEquity float64 `json:"weight_equity"`
}

// CalculateWACC computes the Weighted Average Cost of Capital using CAPM.
//
// FORMULA:
//
//	Ke   = Rf + Beta × ERP
//	Kd   = PreTaxKd × (1 - t)
//	WACC = Ke × E/(D+E) + Kd × D/(D+E)
//
// With no usable equity value the firm is treated as all-equity.
func CalculateWACC(input WACCInput) WACCResult {
	ke := input.RiskFreeRate + input.LeveredBeta*input.MarketRiskPremium
	kd := input.PreTaxCostOfDebt * (1 - input.TaxRate)

	wd, we := 0.0, 1.0
	if input.Equity > 0 && input.Debt > 0 {
		wd = input.Debt / (input.Debt + input.Equity)
		we = 1 - wd
	}

	return WACCResult{
		Beta:         input.LeveredBeta,
		CostOfEquity: ke,
		CostOfDebt:   kd,
		WACC:         ke*we + kd*wd,
		WeightDebt:   wd,
		WeightEquity: we,
	}
}

// ReferenceWACC derives a market-implied discount rate for comparison with the
// one the caller chose. It returns nil when the market inputs are disabled or
// the company has no reported beta.
func ReferenceWACC(m CapitalMarket, profile models.CompanyProfile, price models.Quote) *WACCResult {
	if !m.Enabled() || profile.Beta <= 0 {
		return nil
	}
	equity := 0.0
	if price.Available && price.Value > 0 && profile.SharesOutstanding > 0 {
		equity = price.Value * float64(profile.SharesOutstanding)
	}
	res := CalculateWACC(WACCInput{
		LeveredBeta:       profile.Beta,
		RiskFreeRate:      m.RiskFreeRate,
		MarketRiskPremium: m.MarketRiskPremium,
		PreTaxCostOfDebt:  m.PreTaxCostOfDebt,
		TaxRate:           m.TaxRate,
		Debt:              profile.TotalDebt,
		Equity:            equity,
	})
	return &res
}
