package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fcf_valuation/pkg/models"
)

func TestCalculateWACC(t *testing.T) {
	res := CalculateWACC(WACCInput{
		LeveredBeta:       1.2,
		RiskFreeRate:      0.04,
		MarketRiskPremium: 0.05,
		PreTaxCostOfDebt:  0.06,
		TaxRate:           0.25,
		Debt:              250,
		Equity:            750,
	})

	assert.InDelta(t, 0.10, res.CostOfEquity, 1e-12)
	assert.InDelta(t, 0.045, res.CostOfDebt, 1e-12)
	assert.InDelta(t, 0.25, res.WeightDebt, 1e-12)
	assert.InDelta(t, 0.10*0.75+0.045*0.25, res.WACC, 1e-12)
}

func TestCalculateWACC_AllEquityWithoutMarketCap(t *testing.T) {
	res := CalculateWACC(WACCInput{LeveredBeta: 1, RiskFreeRate: 0.03, MarketRiskPremium: 0.06, Debt: 100})
	assert.Equal(t, 1.0, res.WeightEquity)
	assert.InDelta(t, 0.09, res.WACC, 1e-12)
}

func TestReferenceWACC(t *testing.T) {
	market := CapitalMarket{RiskFreeRate: 0.04, MarketRiskPremium: 0.05, PreTaxCostOfDebt: 0.06, TaxRate: 0.25}
	profile := models.CompanyProfile{Beta: 1.2, SharesOutstanding: 75, TotalDebt: 250}

	res := ReferenceWACC(market, profile, models.Quote{Available: true, Value: 10})
	require.NotNil(t, res)
	assert.InDelta(t, 0.25, res.WeightDebt, 1e-12)

	assert.Nil(t, ReferenceWACC(CapitalMarket{}, profile, models.Quote{}))
	assert.Nil(t, ReferenceWACC(market, models.CompanyProfile{}, models.Quote{}))
}
