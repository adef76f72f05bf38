package valuation

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fcf_valuation/pkg/core/assumption"
	"fcf_valuation/pkg/core/marketdata"
	"fcf_valuation/pkg/core/valerr"
	"fcf_valuation/pkg/models"
)

type priceless struct{ marketdata.Provider }

func (priceless) Price(context.Context, string) (models.Quote, error) {
	return models.Quote{}, errors.New("quote service down")
}

func testProvider() *marketdata.Static {
	price := 100.0
	return marketdata.NewStatic(
		marketdata.StaticCompany{Ticker: "ACME", CompanyName: "Acme", SharesOutstanding: 1000, Price: &price,
			FreeCashFlows: []float64{80, 90, 100, 115, 130}},
		marketdata.StaticCompany{Ticker: "NOSHARES", FreeCashFlows: []float64{80, 90}},
		marketdata.StaticCompany{Ticker: "FLIP", SharesOutstanding: 10, FreeCashFlows: []float64{10, -5}},
	)
}

func TestService_Value(t *testing.T) {
	svc := NewService(testProvider(), zerolog.Nop(), 0)

	report, err := svc.Value(context.Background(), " acme ", assumption.Defaults())
	require.NoError(t, err)

	assert.Equal(t, "ACME", report.Ticker)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "Acme", report.Profile.CompanyName)
	assert.True(t, report.Price.Available)
	require.NotNil(t, report.Upside)
	assert.InDelta(t, report.Result.IntrinsicValuePerShare()/100-1, *report.Upside, 1e-12)
}

func TestService_PriceFailureIsNotFatal(t *testing.T) {
	svc := NewService(priceless{testProvider()}, zerolog.Nop(), 1)

	report, err := svc.Value(context.Background(), "ACME", assumption.Defaults())
	require.NoError(t, err)
	assert.False(t, report.Price.Available)
	assert.Equal(t, "quote service down", report.Price.Reason)
	assert.Nil(t, report.Upside)
	assert.Greater(t, report.Result.IntrinsicValuePerShare(), 0.0)
}

func TestService_ValueErrors(t *testing.T) {
	svc := NewService(testProvider(), zerolog.Nop(), 1)
	ctx := context.Background()

	_, err := svc.Value(ctx, "NOSHARES", assumption.Defaults())
	assert.True(t, errors.Is(err, valerr.ErrMissingShareCount))

	_, err = svc.Value(ctx, "FLIP", assumption.Defaults())
	assert.True(t, errors.Is(err, valerr.ErrNoValidGrowthWindow))

	_, err = svc.Value(ctx, "UNKNOWN", assumption.Defaults())
	assert.True(t, errors.Is(err, marketdata.ErrTickerNotFound))

	_, err = svc.Value(ctx, "", assumption.Defaults())
	assert.Error(t, err)

	bad := assumption.Defaults()
	bad.TerminalGrowth = 0.2
	_, err = svc.Value(ctx, "ACME", bad)
	assert.Equal(t, valerr.KindInvalidTerminalSpread, valerr.KindOf(err))
}

func TestService_ValueMany(t *testing.T) {
	svc := NewService(testProvider(), zerolog.Nop(), 2)

	items := svc.ValueMany(context.Background(), []string{"ACME", "FLIP", "UNKNOWN", "acme"}, assumption.Defaults())
	require.Len(t, items, 4)

	assert.NoError(t, items[0].Err)
	assert.NotNil(t, items[0].Report)
	assert.True(t, errors.Is(items[1].Err, valerr.ErrNoValidGrowthWindow))
	assert.Nil(t, items[1].Report)
	assert.Error(t, items[2].Err)
	require.NoError(t, items[3].Err)
	assert.Equal(t, items[0].Report.Result.IntrinsicValuePerShare(), items[3].Report.Result.IntrinsicValuePerShare())
	assert.NotEqual(t, items[0].Report.ID, items[3].Report.ID)
}

func TestService_Invalidate(t *testing.T) {
	ctx := context.Background()

	plain := NewService(testProvider(), zerolog.Nop(), 1)
	cached, err := plain.Invalidate(ctx, "ACME")
	require.NoError(t, err)
	assert.False(t, cached)

	withCache := NewService(marketdata.NewCachedProvider(testProvider()), zerolog.Nop(), 1)
	cached, err = withCache.Invalidate(ctx, "ACME")
	require.NoError(t, err)
	assert.True(t, cached)
}

func TestService_ReferenceCostOfCapital(t *testing.T) {
	price := 10.0
	provider := marketdata.NewStatic(marketdata.StaticCompany{
		Ticker: "LEV", SharesOutstanding: 75, Beta: 1.2, TotalDebt: 250, Price: &price,
		FreeCashFlows: []float64{50, 55, 60},
	})
	market := CapitalMarket{RiskFreeRate: 0.04, MarketRiskPremium: 0.05, PreTaxCostOfDebt: 0.06, TaxRate: 0.25}

	report, err := NewService(provider, zerolog.Nop(), 1, WithCapitalMarket(market)).
		Value(context.Background(), "LEV", assumption.Defaults())
	require.NoError(t, err)
	require.NotNil(t, report.CostOfCapital)
	assert.InDelta(t, 0.10*0.75+0.045*0.25, report.CostOfCapital.WACC, 1e-12)

	plain, err := NewService(provider, zerolog.Nop(), 1).Value(context.Background(), "LEV", assumption.Defaults())
	require.NoError(t, err)
	assert.Nil(t, plain.CostOfCapital)
}

func TestUpside(t *testing.T) {
	assert.Nil(t, Upside(10, models.UnavailableQuote("x")))
	assert.Nil(t, Upside(10, models.Quote{Available: true, Value: 0}))
	u := Upside(15, models.Quote{Available: true, Value: 10})
	require.NotNil(t, u)
	assert.InDelta(t, 0.5, *u, 1e-12)
}
