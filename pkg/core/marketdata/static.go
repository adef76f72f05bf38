package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"fcf_valuation/pkg/models"
)

// StaticCompany is one company in a statements file. Either Periods or
// FreeCashFlows (oldest first) must be given.
type StaticCompany struct {
	Ticker            string                  `json:"ticker"`
	CompanyName       string                  `json:"company_name,omitempty"`
	Currency          string                  `json:"currency,omitempty"`
	SharesOutstanding int64                   `json:"shares_outstanding"`
	Beta              float64                 `json:"beta,omitempty"`
	TotalDebt         float64                 `json:"total_debt,omitempty"`
	TotalCash         float64                 `json:"total_cash,omitempty"`
	Price             *float64                `json:"price,omitempty"`
	Periods           []models.CashFlowPeriod `json:"periods,omitempty"`
	FreeCashFlows     []float64               `json:"free_cash_flows,omitempty"`
}

// Static serves fixed data. It backs offline CLI runs and tests.
type Static struct {
	companies map[string]StaticCompany
}

// NewStatic indexes companies by ticker.
func NewStatic(companies ...StaticCompany) *Static {
	s := &Static{companies: make(map[string]StaticCompany, len(companies))}
	for _, c := range companies {
		s.companies[normalize(c.Ticker)] = c
	}
	return s
}

// LoadStatic reads a JSON array of companies.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statements file: %w", err)
	}
	var companies []StaticCompany
	if err := json.Unmarshal(data, &companies); err != nil {
		return nil, fmt.Errorf("parse statements file %s: %w", path, err)
	}
	return NewStatic(companies...), nil
}

func (s *Static) lookup(ticker string) (StaticCompany, error) {
	c, ok := s.companies[normalize(ticker)]
	if !ok {
		return StaticCompany{}, fmt.Errorf("%s: %w", normalize(ticker), ErrTickerNotFound)
	}
	return c, nil
}

func (s *Static) CashFlows(_ context.Context, ticker string) (models.CashFlowSeries, error) {
	c, err := s.lookup(ticker)
	if err != nil {
		return models.CashFlowSeries{}, err
	}
	periods := make([]models.CashFlowPeriod, 0, len(c.Periods)+len(c.FreeCashFlows))
	for _, p := range c.Periods {
		// Rebuild from components so capex sign and FCF follow the same rule as live data.
		// A period given only as free_cash_flow keeps its value.
		if p.OperatingCashFlow == 0 && p.CapitalExpenditure == 0 {
			periods = append(periods, p)
			continue
		}
		periods = append(periods, models.NewCashFlowPeriod(p.EndDate, p.OperatingCashFlow, p.CapitalExpenditure))
	}
	if len(c.Periods) == 0 {
		// Undated values: assign consecutive fiscal year ends so ordering is kept.
		last := time.Now().Year() - 1
		for i, v := range c.FreeCashFlows {
			end := time.Date(last-len(c.FreeCashFlows)+1+i, time.December, 31, 0, 0, 0, 0, time.UTC)
			periods = append(periods, models.CashFlowPeriod{EndDate: end, FreeCashFlow: v})
		}
	}
	series := models.NewCashFlowSeries(c.Ticker, periods)
	series.Currency = c.Currency
	return series, nil
}

func (s *Static) Profile(_ context.Context, ticker string) (models.CompanyProfile, error) {
	c, err := s.lookup(ticker)
	if err != nil {
		return models.CompanyProfile{}, err
	}
	return models.CompanyProfile{
		Ticker:            normalize(c.Ticker),
		CompanyName:       c.CompanyName,
		Currency:          c.Currency,
		SharesOutstanding: c.SharesOutstanding,
		Beta:              c.Beta,
		TotalDebt:         c.TotalDebt,
		TotalCash:         c.TotalCash,
	}, nil
}

func (s *Static) Price(_ context.Context, ticker string) (models.Quote, error) {
	c, err := s.lookup(ticker)
	if err != nil {
		return models.UnavailableQuote(err.Error()), err
	}
	if c.Price == nil {
		err := fmt.Errorf("%s: no price in statements file: %w", normalize(ticker), ErrTickerNotFound)
		return models.UnavailableQuote(err.Error()), err
	}
	return models.Quote{Available: true, Value: *c.Price, Currency: c.Currency, AsOf: time.Now().UTC()}, nil
}
