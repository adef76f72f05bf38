package models

import (
	"sort"
	"strings"
	"time"
)

// CashFlowPeriod is one fiscal period of the cash-flow statement.
// FreeCashFlow = OperatingCashFlow + CapitalExpenditure (capex is reported negative).
type CashFlowPeriod struct {
	EndDate            time.Time `json:"end_date"`
	OperatingCashFlow  float64   `json:"operating_cash_flow"`
	CapitalExpenditure float64   `json:"capital_expenditure"`
	FreeCashFlow       float64   `json:"free_cash_flow"`
}

// NewCashFlowPeriod derives free cash flow from its two components.
// Capex is an outflow and is stored negative whatever sign the source used.
func NewCashFlowPeriod(end time.Time, operating, capex float64) CashFlowPeriod {
	if capex > 0 {
		capex = -capex
	}
	return CashFlowPeriod{
		EndDate:            end,
		OperatingCashFlow:  operating,
		CapitalExpenditure: capex,
		FreeCashFlow:       operating + capex,
	}
}

// CashFlowSeries is a strictly chronological free-cash-flow history for one ticker.
type CashFlowSeries struct {
	Ticker   string           `json:"ticker"`
	Currency string           `json:"currency,omitempty"`
	Periods  []CashFlowPeriod `json:"periods"`
}

// NewCashFlowSeries sorts periods oldest first and drops duplicate end dates,
// keeping the last one supplied.
func NewCashFlowSeries(ticker string, periods []CashFlowPeriod) CashFlowSeries {
	byDate := make(map[time.Time]CashFlowPeriod, len(periods))
	for _, p := range periods {
		byDate[p.EndDate] = p
	}
	sorted := make([]CashFlowPeriod, 0, len(byDate))
	for _, p := range byDate {
		sorted = append(sorted, p)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EndDate.Before(sorted[j].EndDate) })

	return CashFlowSeries{Ticker: strings.ToUpper(ticker), Periods: sorted}
}

// Values returns the free cash flows in chronological order.
func (s CashFlowSeries) Values() []float64 {
	vals := make([]float64, len(s.Periods))
	for i, p := range s.Periods {
		vals[i] = p.FreeCashFlow
	}
	return vals
}

// Len returns the number of periods.
func (s CashFlowSeries) Len() int { return len(s.Periods) }

// CompanyProfile carries the key statistics a valuation needs besides cash flows.
// SharesOutstanding is zero when the data source did not report it.
type CompanyProfile struct {
	Ticker            string  `json:"ticker"`
	CompanyName       string  `json:"company_name,omitempty"`
	Sector            string  `json:"sector,omitempty"`
	Currency          string  `json:"currency,omitempty"`
	SharesOutstanding int64   `json:"shares_outstanding"`
	TotalDebt         float64 `json:"total_debt,omitempty"`
	TotalCash         float64 `json:"total_cash,omitempty"`
	Beta              float64 `json:"beta,omitempty"`
}

// Quote is a best-effort market price. Available is false when the price could
// not be fetched; Value is meaningless in that case.
type Quote struct {
	Available bool      `json:"available"`
	Value     float64   `json:"value,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	AsOf      time.Time `json:"as_of,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// UnavailableQuote marks a price that could not be obtained.
func UnavailableQuote(reason string) Quote {
	return Quote{Available: false, Reason: reason}
}
