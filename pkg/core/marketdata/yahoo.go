package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"fcf_valuation/pkg/models"
)

const (
	// DefaultYahooBaseURL is the quote summary host.
	DefaultYahooBaseURL = "https://query2.finance.yahoo.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 4

	quoteSummaryPath = "/v10/finance/quoteSummary/{symbol}"
	userAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// YahooClient reads annual cash-flow statements, key statistics and prices
// from the Yahoo Finance quote summary endpoint.
type YahooClient struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// YahooOption configures the YahooClient.
type YahooOption func(*YahooClient)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) YahooOption {
	return func(y *YahooClient) {
		y.client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) YahooOption {
	return func(y *YahooClient) {
		y.client.SetTimeout(d)
	}
}

// WithLogger sets a logger.
func WithLogger(logger zerolog.Logger) YahooOption {
	return func(y *YahooClient) {
		y.logger = logger
	}
}

// WithRateLimit sets a custom rate limit. Non-positive values disable limiting.
func WithRateLimit(requestsPerSecond int) YahooOption {
	return func(y *YahooClient) {
		if requestsPerSecond <= 0 {
			y.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		y.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewYahooClient creates a client with default timeout and rate limit.
func NewYahooClient(opts ...YahooOption) *YahooClient {
	client := resty.New().
		SetBaseURL(DefaultYahooBaseURL).
		SetTimeout(DefaultTimeout).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": userAgent,
		})

	y := &YahooClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type rawValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt,omitempty"`
}

func (v rawValue) value() float64 {
	if v.Raw == nil {
		return 0
	}
	return *v.Raw
}

type cashFlowStatement struct {
	EndDate                          rawValue `json:"endDate"`
	TotalCashFromOperatingActivities rawValue `json:"totalCashFromOperatingActivities"`
	CapitalExpenditures              rawValue `json:"capitalExpenditures"`
}

type summaryResult struct {
	CashflowStatementHistory *struct {
		CashflowStatements []cashFlowStatement `json:"cashflowStatements"`
	} `json:"cashflowStatementHistory,omitempty"`
	DefaultKeyStatistics *struct {
		SharesOutstanding rawValue `json:"sharesOutstanding"`
		Beta              rawValue `json:"beta"`
	} `json:"defaultKeyStatistics,omitempty"`
	FinancialData *struct {
		TotalDebt         rawValue `json:"totalDebt"`
		TotalCash         rawValue `json:"totalCash"`
		FinancialCurrency string   `json:"financialCurrency"`
	} `json:"financialData,omitempty"`
	SummaryProfile *struct {
		Sector string `json:"sector"`
	} `json:"summaryProfile,omitempty"`
	Price *struct {
		LongName           string   `json:"longName"`
		ShortName          string   `json:"shortName"`
		Currency           string   `json:"currency"`
		RegularMarketPrice rawValue `json:"regularMarketPrice"`
		RegularMarketTime  *int64   `json:"regularMarketTime"`
	} `json:"price,omitempty"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// =============================================================================
// PROVIDER
// =============================================================================

// CashFlows returns the annual free cash flows, FCF = operating cash flow + capex.
func (y *YahooClient) CashFlows(ctx context.Context, ticker string) (models.CashFlowSeries, error) {
	res, err := y.quoteSummary(ctx, ticker, "cashflowStatementHistory", "financialData")
	if err != nil {
		return models.CashFlowSeries{}, err
	}
	if res.CashflowStatementHistory == nil {
		return models.CashFlowSeries{}, fmt.Errorf("%s: no cash flow statements: %w", ticker, ErrTickerNotFound)
	}

	periods := make([]models.CashFlowPeriod, 0, len(res.CashflowStatementHistory.CashflowStatements))
	for _, st := range res.CashflowStatementHistory.CashflowStatements {
		// A period missing either component has no free cash flow.
		if st.EndDate.Raw == nil || st.TotalCashFromOperatingActivities.Raw == nil || st.CapitalExpenditures.Raw == nil {
			continue
		}
		end := time.Unix(int64(*st.EndDate.Raw), 0).UTC()
		periods = append(periods, models.NewCashFlowPeriod(end,
			*st.TotalCashFromOperatingActivities.Raw, *st.CapitalExpenditures.Raw))
	}

	series := models.NewCashFlowSeries(ticker, periods)
	if res.FinancialData != nil {
		series.Currency = res.FinancialData.FinancialCurrency
	}
	y.logger.Debug().Str("ticker", series.Ticker).Int("periods", series.Len()).Msg("fetched cash flow statements")
	return series, nil
}

// Profile returns shares outstanding, debt, cash, beta, sector and name.
func (y *YahooClient) Profile(ctx context.Context, ticker string) (models.CompanyProfile, error) {
	res, err := y.quoteSummary(ctx, ticker, "defaultKeyStatistics", "financialData", "summaryProfile", "price")
	if err != nil {
		return models.CompanyProfile{}, err
	}

	p := models.CompanyProfile{Ticker: strings.ToUpper(ticker)}
	if ks := res.DefaultKeyStatistics; ks != nil {
		p.SharesOutstanding = int64(ks.SharesOutstanding.value())
		p.Beta = ks.Beta.value()
	}
	if fd := res.FinancialData; fd != nil {
		p.TotalDebt = fd.TotalDebt.value()
		p.TotalCash = fd.TotalCash.value()
	}
	if sp := res.SummaryProfile; sp != nil {
		p.Sector = sp.Sector
	}
	if pr := res.Price; pr != nil {
		p.CompanyName = pr.LongName
		if p.CompanyName == "" {
			p.CompanyName = pr.ShortName
		}
		p.Currency = pr.Currency
	}
	return p, nil
}

// Price returns the regular market price.
func (y *YahooClient) Price(ctx context.Context, ticker string) (models.Quote, error) {
	res, err := y.quoteSummary(ctx, ticker, "price")
	if err != nil {
		return models.UnavailableQuote(err.Error()), err
	}
	if res.Price == nil || res.Price.RegularMarketPrice.Raw == nil {
		err := fmt.Errorf("%s: no market price: %w", ticker, ErrTickerNotFound)
		return models.UnavailableQuote(err.Error()), err
	}

	q := models.Quote{
		Available: true,
		Value:     *res.Price.RegularMarketPrice.Raw,
		Currency:  res.Price.Currency,
		AsOf:      time.Now().UTC(),
	}
	if res.Price.RegularMarketTime != nil {
		q.AsOf = time.Unix(*res.Price.RegularMarketTime, 0).UTC()
	}
	return q, nil
}

func (y *YahooClient) quoteSummary(ctx context.Context, ticker string, modules ...string) (*summaryResult, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	var body quoteSummaryResponse
	resp, err := y.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParam("modules", strings.Join(modules, ",")).
		SetResult(&body).
		SetError(&body).
		Get(quoteSummaryPath)
	if err != nil {
		return nil, fmt.Errorf("quote summary request for %s: %w", symbol, err)
	}

	y.logger.Debug().
		Str("symbol", symbol).
		Strs("modules", modules).
		Int("status", resp.StatusCode()).
		Msg("Yahoo quote summary request")

	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", symbol, ErrTickerNotFound)
	}
	if !resp.IsSuccess() {
		msg := resp.Status()
		if e := body.QuoteSummary.Error; e != nil {
			msg = e.Description
		}
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: msg, Endpoint: quoteSummaryPath}
	}
	if e := body.QuoteSummary.Error; e != nil {
		return nil, fmt.Errorf("%s: %s: %w", symbol, e.Description, ErrTickerNotFound)
	}
	if len(body.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%s: empty result: %w", symbol, ErrTickerNotFound)
	}
	return &body.QuoteSummary.Result[0], nil
}
