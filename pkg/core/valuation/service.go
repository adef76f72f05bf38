package valuation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fcf_valuation/pkg/core/assumption"
	"fcf_valuation/pkg/core/marketdata"
	"fcf_valuation/pkg/models"
)

// DefaultConcurrency bounds how many tickers ValueMany fetches at once.
const DefaultConcurrency = 4

// Report is a Result plus the market context it was produced in.
type Report struct {
	ID      string
	Ticker  string
	Profile models.CompanyProfile
	Result  *Result
	Price   models.Quote
	Upside  *float64

	// CostOfCapital is a CAPM reference rate; nil when market inputs or beta are missing.
	CostOfCapital *WACCResult
	GeneratedAt   time.Time
}

// BatchItem is one ticker's outcome in a batch run; exactly one of Report and Err is set.
type BatchItem struct {
	Ticker string
	Report *Report
	Err    error
}

// Service resolves tickers through a market-data provider and values them.
type Service struct {
	provider    marketdata.Provider
	logger      zerolog.Logger
	concurrency int
	market      CapitalMarket
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCapitalMarket enables the reference cost of capital on reports.
func WithCapitalMarket(m CapitalMarket) ServiceOption {
	return func(s *Service) { s.market = m }
}

// NewService creates a Service. A concurrency below 1 uses DefaultConcurrency.
func NewService(provider marketdata.Provider, logger zerolog.Logger, concurrency int, opts ...ServiceOption) *Service {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	s := &Service{provider: provider, logger: logger, concurrency: concurrency}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Value fetches statements and shares for ticker, runs CalculateDCF and
// attaches the current price. A missing price never fails the call.
func (s *Service) Value(ctx context.Context, ticker string, set assumption.Set) (*Report, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}

	series, err := s.provider.CashFlows(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetch cash flows for %s: %w", ticker, err)
	}
	profile, err := s.provider.Profile(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetch profile for %s: %w", ticker, err)
	}

	result, err := CalculateDCF(DCFInput{Series: series, SharesOutstanding: profile.SharesOutstanding}, set)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("ticker", ticker).
		Int("window_years", result.HistoricalWindow().Years).
		Float64("historical_cagr", result.HistoricalCAGR()).
		Float64("initial_growth", result.InitialGrowthUsed()).
		Float64("reduced_growth", result.ReducedGrowthUsed()).
		Float64("per_share", result.IntrinsicValuePerShare()).
		Msg("valuation computed")

	quote := s.price(ctx, ticker)

	report := &Report{
		ID:            uuid.NewString(),
		Ticker:        ticker,
		Profile:       profile,
		Result:        result,
		Price:         quote,
		Upside:        Upside(result.IntrinsicValuePerShare(), quote),
		CostOfCapital: ReferenceWACC(s.market, profile, quote),
		GeneratedAt:   time.Now().UTC(),
	}
	s.logger.Info().
		Str("id", report.ID).
		Str("ticker", ticker).
		Float64("per_share", result.IntrinsicValuePerShare()).
		Bool("price_available", quote.Available).
		Msg("valuation report ready")
	return report, nil
}

// ValueMany values every ticker independently with bounded concurrency.
// Items come back in input order; one ticker's failure never affects another.
func (s *Service) ValueMany(ctx context.Context, tickers []string, set assumption.Set) []BatchItem {
	items := make([]BatchItem, len(tickers))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, t := range tickers {
		wg.Add(1)
		go func(i int, t string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				items[i] = BatchItem{Ticker: t, Err: ctx.Err()}
				return
			}
			report, err := s.Value(ctx, t, set)
			if err != nil {
				s.logger.Warn().Err(err).Str("ticker", t).Msg("batch valuation failed")
			}
			items[i] = BatchItem{Ticker: t, Report: report, Err: err}
		}(i, t)
	}
	wg.Wait()
	return items
}

// Invalidate clears cached statements when the provider caches.
func (s *Service) Invalidate(ctx context.Context, ticker string) (bool, error) {
	inv, ok := s.provider.(interface {
		Invalidate(context.Context, string) error
	})
	if !ok {
		return false, nil
	}
	return true, inv.Invalidate(ctx, ticker)
}

func (s *Service) price(ctx context.Context, ticker string) models.Quote {
	q, err := s.provider.Price(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("current price unavailable")
		if q.Reason == "" {
			q = models.UnavailableQuote(err.Error())
		}
		q.Available = false
		return q
	}
	if !q.Available || q.Value <= 0 {
		if q.Reason == "" {
			q.Reason = "no positive market price"
		}
		q.Available = false
	}
	return q
}

// Upside is perShare/price - 1, or nil when no usable price exists.
func Upside(perShare float64, q models.Quote) *float64 {
	if !q.Available || q.Value <= 0 {
		return nil
	}
	u := perShare/q.Value - 1
	return &u
}
