// Package app assembles the market-data stack and valuation service from config.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"fcf_valuation/pkg/core/config"
	"fcf_valuation/pkg/core/marketdata"
	"fcf_valuation/pkg/core/store"
	"fcf_valuation/pkg/core/valuation"
)

// Stack is a ready-to-use valuation service and what it was built from.
type Stack struct {
	Service  *valuation.Service
	Provider marketdata.Provider
	Source   string
	close    func()
}

// Close releases the database pool when one was opened.
func (s *Stack) Close() {
	if s.close != nil {
		s.close()
	}
}

// Build picks the statement source: an offline statements file when configured,
// otherwise Yahoo behind the memory cache and a durable snapshot cache
// (Postgres when DATABASE_URL is set, files otherwise).
func Build(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Stack, error) {
	stack := &Stack{}

	if cfg.MarketData.Statements != "" {
		static, err := marketdata.LoadStatic(cfg.MarketData.Statements)
		if err != nil {
			return nil, err
		}
		stack.Provider = static
		stack.Source = "file:" + cfg.MarketData.Statements
		stack.Service = valuation.NewService(static, logger, cfg.Batch.Concurrency, valuation.WithCapitalMarket(cfg.Capital))
		logger.Info().Str("source", stack.Source).Msg("using offline statements")
		return stack, nil
	}

	yahoo := marketdata.NewYahooClient(
		marketdata.WithBaseURL(cfg.MarketData.BaseURL),
		marketdata.WithTimeout(cfg.MarketData.Timeout),
		marketdata.WithRateLimit(cfg.MarketData.RateLimit),
		marketdata.WithLogger(logger),
	)

	var snapshots *store.SnapshotCache
	var err error
	if cfg.Cache.DatabaseURL != "" {
		if err := store.InitDB(ctx, cfg.Cache.DatabaseURL); err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		stack.close = store.Close
		snapshots, err = store.NewSnapshotCache(store.GetPool(), "")
		logger.Info().Msg("statement cache: postgres")
	} else {
		snapshots, err = store.NewSnapshotCache(nil, cfg.Cache.Dir)
		logger.Info().Str("dir", cfg.Cache.Dir).Msg("statement cache: files")
	}
	if err != nil {
		stack.Close()
		return nil, err
	}

	cached := marketdata.NewCachedProvider(yahoo,
		marketdata.WithSnapshotStore(snapshots),
		marketdata.WithTTL(cfg.MarketData.CacheTTL, cfg.MarketData.PriceTTL),
		marketdata.WithCacheLogger(logger),
	)
	stack.Provider = cached
	stack.Source = "yahoo:" + cfg.MarketData.BaseURL
	stack.Service = valuation.NewService(cached, logger, cfg.Batch.Concurrency, valuation.WithCapitalMarket(cfg.Capital))
	return stack, nil
}
