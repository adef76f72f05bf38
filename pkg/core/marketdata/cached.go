package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"fcf_valuation/pkg/models"
)

const (
	DefaultStatementTTL = 24 * time.Hour
	DefaultPriceTTL     = time.Minute
)

// CachedProvider wraps an upstream Provider with a process-local cache in
// front of an optional durable SnapshotStore.
//
// Statements: memory -> store (if younger than statementTTL) -> upstream.
// Prices are only cached in memory.
type CachedProvider struct {
	upstream     Provider
	store        SnapshotStore
	memory       *cache.Cache
	statementTTL time.Duration
	priceTTL     time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// CacheOption configures a CachedProvider.
type CacheOption func(*CachedProvider)

// WithSnapshotStore adds a durable second level.
func WithSnapshotStore(store SnapshotStore) CacheOption {
	return func(c *CachedProvider) { c.store = store }
}

// WithTTL sets the statement and price lifetimes.
func WithTTL(statements, prices time.Duration) CacheOption {
	return func(c *CachedProvider) {
		if statements > 0 {
			c.statementTTL = statements
		}
		if prices > 0 {
			c.priceTTL = prices
		}
	}
}

// WithCacheLogger sets a logger.
func WithCacheLogger(logger zerolog.Logger) CacheOption {
	return func(c *CachedProvider) { c.logger = logger }
}

// NewCachedProvider wraps upstream.
func NewCachedProvider(upstream Provider, opts ...CacheOption) *CachedProvider {
	c := &CachedProvider{
		upstream:     upstream,
		statementTTL: DefaultStatementTTL,
		priceTTL:     DefaultPriceTTL,
		logger:       zerolog.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.memory = cache.New(c.statementTTL, 2*c.statementTTL)
	return c
}

func (c *CachedProvider) CashFlows(ctx context.Context, ticker string) (models.CashFlowSeries, error) {
	snap, err := c.snapshot(ctx, ticker)
	if err != nil {
		return models.CashFlowSeries{}, err
	}
	return snap.Series, nil
}

func (c *CachedProvider) Profile(ctx context.Context, ticker string) (models.CompanyProfile, error) {
	snap, err := c.snapshot(ctx, ticker)
	if err != nil {
		return models.CompanyProfile{}, err
	}
	return snap.Profile, nil
}

func (c *CachedProvider) Price(ctx context.Context, ticker string) (models.Quote, error) {
	key := priceKey(ticker)
	if cached, found := c.memory.Get(key); found {
		return cached.(models.Quote), nil
	}
	q, err := c.upstream.Price(ctx, ticker)
	if err != nil {
		return q, err
	}
	c.memory.Set(key, q, c.priceTTL)
	return q, nil
}

// Invalidate drops every cached entry for ticker so the next request refetches.
func (c *CachedProvider) Invalidate(ctx context.Context, ticker string) error {
	c.memory.Delete(snapshotKey(ticker))
	c.memory.Delete(priceKey(ticker))
	if c.store == nil {
		return nil
	}
	if err := c.store.Delete(ctx, normalize(ticker)); err != nil {
		return fmt.Errorf("invalidate %s: %w", normalize(ticker), err)
	}
	return nil
}

func (c *CachedProvider) snapshot(ctx context.Context, ticker string) (*Snapshot, error) {
	key := snapshotKey(ticker)
	if cached, found := c.memory.Get(key); found {
		return cached.(*Snapshot), nil
	}

	if c.store != nil {
		snap, err := c.store.Load(ctx, normalize(ticker))
		if err != nil {
			c.logger.Warn().Err(err).Str("ticker", normalize(ticker)).Msg("snapshot store load failed")
		} else if snap != nil && c.now().Sub(snap.FetchedAt) < c.statementTTL {
			c.logger.Debug().Str("ticker", normalize(ticker)).Msg("snapshot store hit")
			c.memory.Set(key, snap, c.statementTTL-c.now().Sub(snap.FetchedAt))
			return snap, nil
		}
	}

	series, err := c.upstream.CashFlows(ctx, ticker)
	if err != nil {
		return nil, err
	}
	profile, err := c.upstream.Profile(ctx, ticker)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Ticker: normalize(ticker), Series: series, Profile: profile, FetchedAt: c.now().UTC()}

	if c.store != nil {
		if err := c.store.Save(ctx, *snap); err != nil {
			c.logger.Warn().Err(err).Str("ticker", normalize(ticker)).Msg("snapshot store save failed")
		}
	}
	c.memory.Set(key, snap, cache.DefaultExpiration)
	return snap, nil
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func snapshotKey(ticker string) string { return "statements:" + normalize(ticker) }
func priceKey(ticker string) string    { return "price:" + normalize(ticker) }
