package marketdata

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fcf_valuation/pkg/models"
)

type countingProvider struct {
	Provider
	mu        sync.Mutex
	cashFlows int
	prices    int
	failPrice bool
}

func (c *countingProvider) CashFlows(ctx context.Context, ticker string) (models.CashFlowSeries, error) {
	c.mu.Lock()
	c.cashFlows++
	c.mu.Unlock()
	return c.Provider.CashFlows(ctx, ticker)
}

func (c *countingProvider) Price(ctx context.Context, ticker string) (models.Quote, error) {
	c.mu.Lock()
	c.prices++
	c.mu.Unlock()
	if c.failPrice {
		return models.UnavailableQuote("down"), errors.New("down")
	}
	return c.Provider.Price(ctx, ticker)
}

type memoryStore struct {
	snaps map[string]Snapshot
}

func (m *memoryStore) Load(_ context.Context, ticker string) (*Snapshot, error) {
	s, ok := m.snaps[ticker]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memoryStore) Save(_ context.Context, snap Snapshot) error {
	m.snaps[snap.Ticker] = snap
	return nil
}

func (m *memoryStore) Delete(_ context.Context, ticker string) error {
	delete(m.snaps, ticker)
	return nil
}

func acme() *Static {
	price := 12.5
	return NewStatic(StaticCompany{
		Ticker:            "ACME",
		SharesOutstanding: 1000,
		Price:             &price,
		FreeCashFlows:     []float64{80, 90, 100, 115, 130},
	})
}

func TestCachedProvider_MemoryHit(t *testing.T) {
	up := &countingProvider{Provider: acme()}
	c := NewCachedProvider(up)
	ctx := context.Background()

	s1, err := c.CashFlows(ctx, "acme")
	require.NoError(t, err)
	_, err = c.Profile(ctx, "ACME")
	require.NoError(t, err)
	s2, err := c.CashFlows(ctx, " Acme ")
	require.NoError(t, err)

	assert.Equal(t, 1, up.cashFlows)
	assert.Equal(t, s1.Values(), s2.Values())
}

func TestCachedProvider_StoreHitAndExpiry(t *testing.T) {
	up := &countingProvider{Provider: acme()}
	store := &memoryStore{snaps: map[string]Snapshot{}}
	ctx := context.Background()

	first := NewCachedProvider(up, WithSnapshotStore(store))
	_, err := first.CashFlows(ctx, "ACME")
	require.NoError(t, err)
	require.Contains(t, store.snaps, "ACME")

	// A fresh process reads the durable copy.
	second := NewCachedProvider(up, WithSnapshotStore(store))
	_, err = second.CashFlows(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, 1, up.cashFlows)

	// Stale copies are refetched.
	third := NewCachedProvider(up, WithSnapshotStore(store))
	third.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = third.CashFlows(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, 2, up.cashFlows)
}

func TestCachedProvider_Invalidate(t *testing.T) {
	up := &countingProvider{Provider: acme()}
	store := &memoryStore{snaps: map[string]Snapshot{}}
	c := NewCachedProvider(up, WithSnapshotStore(store))
	ctx := context.Background()

	_, err := c.CashFlows(ctx, "ACME")
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "acme"))
	assert.NotContains(t, store.snaps, "ACME")

	_, err = c.CashFlows(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, 2, up.cashFlows)
}

func TestCachedProvider_PriceFailuresNotCached(t *testing.T) {
	up := &countingProvider{Provider: acme(), failPrice: true}
	c := NewCachedProvider(up)
	ctx := context.Background()

	_, err := c.Price(ctx, "ACME")
	require.Error(t, err)
	up.failPrice = false

	q, err := c.Price(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, 12.5, q.Value)
	_, _ = c.Price(ctx, "ACME")
	assert.Equal(t, 2, up.prices)
}

func TestCachedProvider_UpstreamErrorPropagates(t *testing.T) {
	c := NewCachedProvider(acme())
	_, err := c.CashFlows(context.Background(), "MISSING")
	assert.True(t, errors.Is(err, ErrTickerNotFound))
}
