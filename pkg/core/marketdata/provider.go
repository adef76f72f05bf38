// Package marketdata supplies the historical cash flows, key statistics and
// prices a valuation consumes. Providers are injected into the valuation
// service so the engine itself never talks to the network.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fcf_valuation/pkg/models"
)

// Provider is the external market-data collaborator.
type Provider interface {
	// CashFlows returns the chronological free-cash-flow history of a ticker.
	CashFlows(ctx context.Context, ticker string) (models.CashFlowSeries, error)
	// Profile returns shares outstanding and the other key statistics.
	Profile(ctx context.Context, ticker string) (models.CompanyProfile, error)
	// Price returns the latest market price. Callers treat failures as
	// "price unavailable" rather than aborting a valuation.
	Price(ctx context.Context, ticker string) (models.Quote, error)
}

// ErrTickerNotFound is returned when the upstream source has no data for a symbol.
var ErrTickerNotFound = errors.New("ticker not found")

// APIError is a non-success response from an upstream data source.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market data API error (status %d) at %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

// Snapshot is a fetched statement set persisted between runs.
type Snapshot struct {
	Ticker    string                `json:"ticker"`
	Series    models.CashFlowSeries `json:"series"`
	Profile   models.CompanyProfile `json:"profile"`
	FetchedAt time.Time             `json:"fetched_at"`
}

// SnapshotStore persists snapshots. Load returns (nil, nil) on a miss.
type SnapshotStore interface {
	Load(ctx context.Context, ticker string) (*Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Delete(ctx context.Context, ticker string) error
}
