// Package store persists properties, deals, and transaction ledgers behind
// a driver-agnostic interface. Records are stored as JSON payloads keyed by
// identifier; the analysis and KPI engines never touch the store directly.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dealdesk/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = eris.New("store: not found")

// Store is the persistence interface. Every read returns a consistent
// snapshot; transaction listings are date-ordered.
type Store interface {
	// Properties
	SaveProperty(ctx context.Context, p *model.Property) error
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	ListProperties(ctx context.Context, userID string) ([]model.Property, error)

	// Deals
	SaveDeal(ctx context.Context, d model.Deal) error
	GetDeal(ctx context.Context, id string) (model.Deal, error)
	ListDeals(ctx context.Context, userID string) ([]model.Deal, error)

	// Transactions
	AddTransaction(ctx context.Context, tx *model.Transaction) error
	ListTransactions(ctx context.Context, propertyID string) ([]model.Transaction, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
