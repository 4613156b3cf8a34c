package app

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/domain/discount"
	"github.com/xenking/sales-api/internal/domain/invoice"
	"github.com/xenking/sales-api/internal/domain/order"
	"github.com/xenking/sales-api/internal/seed"
	"github.com/xenking/sales-api/internal/storage/filestore"
	"github.com/xenking/sales-api/internal/storage/memory"
	"github.com/xenking/sales-api/internal/storage/postgres"
	"github.com/xenking/sales-api/pkg/health"
)

// Stores bundles the repositories of one record store backend.
type Stores struct {
	Orders    order.Repository
	Invoices  invoice.Repository
	Discounts discount.Repository
	APIKeys   auth.Repository
	Tx        order.Transactor
	DB        health.Pinger

	close func()
}

// Close releases the backend's connections.
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStores connects the record store selected by cfg.Database.Driver.
func OpenStores(ctx context.Context, lg *zap.Logger, cfg *Config) (*Stores, error) {
	switch cfg.Database.Driver {
	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		return &Stores{
			Orders:    postgres.NewOrderRepository(pool),
			Invoices:  postgres.NewInvoiceRepository(pool),
			Discounts: postgres.NewDiscountRepository(pool),
			APIKeys:   postgres.NewAPIKeyRepository(pool),
			Tx:        postgres.NewTransactor(pool),
			DB:        pool,
			close:     pool.Close,
		}, nil

	case DriverMemory:
		ctx = zctx.Base(ctx, lg)
		store := memory.New()
		n, err := seed.Discounts(ctx, store.Discounts())
		if err != nil {
			return nil, errors.Wrap(err, "seed discounts")
		}
		if key := cfg.Database.SeedAdminKey; key != "" {
			err := seed.APIKeys(ctx, store.APIKeys(), []byte(cfg.APIKeyPepper), seed.Key{
				ID:     "admin",
				Name:   "Bootstrap admin key",
				Raw:    key,
				Scopes: []string{cfg.AdminScope},
			})
			if err != nil {
				return nil, errors.Wrap(err, "seed admin key")
			}
		}
		lg.Warn("Using in-memory store, data is lost on exit", zap.Int("discounts", n))
		return &Stores{
			Orders:    store.Orders(),
			Invoices:  store.Invoices(),
			Discounts: store.Discounts(),
			APIKeys:   store.APIKeys(),
			Tx:        store,
			DB:        store,
		}, nil

	default:
		return nil, errors.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// FileStore is an invoice.FileStore with a health check.
type FileStore interface {
	invoice.FileStore
	io.Closer
	Check(ctx context.Context) error
}

type localStore struct {
	*filestore.Local
}

func (localStore) Close() error { return nil }

// OpenFileStore opens the PDF store selected by cfg.Driver.
func OpenFileStore(ctx context.Context, cfg StorageConfig) (FileStore, error) {
	switch cfg.Driver {
	case StorageLocal:
		l, err := filestore.NewLocal(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return localStore{Local: l}, nil
	case StorageGCS:
		g, err := filestore.NewGCS(ctx, cfg.Bucket, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
