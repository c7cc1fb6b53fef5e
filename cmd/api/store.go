package main

import (
	"context"
	"fmt"
	"time"

	apphttp "orcamento_backend/internal/http"
	"orcamento_backend/internal/quotes/repository"
	"orcamento_backend/migrations"
	"orcamento_backend/platform/config"
	"orcamento_backend/platform/db"
	"orcamento_backend/platform/logger"
	"orcamento_backend/platform/store/memstore"
	"orcamento_backend/platform/store/pgstore"
	"orcamento_backend/platform/store/reststore"

	"github.com/jackc/pgx/v5/pgxpool"
)

// backend is the opened table store plus its health check and cleanup.
type backend struct {
	tables repository.Tables
	health apphttp.HealthChecker
	close  func()
}

type noopPinger struct{}

func (noopPinger) Ping(context.Context) error { return nil }

func openStore(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (*backend, error) {
	switch cfg.GetStoreDriver() {
	case config.StoreDriverPostgres:
		return openPostgres(ctx, cfg, log)
	case config.StoreDriverPostgREST:
		client := reststore.NewClient(cfg.GetPostgRESTURL(), cfg.GetPostgRESTKey(), cfg.GetStoreTimeout())
		log.Info("postgrest store configured", "url", cfg.GetPostgRESTURL())
		return &backend{
			tables: repository.Tables{
				Quotes:    reststore.NewTable[repository.Quote](client, repository.TableQuotes),
				Clients:   reststore.NewTable[repository.Client](client, repository.TableClients),
				Companies: reststore.NewTable[repository.Company](client, repository.TableCompanies),
			},
			health: client,
			close:  func() {},
		}, nil
	case config.StoreDriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return &backend{
			tables: repository.Tables{
				Quotes:    memstore.NewTable[repository.Quote](memstore.WithUnique("quote_number")),
				Clients:   memstore.NewTable[repository.Client](),
				Companies: memstore.NewTable[repository.Company](),
			},
			health: noopPinger{},
			close:  func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.GetStoreDriver())
	}
}

func openPostgres(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (*backend, error) {
	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		return nil, err
	}
	log.Info("database connection established")

	if cfg.GetMigrationsEnabled() {
		if err := db.RunMigrations(ctx, pool, migrations.FS); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("database migrations complete")
	}

	timeout := cfg.GetStoreTimeout()
	return &backend{
		tables: repository.Tables{
			Quotes:    pgstore.NewTable[repository.Quote](pool, repository.TableQuotes, timeout),
			Clients:   pgstore.NewTable[repository.Client](pool, repository.TableClients, timeout),
			Companies: pgstore.NewTable[repository.Company](pool, repository.TableCompanies, timeout),
		},
		health: pgstore.NewPinger(pool),
		close:  pool.Close,
	}, nil
}
