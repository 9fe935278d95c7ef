// Package app wires the pairbench service together and manages its
// lifecycle.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	httpapi "github.com/pairbench/pairbench/internal/api/http"
	"github.com/pairbench/pairbench/internal/cache"
	"github.com/pairbench/pairbench/internal/config"
	"github.com/pairbench/pairbench/internal/observability"
	"github.com/pairbench/pairbench/internal/probe"
	"github.com/pairbench/pairbench/internal/runner"
	"github.com/pairbench/pairbench/internal/server"
	"github.com/pairbench/pairbench/internal/storage"
	"github.com/pairbench/pairbench/internal/store"
	"github.com/pairbench/pairbench/internal/workload"
)

// App manages the pairbench service lifecycle.
type App struct {
	cfg *config.Config

	records   *store.SQLiteStore
	runner    *runner.Runner
	lifecycle *server.Lifecycle
	httpSrv   *http.Server

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates an App with the given configuration.
func New(cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return &App{cfg: cfg}, nil
}

// Start initializes the record store, workload registry and HTTP server.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app is already running")
	}
	a.running = true
	a.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.lifecycle = server.NewLifecycle(server.DefaultDrainTimeout)

	if err := a.initStore(ctx); err != nil {
		a.cleanup()
		return fmt.Errorf("failed to initialize record store: %w", err)
	}

	a.initRunner()
	a.startHTTPServer()

	log.Printf("pairbench started on %s", a.cfg.HTTP.Addr)
	return nil
}

// initStore opens the SQLite record store and populates it, either from a
// fixture or from the deterministic seeder.
func (a *App) initStore(ctx context.Context) error {
	path := a.cfg.Store.Path
	if a.cfg.Store.InMemory || path == "" {
		path = ":memory:"
	}

	records, err := store.OpenSQLite(path)
	if err != nil {
		return err
	}
	a.records = records
	a.lifecycle.RegisterCloser(records)

	if a.cfg.Fixture.Source == "none" {
		seedCfg := store.SeedConfig{Customers: a.cfg.Seed.Customers}
		if err := store.Seed(ctx, records, seedCfg); err != nil {
			return err
		}
		log.Printf("Record store seeded: %d customers", a.cfg.Seed.Customers)
		return nil
	}

	src, err := a.fixtureSource(ctx)
	if err != nil {
		return err
	}
	if err := store.ImportFixture(ctx, records, src, a.cfg.Fixture.Key); err != nil {
		return err
	}
	log.Printf("Record store loaded from fixture: source=%s key=%s",
		a.cfg.Fixture.Source, a.cfg.Fixture.Key)
	return nil
}

// fixtureSource builds the fixture storage backend.
func (a *App) fixtureSource(ctx context.Context) (storage.FixtureStorage, error) {
	switch a.cfg.Fixture.Source {
	case "local":
		return storage.NewLocalStorage(a.cfg.Fixture.Path)
	case "s3":
		s3Cfg := storage.DefaultS3Config()
		if a.cfg.Fixture.S3.Region != "" {
			s3Cfg.Region = a.cfg.Fixture.S3.Region
		}
		if a.cfg.Fixture.S3.Endpoint != "" {
			s3Cfg.Endpoint = a.cfg.Fixture.S3.Endpoint
			s3Cfg.UsePathStyle = true
		}
		return storage.NewS3Storage(ctx, a.cfg.Fixture.S3.Bucket, s3Cfg)
	default:
		return nil, fmt.Errorf("unsupported fixture source: %s", a.cfg.Fixture.Source)
	}
}

// initRunner assembles the workload registry and comparison runner.
func (a *App) initRunner() {
	customerCache := cache.NewCustomerCache(cache.DefaultShardCount)

	registry := workload.NewRegistry(
		workload.NewDataAccessPair(a.records),
		workload.NewMemoryPair(),
		workload.NewLookupPair(),
		workload.NewIterationPair(),
		workload.NewCachePair(a.records, customerCache),
		workload.NewAggregationPair(a.cfg.Runner.Workers, a.cfg.Runner.Chunks),
	)

	memProbe := &probe.MemoryProbe{
		ReclaimHint: a.cfg.Probe.ReclaimHint,
		SettleDelay: a.cfg.Probe.SettleDelay,
	}

	a.runner = runner.New(registry, memProbe, observability.NewRunStats())
	log.Printf("Workload registry initialized: %v", a.runner.Workloads())
}

// startHTTPServer builds the route table and serves it behind the
// lifecycle's in-flight tracking.
func (a *App) startHTTPServer() {
	handler := a.lifecycle.TrackingMiddleware(httpapi.NewServeMux(a.runner))

	a.httpSrv = &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.lifecycle.Serve(a.httpSrv); err != nil {
			log.Printf("HTTP server error: %v", err)
		}
	}()
}

// Runner exposes the comparison runner, mainly for tests.
func (a *App) Runner() *runner.Runner {
	return a.runner
}

// WaitForShutdown blocks until a shutdown signal arrives, then stops the
// service gracefully.
func (a *App) WaitForShutdown(ctx context.Context) error {
	return a.lifecycle.WaitForSignal(ctx)
}

// Stop gracefully stops the service and releases resources.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	a.mu.Unlock()

	log.Printf("Initiating graceful shutdown...")

	if a.cancel != nil {
		a.cancel()
	}

	err := a.lifecycle.Stop(ctx)
	a.wg.Wait()

	log.Printf("pairbench stopped")
	return err
}

// cleanup releases resources after a failed start.
func (a *App) cleanup() {
	if a.records != nil {
		a.records.Close()
	}
}
