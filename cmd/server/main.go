// Command server runs the field schema and compliance API.
//
// main wires dependencies from configuration and keeps the server lifecycle
// small. Business logic lives in the internal service packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"siteguard/internal/compliance"
	compliancehandler "siteguard/internal/compliance/handler"
	compliancemetrics "siteguard/internal/compliance/metrics"
	personstore "siteguard/internal/person/store"
	"siteguard/internal/platform/config"
	"siteguard/internal/platform/httpserver"
	"siteguard/internal/platform/logger"
	"siteguard/internal/platform/metrics"
	platformredis "siteguard/internal/platform/redis"
	schemacache "siteguard/internal/schema/cache"
	schemahandler "siteguard/internal/schema/handler"
	schemametrics "siteguard/internal/schema/metrics"
	schemaservice "siteguard/internal/schema/service"
	schemastore "siteguard/internal/schema/store"
	httptransport "siteguard/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log.Level)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: PostgreSQL when configured, in-memory otherwise.
	var (
		db          *sql.DB
		fieldStore  schemaservice.FieldStore
		personStore compliance.PersonStore
	)
	if cfg.Postgres.URL != "" {
		var err error
		db, err = openPostgres(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()
		fieldStore = schemastore.NewPostgres(db)
		personStore = personstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		fieldStore = schemastore.NewInMemory()
		personStore = personstore.NewInMemory()
		log.Info("using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	schemaOpts := []schemaservice.Option{
		schemaservice.WithLogger(log),
		schemaservice.WithMetrics(schemametrics.New()),
	}
	if redisClient != nil {
		cache := schemacache.NewRedis(redisClient.Client,
			schemacache.WithLogger(log),
			schemacache.WithTTL(cfg.Schema.CacheTTL))
		schemaOpts = append(schemaOpts, schemaservice.WithCache(cache))
		log.Info("definitions cache enabled", "ttl", cfg.Schema.CacheTTL)
	}
	schemaSvc := schemaservice.New(fieldStore, schemaOpts...)

	if cfg.Schema.SeedPath != "" {
		defs, err := schemastore.LoadSeed(cfg.Schema.SeedPath)
		if err != nil {
			return err
		}
		if err := schemastore.Seed(ctx, fieldStore, defs); err != nil {
			return err
		}
		log.Info("system fields seeded", "path", cfg.Schema.SeedPath, "count", len(defs))
	}

	complianceSvc := compliance.New(schemaSvc, personStore,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliancemetrics.New()))

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:     log,
		Metrics:    metrics.New(),
		Schema:     schemahandler.New(schemaSvc, log),
		Compliance: compliancehandler.New(complianceSvc, log),
		AdminToken: cfg.Server.AdminToken,
		DB:         db,
		Redis:      redisClient,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openPostgres(ctx context.Context, cfg config.Postgres) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	// Single-binary deployments install the DDL at boot; both statements are
	// idempotent.
	for _, ddl := range []string{schemastore.Schema, personstore.Schema} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
