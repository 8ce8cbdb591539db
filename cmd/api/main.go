// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"

	"placemap/internal/adapter/airtable"
	"placemap/internal/adapter/storage"
	"placemap/internal/config"
	"placemap/internal/domain/geo"
	"placemap/internal/domain/place"
	"placemap/internal/logger"
	"placemap/internal/schema"
	"placemap/internal/server"
	"placemap/internal/service/loader"
	"placemap/internal/service/notify"
	"placemap/internal/service/view"
)

func main() {
	// Load configuration; missing source references are fatal
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	appLog := logger.New()

	// Field schemas, with optional per-deployment overrides
	placesSchema, eventsSchema, err := schema.LoadFile(cfg.Map.SchemaFile)
	if err != nil {
		log.Fatalf("Failed to load field schema: %v", err)
	}

	// Initialize the row source
	source, closeSource, err := initSource(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize row source: %v", err)
	}
	defer closeSource()

	// Refresh notifications: NATS when configured, in-process otherwise
	notifier, closeNotifier := initNotifier(cfg.NATS)
	defer closeNotifier()

	// Initialize the snapshot loader
	snapshotLoader := loader.New(
		source,
		placesSchema,
		eventsSchema,
		loader.Config{
			PlacesTable: placesTableRef(cfg),
			EventsTable: eventsTableRef(cfg),
			TTL:         cfg.Map.CacheTTL,
		},
		appLog,
		notifier,
	)

	// Warm the cache once at startup so the first client sees data
	if _, err := snapshotLoader.Refresh(ctx, cfg.Map.DefaultWindowDays); err != nil {
		appLog.Warn("Initial snapshot load failed, serving once a retry succeeds: %v", err)
	}

	reducer := view.New(geo.Point{Lat: cfg.Map.CenterLat, Lon: cfg.Map.CenterLon})

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, cfg.Map, snapshotLoader, reducer, notifier)

	// Start HTTP server
	go func() {
		log.Printf("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Println("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}

// initSource builds the configured row-source backend
func initSource(ctx context.Context, cfg config.Config) (place.RowSource, func(), error) {
	switch cfg.Source.Driver {
	case config.DriverAirtable:
		client := airtable.NewClient(
			cfg.Airtable.APIKey,
			cfg.Airtable.BaseID,
			cfg.Airtable.Endpoint,
			cfg.Airtable.Timeout,
		)
		return client, func() {}, nil

	case config.DriverPostgres:
		db, err := initDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRowStore(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown source driver %q", cfg.Source.Driver)
	}
}

func placesTableRef(cfg config.Config) string {
	if cfg.Source.Driver == config.DriverPostgres {
		return cfg.Database.PlacesTable
	}
	return cfg.Airtable.PlacesTableID
}

func eventsTableRef(cfg config.Config) string {
	if cfg.Source.Driver == config.DriverPostgres {
		return cfg.Database.EventsTable
	}
	return cfg.Airtable.EventsTableID
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// initNotifier connects NATS when a URL is configured, degrading to
// in-process notifications on failure
func initNotifier(cfg config.NATSConfig) (notify.Notifier, func()) {
	if cfg.URL == "" {
		return notify.NewLocalNotifier(), func() {}
	}

	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		log.Printf("NATS unavailable, falling back to in-process notifications: %v", err)
		return notify.NewLocalNotifier(), func() {}
	}

	notifier, err := notify.NewNATSNotifier(nc, cfg.RefreshSubject)
	if err != nil {
		log.Printf("NATS subscribe failed, falling back to in-process notifications: %v", err)
		nc.Close()
		return notify.NewLocalNotifier(), func() {}
	}

	return notifier, nc.Close
}
