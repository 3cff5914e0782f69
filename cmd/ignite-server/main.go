// Command ignite-server runs a single Ignite node: the Badger-backed
// metadata store, the cluster plane (gossip, raft, verification RPC)
// and the management API on TCP and a local unix socket.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bradthebeeble/ignite/internal/core/domain"
	"github.com/bradthebeeble/ignite/internal/core/service"
	"github.com/bradthebeeble/ignite/internal/infra/buildinfo"
	"github.com/bradthebeeble/ignite/internal/infra/confloader"
	"github.com/bradthebeeble/ignite/internal/infra/shutdown"
	"github.com/bradthebeeble/ignite/internal/server/clusterserver"
	"github.com/bradthebeeble/ignite/internal/server/config"
	"github.com/bradthebeeble/ignite/internal/server/httpserver"
	"github.com/bradthebeeble/ignite/internal/server/localserver"
	"github.com/bradthebeeble/ignite/internal/storage"
	"github.com/bradthebeeble/ignite/internal/storage/snapshot"
	"github.com/bradthebeeble/ignite/internal/telemetry/logger"
	"github.com/bradthebeeble/ignite/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command line flags
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("ignite-server %s (commit: %s, built: %s)\n",
			buildinfo.Version, buildinfo.Commit, buildinfo.BuildTime)
		return nil
	}

	// Load configuration
	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize logger
	log := initLogger(cfg)

	// The node name may be generated, so verification runs after the
	// logger is up.
	if err := config.EnsureNodeName(cfg, log); err != nil {
		return err
	}
	if err := config.Verify(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Info("starting ignite-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"node", cfg.Node.Name,
		"config", *configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	// SIGHUP re-reads the config file and applies the log level.
	reloader := shutdown.NewReloadHandler(func() {
		fresh, err := loadConfig(*configFile)
		if err != nil {
			log.Error("config reload failed", "error", err)
			return
		}
		logger.SetLevel(fresh.Log.Level)
		log.Info("log level applied", "level", fresh.Log.Level)
	})
	defer reloader.Stop()

	metrics := metric.NewRegistry()

	// Initialize storage engine
	engine, err := initStorage(cfg, log, metrics)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize inspection and registry services
	svcs, err := initServices(cfg, engine, log, metrics)
	if err != nil {
		return fmt.Errorf("init services: %w", err)
	}

	// Start the cluster plane
	clusterCfg, err := config.ToClusterConfig(cfg, log)
	if err != nil {
		return fmt.Errorf("cluster config: %w", err)
	}
	cluster, err := clusterserver.NewServer(clusterCfg, svcs.Inspector)
	if err != nil {
		return fmt.Errorf("create cluster server: %w", err)
	}

	ctx := context.Background()
	if err := cluster.Start(ctx); err != nil {
		return fmt.Errorf("start cluster server: %w", err)
	}
	metrics.Prometheus().MustRegister(metric.NewStatusCollector(cluster))

	// The check coordinator fans out over the cluster RPC plane.
	dispatcher := clusterserver.NewConnectDispatcher(nil, log)
	checkSvc := service.NewCheckService(cluster, svcs.Registry, svcs.Inspector, dispatcher, service.CheckConfig{
		NodeTimeout: cfg.Check.NodeTimeout,
		Logger:      log,
		Metrics:     metrics,
	})

	// Management API over TCP, token-guarded when configured.
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Check:          checkSvc,
		Registry:       svcs.Registry,
		Cluster:        cluster,
		AuthToken:      cfg.HTTP.AuthToken,
		Metrics:        metrics,
		MetricsEnabled: cfg.Metrics.Enabled,
		Logger:         log,
	})
	httpServer := httpserver.New(cfg.HTTP.Listen, router)

	// The unix socket serves the same API without token auth; access is
	// controlled by socket file permissions.
	localRouter := httpserver.NewRouter(&httpserver.RouterConfig{
		Check:          checkSvc,
		Registry:       svcs.Registry,
		Cluster:        cluster,
		Metrics:        metrics,
		MetricsEnabled: cfg.Metrics.Enabled,
		Logger:         log,
	})
	localServer := localserver.New(cfg.Local.SocketPath, localRouter)

	// Setup graceful shutdown
	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	// Register shutdown hooks (reverse order of startup)
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down local API server")
		return localServer.Shutdown(ctx)
	})

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down cluster server")
		return cluster.Stop(ctx)
	})

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down storage engine")
		return engine.Close()
	})

	// Start HTTP server in goroutine
	go func() {
		log.Info("management API listening", "addr", cfg.HTTP.Listen)

		var err error
		if cfg.HTTP.TLS.CertFile != "" && cfg.HTTP.TLS.KeyFile != "" {
			err = httpServer.ListenAndServeTLS(cfg.HTTP.TLS.CertFile, cfg.HTTP.TLS.KeyFile, cfg.HTTP.TLS.ClientCADir)
		} else {
			err = httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	// Start local socket server in goroutine
	go func() {
		log.Info("local API listening", "socket", cfg.Local.SocketPath)

		if err := localServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("local API server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	// Start with defaults
	cfg := config.Default()

	// Create loader with optional config file
	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)

	// Load and unmarshal
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// initLogger builds the structured logger and installs it as the
// process default.
func initLogger(cfg *config.ServerConfig) *slog.Logger {
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	slog.SetDefault(log)
	return log
}

// initStorage opens the Badger metastore and registers its metrics.
func initStorage(cfg *config.ServerConfig, log *slog.Logger, metrics *metric.Registry) (*storage.BadgerEngine, error) {
	engine, err := storage.NewBadgerEngine(storage.DefaultKVConfig(cfg.Storage.Dir), log)
	if err != nil {
		return nil, err
	}
	return engine.RegisterMetrics(metrics.Prometheus()), nil
}

// services holds the node-local services the cluster and API layers
// are built on.
type services struct {
	Inspector *service.InspectorService
	Registry  *service.SnapshotRegistry
}

// initServices initializes the snapshot inspector and the registry.
func initServices(cfg *config.ServerConfig, engine *storage.BadgerEngine, log *slog.Logger, metrics *metric.Registry) (*services, error) {
	inspector, err := snapshot.NewInspector(snapshot.InspectorConfig{
		SnapshotsDir:  cfg.Snapshots.Dir,
		PageSize:      cfg.Storage.PageSize,
		ReadRatePages: cfg.Storage.ReadRatePages,
		NodeID:        domain.NodeID(cfg.Node.Name),
		Logger:        log,
		Metrics:       metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("create inspector: %w", err)
	}

	return &services{
		Inspector: service.NewInspectorService(inspector, log),
		Registry:  service.NewSnapshotRegistry(engine, cfg.Check.HistoryLimit, log),
	}, nil
}
