package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360studio/semrepo/config"
	"github.com/c360studio/semrepo/convert"
	"github.com/c360studio/semrepo/identifier"
	"github.com/c360studio/semrepo/rdf"
	"github.com/c360studio/semrepo/repository"
	"github.com/c360studio/semrepo/repository/kv"
	"github.com/c360studio/semrepo/repository/sqlite"
	"github.com/c360studio/semstreams/natsclient"
)

// app holds what every subcommand needs: config, logger, the open
// repository and the transform over it.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	session   repository.Session
	ids       *identifier.PathConverter
	transform *convert.PropertyToTriple
	metrics   *prometheus.Registry

	nats    *natsclient.Client
	closers []func() error
}

func loadConfig(flags *globalFlags, logger *slog.Logger) (*config.Config, error) {
	loader := config.NewLoader(logger)
	if flags.configPath != "" {
		return loader.LoadFile(flags.configPath)
	}
	return loader.Load()
}

// newApp loads configuration and opens the configured repository.
func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	logger := newLogger(flags.logLevel)
	cfg, err := loadConfig(flags, logger)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, metrics: prometheus.NewRegistry()}
	if err := a.openRepository(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildTransform(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openRepository(ctx context.Context) error {
	repoCfg := a.cfg.Repository
	switch repoCfg.Backend {
	case config.BackendSQLite:
		store, err := sqlite.New(repoCfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite repository: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		a.session = store
		a.logger.Debug("Opened sqlite repository", "path", repoCfg.SQLitePath)

	case config.BackendKV:
		nc, err := a.connectNATS(ctx)
		if err != nil {
			return err
		}
		js, err := nc.JetStream()
		if err != nil {
			return fmt.Errorf("get JetStream: %w", err)
		}
		store, err := kv.NewStore(ctx, js, repoCfg.Bucket)
		if err != nil {
			return fmt.Errorf("open kv repository: %w", err)
		}
		a.session = store
		a.logger.Debug("Opened kv repository", "bucket", repoCfg.Bucket)

	default:
		store, err := loadSeed(repoCfg.Seed)
		if err != nil {
			return err
		}
		a.session = store
		a.logger.Debug("Loaded memory repository", "seed", repoCfg.Seed)
	}
	return nil
}

func loadSeed(path string) (*repository.MemoryStore, error) {
	if path == "" {
		return repository.NewMemoryStore(), nil
	}
	store, err := repository.LoadYAMLFile(path)
	if err != nil {
		return nil, fmt.Errorf("load seed %s: %w", path, err)
	}
	return store, nil
}

func (a *app) buildTransform() error {
	m, err := convert.NewMetrics(a.metrics)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	a.ids = identifier.NewPathConverter(a.cfg.Graph.BaseIRI, a.session)
	a.transform = convert.NewPropertyToTriple(a.session, a.ids,
		convert.WithLogger(a.logger),
		convert.WithMetrics(m),
		convert.WithPropertyConverter(a.propertyConverter()))
	return nil
}

func (a *app) propertyConverter() *convert.PropertyConverter {
	return convert.NewPropertyConverter(a.cfg.Graph.PropertyNamespace, a.prefixes())
}

// prefixes returns the default namespace prefixes overlaid with the
// configured ones.
func (a *app) prefixes() map[string]string {
	prefixes := rdf.DefaultPrefixes()
	maps.Copy(prefixes, a.cfg.Graph.Prefixes)
	return prefixes
}

// rebind swaps the repository session, used when a seed file is reloaded.
// Metrics keep counting across rebinds.
func (a *app) rebind(session repository.Session) error {
	a.session = session
	return a.buildTransform()
}

func (a *app) connectNATS(ctx context.Context) (*natsclient.Client, error) {
	if a.nats != nil {
		return a.nats, nil
	}

	natsURL := a.cfg.NATS.URL
	// Environment variable override takes precedence
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		natsURL = envURL
	}

	a.logger.Info("Connecting to NATS", "url", natsURL)

	client, err := natsclient.NewClient(natsURL,
		natsclient.WithName(a.cfg.NATS.Name),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithCircuitBreakerThreshold(20),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	connCtx, cancel := context.WithTimeout(ctx, a.cfg.NATS.Timeout)
	defer cancel()
	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	a.nats = client
	a.logger.Info("Connected to NATS", "url", natsURL)
	return client, nil
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

Set nats.url in semrepo.yaml or the NATS_URL environment variable
to point to your NATS server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}

// serveMetrics exposes the app's registry at addr until ctx is done.
func (a *app) serveMetrics(ctx context.Context, addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// walkNodes visits start and, when recursive, its subtree.
func (a *app) walkNodes(ctx context.Context, start string, recursive bool, include []string, fn repository.WalkFunc) error {
	node, err := a.session.Node(ctx, start)
	if err != nil {
		return fmt.Errorf("open %s: %w", start, err)
	}
	opts := []repository.WalkOption{repository.WithInclude(include...)}
	if !recursive {
		opts = append(opts, repository.WithMaxDepth(0))
	}
	return repository.Walk(ctx, a.session, node, fn, opts...)
}

// Close releases the repository and the NATS connection.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("Close failed", "error", err)
		}
	}
	if a.nats != nil {
		_ = a.nats.Close(context.Background())
	}
}
