package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/showcase/internal/config"
	"github.com/fyrsmithlabs/showcase/internal/filters"
	"github.com/fyrsmithlabs/showcase/internal/logging"
	"github.com/fyrsmithlabs/showcase/internal/project"
	"github.com/fyrsmithlabs/showcase/internal/results"
	"github.com/fyrsmithlabs/showcase/internal/telemetry"
)

// app holds the wired components shared by serve and browse.
type app struct {
	cfg        *config.Config
	logger     *logging.Logger
	telemetry  *telemetry.Telemetry
	dims       project.Dimensions
	catalog    string
	manager    *project.Manager
	filters    *filters.Store
	memory     *results.MemorySink
	pipeline   *results.Pipeline
	watcher    *results.Watcher
	catalogMon *project.CatalogWatcher
	natsConn   *nats.Conn
}

type appOptions struct {
	// quiet discards log output, used when a TUI owns the terminal.
	quiet bool
	// catalogPath replaces catalog.path when set.
	catalogPath string
	// oneShot skips the NATS publisher and the catalog monitor.
	oneShot bool
}

// newApp loads configuration and the catalog, then wires the pipeline,
// the filter store and the sinks. Nothing runs until start is called.
func newApp(ctx context.Context, configPath string, opts appOptions) (*app, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.catalogPath != "" {
		cfg.Catalog.Path = opts.catalogPath
	}

	tel, err := telemetry.New(ctx, &cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logger, err := initLogger(cfg, tel, opts.quiet)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, issue := range tel.Issues() {
		logger.Warn(ctx, "telemetry degraded", zap.Error(issue))
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		telemetry: tel,
		manager:   project.NewManager(),
		filters:   filters.NewStore(),
		memory:    results.NewMemorySink(),
	}

	if err := a.init(ctx, opts.oneShot); err != nil {
		a.close(ctx)
		return nil, err
	}
	return a, nil
}

func initLogger(cfg *config.Config, tel *telemetry.Telemetry, quiet bool) (*logging.Logger, error) {
	if quiet {
		return logging.NewNop(), nil
	}
	lc, err := cfg.LoggerConfig()
	if err != nil {
		return nil, err
	}
	if lc.Output.OTEL {
		return logging.NewLogger(lc, tel.LoggerProvider())
	}
	return logging.NewLogger(lc, nil)
}

func (a *app) init(ctx context.Context, oneShot bool) error {
	dims, err := project.ParseDimensions(a.cfg.Pipeline.Dimensions)
	if err != nil {
		return err
	}
	a.dims = dims

	mode, err := results.ParseBucketMode(a.cfg.Pipeline.Bucketing)
	if err != nil {
		return err
	}

	a.catalog, err = config.ExpandHome(a.cfg.Catalog.Path)
	if err != nil {
		return err
	}
	projects, err := project.LoadCatalog(a.catalog, dims)
	if err != nil {
		return err
	}
	if err := a.manager.Replace(ctx, projects); err != nil {
		return fmt.Errorf("failed to index catalog: %w", err)
	}
	a.logger.Info(ctx, "catalog loaded",
		zap.String("path", a.catalog),
		zap.Int("projects", len(projects)))

	sink := results.MultiSink{a.memory}
	if a.cfg.NATS.Enabled && !oneShot {
		publisher, err := a.connectNATS(ctx)
		if err != nil {
			return err
		}
		sink = append(sink, publisher)
	}

	metrics := results.NewMetrics()
	a.pipeline = results.NewPipeline(results.Options{
		Dimensions:   dims,
		PriorityTags: a.cfg.Pipeline.PriorityTags,
		Bucketing:    mode,
	}, a.logger, metrics)

	a.watcher = results.NewWatcher(a.pipeline, a.manager, a.filters, sink,
		results.WithDebounce(a.cfg.Pipeline.Debounce.Duration()),
		results.WithLogger(a.logger),
		results.WithMetrics(metrics),
	)

	if a.cfg.Catalog.Watch && !oneShot {
		a.catalogMon, err = project.NewCatalogWatcher(a.catalog, dims, a.manager, a.logger)
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *app) connectNATS(ctx context.Context) (*results.NATSSink, error) {
	opts := []nats.Option{
		nats.Name("showcase"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1 * time.Second),
	}
	if a.cfg.NATS.Token.IsSet() {
		opts = append(opts, nats.Token(a.cfg.NATS.Token.Value()))
	}

	nc, err := nats.Connect(a.cfg.NATS.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", a.cfg.NATS.URL, err)
	}
	a.natsConn = nc

	publisher, err := results.NewNATSSink(nc, a.cfg.NATS.Subject)
	if err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "publishing results to NATS",
		zap.String("url", a.cfg.NATS.URL),
		zap.String("subject", publisher.Subject()))
	return publisher, nil
}

// start subscribes the watcher, publishes the first result list and starts
// the catalog monitor when enabled.
func (a *app) start(ctx context.Context) error {
	a.watcher.Start(ctx)
	if a.catalogMon != nil {
		if err := a.catalogMon.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// close stops background work and flushes telemetry. It is safe to call on
// a partially initialized app.
func (a *app) close(ctx context.Context) {
	if a.catalogMon != nil {
		a.catalogMon.Stop()
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			a.logger.Warn(ctx, "failed to drain NATS connection", zap.Error(err))
		}
	}
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil {
			a.logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync() // Best-effort sync
}
