package shopkeep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aretw0/shopkeep/internal/config"
	"github.com/aretw0/shopkeep/internal/logging"
	"github.com/aretw0/shopkeep/pkg/adapters/command"
	"github.com/aretw0/shopkeep/pkg/adapters/file"
	shophttp "github.com/aretw0/shopkeep/pkg/adapters/http"
	loamAdapter "github.com/aretw0/shopkeep/pkg/adapters/loam"
	mcpAdapter "github.com/aretw0/shopkeep/pkg/adapters/mcp"
	"github.com/aretw0/shopkeep/pkg/adapters/memory"
	"github.com/aretw0/shopkeep/pkg/adapters/process"
	redisAdapter "github.com/aretw0/shopkeep/pkg/adapters/redis"
	"github.com/aretw0/shopkeep/pkg/catalog"
	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/aretw0/shopkeep/pkg/engine"
	"github.com/aretw0/shopkeep/pkg/observability"
	"github.com/aretw0/shopkeep/pkg/persistence/middleware"
	"github.com/aretw0/shopkeep/pkg/ports"
	"github.com/aretw0/shopkeep/pkg/render"
	"github.com/aretw0/shopkeep/pkg/session"
	"github.com/aretw0/shopkeep/pkg/turn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App is a fully wired shopkeep instance: catalog, session store, engine,
// turn service and observability, ready to be put behind a transport.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Catalog  *domain.Catalog
	Store    ports.SessionStore
	Sessions *session.Manager
	Engine   *engine.Engine
	Turns    *turn.Service
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Streams  *shophttp.StreamManager

	closers []func() error
}

type options struct {
	logger   *slog.Logger
	source   ports.IntentSource
	store    ports.SessionStore
	catalog  ports.CatalogLoader
	registry *prometheus.Registry
}

// Option configures New.
type Option func(*options)

// WithLogger overrides the logger built from the log.* settings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithIntentSource overrides the configured intent source.
func WithIntentSource(src ports.IntentSource) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithStore injects a session store, bypassing store.driver.
func WithStore(store ports.SessionStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithCatalogLoader injects a catalog source, bypassing catalog.*.
func WithCatalogLoader(l ports.CatalogLoader) Option {
	return func(o *options) {
		o.catalog = l
	}
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// New wires an App from cfg.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: o.logger}
	if a.Logger == nil {
		level, _ := logging.ParseLevel(cfg.Log.Level)
		format, _ := logging.ParseFormat(cfg.Log.Format)
		a.Logger = logging.NewWithWriter(os.Stderr, level, format)
	}

	if err := a.loadCatalog(ctx, o.catalog); err != nil {
		return nil, err
	}

	a.Registry = o.registry
	if a.Registry == nil {
		a.Registry = prometheus.NewRegistry()
		a.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	a.Metrics = observability.NewMetrics(a.Registry)

	locker, err := a.openStore(ctx, o.store)
	if err != nil {
		a.Close()
		return nil, err
	}

	managerOpts := []session.Option{
		session.WithLockTTL(cfg.Lock.TTL),
		session.WithOnCreate(a.Metrics.SessionCreated),
		session.WithLogger(a.Logger),
	}
	if locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(locker))
	}
	a.Sessions = session.NewManager(a.Store, a.Catalog, managerOpts...)

	policy, _ := engine.ParseUpdatePolicy(cfg.Engine.UpdatePolicy)
	a.Engine = engine.New(a.Catalog, engine.WithUpdatePolicy(policy), engine.WithLogger(a.Logger))

	source := o.source
	if source == nil {
		if source, err = a.intentSource(); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Streams = shophttp.NewStreamManager(a.Logger)
	a.Turns = turn.New(a.Sessions, a.Engine, source,
		turn.WithHooks(a.Metrics.Hooks()),
		turn.WithHooks(observability.AuditHooks(a.Logger)),
		turn.WithHooks(a.Streams.Hooks()),
		turn.WithHistoryMax(cfg.History.Max),
		turn.WithMaxInputSize(cfg.Input.MaxSize),
		turn.WithLogger(a.Logger),
	)

	a.Logger.Debug("Shopkeep wired",
		"items", a.Catalog.Len(),
		"store", cfg.Store.Driver,
		"update_policy", policy,
	)
	return a, nil
}

func (a *App) loadCatalog(ctx context.Context, loader ports.CatalogLoader) error {
	if loader == nil {
		switch {
		case a.Config.Catalog.File != "":
			loader = catalog.NewFileLoader(a.Config.Catalog.File)
		case a.Config.Catalog.Dir != "":
			l, err := loamAdapter.Open(a.Config.Catalog.Dir)
			if err != nil {
				return fmt.Errorf("open catalog directory: %w", err)
			}
			loader = l
		default:
			loader = catalog.DefaultLoader{}
		}
	}

	c, err := loader.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	a.Catalog = c
	return nil
}

// openStore sets a.Store and returns the distributed locker it implies.
func (a *App) openStore(ctx context.Context, injected ports.SessionStore) (ports.DistributedLocker, error) {
	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
	)

	switch {
	case injected != nil:
		store = injected

	case a.Config.Store.Driver == config.DriverFile:
		store = file.NewStore(a.Config.Store.Dir)

	case a.Config.Store.Driver == config.DriverRedis:
		rc := a.Config.Redis
		client := redisAdapter.NewClient(rc.Addr, rc.Password, rc.DB)
		rs := redisAdapter.NewFromClient(client,
			redisAdapter.WithPrefix(rc.Prefix),
			redisAdapter.WithTTL(rc.TTL),
		)
		a.closers = append(a.closers, rs.Close)
		if err := rs.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", rc.Addr, err)
		}
		store = rs
		// Lock keys live outside the session key space.
		locker = redisAdapter.NewLocker(client, "lock:"+rc.Prefix)

	default:
		store = memory.NewStore()
	}

	mws, err := a.storeMiddleware()
	if err != nil {
		return nil, err
	}
	a.Store = middleware.Chain(store, mws...)
	return locker, nil
}

// storeMiddleware redacts before it seals, so sealed transcripts are masked too.
func (a *App) storeMiddleware() ([]middleware.Middleware, error) {
	sc := a.Config.Store
	var mws []middleware.Middleware

	if sc.Redact {
		pii, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}

	if sc.EncryptKey != "" {
		cfg := middleware.EncryptionConfig{}
		var err error
		if cfg.ActiveKey, err = middleware.ParseKey(sc.EncryptKey); err != nil {
			return nil, err
		}
		for _, k := range sc.FallbackKeys {
			key, err := middleware.ParseKey(k)
			if err != nil {
				return nil, err
			}
			cfg.FallbackKeys = append(cfg.FallbackKeys, key)
		}
		enc, err := middleware.NewEncryptionMiddleware(cfg)
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}

func (a *App) intentSource() (ports.IntentSource, error) {
	ic := a.Config.Intent
	switch {
	case ic.Config != "":
		pc, err := process.LoadConfig(ic.Config)
		if err != nil {
			return nil, err
		}
		return process.NewSource(pc, process.WithLogger(a.Logger))
	case ic.Command != "":
		return process.NewSource(process.Config{Command: ic.Command, Args: ic.Args},
			process.WithTimeout(ic.Timeout),
			process.WithLogger(a.Logger),
		)
	default:
		return command.New(command.WithCatalog(a.Catalog)), nil
	}
}

// Theme returns the presentation theme selected by render.density.
func (a *App) Theme() render.Theme {
	density, _ := render.ParseDensity(a.Config.Render.Density)
	return render.DefaultTheme().WithDensity(density)
}

// Handler returns the HTTP transport, with /metrics served from the App registry.
func (a *App) Handler() http.Handler {
	return shophttp.NewHandler(a.Turns,
		shophttp.WithStreams(a.Streams),
		shophttp.WithTheme(a.Theme()),
		shophttp.WithVersion(Version),
		shophttp.WithMetricsHandler(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})),
		shophttp.WithLogger(a.Logger),
	)
}

// MCP returns the MCP transport.
func (a *App) MCP() *mcpAdapter.Server {
	return mcpAdapter.NewServer(a.Turns, Version, mcpAdapter.WithLogger(a.Logger))
}

// DeleteSession removes a session and updates the active sessions gauge.
func (a *App) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := a.Store.Load(ctx, sessionID); err != nil {
		return err
	}
	if err := a.Sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	a.Metrics.SessionDeleted(sessionID)
	return nil
}

// Close releases store connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
