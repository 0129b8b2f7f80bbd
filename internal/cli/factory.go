package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/layoutkit"
	"github.com/aretw0/layoutkit/internal/config"
	"github.com/aretw0/layoutkit/internal/logging"
	"github.com/aretw0/layoutkit/pkg/adapters/file"
	httpAdapter "github.com/aretw0/layoutkit/pkg/adapters/http"
	"github.com/aretw0/layoutkit/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/layoutkit/pkg/adapters/redis"
	"github.com/aretw0/layoutkit/pkg/catalog"
	"github.com/aretw0/layoutkit/pkg/persistence/middleware"
	"github.com/aretw0/layoutkit/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Overrides are the command-line values that take precedence over the config.
// Empty fields leave the config untouched.
type Overrides struct {
	ConfigPath  string
	Dir         string
	CatalogPath string
	Storage     string
	LogLevel    string
}

// LoadConfig reads the config and applies the overrides.
func LoadConfig(o Overrides) (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.Dir != "" {
		cfg.Storage.Path = o.Dir
	}
	if o.CatalogPath != "" {
		cfg.Catalog.Path = o.CatalogPath
	}
	if o.Storage != "" {
		cfg.Storage.Driver = o.Storage
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger builds the logger described by cfg, writing to w.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := logging.ParseLevel(cfg.Log.Level)
	if cfg.Log.Format == "json" {
		return logging.NewJSON(w, level)
	}
	return logging.NewText(w, level)
}

// Runtime holds everything a command needs, built from one config.
type Runtime struct {
	Config     *config.Config
	Logger     *slog.Logger
	Repository ports.LayoutRepository
	Catalog    ports.CatalogLoader
	Registry   *prometheus.Registry

	closers []func() error
}

// Build creates the repository chain and catalog loader described by cfg.
// Writes go through logging, then metrics, then locking, then the storage driver.
func Build(cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		Catalog:  catalog.NewFileLoader(cfg.Catalog.Path),
		Registry: prometheus.NewRegistry(),
	}
	rt.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	base, locker, err := rt.storage()
	if err != nil {
		return nil, err
	}

	mws := []middleware.Middleware{
		middleware.NewLoggingMiddleware(logger),
		middleware.NewMetricsMiddleware(rt.Registry),
	}
	if cfg.Lock.Enabled {
		lockOpts := []middleware.LockOption{
			middleware.WithLockTTL(cfg.Lock.TTL),
			middleware.WithLockLogger(logger),
		}
		if locker != nil {
			lockOpts = append(lockOpts, middleware.WithDistributedLocker(locker))
		}
		mws = append(mws, middleware.NewLockingMiddleware(lockOpts...))
	}
	rt.Repository = middleware.Chain(base, mws...)

	logger.Debug("Runtime ready",
		"storage", cfg.Storage.Driver,
		"catalog", catalogName(cfg.Catalog.Path),
		"locking", cfg.Lock.Enabled)
	return rt, nil
}

func (rt *Runtime) storage() (ports.LayoutRepository, ports.DistributedLocker, error) {
	s := rt.Config.Storage
	switch s.Driver {
	case config.DriverFile:
		return file.New(s.Path), nil, nil
	case config.DriverMemory:
		return memory.NewRepository(), nil, nil
	case config.DriverRedis:
		repo := redisAdapter.New(s.Redis.Addr, s.Redis.Password, s.Redis.DB,
			redisAdapter.WithPrefix(s.Redis.Prefix),
			redisAdapter.WithTTL(s.Redis.TTL))
		rt.closers = append(rt.closers, repo.Close)
		return repo, redisAdapter.NewLocker(repo.Client(), s.Redis.Prefix), nil
	case config.DriverRemote:
		return httpAdapter.NewClient(s.RemoteURL), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", s.Driver)
	}
}

// Kit wraps the runtime's repository and catalog in the library facade.
func (rt *Runtime) Kit() *layoutkit.Kit {
	return layoutkit.New("",
		layoutkit.WithRepository(rt.Repository),
		layoutkit.WithCatalogLoader(rt.Catalog),
		layoutkit.WithLogger(rt.Logger),
	)
}

// Close releases storage connections.
func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c())
	}
	rt.closers = nil
	return errors.Join(errs...)
}

func catalogName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
