// Package app builds the long-lived services of the discovery service from
// configuration and owns their shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/aggregate"
	"github.com/JakeFAU/opportunity-discovery/internal/api"
	"github.com/JakeFAU/opportunity-discovery/internal/cache"
	"github.com/JakeFAU/opportunity-discovery/internal/clock/system"
	"github.com/JakeFAU/opportunity-discovery/internal/config"
	"github.com/JakeFAU/opportunity-discovery/internal/filter"
	"github.com/JakeFAU/opportunity-discovery/internal/id/uuid"
	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/policy/ratelimit"
	memorypub "github.com/JakeFAU/opportunity-discovery/internal/publisher/memory"
	"github.com/JakeFAU/opportunity-discovery/internal/publisher/pubsub"
	"github.com/JakeFAU/opportunity-discovery/internal/scheduler"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
	"github.com/JakeFAU/opportunity-discovery/internal/source/adzuna"
	"github.com/JakeFAU/opportunity-discovery/internal/source/challenge"
	"github.com/JakeFAU/opportunity-discovery/internal/source/github"
	"github.com/JakeFAU/opportunity-discovery/internal/source/jooble"
	"github.com/JakeFAU/opportunity-discovery/internal/source/nsfreu"
	"github.com/JakeFAU/opportunity-discovery/internal/source/remoteok"
	"github.com/JakeFAU/opportunity-discovery/internal/source/volunteer"
	"github.com/JakeFAU/opportunity-discovery/internal/storage/gcs"
	"github.com/JakeFAU/opportunity-discovery/internal/storage/local"
	"github.com/JakeFAU/opportunity-discovery/internal/storage/memory"
	"github.com/JakeFAU/opportunity-discovery/internal/storage/postgres"
)

// App holds every service shared by the commands.
type App struct {
	Config      config.Config
	Logger      *zap.Logger
	Store       opportunity.Store
	Saved       opportunity.SavedStore
	Filter      *filter.Engine
	Registry    *source.Registry
	Coordinator *aggregate.Coordinator
	Searcher    aggregate.Searcher
	Runner      *aggregate.Runner
	Scheduler   *scheduler.Scheduler
	IDs         opportunity.IDGenerator
	Clock       opportunity.Clock

	closers []closer
}

type closer struct {
	name string
	fn   func() error
}

// New initializes services from cfg. It fails fast and releases anything
// already opened when a backend cannot be reached.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *App, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		Config: cfg,
		Logger: logger,
		Filter: filter.New(nil),
		IDs:    uuid.New(),
		Clock:  system.New(),
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	logger.Info("initializing services",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("archive", cfg.Archive.Backend),
		zap.String("events", cfg.Events.Backend),
	)

	if err := a.initStores(ctx); err != nil {
		return nil, err
	}

	client := source.NewClient(source.ClientConfig{
		Timeout:        cfg.HTTP.Timeout(),
		MaxRetries:     cfg.HTTP.MaxRetries,
		BackoffInitial: time.Duration(cfg.HTTP.BackoffInitialMs) * time.Millisecond,
		BackoffMax:     time.Duration(cfg.HTTP.BackoffMaxMs) * time.Millisecond,
		UserAgent:      cfg.HTTP.UserAgent,
	}, ratelimit.New(ratelimit.Config{RPS: cfg.HTTP.RatePerSecond, Burst: cfg.HTTP.Burst}), logger)

	a.Registry, err = buildRegistry(cfg.Providers, client, logger)
	if err != nil {
		return nil, err
	}
	a.Coordinator = aggregate.NewCoordinator(a.Registry, cfg.HTTP.Timeout(), logger)
	a.Coordinator.SetMaxParallel(cfg.HTTP.MaxParallel)

	if err := a.initSearch(ctx, client); err != nil {
		return nil, err
	}

	blobs, err := a.openArchive(ctx)
	if err != nil {
		return nil, err
	}
	events, err := a.openEvents(ctx)
	if err != nil {
		return nil, err
	}
	a.Runner = aggregate.NewRunner(
		a.Coordinator,
		aggregate.NewUpserter(a.Store, a.Clock, a.IDs, logger),
		blobs,
		events,
		a.Clock,
		aggregate.RunnerConfig{SnapshotPrefix: cfg.Archive.Prefix, Topic: cfg.Events.Topic},
		logger,
	)
	a.Scheduler = scheduler.New(a.Runner, a.Store, scheduler.Config{
		Interval:     cfg.Scheduler.Interval,
		RunOnStartup: cfg.Scheduler.RunOnStartup,
	}, logger)

	logger.Info("services initialized", zap.Strings("adapters", adapterNames(a.Registry)))
	return a, nil
}

func (a *App) initStores(ctx context.Context) error {
	switch a.Config.Storage.Backend {
	case "postgres":
		pool, err := postgres.Open(ctx, postgres.Config{
			DSN:      a.Config.Storage.DSN,
			MaxConns: a.Config.Storage.MaxConns,
			MinConns: a.Config.Storage.MinConns,
		})
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		a.onClose("postgres", func() error { pool.Close(); return nil })
		if a.Config.Storage.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}
		}
		store, err := postgres.NewOpportunityStore(pool)
		if err != nil {
			return err
		}
		saved, err := postgres.NewSavedStore(pool)
		if err != nil {
			return err
		}
		a.Store, a.Saved = store, saved
	default:
		a.Store = memory.NewOpportunityStore(a.Filter)
		a.Saved = memory.NewSavedStore()
	}
	return nil
}

// buildRegistry registers every enabled adapter. Missing credentials are
// not an error here; those adapters report themselves unavailable per call.
func buildRegistry(p config.ProvidersConfig, client *source.Client, logger *zap.Logger) (*source.Registry, error) {
	reg := source.NewRegistry()
	register := func(enabled bool, ad source.Adapter, opts ...source.RegisterOption) error {
		if !enabled {
			logger.Info("adapter disabled", zap.String("source", ad.Name()))
			return nil
		}
		return reg.Register(ad, opts...)
	}

	steps := []error{
		register(p.Adzuna.Enabled, adzunaAdapter(p.Adzuna, client, logger)),
		register(p.Jooble.Enabled, joobleAdapter(p.Jooble, client, logger)),
		register(p.Volunteer.Enabled, volunteer.New(volunteer.Config{
			BaseURL:  p.Volunteer.BaseURL,
			Fallback: source.Fallback{Enabled: p.Volunteer.StaticFallback, Catalog: volunteer.Catalog},
		}, client, logger)),
		register(p.Challenge.Enabled, challenge.New(challenge.Config{
			FeedURL:  p.Challenge.BaseURL,
			Fallback: source.Fallback{Enabled: p.Challenge.StaticFallback, Catalog: challenge.Catalog},
		}, client, logger)),
		register(p.GitHub.Enabled, github.New(github.Config{
			ListingsURL: p.GitHub.BaseURL,
			MaxRecords:  p.GitHub.MaxRecords,
			Fallback:    source.Fallback{Enabled: p.GitHub.StaticFallback, Catalog: github.Catalog},
		}, client, logger), source.Always()),
		register(p.RemoteOK.Enabled, remoteok.New(remoteok.Config{
			FeedURL:  p.RemoteOK.BaseURL,
			Fallback: source.Fallback{Enabled: p.RemoteOK.StaticFallback, Catalog: remoteok.Catalog},
		}, client, logger)),
		register(p.NSFREU.Enabled, nsfreu.New()),
	}
	if err := errors.Join(steps...); err != nil {
		return nil, fmt.Errorf("register adapters: %w", err)
	}
	return reg, nil
}

func adzunaAdapter(p config.ProviderConfig, client *source.Client, logger *zap.Logger) *adzuna.Adapter {
	return adzuna.New(adzuna.Config{
		BaseURL:  p.BaseURL,
		AppID:    p.AppID,
		AppKey:   p.APIKey,
		Country:  p.Country,
		Fallback: source.Fallback{Enabled: p.StaticFallback},
	}, client, logger)
}

func joobleAdapter(p config.ProviderConfig, client *source.Client, logger *zap.Logger) *jooble.Adapter {
	return jooble.New(jooble.Config{
		BaseURL:  p.BaseURL,
		APIKey:   p.APIKey,
		Fallback: source.Fallback{Enabled: p.StaticFallback},
	}, client, logger)
}

// initSearch builds the job-search chain (Adzuna then Jooble), cached in
// Redis when a URL is configured. The chain adapters are independent of
// the registry so disabling them for passes keeps search working.
func (a *App) initSearch(ctx context.Context, client *source.Client) error {
	p := a.Config.Providers
	chain := aggregate.NewFallbackChain(a.Logger,
		adzunaAdapter(p.Adzuna, client, a.Logger),
		joobleAdapter(p.Jooble, client, a.Logger),
	)
	a.Searcher = chain
	if a.Config.Cache.RedisURL == "" {
		return nil
	}
	rdb, err := cache.NewRedisClient(ctx, a.Config.Cache.RedisURL)
	if err != nil {
		return err
	}
	a.onClose("redis", rdb.Close)
	a.Searcher = cache.NewSearchCache(chain, rdb, a.Config.Cache.TTL, a.Logger)
	return nil
}

func (a *App) openArchive(ctx context.Context) (aggregate.BlobStore, error) {
	cfg := a.Config.Archive
	switch cfg.Backend {
	case "memory":
		return memory.NewBlobStore(), nil
	case "local":
		store, err := local.New(local.Config{Dir: cfg.Dir})
		if err != nil {
			return nil, err
		}
		a.onClose("local archive", store.Close)
		return store, nil
	case "gcs":
		store, err := gcs.Open(ctx, gcs.Config{Bucket: cfg.Bucket})
		if err != nil {
			return nil, err
		}
		a.onClose("gcs archive", store.Close)
		return store, nil
	default:
		return nil, nil
	}
}

func (a *App) openEvents(ctx context.Context) (aggregate.Publisher, error) {
	cfg := a.Config.Events
	switch cfg.Backend {
	case "memory":
		return memorypub.New(), nil
	case "pubsub":
		pub, err := pubsub.Open(ctx, cfg.ProjectID, cfg.Topic)
		if err != nil {
			return nil, err
		}
		a.onClose("pubsub", pub.Close)
		return pub, nil
	default:
		return nil, nil
	}
}

// APIServer returns the HTTP API over the app's services.
func (a *App) APIServer() *api.Server {
	return api.NewServer(api.Deps{
		Store:      a.Store,
		Saved:      a.Saved,
		Discoverer: a.Coordinator,
		Searcher:   a.Searcher,
		Passes:     a.Runner,
		Filter:     a.Filter,
		IDs:        a.IDs,
		Clock:      a.Clock,
	}, a.Config, a.Logger)
}

func (a *App) onClose(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// Close releases resources in reverse order of acquisition. It is safe to
// call more than once.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(); err != nil {
			a.Logger.Warn("error closing resource", zap.String("resource", c.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func adapterNames(reg *source.Registry) []string {
	if reg == nil {
		return nil
	}
	adapters := reg.Adapters()
	names := make([]string, 0, len(adapters))
	for _, ad := range adapters {
		names = append(names, ad.Name())
	}
	return names
}
