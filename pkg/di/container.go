package di

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-request-cache/cache"
	"github.com/goliatone/go-request-cache/invalidation"
	"github.com/goliatone/go-request-cache/requestcache"
)

// Container is the composition root for the request cache. It owns the
// process-wide singletons (facade, key serializer, invalidator, sweeper)
// that the source design kept as implicit module globals, and hands them to
// bindings and mutation paths explicitly so tests can build independent
// instances.
type Container struct {
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	invalidator   *invalidation.Invalidator
	sweeper       *cache.Sweeper
	config        cache.Config
	logger        *slog.Logger
}

// NewContainer wires a container from cfg. The sweeper is created but not
// started; call Start during application bootstrap.
func NewContainer(cfg cache.Config) (*Container, error) {
	svc, err := cache.NewCacheService(cfg)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Container{
		cacheService:  svc,
		keySerializer: cache.NewDefaultKeySerializer(),
		invalidator:   invalidation.New(svc, invalidation.DefaultGraph(), logger),
		sweeper:       cache.NewSweeper(svc, cfg.SweepInterval),
		config:        cfg,
		logger:        logger,
	}, nil
}

// NewContainerWithDefaults wires a container from DefaultConfig.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(cache.DefaultConfig())
}

// Start launches the expiry sweeper. Subsequent calls are no-ops.
func (c *Container) Start(ctx context.Context) {
	c.sweeper.Start(ctx)
}

// Close stops the sweeper and releases the durable medium.
func (c *Container) Close() error {
	c.sweeper.Stop()
	return c.cacheService.Close()
}

// CacheService returns the shared cache facade.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the shared key serializer.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Invalidator returns the shared invalidator bound to the default graph.
func (c *Container) Invalidator() *invalidation.Invalidator {
	return c.invalidator
}

// Config returns a copy of the configuration the container was built with.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewBinding creates a coordinator binding wired to the container's cache.
// Methods cannot have type parameters, so this is a package-level function:
// NewBinding[[]Product](container, key, producer, opts).
func NewBinding[T any](c *Container, key string, producer requestcache.Producer[T], opts requestcache.Options) *requestcache.Binding[T] {
	return requestcache.NewBinding(c.cacheService, key, producer, opts, c.logger)
}
