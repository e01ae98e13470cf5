package cache

import (
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-request-cache/durable"
	"github.com/goliatone/go-request-cache/internal/cacheinfra"
)

// Config exposes the cache configuration for consumers of the package.
type Config struct {
	// DefaultTTL is applied when Set is called with a zero ttl.
	DefaultTTL time.Duration

	// Namespace prefixes every key written to the durable medium, keeping
	// the cache's records separable from other tenants of the same store.
	Namespace string

	// MaxPersistBytes caps the encoded size of a single durable record;
	// larger writes are skipped and the entry stays memory-only.
	MaxPersistBytes int

	// SweepInterval is the cadence at which the expiry sweeper runs.
	SweepInterval time.Duration

	// Medium is the optional durable tier. Nil means memory-only.
	Medium durable.Medium

	// Logger receives durable-tier diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config populated with the standard defaults:
// five minute TTL, a 5 MiB per-record ceiling, and a 60s sweep.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:      5 * time.Minute,
		Namespace:       "poscache:",
		MaxPersistBytes: 5 << 20,
		SweepInterval:   time.Minute,
	}
}

// Validate checks whether the configuration values are usable. Start from
// DefaultConfig; a zero Config does not validate.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DefaultTTL, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Namespace, validation.Required),
		validation.Field(&c.MaxPersistBytes, validation.Required, validation.Min(1)),
		validation.Field(&c.SweepInterval, validation.Required, validation.Min(time.Second)),
	)
}

// NewCacheService constructs the default two-tier facade from cfg.
func NewCacheService(cfg Config) (CacheService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cacheinfra.NewFacade(cfg.toInternal()), nil
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		DefaultTTL:      c.DefaultTTL,
		Namespace:       c.Namespace,
		MaxPersistBytes: c.MaxPersistBytes,
		Medium:          c.Medium,
		Logger:          c.Logger,
	}
}
