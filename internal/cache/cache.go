// Package cache stores raw response bodies so repeated GETs can skip the network.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Provider is a minimal byte store with TTLs. Implementations must be safe
// for concurrent use and must return exactly the bytes passed to Set.
type Provider interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. Returns ok=false when the
	// store rejected the write.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	Del(ctx context.Context, key string) error

	Close(ctx context.Context) error
}

// Backend names a Provider implementation.
type Backend string

const (
	BackendNone      Backend = "none"
	BackendRistretto Backend = "ristretto"
	BackendBigcache  Backend = "bigcache"
	BackendRedis     Backend = "redis"
)

// Options selects and sizes a Provider.
type Options struct {
	Backend Backend
	// MaxCost bounds the in-process caches, in bytes.
	MaxCost int64
	// TTL is the entry lifetime; bigcache applies it globally.
	TTL       time.Duration
	RedisAddr string
}

// New builds the Provider named by opts.Backend. BackendNone returns nil.
func New(opts Options) (Provider, error) {
	switch Backend(strings.ToLower(string(opts.Backend))) {
	case BackendNone, "":
		return nil, nil
	case BackendRistretto:
		maxCost := opts.MaxCost
		if maxCost <= 0 {
			maxCost = 64 << 20
		}
		return NewRistretto(RistrettoConfig{
			NumCounters: 10 * maxCost / 1024,
			MaxCost:     maxCost,
			BufferItems: 64,
		})
	case BackendBigcache:
		cfg := BigcacheConfig{LifeWindow: opts.TTL}
		if opts.MaxCost > 0 {
			cfg.HardMaxCacheSizeMB = int(opts.MaxCost >> 20)
		}
		return NewBigcache(cfg)
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("cache: redis backend needs an address")
		}
		return NewRedis(RedisConfig{
			Client:      goredis.NewClient(&goredis.Options{Addr: opts.RedisAddr}),
			CloseClient: true,
			Prefix:      "gloss:",
		})
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", opts.Backend)
	}
}
