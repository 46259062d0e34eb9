package memory

import (
	"context"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/rcliao/buddy/internal/store"
)

const defaultRegistrySize = 256

// Registry hands out one Store per user, loading it on first use and keeping
// the most recently used stores in an LRU cache. Only stores that loaded
// successfully are cached.
type Registry struct {
	db       store.Store
	opts     []Option
	logger   *slog.Logger
	onResize func(n int)

	loads singleflight.Group

	// mu pairs cache changes with their onResize call.
	mu    sync.Mutex
	cache *lru.Cache[string, *Store]
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Size is the maximum number of cached stores. Zero means 256.
	Size int
	// Options are applied to every Store the registry creates.
	Options []Option
	Logger  *slog.Logger
	// OnResize, if set, is called with the cache size after it changes.
	OnResize func(n int)
}

// NewRegistry creates a registry backed by db.
func NewRegistry(db store.Store, cfg RegistryConfig) (*Registry, error) {
	if cfg.Size <= 0 {
		cfg.Size = defaultRegistrySize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	r := &Registry{
		db:       db,
		opts:     cfg.Options,
		logger:   cfg.Logger,
		onResize: cfg.OnResize,
	}
	cache, err := lru.NewWithEvict(cfg.Size, r.evicted)
	if err != nil {
		return nil, err
	}
	r.cache = cache
	return r, nil
}

// Get returns the store for userID, creating and loading it if needed.
// Concurrent first calls for one user share a single load, and loads for
// different users run in parallel. The load is not cancelled with ctx, so a
// caller that gives up does not fail the load for the others. A failed load
// is returned as an error and nothing is cached; the next Get retries it.
func (r *Registry) Get(ctx context.Context, userID string) (*Store, error) {
	if s, ok := r.cache.Get(userID); ok {
		return s, nil
	}
	v, err, _ := r.loads.Do(userID, func() (any, error) {
		if s, ok := r.cache.Get(userID); ok {
			return s, nil
		}
		s := New(userID, r.db, r.opts...)
		if err := s.load(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache.Add(userID, s)
		r.resized()
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

// Context renders the memory context for userID. It satisfies chat.MemorySource.
func (r *Registry) Context(ctx context.Context, userID string) (string, error) {
	s, err := r.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.RenderContext(), nil
}

// Forget drops the cached store for userID; the next Get reloads it.
func (r *Registry) Forget(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Remove(userID)
	r.resized()
}

// Len returns the number of cached stores.
func (r *Registry) Len() int {
	return r.cache.Len()
}

func (r *Registry) evicted(userID string, s *Store) {
	if n := s.FailedWrites(); n > 0 {
		r.logger.Warn("memory store evicted with failed writes", "user_id", userID, "failed_writes", n)
	}
}

func (r *Registry) resized() {
	if r.onResize != nil {
		r.onResize(r.cache.Len())
	}
}
