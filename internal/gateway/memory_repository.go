package gateway

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Config
}

// NewMemoryRepository constructs an in-memory repository for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Config)}
}

func (r *memoryRepository) Create(_ context.Context, cfg Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[cfg.GatewayName]; exists {
		return ErrExists
	}
	r.storage[cfg.GatewayName] = cfg
	return nil
}

func (r *memoryRepository) Get(_ context.Context, name string) (Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.storage[name]
	if !ok {
		return Config{}, ErrNotFound
	}
	return cfg, nil
}

func (r *memoryRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[name]; !ok {
		return ErrNotFound
	}
	delete(r.storage, name)
	return nil
}

func (r *memoryRepository) List(_ context.Context) ([]Config, error) {
	r.mu.RLock()
	out := make([]Config, 0, len(r.storage))
	for _, cfg := range r.storage {
		out = append(out, cfg)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].GatewayName < out[j].GatewayName })
	return out, nil
}
