package factory

import (
	"fmt"
	"sync"

	"github.com/vodhouse/vodhouse/config"
	"github.com/vodhouse/vodhouse/storage/catalog"
)

// Factory builds a catalog store for the provided catalog config.
type Factory func(*config.Catalog) (catalog.Store, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds or replaces a catalog store factory for the given strategy name.
func Register(strategy string, factory Factory) {
	mu.Lock()
	registry[strategy] = factory
	mu.Unlock()
}

// Get retrieves a factory for the given strategy.
func Get(strategy string) (Factory, bool) {
	mu.RLock()
	f, ok := registry[strategy]
	mu.RUnlock()
	return f, ok
}

// Create builds a catalog store using the registered factory for the configured strategy.
func Create(cfg *config.Catalog) (catalog.Store, error) {
	if f, ok := Get(cfg.Strategy); ok {
		return f(cfg)
	}

	return nil, fmt.Errorf("unknown catalog strategy %q", cfg.Strategy)
}

func init() {
	Register("sql", func(cfg *config.Catalog) (catalog.Store, error) {
		return catalog.NewSQLStore(cfg.Sql)
	})
	Register("d1", func(cfg *config.Catalog) (catalog.Store, error) {
		return catalog.NewD1Store(cfg.D1)
	})
}
