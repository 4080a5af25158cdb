package manager

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/leengari/simpledb/internal/engine"
)

// Registry caches open database handles so every session on a process
// shares one in-memory view per database directory
type Registry struct {
	mu       sync.Mutex
	exec     sync.Mutex
	loaded   map[string]*engine.Database
	basePath string
	opts     []engine.Option
}

// NewRegistry creates a registry rooted at basePath; opts are applied to every handle it opens
func NewRegistry(basePath string, opts ...engine.Option) *Registry {
	return &Registry{
		loaded:   make(map[string]*engine.Database),
		basePath: basePath,
		opts:     opts,
	}
}

// BasePath returns the directory holding the databases
func (r *Registry) BasePath() string {
	return r.basePath
}

// Get returns the cached handle for name, opening it on first use
func (r *Registry) Get(ctx context.Context, name string) (*engine.Database, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if db, ok := r.loaded[name]; ok {
		return db, nil
	}

	db, err := engine.OpenDatabase(ctx, r.basePath, name, r.opts...)
	if err != nil {
		return nil, err
	}

	r.loaded[name] = db
	return db, nil
}

// Create makes a new database directory and returns a handle on it
func (r *Registry) Create(ctx context.Context, name string) (*engine.Database, error) {
	if err := engine.CreateDatabase(r.basePath, name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	// a handle opened before the directory existed is empty and stale
	delete(r.loaded, name)
	r.mu.Unlock()

	slog.Info("database created", "name", name, "path", filepath.Join(r.basePath, name))
	return r.Get(ctx, name)
}

// Drop unloads and deletes a database
func (r *Registry) Drop(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.loaded, name)
	return DropDatabase(name, r.basePath)
}

// List returns a list of all available databases
func (r *Registry) List() ([]string, error) {
	return ListDatabases(r.basePath)
}

// Serialize runs fn while holding the registry's execution lock.
// The storage engine has no concurrency control of its own, so every
// session funnels its commands through here.
func (r *Registry) Serialize(fn func()) {
	r.exec.Lock()
	defer r.exec.Unlock()
	fn()
}
