package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leengari/simpledb/internal/domain/errors"
	"github.com/leengari/simpledb/internal/domain/schema"
	"github.com/leengari/simpledb/internal/storage/loader"
)

// Database represents a single database on disk
// (a directory holding one document per table)
type Database struct {
	name      string
	path      string // filesystem path to database directory
	tables    map[string]*Table
	order     []string // registration / discovery order
	sessionID string
	logger    *slog.Logger
	observers []Observer
}

// Option configures a Database handle
type Option func(*Database)

// WithLogger sets the logger used for load/discovery messages
func WithLogger(logger *slog.Logger) Option {
	return func(db *Database) {
		if logger != nil {
			db.logger = logger
		}
	}
}

// WithObserver registers an observer for lifecycle events
func WithObserver(observer Observer) Option {
	return func(db *Database) {
		if observer != nil {
			db.observers = append(db.observers, observer)
		}
	}
}

// CreateDatabase makes the directory for a new database under basePath.
// It fails with a ValidationError when the directory already exists.
func CreateDatabase(basePath, name string) error {
	if err := validateName("database", name); err != nil {
		return err
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return fmt.Errorf("failed to create base directory: %w", err)
	}

	dbPath := filepath.Join(basePath, name)
	if err := os.Mkdir(dbPath, 0755); err != nil {
		if os.IsExist(err) {
			return errors.NewDatabaseExists(name)
		}
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	return nil
}

// OpenDatabase returns a handle on basePath/name. When the directory exists
// every table document in it is loaded and registered; otherwise the handle
// starts empty and points at a directory that does not exist yet.
func OpenDatabase(ctx context.Context, basePath, name string, opts ...Option) (*Database, error) {
	if err := validateName("database", name); err != nil {
		return nil, err
	}

	db := &Database{
		name:      name,
		path:      filepath.Join(basePath, name),
		tables:    make(map[string]*Table),
		sessionID: uuid.NewString(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(db)
	}

	names, err := loader.ListTables(db.path)
	if err != nil {
		return nil, err
	}

	loaded, err := loader.LoadTables(ctx, db.path, names)
	if err != nil {
		return nil, fmt.Errorf("failed to load database %s: %w", name, err)
	}

	for _, lt := range loaded {
		t := &Table{
			db:   db,
			name: lt.Name,
			path: loader.TablePath(db.path, lt.Name),
		}
		t.adopt(lt)

		db.logger.Info("table loaded",
			slog.String("database", db.name),
			slog.String("table", t.name),
			slog.Int("rows", t.Count()),
		)
	}

	db.logger.Info("database opened",
		slog.String("name", db.name),
		slog.String("path", db.path),
		slog.Int("table_count", len(db.tables)),
	)
	db.notify(Event{Type: EventDatabaseOpened, Data: db.path})

	return db, nil
}

func (db *Database) Name() string {
	return db.name
}

// Path returns the database directory
func (db *Database) Path() string {
	return db.path
}

// SessionID identifies this handle in lifecycle events
func (db *Database) SessionID() string {
	return db.sessionID
}

// CreateTable creates (or adopts) the named table and registers it.
// If a document for name already exists its stored schema wins and
// columns is ignored.
func (db *Database) CreateTable(name string, columns []schema.Column) (*Table, error) {
	if err := validateName("table", name); err != nil {
		return nil, err
	}

	t, err := newTable(db, name, columns)
	if err != nil {
		return nil, err
	}
	db.register(t)

	db.notify(Event{Type: EventTableCreated, Table: name, Data: t.Describe()})
	return t, nil
}

// Table looks up a registered table by name
func (db *Database) Table(name string) (*Table, bool) {
	t, ok := db.tables[name]
	return t, ok
}

// ListTables returns the registered table names in registration order
func (db *Database) ListTables() []string {
	names := make([]string, len(db.order))
	copy(names, db.order)
	return names
}

// register adds t under its name, replacing any previous handle
// without changing the name's position
func (db *Database) register(t *Table) {
	if _, exists := db.tables[t.name]; !exists {
		db.order = append(db.order, t.name)
	}
	db.tables[t.name] = t
}

// notify sends an event to all registered observers
func (db *Database) notify(event Event) {
	event.Timestamp = time.Now()
	event.SessionID = db.sessionID
	event.Database = db.name
	for _, observer := range db.observers {
		observer.OnEvent(event)
	}
}

func validateName(kind, name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errors.NewInvalidName(kind, name)
	}
	return nil
}
