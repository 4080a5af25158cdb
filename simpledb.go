// Package simpledb is a small embedded data store. A database is a
// directory; each table in it is a JSON document holding a typed schema and
// its rows, rewritten in full after every insert.
package simpledb

import (
	"context"
	"log/slog"

	"github.com/leengari/simpledb/internal/config"
	"github.com/leengari/simpledb/internal/domain/data"
	"github.com/leengari/simpledb/internal/domain/errors"
	"github.com/leengari/simpledb/internal/domain/schema"
	"github.com/leengari/simpledb/internal/engine"
)

type (
	Database        = engine.Database
	Table           = engine.Table
	Row             = data.Row
	Predicate       = data.Predicate
	Column          = schema.Column
	ColumnType      = schema.ColumnType
	ValidationError = errors.ValidationError
	Observer        = engine.Observer
	Event           = engine.Event
)

const (
	Int   = schema.ColumnTypeInt
	Float = schema.ColumnTypeFloat
	Text  = schema.ColumnTypeText
	Date  = schema.ColumnTypeDate
)

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	return errors.IsValidationError(err)
}

type options struct {
	ctx      context.Context
	basePath string
	engine   []engine.Option
}

// Option customises CreateDatabase and ConnectDatabase
type Option func(*options)

// WithBasePath sets the directory databases live under
func WithBasePath(path string) Option {
	return func(o *options) { o.basePath = path }
}

// WithLogger sets the logger used by the returned handle
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.engine = append(o.engine, engine.WithLogger(logger)) }
}

// WithObserver registers a lifecycle observer on the returned handle
func WithObserver(observer Observer) Option {
	return func(o *options) { o.engine = append(o.engine, engine.WithObserver(observer)) }
}

// WithContext bounds the table discovery done while connecting
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

func resolve(opts []Option) (*options, error) {
	o := &options{ctx: context.Background()}
	for _, opt := range opts {
		opt(o)
	}
	if o.basePath == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		o.basePath = cfg.BasePath
	}
	return o, nil
}

// CreateDatabase makes a new, empty database and returns a handle on it.
// It fails with a ValidationError when the database already exists.
func CreateDatabase(name string, opts ...Option) (*Database, error) {
	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	if err := engine.CreateDatabase(o.basePath, name); err != nil {
		return nil, err
	}
	return engine.OpenDatabase(o.ctx, o.basePath, name, o.engine...)
}

// ConnectDatabase opens an existing database, loading every table found in
// its directory. A missing database yields an empty handle whose first
// write fails.
func ConnectDatabase(name string, opts ...Option) (*Database, error) {
	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	return engine.OpenDatabase(o.ctx, o.basePath, name, o.engine...)
}
