package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/leengari/simpledb/internal/domain/data"
	"github.com/leengari/simpledb/internal/domain/errors"
	"github.com/leengari/simpledb/internal/domain/schema"
	"github.com/leengari/simpledb/internal/storage/metadata"
)

// LoadedTable is a decoded table document
type LoadedTable struct {
	Name   string
	Schema *schema.Schema
	Rows   []data.Row
}

// TablePath returns the document path for a table inside a database directory
func TablePath(dbPath, tableName string) string {
	return filepath.Join(dbPath, tableName+metadata.TableFileExt)
}

// LoadTable reads and decodes the table document at path.
// found is false (with a nil error) when no file exists.
func LoadTable(path string) (table *LoadedTable, found bool, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read table file %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), metadata.TableFileExt)
	table, err = DecodeTable(name, raw)
	if err != nil {
		return nil, false, &errors.ParseError{Path: path, Err: err}
	}
	return table, true, nil
}

// DecodeTable rebuilds the schema and rows from a raw table document
func DecodeTable(name string, raw []byte) (*LoadedTable, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc metadata.TableDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	cols := make([]schema.Column, len(doc.Columns))
	for i, c := range doc.Columns {
		cols[i] = schema.Column{Name: c.Name, Type: schema.ColumnType(c.Type)}
	}

	s, err := schema.NewSchema(cols)
	if err != nil {
		return nil, err
	}

	rows := make([]data.Row, 0, len(doc.Rows))
	for i, stored := range doc.Rows {
		if len(stored) != s.Len() {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(stored), s.Len())
		}

		values := make([]interface{}, len(stored))
		for j, v := range stored {
			col := s.Column(j)
			dv, err := col.Type.Decode(v)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, col.Name, err)
			}
			values[j] = dv
		}

		row, err := data.NewRow(s, values)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	return &LoadedTable{Name: name, Schema: s, Rows: rows}, nil
}

// ListTables returns the names of every table document in dbPath, sorted.
// A missing directory yields no names.
func ListTables(dbPath string) ([]string, error) {
	entries, err := os.ReadDir(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read database directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != metadata.TableFileExt {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), metadata.TableFileExt))
	}
	sort.Strings(names)
	return names, nil
}

// LoadTables decodes the named table documents concurrently and returns them
// in the order of names. The first failure cancels the rest.
func LoadTables(ctx context.Context, dbPath string, names []string) ([]*LoadedTable, error) {
	tables := make([]*LoadedTable, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := TablePath(dbPath, name)
			table, found, err := LoadTable(path)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("table file %s disappeared during load", path)
			}
			tables[i] = table
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
