package writer

import (
	"fmt"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"

	"github.com/leengari/simpledb/internal/domain/data"
	"github.com/leengari/simpledb/internal/domain/schema"
	"github.com/leengari/simpledb/internal/storage/metadata"
)

// BuildDocument converts a schema and its rows into the persisted document shape.
// DATE values are written as ISO-8601 calendar dates.
func BuildDocument(s *schema.Schema, rows []data.Row) metadata.TableDocument {
	doc := metadata.TableDocument{
		Columns: make([]metadata.ColumnMeta, s.Len()),
		Rows:    make([][]interface{}, len(rows)),
	}

	for i, col := range s.Columns() {
		doc.Columns[i] = metadata.ColumnMeta{
			Name: col.Name,
			Type: string(col.Type),
		}
	}

	for i, row := range rows {
		raw := make([]interface{}, s.Len())
		for j := range raw {
			raw[j] = s.Column(j).Type.Encode(row.At(j))
		}
		doc.Rows[i] = raw
	}

	return doc
}

// SaveTable overwrites the file at path with the full table document.
// The write is not atomic: a crash mid-write can leave a truncated file.
func SaveTable(path string, s *schema.Schema, rows []data.Row) error {
	if path == "" {
		return fmt.Errorf("cannot save table: missing path")
	}

	payload, err := json.MarshalIndent(BuildDocument(s, rows), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal table document %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open table file %s: %w", path, err)
	}

	if _, err := f.Write(payload); err != nil {
		f.Close()
		return fmt.Errorf("failed to write table file %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close table file %s: %w", path, err)
	}

	slog.Debug("table saved",
		slog.String("path", path),
		slog.Int("row_count", len(rows)),
	)

	return nil
}
