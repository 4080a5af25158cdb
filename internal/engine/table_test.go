package engine

import (
	"context"
	stderrors "errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"gotest.tools/v3/assert"

	"github.com/leengari/simpledb/internal/domain/data"
	"github.com/leengari/simpledb/internal/domain/errors"
	"github.com/leengari/simpledb/internal/domain/schema"
	"github.com/leengari/simpledb/internal/storage/metadata"
)

var userColumns = []schema.Column{
	{Name: "id", Type: schema.ColumnTypeInt},
	{Name: "tag", Type: schema.ColumnTypeText},
}

// setupTestDB creates an empty database under a temp directory
func setupTestDB(t *testing.T) (*Database, string) {
	t.Helper()
	base := t.TempDir()
	assert.NilError(t, CreateDatabase(base, "testdb"))

	db, err := OpenDatabase(context.Background(), base, "testdb")
	assert.NilError(t, err)
	return db, base
}

// setupTaggedTable creates an (id INT, tag TEXT) table holding rows
func setupTaggedTable(t *testing.T, rows ...[]interface{}) *Table {
	t.Helper()
	db, _ := setupTestDB(t)

	table, err := db.CreateTable("items", userColumns)
	assert.NilError(t, err)

	for _, values := range rows {
		assert.NilError(t, table.Insert(values...))
	}
	return table
}

func ids(t *testing.T, rows []data.Row) []int64 {
	t.Helper()
	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		v, err := row.Field("id")
		assert.NilError(t, err)
		out = append(out, v.(int64))
	}
	return out
}

func TestNewTableWritesEmptyDocument(t *testing.T) {
	table := setupTaggedTable(t)

	raw, err := os.ReadFile(table.Path())
	assert.NilError(t, err)

	var doc metadata.TableDocument
	assert.NilError(t, json.Unmarshal(raw, &doc))
	assert.DeepEqual(t, doc, metadata.TableDocument{
		Columns: []metadata.ColumnMeta{{Name: "id", Type: "INT"}, {Name: "tag", Type: "TEXT"}},
		Rows:    [][]interface{}{},
	})
	assert.Equal(t, table.Count(), 0)
	assert.DeepEqual(t, table.Describe(), userColumns)
}

func TestInsertPersists(t *testing.T) {
	table := setupTaggedTable(t, []interface{}{1, "a"})

	lt := &Table{db: table.db, name: table.name, path: table.path}
	loaded, err := lt.Load()
	assert.NilError(t, err)
	assert.Assert(t, loaded)
	assert.Equal(t, lt.Count(), 1)
}

func TestInsertValidationGating(t *testing.T) {
	table := setupTaggedTable(t, []interface{}{1, "a"})

	before, err := os.ReadFile(table.Path())
	assert.NilError(t, err)

	cases := map[string][]interface{}{
		"TooFew":    {2},
		"TooMany":   {2, "b", "c"},
		"WrongType": {"2", "b"},
		"FloatInt":  {2.5, "b"},
		"BadUTF8":   {2, "a\xffb"},
	}

	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			err := table.Insert(values...)

			var ve *errors.ValidationError
			assert.Assert(t, stderrors.As(err, &ve), "got %v", err)
			assert.Equal(t, ve.Table, "items")
			assert.Equal(t, table.Count(), 1)

			after, err := os.ReadFile(table.Path())
			assert.NilError(t, err)
			assert.Equal(t, string(after), string(before))
		})
	}
}

func TestInsertRejectsNonFiniteFloat(t *testing.T) {
	db, _ := setupTestDB(t)
	table, err := db.CreateTable("readings", []schema.Column{
		{Name: "id", Type: schema.ColumnTypeInt},
		{Name: "value", Type: schema.ColumnTypeFloat},
	})
	assert.NilError(t, err)

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := table.Insert(1, f)
		var ve *errors.ValidationError
		assert.Assert(t, stderrors.As(err, &ve), "got %v", err)
		assert.Equal(t, ve.Constraint, errors.ConstraintTypeMismatch)
	}
	assert.Equal(t, table.Count(), 0)
}

func TestTextRoundTripsThroughReopen(t *testing.T) {
	db, base := setupTestDB(t)
	table, err := db.CreateTable("items", userColumns)
	assert.NilError(t, err)
	assert.NilError(t, table.Insert(1, "naïve \u2603 \"quoted\""))

	reopened, err := OpenDatabase(context.Background(), base, "testdb")
	assert.NilError(t, err)
	again, _ := reopened.Table("items")
	got := slices.Collect(again.All())
	assert.Equal(t, len(got), 1)
	assert.Assert(t, got[0].Equal(slices.Collect(table.All())[0]))
}

func TestInsertRollsBackWhenSaveFails(t *testing.T) {
	table := setupTaggedTable(t, []interface{}{1, "a"})
	assert.NilError(t, os.RemoveAll(table.db.Path()))

	err := table.Insert(2, "b")
	assert.ErrorContains(t, err, "failed to open table file")
	assert.Equal(t, table.Count(), 1)
}

func TestQuery(t *testing.T) {
	table := setupTaggedTable(t,
		[]interface{}{1, "a"},
		[]interface{}{2, "b"},
		[]interface{}{3, "a"},
	)

	assert.DeepEqual(t, ids(t, slices.Collect(table.Query(data.Predicate{"tag": "a"}))), []int64{1, 3})
	assert.DeepEqual(t, ids(t, slices.Collect(table.Query(data.Predicate{"id": 2}))), []int64{2})
	assert.Equal(t, len(slices.Collect(table.Query(data.Predicate{"id": 99}))), 0)
	assert.Equal(t, len(slices.Collect(table.Query(data.Predicate{}))), 0)
	assert.Equal(t, len(slices.Collect(table.Query(nil))), 0)
}

func TestQueryMatchesAnyPair(t *testing.T) {
	table := setupTaggedTable(t,
		[]interface{}{1, "a"},
		[]interface{}{2, "b"},
		[]interface{}{3, "c"},
	)

	got := slices.Collect(table.Query(data.Predicate{"id": 1, "tag": "c"}))
	assert.DeepEqual(t, ids(t, got), []int64{1, 3})
}

func TestSequencesAreRestartable(t *testing.T) {
	table := setupTaggedTable(t,
		[]interface{}{1, "a"},
		[]interface{}{2, "b"},
	)

	all := table.All()
	assert.DeepEqual(t, ids(t, slices.Collect(all)), []int64{1, 2})
	assert.DeepEqual(t, ids(t, slices.Collect(all)), []int64{1, 2})

	query := table.Query(data.Predicate{"tag": "b"})
	assert.DeepEqual(t, ids(t, slices.Collect(query)), []int64{2})
	assert.DeepEqual(t, ids(t, slices.Collect(query)), []int64{2})
}

func TestAllStopsEarly(t *testing.T) {
	table := setupTaggedTable(t,
		[]interface{}{1, "a"},
		[]interface{}{2, "b"},
		[]interface{}{3, "c"},
	)

	var seen []int64
	for row := range table.All() {
		v, _ := row.Field("id")
		seen = append(seen, v.(int64))
		if len(seen) == 2 {
			break
		}
	}
	assert.DeepEqual(t, seen, []int64{1, 2})
}

func TestSortedByIsStable(t *testing.T) {
	table := setupTaggedTable(t,
		[]interface{}{1, "b"},
		[]interface{}{2, "a"},
		[]interface{}{3, "a"},
	)

	asc, err := table.SortedBy("tag", false)
	assert.NilError(t, err)
	assert.DeepEqual(t, ids(t, slices.Collect(asc)), []int64{2, 3, 1})

	desc, err := table.SortedBy("tag", true)
	assert.NilError(t, err)
	assert.DeepEqual(t, ids(t, slices.Collect(desc)), []int64{1, 2, 3})

	// insertion order is untouched
	assert.DeepEqual(t, ids(t, slices.Collect(table.All())), []int64{1, 2, 3})
}

func TestSortedByNumericAndDate(t *testing.T) {
	db, _ := setupTestDB(t)
	table, err := db.CreateTable("events", []schema.Column{
		{Name: "id", Type: schema.ColumnTypeInt},
		{Name: "weight", Type: schema.ColumnTypeFloat},
		{Name: "day", Type: schema.ColumnTypeDate},
	})
	assert.NilError(t, err)

	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	assert.NilError(t, table.Insert(1, 10, day(3)))
	assert.NilError(t, table.Insert(2, 2.5, day(1)))
	assert.NilError(t, table.Insert(10, 7.25, day(2)))

	byID, err := table.SortedBy("id", true)
	assert.NilError(t, err)
	assert.DeepEqual(t, ids(t, slices.Collect(byID)), []int64{10, 2, 1})

	byWeight, err := table.SortedBy("weight", false)
	assert.NilError(t, err)
	assert.DeepEqual(t, ids(t, slices.Collect(byWeight)), []int64{2, 10, 1})

	byDay, err := table.SortedBy("day", false)
	assert.NilError(t, err)
	assert.DeepEqual(t, ids(t, slices.Collect(byDay)), []int64{2, 10, 1})
}

func TestSortedByUnknownColumn(t *testing.T) {
	table := setupTaggedTable(t, []interface{}{1, "a"})

	seq, err := table.SortedBy("nonexistent", false)
	assert.Assert(t, seq == nil)

	var ve *errors.ValidationError
	assert.Assert(t, stderrors.As(err, &ve))
	assert.Equal(t, ve.Constraint, errors.ConstraintUnknownColumn)
	assert.Equal(t, ve.Column, "nonexistent")
}

func TestRoundTripThroughReopen(t *testing.T) {
	db, base := setupTestDB(t)
	table, err := db.CreateTable("people", []schema.Column{
		{Name: "id", Type: "int"},
		{Name: "name", Type: "str"},
		{Name: "height", Type: "float"},
		{Name: "born", Type: "date"},
	})
	assert.NilError(t, err)

	assert.NilError(t, table.Insert(1, "ada", 1.65, time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC)))
	assert.NilError(t, table.Insert(2, "alan", 1.78, time.Date(1912, 6, 23, 0, 0, 0, 0, time.UTC)))
	assert.NilError(t, table.Insert(3, "grace", 1.6, time.Date(1906, 12, 9, 0, 0, 0, 0, time.UTC)))

	reopened, err := OpenDatabase(context.Background(), base, "testdb")
	assert.NilError(t, err)

	again, ok := reopened.Table("people")
	assert.Assert(t, ok)
	assert.Assert(t, again.Schema().Equal(table.Schema()))

	want := slices.Collect(table.All())
	got := slices.Collect(again.All())
	assert.Equal(t, len(got), len(want))
	for i := range want {
		assert.Assert(t, got[i].Equal(want[i]), "row %d", i)
	}
}

func TestMalformedDocumentIsFatal(t *testing.T) {
	db, _ := setupTestDB(t)
	path := filepath.Join(db.Path(), "broken.json")
	assert.NilError(t, os.WriteFile(path, []byte(`{"columns": 3}`), 0644))

	_, err := db.CreateTable("broken", userColumns)

	var pe *errors.ParseError
	assert.Assert(t, stderrors.As(err, &pe))

	_, ok := db.Table("broken")
	assert.Assert(t, !ok)
}
