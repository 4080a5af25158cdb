package command

import (
	"context"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/simpledb/internal/domain/errors"
	"github.com/leengari/simpledb/internal/storage/manager"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	return NewSession(context.Background(), manager.NewRegistry(t.TempDir()))
}

// run executes each line and fails the test on the first error
func run(t *testing.T, s *Session, lines ...string) *Result {
	t.Helper()
	var res *Result
	for _, line := range lines {
		var err error
		res, err = s.Execute(line)
		assert.NilError(t, err, "executing %q", line)
	}
	return res
}

func setupShop(t *testing.T) *Session {
	t.Helper()
	s := newSession(t)
	run(t, s,
		"CREATE DATABASE shop",
		"USE shop",
		"CREATE TABLE items (id INT, tag str, price FLOAT, added DATE)",
		"INSERT INTO items VALUES (1, 'b', 2, '2024-03-01')",
		"INSERT INTO items VALUES (2, 'a', 1.5, '2024-01-15')",
		"INSERT INTO items VALUES (3, 'a', 9.25, '2024-02-10')",
	)
	return s
}

func TestDatabaseLifecycle(t *testing.T) {
	s := newSession(t)

	res := run(t, s, "CREATE DATABASE shop")
	assert.Equal(t, res.Message, "Database 'shop' created")

	res = run(t, s, "SHOW DATABASES")
	assert.DeepEqual(t, res.Rows, [][]interface{}{{"shop"}})

	_, err := s.Execute("USE ghost")
	assert.ErrorContains(t, err, "does not exist")
	assert.Equal(t, s.Database(), "")

	run(t, s, "USE shop")
	assert.Equal(t, s.Database(), "shop")

	res = run(t, s, "DROP DATABASE shop")
	assert.Equal(t, res.Message, "Database 'shop' dropped")
	assert.Equal(t, s.Database(), "")

	res = run(t, s, "SHOW DATABASES")
	assert.Equal(t, len(res.Rows), 0)
}

func TestCreateDatabaseTwice(t *testing.T) {
	s := newSession(t)
	run(t, s, "CREATE DATABASE shop")

	_, err := s.Execute("CREATE DATABASE shop")
	assert.Assert(t, errors.IsValidationError(err))
}

func TestRequiresDatabase(t *testing.T) {
	s := newSession(t)
	_, err := s.Execute("SHOW TABLES")
	assert.ErrorContains(t, err, "no database selected")
}

func TestParseErrorsAreReported(t *testing.T) {
	s := newSession(t)
	_, err := s.Execute("SELEC * FROM items")
	assert.ErrorContains(t, err, "parse error")
}

func TestShowAndDescribe(t *testing.T) {
	s := setupShop(t)

	res := run(t, s, "SHOW TABLES")
	assert.DeepEqual(t, res.Rows, [][]interface{}{{"items"}})

	res = run(t, s, "DESCRIBE items")
	assert.DeepEqual(t, res.Rows, [][]interface{}{
		{"id", "INT"},
		{"tag", "TEXT"},
		{"price", "FLOAT"},
		{"added", "DATE"},
	})

	_, err := s.Execute("DESCRIBE nothing")
	assert.ErrorContains(t, err, "table not found")
}

func TestSelectAll(t *testing.T) {
	s := setupShop(t)

	res := run(t, s, "SELECT * FROM items")
	assert.DeepEqual(t, res.Columns, []string{"id", "tag", "price", "added"})
	assert.DeepEqual(t, res.Types, []string{"INT", "TEXT", "FLOAT", "DATE"})
	assert.DeepEqual(t, res.Rows, [][]interface{}{
		{int64(1), "b", float64(2), "2024-03-01"},
		{int64(2), "a", 1.5, "2024-01-15"},
		{int64(3), "a", 9.25, "2024-02-10"},
	})
	assert.Equal(t, res.Message, "Returned 3 rows")
}

func TestSelectWhereAndProjection(t *testing.T) {
	s := setupShop(t)

	res := run(t, s, "SELECT id FROM items WHERE tag = 'a'")
	assert.DeepEqual(t, res.Rows, [][]interface{}{{int64(2)}, {int64(3)}})

	res = run(t, s, "SELECT id FROM items WHERE id = 1 OR added = '2024-02-10'")
	assert.DeepEqual(t, res.Rows, [][]interface{}{{int64(1)}, {int64(3)}})

	// same column twice still ORs
	res = run(t, s, "SELECT id FROM items WHERE id = 1 OR id = 2")
	assert.DeepEqual(t, res.Rows, [][]interface{}{{int64(1)}, {int64(2)}})

	res = run(t, s, "SELECT id FROM items WHERE missing = 1")
	assert.Equal(t, len(res.Rows), 0)

	_, err := s.Execute("SELECT nope FROM items")
	assert.ErrorContains(t, err, "unknown column: nope")
}

func TestSelectOrderBy(t *testing.T) {
	s := setupShop(t)

	res := run(t, s, "SELECT id FROM items ORDER BY tag")
	assert.DeepEqual(t, res.Rows, [][]interface{}{{int64(2)}, {int64(3)}, {int64(1)}})

	res = run(t, s, "SELECT id FROM items ORDER BY added DESC")
	assert.DeepEqual(t, res.Rows, [][]interface{}{{int64(1)}, {int64(3)}, {int64(2)}})

	res = run(t, s, "SELECT id FROM items WHERE tag = 'a' ORDER BY price DESC")
	assert.DeepEqual(t, res.Rows, [][]interface{}{{int64(3)}, {int64(2)}})

	_, err := s.Execute("SELECT * FROM items ORDER BY nope")
	assert.Assert(t, errors.IsValidationError(err))
}

func TestSelectCount(t *testing.T) {
	s := setupShop(t)

	res := run(t, s, "SELECT COUNT(*) FROM items")
	assert.DeepEqual(t, res.Rows, [][]interface{}{{int64(3)}})

	res = run(t, s, "SELECT COUNT(*) FROM items WHERE tag = 'a'")
	assert.DeepEqual(t, res.Rows, [][]interface{}{{int64(2)}})
}

func TestInsertValidation(t *testing.T) {
	s := setupShop(t)

	for _, line := range []string{
		"INSERT INTO items VALUES (4, 'c', 1.0)",
		"INSERT INTO items VALUES ('4', 'c', 1.0, '2024-01-01')",
		"INSERT INTO items VALUES (4.5, 'c', 1.0, '2024-01-01')",
		"INSERT INTO items VALUES (4, 'c', 1.0, 'yesterday')",
	} {
		_, err := s.Execute(line)
		assert.Assert(t, errors.IsValidationError(err), "%q: got %v", line, err)
	}

	res := run(t, s, "SELECT COUNT(*) FROM items")
	assert.DeepEqual(t, res.Rows, [][]interface{}{{int64(3)}})
}

func TestSessionsShareRegistry(t *testing.T) {
	reg := manager.NewRegistry(t.TempDir())
	a := NewSession(context.Background(), reg)
	b := NewSession(context.Background(), reg)

	run(t, a, "CREATE DATABASE shop", "USE shop", "CREATE TABLE t (id INT)", "INSERT INTO t VALUES (7)")

	res := run(t, b, "USE shop", "SELECT * FROM t")
	assert.DeepEqual(t, res.Rows, [][]interface{}{{int64(7)}})
}
