package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/simpledb/internal/domain/errors"
	"github.com/leengari/simpledb/internal/domain/schema"
)

func TestRegistryCachesHandles(t *testing.T) {
	reg := NewRegistry(t.TempDir())
	ctx := context.Background()

	created, err := reg.Create(ctx, "shop")
	assert.NilError(t, err)

	got, err := reg.Get(ctx, "shop")
	assert.NilError(t, err)
	assert.Equal(t, got, created)
}

func TestRegistryCreateReplacesStaleHandle(t *testing.T) {
	reg := NewRegistry(t.TempDir())
	ctx := context.Background()

	stale, err := reg.Get(ctx, "shop")
	assert.NilError(t, err)

	fresh, err := reg.Create(ctx, "shop")
	assert.NilError(t, err)
	assert.Assert(t, fresh != stale)

	_, err = fresh.CreateTable("users", []schema.Column{{Name: "id", Type: schema.ColumnTypeInt}})
	assert.NilError(t, err)
}

func TestRegistryCreateTwice(t *testing.T) {
	reg := NewRegistry(t.TempDir())
	ctx := context.Background()

	_, err := reg.Create(ctx, "shop")
	assert.NilError(t, err)

	_, err = reg.Create(ctx, "shop")
	assert.Assert(t, errors.IsValidationError(err))
}

func TestRegistryListAndDrop(t *testing.T) {
	base := t.TempDir()
	reg := NewRegistry(base)
	ctx := context.Background()

	dbs, err := reg.List()
	assert.NilError(t, err)
	assert.Equal(t, len(dbs), 0)

	for _, name := range []string{"zoo", "app"} {
		_, err := reg.Create(ctx, name)
		assert.NilError(t, err)
	}
	assert.NilError(t, os.WriteFile(filepath.Join(base, "stray.json"), []byte("{}"), 0644))

	dbs, err = reg.List()
	assert.NilError(t, err)
	assert.DeepEqual(t, dbs, []string{"app", "zoo"})

	assert.NilError(t, reg.Drop("zoo"))
	dbs, err = reg.List()
	assert.NilError(t, err)
	assert.DeepEqual(t, dbs, []string{"app"})

	assert.ErrorContains(t, reg.Drop("zoo"), "does not exist")
}

func TestListDatabasesMissingBase(t *testing.T) {
	dbs, err := ListDatabases(filepath.Join(t.TempDir(), "nowhere"))
	assert.NilError(t, err)
	assert.Equal(t, len(dbs), 0)
}

func TestSerialize(t *testing.T) {
	reg := NewRegistry(t.TempDir())

	var wg sync.WaitGroup
	counter := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Serialize(func() { counter++ })
		}()
	}
	wg.Wait()

	assert.Equal(t, counter, 50)
}

func TestDropRejectsPathNames(t *testing.T) {
	reg := NewRegistry(t.TempDir())
	for _, name := range []string{"", "..", "a/b"} {
		assert.Assert(t, errors.IsValidationError(reg.Drop(name)), "name %q", name)
	}
}
