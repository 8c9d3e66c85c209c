// Package testsupport provides shared fixtures for tests that need a real
// database: an in-memory SQLite handle wired for bun plus canned catalog
// data.
package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-catalog-cache/catalog"
)

// NewSQLiteDB opens an isolated in-memory SQLite database named after the
// test and returns a bun handle over it. The connection pool is capped at
// one so the shared-cache database survives for the whole test.
func NewSQLiteDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })
	return db
}

// NewCatalogStore builds a migrated catalog store over a fresh in-memory
// database.
func NewCatalogStore(t *testing.T) *catalog.Store {
	t.Helper()

	store := catalog.NewStore(NewSQLiteDB(t))
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate products: %v", err)
	}
	return store
}

// SeedProduct inserts one product with sensible defaults for the fields the
// caller does not care about.
func SeedProduct(t *testing.T, store *catalog.Store, name, category string, price float64) *catalog.Product {
	t.Helper()

	created, err := store.Create(context.Background(), &catalog.Product{
		Name:     name,
		Category: category,
		Price:    price,
		Stock:    10,
	})
	if err != nil {
		t.Fatalf("failed to seed product %q: %v", name, err)
	}
	return created
}

// SeedCatalog inserts a small canned product set covering two categories and
// a spread of prices, and returns it in insertion order.
func SeedCatalog(t *testing.T, store *catalog.Store) []*catalog.Product {
	t.Helper()

	return []*catalog.Product{
		SeedProduct(t, store, "Trail Runner", "Shoes", 120),
		SeedProduct(t, store, "Road Runner", "Shoes", 90),
		SeedProduct(t, store, "Thinkpad", "Laptop", 900),
		SeedProduct(t, store, "Macbook", "Laptop", 1800),
	}
}
