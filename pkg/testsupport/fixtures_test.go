package testsupport

import (
	"context"
	"testing"
)

func TestNewCatalogStore_IsolatedPerTest(t *testing.T) {
	store := NewCatalogStore(t)

	products, err := store.FindAll(context.Background())
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("expected a fresh store to be empty but got: %d products", len(products))
	}
}

func TestSeedCatalog(t *testing.T) {
	store := NewCatalogStore(t)
	seeded := SeedCatalog(t, store)

	if len(seeded) != 4 {
		t.Fatalf("expected 4 seeded products but got: %d", len(seeded))
	}

	categories, err := store.DistinctCategories(context.Background())
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if len(categories) != 2 {
		t.Errorf("expected 2 categories but got: %v", categories)
	}
	for _, p := range seeded {
		if p.ID.String() == "" {
			t.Errorf("expected seeded products to carry ids")
		}
	}
}
