package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound signals that the requested product does not exist. It is
// surfaced to callers as a not-found result and is never cached.
var ErrNotFound = errors.New("catalog: product not found")

// Store is the bun-backed source of truth for products. CRUD and listing go
// through a go-repository-bun repository; the distinct-category query drops
// to bun directly since the repository contract has no projection primitive.
type Store struct {
	db       *bun.DB
	products repository.Repository[*Product]
}

// NewStore builds a Store over the given database handle.
func NewStore(db *bun.DB) *Store {
	handlers := repository.ModelHandlers[*Product]{
		NewRecord: func() *Product { return &Product{} },
		GetID: func(p *Product) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Product, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string { return "name" },
	}

	return &Store{
		db:       db,
		products: repository.NewRepository[*Product](db, handlers),
	}
}

// Migrate creates the products table when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*Product)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// FindLatest returns the most recently created products, newest first.
func (s *Store) FindLatest(ctx context.Context, limit int) ([]*Product, error) {
	items, _, err := s.products.List(ctx, func(sq *bun.SelectQuery) *bun.SelectQuery {
		return sq.OrderExpr("p.created_at DESC").Limit(limit)
	})
	return items, err
}

// FindAll returns every product, unfiltered. Serves the admin listing.
func (s *Store) FindAll(ctx context.Context) ([]*Product, error) {
	items, _, err := s.products.List(ctx)
	return items, err
}

// FindByID returns a single product or ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (*Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	product := new(Product)
	err = s.db.NewSelect().
		Model(product).
		Where("p.id = ?", uid).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

// DistinctCategories returns the sorted set of category values in use.
func (s *Store) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.db.NewSelect().
		Model((*Product)(nil)).
		ColumnExpr("DISTINCT p.category").
		OrderExpr("p.category ASC").
		Scan(ctx, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Search runs a compiled query and returns the requested page plus the total
// match count over the unpaginated filter. Both come from one List call; the
// underlying fetch and count statements are still separate and not
// transactionally consistent with each other under concurrent writes, which
// this engine accepts.
func (s *Store) Search(ctx context.Context, q Query) ([]*Product, int, error) {
	return s.products.List(ctx, q.criteria()...)
}

// Create inserts a product, assigning an id when absent and normalizing the
// category to lowercase.
func (s *Store) Create(ctx context.Context, p *Product) (*Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Category = strings.ToLower(p.Category)
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	return s.products.Create(ctx, p)
}

// Update persists changes to an existing product, keeping the category
// lowercased.
func (s *Store) Update(ctx context.Context, p *Product) (*Product, error) {
	p.Category = strings.ToLower(p.Category)
	p.UpdatedAt = time.Now()

	return s.products.Update(ctx, p)
}

// Delete removes a product and returns its last snapshot, which callers need
// for asset cleanup and invalidation scoping. Returns ErrNotFound when the
// id does not exist.
func (s *Store) Delete(ctx context.Context, id string) (*Product, error) {
	product, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.products.Delete(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// criteria translates the query into repository select criteria. The count
// side of List ignores limit and offset, so the total always covers the full
// filtered set.
func (q Query) criteria() []repository.SelectCriteria {
	var criteria []repository.SelectCriteria

	if q.Term != "" {
		pattern := "%" + strings.ToLower(q.Term) + "%"
		criteria = append(criteria, func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Where("LOWER(p.name) LIKE ?", pattern)
		})
	}

	if q.Category != "" {
		category := q.Category
		criteria = append(criteria, func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Where("p.category = ?", category)
		})
	}

	if q.MaxPrice != nil {
		ceiling := *q.MaxPrice
		criteria = append(criteria, func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Where("p.price <= ?", ceiling)
		})
	}

	switch q.Sort {
	case SortPriceAsc:
		criteria = append(criteria, func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.OrderExpr("p.price ASC")
		})
	case SortPriceDesc:
		criteria = append(criteria, func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.OrderExpr("p.price DESC")
		})
	}

	if q.Limit > 0 {
		limit, offset := q.Limit, q.Offset
		criteria = append(criteria, func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Limit(limit).Offset(offset)
		})
	}

	return criteria
}
