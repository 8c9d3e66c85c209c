// Package catalog holds the product model and the bun-backed source of
// truth the cache mirrors. The catalog store is the only component that
// originates product data; the cache layer above it never does.
package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Photo references an image hosted on the external asset service. Upload and
// removal happen outside this module; the catalog only stores the pointers.
type Photo struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Product is a catalog entry. Category is normalized to lowercase at write
// time; search filters lowercase their input to match.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description"`
	Category    string    `bun:"category,notnull" json:"category"`
	Price       float64   `bun:"price,notnull" json:"price"`
	Stock       int       `bun:"stock,notnull" json:"stock"`
	Photos      []Photo   `bun:"photos,type:jsonb" json:"photos"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// SortOrder is the price ordering applied to search results.
type SortOrder int

const (
	// SortNone leaves results in the store's natural order.
	SortNone SortOrder = iota
	// SortPriceAsc orders by ascending price.
	SortPriceAsc
	// SortPriceDesc orders by descending price.
	SortPriceDesc
)

// Query is the compiled filter/sort/pagination spec a search runs with.
// Zero values mean "no filter": an empty Term or Category applies no
// constraint, a nil MaxPrice applies no ceiling.
type Query struct {
	// Term matches product names by case-insensitive substring.
	Term string

	// Category matches exactly against the stored, lowercased value. The
	// query compiler lowercases it before it gets here.
	Category string

	// MaxPrice is an inclusive price ceiling.
	MaxPrice *float64

	Sort SortOrder

	// Limit and Offset page the result set. The matching total is always
	// computed over the unpaginated filter.
	Limit  int
	Offset int
}
