package catalogcache

import (
	"strings"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalog"
)

// SearchParams are the raw search parameters as they arrive from a request,
// before normalization. Empty Term and Category mean "no filter", a nil
// MaxPrice means no ceiling, a Sort other than "asc" or "desc" means natural
// order, and any Page below 1 is treated as the first page.
type SearchParams struct {
	Term     string
	Category string
	MaxPrice *float64
	Sort     string
	Page     int
}

// compiledSearch is the result of normalizing raw parameters: the filter/
// sort/pagination spec to run against the catalog store and the canonical
// tuple the cache key derives from.
type compiledSearch struct {
	query     catalog.Query
	keyParams cache.SearchKeyParams
	page      int
}

// compileSearch normalizes raw parameters into a compiledSearch. The
// normalization is what makes key derivation deterministic: two requests
// that mean the same search always compile to the same tuple.
func compileSearch(p SearchParams, pageSize int) compiledSearch {
	page := p.Page
	if page < 1 {
		page = 1
	}

	var sort string
	var order catalog.SortOrder
	switch p.Sort {
	case "asc":
		sort, order = "asc", catalog.SortPriceAsc
	case "desc":
		sort, order = "desc", catalog.SortPriceDesc
	}

	// Categories are stored lowercased; normalize the filter side so the
	// match is effectively case-insensitive.
	category := strings.ToLower(p.Category)

	keyParams := cache.SearchKeyParams{
		Term:        p.Term,
		HasTerm:     p.Term != "",
		Category:    category,
		HasCategory: category != "",
		Sort:        sort,
		Page:        page,
	}
	if p.MaxPrice != nil {
		keyParams.PriceCeiling = *p.MaxPrice
		keyParams.HasPrice = true
	}

	return compiledSearch{
		query: catalog.Query{
			Term:     p.Term,
			Category: category,
			MaxPrice: p.MaxPrice,
			Sort:     order,
			Limit:    pageSize,
			Offset:   (page - 1) * pageSize,
		},
		keyParams: keyParams,
		page:      page,
	}
}

// totalPages computes the page count for a match total: ceil(total/pageSize),
// with zero matches yielding zero pages.
func totalPages(total, pageSize int) int {
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
