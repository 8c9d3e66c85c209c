package cache

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator delimits cache key segments. Field values are escaped before
// joining so user-supplied text can never forge a segment boundary.
const KeySeparator = "::"

// Fixed namespace keys. These namespaces cache a single entry each, so the
// tag itself is the key.
const (
	KeyLatestProducts = "latest-products"
	KeyCategories     = "categories"
	KeyAllProducts    = "all-products"
)

const (
	productNamespace = "product"
	searchNamespace  = "search"
)

// maxFieldLen bounds the escaped length of a free-text key segment. Longer
// values are replaced by an xxhash digest so keys stay short regardless of
// what users type into the search box.
const maxFieldLen = 64

// ProductKey returns the cache key for a single product snapshot.
func ProductKey(id string) string {
	return productNamespace + ":" + id
}

// SearchKeyPrefix returns the prefix shared by every search cache key. The
// invalidation engine purges the whole namespace through this prefix.
func SearchKeyPrefix() string {
	return searchNamespace + KeySeparator
}

// SearchKeyParams is the normalized search parameter tuple a search cache key
// is derived from. Absent optional fields are encoded distinctly from empty
// or zero values, so "no filter" and "filter equal to the zero value" never
// collide.
type SearchKeyParams struct {
	Term         string
	HasTerm      bool
	Category     string
	HasCategory  bool
	PriceCeiling float64
	HasPrice     bool
	Sort         string // "asc", "desc", or "" for natural order
	Page         int
}

// SearchKey maps a normalized parameter tuple to its cache key. The mapping
// is pure and deterministic: equal tuples always produce equal keys, and
// tuples differing in any field produce different keys.
func SearchKey(p SearchKeyParams) string {
	segs := make([]string, 0, 6)
	segs = append(segs, searchNamespace)

	if p.HasTerm {
		segs = append(segs, "t:"+escapeField(p.Term))
	} else {
		segs = append(segs, "-")
	}

	if p.HasCategory {
		segs = append(segs, "c:"+escapeField(p.Category))
	} else {
		segs = append(segs, "-")
	}

	if p.HasPrice {
		segs = append(segs, "p:"+strconv.FormatFloat(p.PriceCeiling, 'f', -1, 64))
	} else {
		segs = append(segs, "-")
	}

	if p.Sort != "" {
		segs = append(segs, "s:"+p.Sort)
	} else {
		segs = append(segs, "-")
	}

	segs = append(segs, "pg:"+strconv.Itoa(p.Page))

	return strings.Join(segs, KeySeparator)
}

// escapeField makes a field value safe to embed between separators. Escaped
// output contains no ':' or unescaped separator characters, so the tagged
// segment formats above stay unambiguous. Oversized values collapse to a
// digest; the digest carries its own "x:" tag, which escaped text can never
// produce.
func escapeField(s string) string {
	esc := url.QueryEscape(s)
	if len(esc) > maxFieldLen {
		return "x:" + strconv.FormatUint(xxhash.Sum64String(s), 16)
	}
	return esc
}
