package catalogcache

// Scope declares which cache namespaces a product mutation touches. The
// caller of a mutation builds one, hands it to OnProductChanged, and discards
// it; scopes are never persisted.
type Scope struct {
	// Product purges the latest-products and categories namespaces. Any
	// create, update, or delete can change the most-recent listing and the
	// set of distinct categories.
	Product bool

	// Admin purges the all-products namespace.
	Admin bool

	// ProductIDs purges the product:<id> entry for every listed id.
	ProductIDs []string

	// SearchSpace purges the entire search namespace. True whenever any
	// attribute used in a filter or sort (name, price, category) could have
	// changed, which in practice is every product mutation.
	SearchSpace bool
}

// MutationScope is the scope every ordinary product create, update, or
// delete uses: all listing namespaces plus the search space, and the entries
// of the affected ids.
func MutationScope(ids ...string) Scope {
	return Scope{
		Product:     true,
		Admin:       true,
		ProductIDs:  ids,
		SearchSpace: true,
	}
}
