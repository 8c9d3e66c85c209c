// Package httpapi exposes the catalog, search, and payment operations over
// HTTP. Read routes serve from the cache engine; mutation routes write to
// the catalog store and invalidate the affected cache namespaces before
// responding.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/catalogcache"
	"github.com/goliatone/go-catalog-cache/payment"
)

// Handlers bundles the services the routes dispatch to.
type Handlers struct {
	products *catalogcache.Service
	writer   ProductWriter
	payments *payment.Service
	coupons  *payment.CouponStore
	logger   *zap.Logger
}

// NewHandlers wires the route handlers. The coupon store may be nil when
// coupons are disabled; its routes then answer 404.
func NewHandlers(products *catalogcache.Service, writer ProductWriter, payments *payment.Service, coupons *payment.CouponStore, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		products: products,
		writer:   writer,
		payments: payments,
		coupons:  coupons,
		logger:   logger,
	}
}

// Router builds the chi router with the standard middleware stack.
func Router(h *Handlers, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(h.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/product", func(r chi.Router) {
			r.Get("/latest", h.latestProducts)
			r.Get("/categories", h.categories)
			r.Get("/admin-products", h.adminProducts)
			r.Get("/all", h.searchProducts)
			r.Post("/new", h.createProduct)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.singleProduct)
				r.Put("/", h.updateProduct)
				r.Delete("/", h.deleteProduct)
			})
		})

		r.Route("/payment", func(r chi.Router) {
			r.Post("/create", h.createPaymentIntent)
			r.Get("/discount", h.applyDiscount)
			r.Route("/coupon", func(r chi.Router) {
				r.Post("/new", h.newCoupon)
				r.Get("/all", h.allCoupons)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.getCoupon)
					r.Put("/", h.updateCoupon)
					r.Delete("/", h.deleteCoupon)
				})
			})
		})
	})

	return r
}
