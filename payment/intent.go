// Package payment computes checkout totals and hands them to a payment
// gateway as an intent. Prices always come from the catalog at intent time;
// client-submitted amounts are never trusted.
package payment

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/catalog"
)

// ErrNoItems signals an intent request with an empty line-item list.
var ErrNoItems = errors.New("payment: no items")

const (
	taxRate           = 0.05
	shippingFlat      = 120
	freeShippingAbove = 1000
	defaultCurrency   = "usd"
	intentDescription = "Payment for Order"
)

// LineItem is one requested product and quantity.
type LineItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Totals is the price breakdown of a checkout. Total is floored to a whole
// currency unit; the gateway charges Total.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shippingCharges"`
	Discount float64 `json:"discount"`
	Total    int64   `json:"total"`
}

// Intent is the result of a created payment intent: the gateway's client
// secret plus the totals it was created with.
type Intent struct {
	ClientSecret string `json:"clientSecret"`
	Totals       Totals `json:"totals"`
}

// ChargeRequest is what the service hands the gateway.
type ChargeRequest struct {
	// Amount is the charge in the currency's minor unit.
	Amount      int64
	Currency    string
	Description string
}

// Gateway creates payment intents with an external processor.
type Gateway interface {
	CreateIntent(ctx context.Context, req ChargeRequest) (clientSecret string, err error)
}

// ProductFinder is the slice of the catalog the service prices items against.
// *catalog.Store satisfies it, as does the cached single-product accessor.
type ProductFinder interface {
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
}

// ComputeTotals prices the given lines and applies the discount. Lines whose
// price is unknown (nil product) are skipped. Tax is 5% of the subtotal and
// the flat shipping charge is waived above the free-shipping threshold. The
// discount is subtracted last and the result floored, never below zero.
func ComputeTotals(lines []pricedLine, discount float64) Totals {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.price * float64(line.quantity)
	}

	tax := subtotal * taxRate

	var shipping float64
	if subtotal <= freeShippingAbove {
		shipping = shippingFlat
	}

	total := math.Floor(subtotal + tax + shipping - discount)
	if total < 0 {
		total = 0
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    int64(total),
	}
}

type pricedLine struct {
	price    float64
	quantity int
}

// Service turns line items into payment intents: it resolves current prices,
// applies an optional coupon, and creates the charge with the gateway.
type Service struct {
	products ProductFinder
	coupons  *CouponStore
	gateway  Gateway
	logger   *zap.Logger
}

// NewService builds a payment service. The coupon store may be nil, in which
// case coupon codes are rejected as not found.
func NewService(products ProductFinder, coupons *CouponStore, gateway Gateway, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		products: products,
		coupons:  coupons,
		gateway:  gateway,
		logger:   logger,
	}
}

// CreateIntent prices the items at their current catalog values, applies the
// coupon when a code is given, and creates the gateway intent. Items whose
// product no longer exists are skipped rather than failing the checkout.
func (s *Service) CreateIntent(ctx context.Context, items []LineItem, couponCode string) (*Intent, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	var lines []pricedLine
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				s.logger.Warn("skipping unknown product in payment intent",
					zap.String("product_id", item.ProductID))
				continue
			}
			return nil, err
		}
		lines = append(lines, pricedLine{price: product.Price, quantity: item.Quantity})
	}

	var discount float64
	if couponCode != "" {
		coupon, err := s.Discount(ctx, couponCode)
		if err != nil {
			return nil, err
		}
		discount = coupon.Amount
	}

	totals := ComputeTotals(lines, discount)

	secret, err := s.gateway.CreateIntent(ctx, ChargeRequest{
		Amount:      totals.Total * 100,
		Currency:    defaultCurrency,
		Description: intentDescription,
	})
	if err != nil {
		return nil, err
	}

	return &Intent{ClientSecret: secret, Totals: totals}, nil
}

// Discount resolves a coupon code to its stored coupon.
func (s *Service) Discount(ctx context.Context, code string) (*Coupon, error) {
	if s.coupons == nil {
		return nil, ErrCouponNotFound
	}
	return s.coupons.ByCode(ctx, code)
}
