package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-catalog-cache/catalog"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		lines    []pricedLine
		discount float64
		want     Totals
	}{
		{
			name:  "flat shipping below threshold",
			lines: []pricedLine{{price: 100, quantity: 1}},
			want:  Totals{Subtotal: 100, Tax: 5, Shipping: 120, Total: 225},
		},
		{
			name:  "shipping waived above threshold",
			lines: []pricedLine{{price: 500, quantity: 4}},
			want:  Totals{Subtotal: 2000, Tax: 100, Shipping: 0, Total: 2100},
		},
		{
			name:  "threshold itself still pays shipping",
			lines: []pricedLine{{price: 1000, quantity: 1}},
			want:  Totals{Subtotal: 1000, Tax: 50, Shipping: 120, Total: 1170},
		},
		{
			name:  "fractional totals floor",
			lines: []pricedLine{{price: 33.33, quantity: 3}},
			want:  Totals{Subtotal: 99.99, Tax: 4.9995, Shipping: 120, Total: 224},
		},
		{
			name:     "discount reduces the total",
			lines:    []pricedLine{{price: 100, quantity: 2}},
			discount: 50,
			want:     Totals{Subtotal: 200, Tax: 10, Shipping: 120, Discount: 50, Total: 280},
		},
		{
			name:     "discount never drives the total negative",
			lines:    []pricedLine{{price: 10, quantity: 1}},
			discount: 5000,
			want:     Totals{Subtotal: 10, Tax: 0.5, Shipping: 120, Discount: 5000, Total: 0},
		},
		{
			name: "no lines",
			want: Totals{Shipping: 120, Total: 120},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.lines, tt.discount)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

type stubFinder struct {
	products map[string]*catalog.Product
}

func (f stubFinder) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, catalog.ErrNotFound
}

type recordingGateway struct {
	last ChargeRequest
	err  error
}

func (g *recordingGateway) CreateIntent(ctx context.Context, req ChargeRequest) (string, error) {
	g.last = req
	if g.err != nil {
		return "", g.err
	}
	return "pi_test_secret", nil
}

func intentFixture() (stubFinder, *catalog.Product) {
	p := &catalog.Product{
		ID:       uuid.New(),
		Name:     "Trail Runner",
		Category: "shoes",
		Price:    100,
	}
	return stubFinder{products: map[string]*catalog.Product{p.ID.String(): p}}, p
}

func TestService_CreateIntent(t *testing.T) {
	finder, product := intentFixture()
	gateway := &recordingGateway{}
	svc := NewService(finder, nil, gateway, nil)

	intent, err := svc.CreateIntent(context.Background(), []LineItem{
		{ProductID: product.ID.String(), Quantity: 2},
	}, "")
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if intent.ClientSecret != "pi_test_secret" {
		t.Errorf("expected the gateway secret but got: %q", intent.ClientSecret)
	}
	if intent.Totals.Total != 330 {
		t.Errorf("expected total 330 (200 + 10 tax + 120 shipping) but got: %d", intent.Totals.Total)
	}
	if gateway.last.Amount != 33000 {
		t.Errorf("expected the gateway charge in minor units but got: %d", gateway.last.Amount)
	}
	if gateway.last.Currency != "usd" {
		t.Errorf("expected usd charge but got: %q", gateway.last.Currency)
	}
}

func TestService_CreateIntent_NoItems(t *testing.T) {
	finder, _ := intentFixture()
	svc := NewService(finder, nil, &recordingGateway{}, nil)

	if _, err := svc.CreateIntent(context.Background(), nil, ""); !errors.Is(err, ErrNoItems) {
		t.Errorf("expected ErrNoItems but got: %v", err)
	}
}

func TestService_CreateIntent_SkipsUnknownAndZeroQuantity(t *testing.T) {
	finder, product := intentFixture()
	gateway := &recordingGateway{}
	svc := NewService(finder, nil, gateway, nil)

	intent, err := svc.CreateIntent(context.Background(), []LineItem{
		{ProductID: product.ID.String(), Quantity: 1},
		{ProductID: uuid.NewString(), Quantity: 3},
		{ProductID: product.ID.String(), Quantity: 0},
	}, "")
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if intent.Totals.Subtotal != 100 {
		t.Errorf("expected only the known, positive-quantity line to price: %+v", intent.Totals)
	}
}

func TestService_CreateIntent_UnknownCoupon(t *testing.T) {
	finder, product := intentFixture()
	svc := NewService(finder, nil, &recordingGateway{}, nil)

	_, err := svc.CreateIntent(context.Background(), []LineItem{
		{ProductID: product.ID.String(), Quantity: 1},
	}, "NOPE")
	if !errors.Is(err, ErrCouponNotFound) {
		t.Errorf("expected ErrCouponNotFound but got: %v", err)
	}
}

func TestService_CreateIntent_GatewayError(t *testing.T) {
	finder, product := intentFixture()
	gatewayErr := errors.New("processor offline")
	svc := NewService(finder, nil, &recordingGateway{err: gatewayErr}, nil)

	_, err := svc.CreateIntent(context.Background(), []LineItem{
		{ProductID: product.ID.String(), Quantity: 1},
	}, "")
	if !errors.Is(err, gatewayErr) {
		t.Errorf("expected the gateway error to surface but got: %v", err)
	}
}

func TestOfflineGateway_SecretsAreUnique(t *testing.T) {
	gw := OfflineGateway{}

	a, err := gw.CreateIntent(context.Background(), ChargeRequest{Amount: 100})
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	b, _ := gw.CreateIntent(context.Background(), ChargeRequest{Amount: 100})
	if a == b {
		t.Errorf("expected distinct client secrets")
	}
}
