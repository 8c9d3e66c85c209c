package payment

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

// ErrCouponNotFound signals that no coupon matches the given code.
var ErrCouponNotFound = errors.New("payment: coupon not found")

// Coupon is a flat-amount discount redeemable at checkout. Codes are
// normalized to uppercase so lookups are case-insensitive.
type Coupon struct {
	bun.BaseModel `bun:"table:coupons,alias:cp"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Code      string    `bun:"code,notnull,unique" json:"code"`
	Amount    float64   `bun:"amount,notnull" json:"amount"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// CouponStore is the bun-backed store for coupons.
type CouponStore struct {
	db      *bun.DB
	coupons repository.Repository[*Coupon]
}

// NewCouponStore builds a CouponStore over the given database handle.
func NewCouponStore(db *bun.DB) *CouponStore {
	handlers := repository.ModelHandlers[*Coupon]{
		NewRecord: func() *Coupon { return &Coupon{} },
		GetID: func(c *Coupon) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Coupon, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string { return "code" },
	}

	return &CouponStore{
		db:      db,
		coupons: repository.NewRepository[*Coupon](db, handlers),
	}
}

// Migrate creates the coupons table when it does not exist yet.
func (s *CouponStore) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*Coupon)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Create inserts a coupon, assigning an id when absent and normalizing the
// code to uppercase.
func (s *CouponStore) Create(ctx context.Context, c *Coupon) (*Coupon, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Code = normalizeCode(c.Code)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	return s.coupons.Create(ctx, c)
}

// ByCode returns the coupon with the given code or ErrCouponNotFound.
func (s *CouponStore) ByCode(ctx context.Context, code string) (*Coupon, error) {
	normalized := normalizeCode(code)
	items, _, err := s.coupons.List(ctx, func(sq *bun.SelectQuery) *bun.SelectQuery {
		return sq.Where("cp.code = ?", normalized).Limit(1)
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCouponNotFound
	}
	return items[0], nil
}

// List returns every coupon, newest first.
func (s *CouponStore) List(ctx context.Context) ([]*Coupon, error) {
	items, _, err := s.coupons.List(ctx, func(sq *bun.SelectQuery) *bun.SelectQuery {
		return sq.OrderExpr("cp.created_at DESC")
	})
	return items, err
}

// ByID returns the coupon with the given id or ErrCouponNotFound.
func (s *CouponStore) ByID(ctx context.Context, id string) (*Coupon, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrCouponNotFound
	}

	coupon := new(Coupon)
	err = s.db.NewSelect().
		Model(coupon).
		Where("cp.id = ?", uid).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return coupon, nil
}

// Update persists changes to an existing coupon, keeping the code
// normalized.
func (s *CouponStore) Update(ctx context.Context, c *Coupon) (*Coupon, error) {
	c.Code = normalizeCode(c.Code)
	return s.coupons.Update(ctx, c)
}

// Delete removes a coupon by id. Returns ErrCouponNotFound when the id does
// not exist.
func (s *CouponStore) Delete(ctx context.Context, id string) error {
	coupon, err := s.ByID(ctx, id)
	if err != nil {
		return err
	}
	return s.coupons.Delete(ctx, coupon)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
