package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-catalog-cache/payment"
)

type paymentIntentInput struct {
	Items  []payment.LineItem `json:"items"`
	Coupon string             `json:"coupon"`
}

func (h *Handlers) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var input paymentIntentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	intent, err := h.payments.CreateIntent(r.Context(), input.Items, input.Coupon)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrNoItems):
			respondError(w, http.StatusBadRequest, "please enter items")
		case errors.Is(err, payment.ErrCouponNotFound):
			respondError(w, http.StatusBadRequest, "invalid coupon code")
		default:
			h.serverError(w, r, err)
		}
		return
	}

	respond(w, http.StatusCreated, envelope{
		"clientSecret": intent.ClientSecret,
		"totals":       intent.Totals,
	})
}

func (h *Handlers) applyDiscount(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("coupon")
	if code == "" {
		respondError(w, http.StatusBadRequest, "please enter a coupon code")
		return
	}

	coupon, err := h.payments.Discount(r.Context(), code)
	if err != nil {
		if errors.Is(err, payment.ErrCouponNotFound) {
			respondError(w, http.StatusBadRequest, "invalid coupon code")
			return
		}
		h.serverError(w, r, err)
		return
	}

	respond(w, http.StatusOK, envelope{"discount": coupon.Amount})
}

type couponInput struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

func (h *Handlers) newCoupon(w http.ResponseWriter, r *http.Request) {
	if h.coupons == nil {
		respondError(w, http.StatusNotFound, "coupons disabled")
		return
	}

	var input couponInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Code == "" || input.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "please enter both code and amount")
		return
	}

	coupon, err := h.coupons.Create(r.Context(), &payment.Coupon{
		Code:   input.Code,
		Amount: input.Amount,
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	respond(w, http.StatusCreated, envelope{
		"message": "coupon " + coupon.Code + " created successfully",
		"coupon":  coupon,
	})
}

func (h *Handlers) allCoupons(w http.ResponseWriter, r *http.Request) {
	if h.coupons == nil {
		respondError(w, http.StatusNotFound, "coupons disabled")
		return
	}

	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if coupons == nil {
		coupons = []*payment.Coupon{}
	}
	respond(w, http.StatusOK, envelope{"coupons": coupons})
}

func (h *Handlers) getCoupon(w http.ResponseWriter, r *http.Request) {
	if h.coupons == nil {
		respondError(w, http.StatusNotFound, "coupons disabled")
		return
	}

	coupon, err := h.coupons.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, payment.ErrCouponNotFound) {
			respondError(w, http.StatusNotFound, "coupon not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"coupon": coupon})
}

func (h *Handlers) updateCoupon(w http.ResponseWriter, r *http.Request) {
	if h.coupons == nil {
		respondError(w, http.StatusNotFound, "coupons disabled")
		return
	}

	var input couponInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	coupon, err := h.coupons.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, payment.ErrCouponNotFound) {
			respondError(w, http.StatusNotFound, "coupon not found")
			return
		}
		h.serverError(w, r, err)
		return
	}

	if input.Code != "" {
		coupon.Code = input.Code
	}
	if input.Amount > 0 {
		coupon.Amount = input.Amount
	}

	updated, err := h.coupons.Update(r.Context(), coupon)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{
		"message": "coupon updated successfully",
		"coupon":  updated,
	})
}

func (h *Handlers) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	if h.coupons == nil {
		respondError(w, http.StatusNotFound, "coupons disabled")
		return
	}

	if err := h.coupons.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, payment.ErrCouponNotFound) {
			respondError(w, http.StatusNotFound, "coupon not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"message": "coupon deleted successfully"})
}
