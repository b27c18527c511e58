package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendaflow/pos-backend/api/responses"
	"github.com/vendaflow/pos-backend/api/validators"
	couponsvc "github.com/vendaflow/pos-backend/internal/coupons"
	"github.com/vendaflow/pos-backend/pkg/enums"
	pkgerrors "github.com/vendaflow/pos-backend/pkg/errors"
	"github.com/vendaflow/pos-backend/pkg/logger"
)

// CreateCoupon handles manual coupon issuance.
func CreateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload createCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseDiscountKind(strings.TrimSpace(payload.Kind))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount kind"))
			return
		}

		var customerID *uuid.UUID
		if payload.CustomerID != nil {
			parsed, err := uuid.Parse(*payload.CustomerID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
				return
			}
			customerID = &parsed
		}

		coupon, err := svc.Create(r.Context(), couponsvc.CreateParams{
			Code:        payload.Code,
			Kind:        kind,
			AmountCents: payload.AmountCents,
			Percent:     payload.Percent,
			CustomerID:  customerID,
			ExpiresAt:   payload.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

// GetCoupon returns one coupon by id.
func GetCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "coupon id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coupon)
	}
}

// ListCoupons returns a coupon page.
func ListCoupons(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := validators.ParseQueryUUID(r, "customer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), couponsvc.ListParams{
			Limit:      limit,
			Cursor:     r.URL.Query().Get("cursor"),
			ActiveOnly: validators.ParseQueryBool(r, "active_only"),
			CustomerID: customerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// DeactivateCoupon retires a coupon so it can no longer be redeemed.
func DeactivateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "coupon id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

// ValidateCoupon checks whether a code is redeemable without consuming it,
// so the register can vet a coupon before settlement.
func ValidateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload validateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var customerID *uuid.UUID
		if payload.CustomerID != nil {
			parsed, err := uuid.Parse(*payload.CustomerID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
				return
			}
			customerID = &parsed
		}

		coupon, _, err := svc.Resolve(r.Context(), payload.Code, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"valid": true, "coupon": coupon})
	}
}

type validateCouponRequest struct {
	Code       string  `json:"code" validate:"required"`
	CustomerID *string `json:"customer_id,omitempty" validate:"omitempty,uuid"`
}

type createCouponRequest struct {
	Code        string           `json:"code" validate:"required"`
	Kind        string           `json:"kind" validate:"required"`
	AmountCents *int64           `json:"amount_cents,omitempty" validate:"omitempty,min=1"`
	Percent     *decimal.Decimal `json:"percent,omitempty"`
	CustomerID  *string          `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
}
