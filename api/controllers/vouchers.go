package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/LeDucTai-11/MyStore-BE/api/responses"
	"github.com/LeDucTai-11/MyStore-BE/api/validators"
	"github.com/LeDucTai-11/MyStore-BE/internal/vouchers"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
)

type voucherCreateRequest struct {
	Code          string    `json:"code" validate:"required,max=64"`
	Description   *string   `json:"description" validate:"omitempty,max=500"`
	Type          string    `json:"type" validate:"required,oneof=FIXED PERCENTAGE"`
	DiscountValue int64     `json:"discountValue" validate:"gt=0"`
	MinValueOrder int64     `json:"minValueOrder" validate:"gte=0"`
	Quantity      int       `json:"quantity" validate:"gte=0"`
	StartDate     time.Time `json:"startDate" validate:"required"`
	EndDate       time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
}

type voucherUpdateRequest struct {
	Code          *string    `json:"code" validate:"omitempty,min=1,max=64"`
	Description   *string    `json:"description" validate:"omitempty,max=500"`
	Type          *string    `json:"type" validate:"omitempty,oneof=FIXED PERCENTAGE"`
	DiscountValue *int64     `json:"discountValue" validate:"omitempty,gt=0"`
	MinValueOrder *int64     `json:"minValueOrder" validate:"omitempty,gte=0"`
	Quantity      *int       `json:"quantity" validate:"omitempty,gte=0"`
	StartDate     *time.Time `json:"startDate"`
	EndDate       *time.Time `json:"endDate"`
}

func (p voucherUpdateRequest) toInput() vouchers.UpdateInput {
	input := vouchers.UpdateInput{
		Description:   p.Description,
		DiscountValue: p.DiscountValue,
		MinValueOrder: p.MinValueOrder,
		Quantity:      p.Quantity,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
	}
	if p.Code != nil {
		code := strings.TrimSpace(*p.Code)
		input.Code = &code
	}
	if p.Type != nil {
		typ := enums.VoucherType(*p.Type)
		input.Type = &typ
	}
	return input
}

// VoucherCreate registers a new voucher (ADMIN).
func VoucherCreate(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vouchers service unavailable"))
			return
		}

		var payload voucherCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := svc.Create(r.Context(), vouchers.CreateInput{
			Code:          strings.TrimSpace(payload.Code),
			Description:   payload.Description,
			Type:          enums.VoucherType(payload.Type),
			DiscountValue: payload.DiscountValue,
			MinValueOrder: payload.MinValueOrder,
			Quantity:      payload.Quantity,
			StartDate:     payload.StartDate,
			EndDate:       payload.EndDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, voucher)
	}
}

// VoucherList supports ?search= on code and ?valid=true for vouchers redeemable now.
func VoucherList(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vouchers service unavailable"))
			return
		}

		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		valid, err := validators.ParseQueryBool(r, "valid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), vouchers.ListParams{
			Search: validators.SanitizeString(r.URL.Query().Get("search"), 64),
			Valid:  valid,
			Page:   page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func VoucherDetail(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vouchers service unavailable"))
			return
		}

		id, err := validators.ParseURLUUID(r, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, voucher)
	}
}

func VoucherUpdate(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vouchers service unavailable"))
			return
		}

		id, err := validators.ParseURLUUID(r, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload voucherUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, voucher)
	}
}

// VoucherDelete archives the voucher; redemption history is kept.
func VoucherDelete(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vouchers service unavailable"))
			return
		}

		id, err := validators.ParseURLUUID(r, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Archive(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"id": id.String(), "status": string(enums.VoucherStatusArchived)})
	}
}
