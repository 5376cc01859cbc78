package shippings

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/LeDucTai-11/MyStore-BE/api/middleware"
	"github.com/LeDucTai-11/MyStore-BE/api/responses"
	"github.com/LeDucTai-11/MyStore-BE/api/validators"
	"github.com/LeDucTai-11/MyStore-BE/internal/shipping"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

// Engine is the courier-facing shipping surface.
type Engine interface {
	Decide(ctx context.Context, input shipping.DecideInput) (*models.Shipping, error)
	Complete(ctx context.Context, shippingID, courierID uuid.UUID) (*models.Shipping, error)
	ListMine(ctx context.Context, courierID uuid.UUID, page pagination.Page) (*pagination.PageResult[models.Shipping], error)
}

type decideRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

// ListMine returns the caller's assignments.
func ListMine(svc Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping engine unavailable"))
			return
		}

		courierID, _, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMine(r.Context(), courierID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Decide accepts or declines an offered delivery. A decline hands the order
// to the next courier or cancels it when none is left.
func Decide(svc Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping engine unavailable"))
			return
		}

		courierID, _, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		shippingID, err := validators.ParseURLUUID(r, "shippingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload decideRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Decide(r.Context(), shipping.DecideInput{
			ShippingID: shippingID,
			CourierID:  courierID,
			Status:     enums.RequestStatus(payload.Status),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func Complete(svc Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping engine unavailable"))
			return
		}

		courierID, _, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		shippingID, err := validators.ParseURLUUID(r, "shippingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Complete(r.Context(), shippingID, courierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}
