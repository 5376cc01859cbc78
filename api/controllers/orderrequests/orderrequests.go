package orderrequests

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/LeDucTai-11/MyStore-BE/api/middleware"
	"github.com/LeDucTai-11/MyStore-BE/api/responses"
	"github.com/LeDucTai-11/MyStore-BE/api/validators"
	internalrequests "github.com/LeDucTai-11/MyStore-BE/internal/orderrequests"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

// Workflow is the request surface the handlers drive.
type Workflow interface {
	RequestCancel(ctx context.Context, input internalrequests.CancelInput) (*models.OrderRequest, error)
	Decide(ctx context.Context, input internalrequests.DecideInput) (*models.OrderRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error)
	List(ctx context.Context, params internalrequests.ListParams) (*pagination.PageResult[models.OrderRequest], error)
	ListMine(ctx context.Context, userID uuid.UUID, page pagination.Page) (*pagination.PageResult[models.OrderRequest], error)
}

// Creation requests are opened by order placement, so clients may only ask to cancel.
type createRequest struct {
	OrderID     uuid.UUID `json:"orderId" validate:"required"`
	RequestType string    `json:"requestType" validate:"required,oneof=CANCEL"`
}

type decideRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

func Create(svc Workflow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order request workflow unavailable"))
			return
		}

		actorID, _, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req, err := svc.RequestCancel(r.Context(), internalrequests.CancelInput{
			OrderID:     payload.OrderID,
			RequesterID: actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, req)
	}
}

// Decide records a staff approval or rejection.
func Decide(svc Workflow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order request workflow unavailable"))
			return
		}

		actorID, _, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		requestID, err := validators.ParseURLUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload decideRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req, err := svc.Decide(r.Context(), internalrequests.DecideInput{
			RequestID: requestID,
			DeciderID: actorID,
			Status:    enums.RequestStatus(payload.Status),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, req)
	}
}

func Detail(svc Workflow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order request workflow unavailable"))
			return
		}

		requestID, err := validators.ParseURLUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req, err := svc.Get(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, req)
	}
}

// List filters by status, type and the order's payment method.
func List(svc Workflow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order request workflow unavailable"))
			return
		}

		params, err := buildListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ListMine(svc Workflow, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order request workflow unavailable"))
			return
		}

		actorID, _, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMine(r.Context(), actorID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func buildListParams(r *http.Request) (internalrequests.ListParams, error) {
	page, err := validators.ParsePage(r)
	if err != nil {
		return internalrequests.ListParams{}, err
	}
	params := internalrequests.ListParams{Page: page}

	query := r.URL.Query()
	if raw := query.Get("status"); raw != "" {
		status, err := enums.ParseRequestStatus(raw)
		if err != nil {
			return internalrequests.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		params.Status = &status
	}
	if raw := query.Get("requestType"); raw != "" {
		requestType, err := enums.ParseOrderRequestType(raw)
		if err != nil {
			return internalrequests.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid requestType")
		}
		params.Type = &requestType
	}
	if raw := query.Get("paymentMethod"); raw != "" {
		method, err := enums.ParsePaymentMethod(raw)
		if err != nil {
			return internalrequests.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paymentMethod")
		}
		params.PaymentMethod = &method
	}
	return params, nil
}
