package orderrequests

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/LeDucTai-11/MyStore-BE/api/middleware"
	internalrequests "github.com/LeDucTai-11/MyStore-BE/internal/orderrequests"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

type stubWorkflow struct {
	cancelFn   func(ctx context.Context, input internalrequests.CancelInput) (*models.OrderRequest, error)
	decideFn   func(ctx context.Context, input internalrequests.DecideInput) (*models.OrderRequest, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error)
	listFn     func(ctx context.Context, params internalrequests.ListParams) (*pagination.PageResult[models.OrderRequest], error)
	listMineFn func(ctx context.Context, userID uuid.UUID, page pagination.Page) (*pagination.PageResult[models.OrderRequest], error)
}

func (s stubWorkflow) RequestCancel(ctx context.Context, input internalrequests.CancelInput) (*models.OrderRequest, error) {
	return s.cancelFn(ctx, input)
}

func (s stubWorkflow) Decide(ctx context.Context, input internalrequests.DecideInput) (*models.OrderRequest, error) {
	return s.decideFn(ctx, input)
}

func (s stubWorkflow) Get(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error) {
	return s.getFn(ctx, id)
}

func (s stubWorkflow) List(ctx context.Context, params internalrequests.ListParams) (*pagination.PageResult[models.OrderRequest], error) {
	return s.listFn(ctx, params)
}

func (s stubWorkflow) ListMine(ctx context.Context, userID uuid.UUID, page pagination.Page) (*pagination.PageResult[models.OrderRequest], error) {
	return s.listMineFn(ctx, userID, page)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withActor(req *http.Request, userID uuid.UUID, role enums.UserRole) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func withRequestID(req *http.Request, id string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("requestId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func TestCreateOpensCancelRequest(t *testing.T) {
	actorID := uuid.New()
	orderID := uuid.New()
	svc := stubWorkflow{
		cancelFn: func(ctx context.Context, input internalrequests.CancelInput) (*models.OrderRequest, error) {
			if input.OrderID != orderID || input.RequesterID != actorID {
				t.Fatalf("unexpected input %+v", input)
			}
			return &models.OrderRequest{
				ID:        uuid.New(),
				OrderID:   orderID,
				Type:      enums.OrderRequestTypeCancel,
				Status:    enums.RequestStatusPending,
				CreatedBy: actorID,
			}, nil
		},
	}

	body := `{"orderId":"` + orderID.String() + `","requestType":"CANCEL"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/order-requests", strings.NewReader(body)), actorID, enums.UserRoleUser)
	resp := httptest.NewRecorder()
	Create(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data models.OrderRequest `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Type != enums.OrderRequestTypeCancel || envelope.Data.Status != enums.RequestStatusPending {
		t.Fatalf("unexpected request %+v", envelope.Data)
	}
}

func TestCreateRejectsCreateType(t *testing.T) {
	svc := stubWorkflow{
		cancelFn: func(ctx context.Context, input internalrequests.CancelInput) (*models.OrderRequest, error) {
			t.Fatal("workflow must not be called")
			return nil, nil
		},
	}
	body := `{"orderId":"` + uuid.NewString() + `","requestType":"CREATE"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), uuid.New(), enums.UserRoleUser)
	resp := httptest.NewRecorder()
	Create(svc, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateMapsForbidden(t *testing.T) {
	svc := stubWorkflow{
		cancelFn: func(ctx context.Context, input internalrequests.CancelInput) (*models.OrderRequest, error) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the order creator may cancel")
		},
	}
	body := `{"orderId":"` + uuid.NewString() + `","requestType":"CANCEL"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), uuid.New(), enums.UserRoleUser)
	resp := httptest.NewRecorder()
	Create(svc, testLogger())(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestDecidePassesDecision(t *testing.T) {
	deciderID := uuid.New()
	requestID := uuid.New()
	svc := stubWorkflow{
		decideFn: func(ctx context.Context, input internalrequests.DecideInput) (*models.OrderRequest, error) {
			if input.RequestID != requestID || input.DeciderID != deciderID || input.Status != enums.RequestStatusApproved {
				t.Fatalf("unexpected input %+v", input)
			}
			return &models.OrderRequest{ID: requestID, Status: enums.RequestStatusApproved}, nil
		},
	}
	req := withRequestID(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"APPROVED"}`)), requestID.String())
	req = withActor(req, deciderID, enums.UserRoleStaff)
	resp := httptest.NewRecorder()
	Decide(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDecideRejectsPendingStatus(t *testing.T) {
	req := withRequestID(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"PENDING"}`)), uuid.NewString())
	req = withActor(req, uuid.New(), enums.UserRoleStaff)
	resp := httptest.NewRecorder()
	Decide(stubWorkflow{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDecideMapsAlreadyDecided(t *testing.T) {
	svc := stubWorkflow{
		decideFn: func(ctx context.Context, input internalrequests.DecideInput) (*models.OrderRequest, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request already decided")
		},
	}
	req := withRequestID(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"REJECTED"}`)), uuid.NewString())
	req = withActor(req, uuid.New(), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	Decide(svc, testLogger())(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestListParsesFilters(t *testing.T) {
	svc := stubWorkflow{
		listFn: func(ctx context.Context, params internalrequests.ListParams) (*pagination.PageResult[models.OrderRequest], error) {
			if params.Status == nil || *params.Status != enums.RequestStatusPending {
				t.Fatalf("unexpected status %v", params.Status)
			}
			if params.Type == nil || *params.Type != enums.OrderRequestTypeCancel {
				t.Fatalf("unexpected type %v", params.Type)
			}
			if params.PaymentMethod == nil || *params.PaymentMethod != enums.PaymentMethodBanking {
				t.Fatalf("unexpected payment method %v", params.PaymentMethod)
			}
			return &pagination.PageResult[models.OrderRequest]{}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/order-requests?status=PENDING&requestType=CANCEL&paymentMethod=BANKING", nil)
	resp := httptest.NewRecorder()
	List(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestListMineAndDetail(t *testing.T) {
	actorID := uuid.New()
	requestID := uuid.New()
	svc := stubWorkflow{
		listMineFn: func(ctx context.Context, userID uuid.UUID, page pagination.Page) (*pagination.PageResult[models.OrderRequest], error) {
			if userID != actorID {
				t.Fatalf("unexpected user %s", userID)
			}
			return &pagination.PageResult[models.OrderRequest]{}, nil
		},
		getFn: func(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error) {
			if id != requestID {
				t.Fatalf("unexpected id %s", id)
			}
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order request not found")
		},
	}

	resp := httptest.NewRecorder()
	ListMine(svc, testLogger())(resp, withActor(httptest.NewRequest(http.MethodGet, "/", nil), actorID, enums.UserRoleUser))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	Detail(svc, testLogger())(resp, withRequestID(httptest.NewRequest(http.MethodGet, "/", nil), requestID.String()))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
