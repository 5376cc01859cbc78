package orders

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
	internalorders "github.com/LeDucTai-11/MyStore-BE/internal/orders"
	"github.com/LeDucTai-11/MyStore-BE/internal/payments"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

type stubOrdersService struct {
	placeFn    func(ctx context.Context, input internalorders.PlaceInput) (*internalorders.OrderView, error)
	getFn      func(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*internalorders.OrderView, error)
	listFn     func(ctx context.Context, params internalorders.ListParams) (*pagination.PageResult[internalorders.OrderView], error)
	listMineFn func(ctx context.Context, userID uuid.UUID, page pagination.Page) (*pagination.PageResult[internalorders.OrderView], error)
}

func (s stubOrdersService) Place(ctx context.Context, input internalorders.PlaceInput) (*internalorders.OrderView, error) {
	return s.placeFn(ctx, input)
}

func (s stubOrdersService) Get(ctx context.Context, orderID, actorID uuid.UUID, role enums.UserRole) (*internalorders.OrderView, error) {
	return s.getFn(ctx, orderID, actorID, role)
}

func (s stubOrdersService) List(ctx context.Context, params internalorders.ListParams) (*pagination.PageResult[internalorders.OrderView], error) {
	return s.listFn(ctx, params)
}

func (s stubOrdersService) ListMine(ctx context.Context, userID uuid.UUID, page pagination.Page) (*pagination.PageResult[internalorders.OrderView], error) {
	return s.listMineFn(ctx, userID, page)
}

type stubConfirmer struct {
	fn func(ctx context.Context, input payments.ConfirmInput) (*models.Payment, error)
}

func (s stubConfirmer) Confirm(ctx context.Context, input payments.ConfirmInput) (*models.Payment, error) {
	return s.fn(ctx, input)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withActor(req *http.Request, userID uuid.UUID, role enums.UserRole) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func withOrderID(req *http.Request, orderID string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("orderId", orderID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

const placeBody = `{
	"items": [{"productStoreId": "%s", "quantity": 2}],
	"paymentMethod": "BANKING",
	"shippingFee": 15000,
	"contact": {"firstName": " An ", "lastName": "Nguyen", "phoneNumber": "0901234567", "address": "12 Le Loi"}
}`

func TestPlaceMapsRequestIntoInput(t *testing.T) {
	actorID := uuid.New()
	productStoreID := uuid.New()
	var captured internalorders.PlaceInput
	svc := stubOrdersService{
		placeFn: func(ctx context.Context, input internalorders.PlaceInput) (*internalorders.OrderView, error) {
			captured = input
			url := "https://pay.example/redirect"
			return &internalorders.OrderView{
				Order: models.Order{ID: uuid.New(), Status: enums.OrderStatusPendingPayment, PaymentURL: &url},
				Total: 115000,
			}, nil
		},
	}

	body := strings.Replace(placeBody, "%s", productStoreID.String(), 1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req = withActor(req, actorID, enums.UserRoleUser)
	resp := httptest.NewRecorder()
	Place(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.ActorID != actorID || captured.ActorRole != enums.UserRoleUser {
		t.Fatalf("unexpected actor %s/%s", captured.ActorID, captured.ActorRole)
	}
	if len(captured.Items) != 1 || captured.Items[0].ProductStoreID != productStoreID || captured.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", captured.Items)
	}
	if captured.PaymentMethod != enums.PaymentMethodBanking || captured.ShippingFee != 15000 {
		t.Fatalf("unexpected payment fields %+v", captured)
	}
	if captured.Contact.FirstName != "An" {
		t.Fatalf("expected trimmed first name, got %q", captured.Contact.FirstName)
	}
	if captured.ClientIP != "203.0.113.9" || captured.Origin != "https://shop.example" {
		t.Fatalf("unexpected client fields %q %q", captured.ClientIP, captured.Origin)
	}

	var envelope struct {
		Data internalorders.OrderView `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.PaymentURL == nil || *envelope.Data.PaymentURL != "https://pay.example/redirect" {
		t.Fatalf("expected payment url in response")
	}
	if envelope.Data.Total != 115000 {
		t.Fatalf("expected total 115000 got %d", envelope.Data.Total)
	}
}

func TestPlaceRejectsInvalidBody(t *testing.T) {
	svc := stubOrdersService{
		placeFn: func(ctx context.Context, input internalorders.PlaceInput) (*internalorders.OrderView, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	tests := map[string]string{
		"empty items":    `{"items":[],"paymentMethod":"COD","contact":{"firstName":"a","lastName":"b","phoneNumber":"0901234567","address":"x"}}`,
		"bad method":     `{"items":[{"productStoreId":"` + uuid.NewString() + `","quantity":1}],"paymentMethod":"CARD","contact":{"firstName":"a","lastName":"b","phoneNumber":"0901234567","address":"x"}}`,
		"zero quantity":  `{"items":[{"productStoreId":"` + uuid.NewString() + `","quantity":0}],"paymentMethod":"COD","contact":{"firstName":"a","lastName":"b","phoneNumber":"0901234567","address":"x"}}`,
		"missing phone":  `{"items":[{"productStoreId":"` + uuid.NewString() + `","quantity":1}],"paymentMethod":"COD","contact":{"firstName":"a","lastName":"b","address":"x"}}`,
		"negative fee":   `{"items":[{"productStoreId":"` + uuid.NewString() + `","quantity":1}],"paymentMethod":"COD","shippingFee":-1,"contact":{"firstName":"a","lastName":"b","phoneNumber":"0901234567","address":"x"}}`,
		"bad phone":      `{"items":[{"productStoreId":"` + uuid.NewString() + `","quantity":1}],"paymentMethod":"COD","contact":{"firstName":"a","lastName":"b","phoneNumber":"12ab","address":"x"}}`,
		"malformed json": `{"items":`,
	}
	for name, body := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		req = withActor(req, uuid.New(), enums.UserRoleUser)
		resp := httptest.NewRecorder()
		Place(svc, testLogger())(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", name, resp.Code)
		}
	}
}

func TestPlaceSurfacesStockConflict(t *testing.T) {
	svc := stubOrdersService{
		placeFn: func(ctx context.Context, input internalorders.PlaceInput) (*internalorders.OrderView, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")
		},
	}
	body := strings.Replace(placeBody, "%s", uuid.NewString(), 1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req = withActor(req, uuid.New(), enums.UserRoleUser)
	resp := httptest.NewRecorder()
	Place(svc, testLogger())(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestListParsesFilters(t *testing.T) {
	svc := stubOrdersService{
		listFn: func(ctx context.Context, params internalorders.ListParams) (*pagination.PageResult[internalorders.OrderView], error) {
			if params.Status == nil || *params.Status != enums.OrderStatusConfirmed {
				t.Fatalf("unexpected status %v", params.Status)
			}
			if params.PaymentMethod == nil || *params.PaymentMethod != enums.PaymentMethodCOD {
				t.Fatalf("unexpected payment method %v", params.PaymentMethod)
			}
			if params.Search != "Tran" {
				t.Fatalf("unexpected search %q", params.Search)
			}
			if params.Page.Limit != 10 || params.Page.Offset != 20 {
				t.Fatalf("unexpected page %+v", params.Page)
			}
			return &pagination.PageResult[internalorders.OrderView]{Total: 0, Limit: 10, Offset: 20}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=CONFIRMED&paymentMethod=COD&search=%20Tran%20&limit=10&offset=20", nil)
	resp := httptest.NewRecorder()
	List(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=SHIPPED", nil)
	resp := httptest.NewRecorder()
	List(stubOrdersService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListMineUsesCaller(t *testing.T) {
	actorID := uuid.New()
	svc := stubOrdersService{
		listMineFn: func(ctx context.Context, userID uuid.UUID, page pagination.Page) (*pagination.PageResult[internalorders.OrderView], error) {
			if userID != actorID {
				t.Fatalf("unexpected user %s", userID)
			}
			return &pagination.PageResult[internalorders.OrderView]{Limit: page.Limit}, nil
		},
	}
	req := withActor(httptest.NewRequest(http.MethodGet, "/api/v1/orders/me", nil), actorID, enums.UserRoleUser)
	resp := httptest.NewRecorder()
	ListMine(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestDetailPassesActorAndRole(t *testing.T) {
	actorID := uuid.New()
	orderID := uuid.New()
	svc := stubOrdersService{
		getFn: func(ctx context.Context, id, actor uuid.UUID, role enums.UserRole) (*internalorders.OrderView, error) {
			if id != orderID || actor != actorID || role != enums.UserRoleUser {
				t.Fatalf("unexpected args %s %s %s", id, actor, role)
			}
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		},
	}
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), orderID.String())
	req = withActor(req, actorID, enums.UserRoleUser)
	resp := httptest.NewRecorder()
	Detail(svc, testLogger())(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestDetailRejectsBadOrderID(t *testing.T) {
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), "not-a-uuid")
	req = withActor(req, uuid.New(), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	Detail(stubOrdersService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestConfirmPaymentRelaysCallback(t *testing.T) {
	actorID := uuid.New()
	orderID := uuid.New()
	var captured payments.ConfirmInput
	svc := stubConfirmer{fn: func(ctx context.Context, input payments.ConfirmInput) (*models.Payment, error) {
		captured = input
		return &models.Payment{OrderID: input.OrderID, Amount: input.Amount, TransactionNumber: input.TransactionNumber}, nil
	}}

	body := `{"amount":115000,"bankCode":"NCB","transactionNumber":"14226112","orderInfo":"Thanh toan","vnpParam":{"vnp_TxnRef":"` + orderID.String() + `","vnp_SecureHash":"abc"}}`
	req := withOrderID(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), orderID.String())
	req = withActor(req, actorID, enums.UserRoleUser)
	resp := httptest.NewRecorder()
	ConfirmPayment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.OrderID != orderID || captured.ActorID != actorID || captured.Amount != 115000 {
		t.Fatalf("unexpected input %+v", captured)
	}
	if captured.BankCode == nil || *captured.BankCode != "NCB" {
		t.Fatalf("expected bank code NCB")
	}
	if captured.VNPParams["vnp_TxnRef"] != orderID.String() {
		t.Fatalf("expected vnp params forwarded")
	}
}

func TestConfirmPaymentMapsGatewayFailure(t *testing.T) {
	svc := stubConfirmer{fn: func(ctx context.Context, input payments.ConfirmInput) (*models.Payment, error) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "query payment gateway")
	}}
	body := `{"amount":1000,"transactionNumber":"1","vnpParam":{"vnp_TxnRef":"x"}}`
	req := withOrderID(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), uuid.NewString())
	req = withActor(req, uuid.New(), enums.UserRoleUser)
	resp := httptest.NewRecorder()
	ConfirmPayment(svc, testLogger())(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
