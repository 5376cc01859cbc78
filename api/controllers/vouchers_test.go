package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/LeDucTai-11/MyStore-BE/internal/vouchers"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

type stubVouchers struct {
	createFn  func(ctx context.Context, input vouchers.CreateInput) (*models.Voucher, error)
	listFn    func(ctx context.Context, params vouchers.ListParams) (*pagination.PageResult[models.Voucher], error)
	getFn     func(ctx context.Context, id uuid.UUID) (*models.Voucher, error)
	updateFn  func(ctx context.Context, id uuid.UUID, input vouchers.UpdateInput) (*models.Voucher, error)
	archiveFn func(ctx context.Context, id uuid.UUID) error
}

func (s stubVouchers) Create(ctx context.Context, input vouchers.CreateInput) (*models.Voucher, error) {
	return s.createFn(ctx, input)
}

func (s stubVouchers) List(ctx context.Context, params vouchers.ListParams) (*pagination.PageResult[models.Voucher], error) {
	return s.listFn(ctx, params)
}

func (s stubVouchers) Get(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	return s.getFn(ctx, id)
}

func (s stubVouchers) Update(ctx context.Context, id uuid.UUID, input vouchers.UpdateInput) (*models.Voucher, error) {
	return s.updateFn(ctx, id, input)
}

func (s stubVouchers) Archive(ctx context.Context, id uuid.UUID) error {
	return s.archiveFn(ctx, id)
}

func TestVoucherCreate(t *testing.T) {
	svc := stubVouchers{
		createFn: func(ctx context.Context, input vouchers.CreateInput) (*models.Voucher, error) {
			if input.Code != "SALE10" || input.Type != enums.VoucherTypePercentage || input.DiscountValue != 10 {
				t.Fatalf("unexpected input %+v", input)
			}
			if input.Quantity != 5 || !input.EndDate.After(input.StartDate) {
				t.Fatalf("unexpected window %+v", input)
			}
			return &models.Voucher{ID: uuid.New(), Code: input.Code, Type: input.Type}, nil
		},
	}

	body := `{"code":" SALE10 ","type":"PERCENTAGE","discountValue":10,"minValueOrder":0,"quantity":5,` +
		`"startDate":"2026-01-01T00:00:00Z","endDate":"2026-02-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	resp := httptest.NewRecorder()
	VoucherCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data models.Voucher `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Code != "SALE10" {
		t.Fatalf("unexpected code %q", envelope.Data.Code)
	}
}

func TestVoucherCreateRejectsInvertedWindow(t *testing.T) {
	body := `{"code":"X","type":"FIXED","discountValue":1000,"quantity":1,` +
		`"startDate":"2026-02-01T00:00:00Z","endDate":"2026-01-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	resp := httptest.NewRecorder()
	VoucherCreate(stubVouchers{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestVoucherListPassesFilters(t *testing.T) {
	svc := stubVouchers{
		listFn: func(ctx context.Context, params vouchers.ListParams) (*pagination.PageResult[models.Voucher], error) {
			if params.Search != "sale" || params.Valid == nil || !*params.Valid || params.Page.Offset != 10 {
				t.Fatalf("unexpected params %+v", params)
			}
			return &pagination.PageResult[models.Voucher]{}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/?search=sale&valid=true&offset=10", nil)
	resp := httptest.NewRecorder()
	VoucherList(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestVoucherUpdateMapsPartialFields(t *testing.T) {
	id := uuid.New()
	svc := stubVouchers{
		updateFn: func(ctx context.Context, got uuid.UUID, input vouchers.UpdateInput) (*models.Voucher, error) {
			if got != id {
				t.Fatalf("unexpected id %s", got)
			}
			if input.Quantity == nil || *input.Quantity != 3 {
				t.Fatalf("quantity not forwarded: %+v", input)
			}
			if input.Type == nil || *input.Type != enums.VoucherTypeFixed {
				t.Fatalf("type not forwarded: %+v", input)
			}
			if input.Code != nil || input.EndDate != nil {
				t.Fatalf("unset fields should stay nil: %+v", input)
			}
			return &models.Voucher{ID: id, Quantity: 3, EndDate: time.Now()}, nil
		},
	}
	req := addRouteParam(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"quantity":3,"type":"FIXED"}`)), "voucherId", id.String())
	resp := httptest.NewRecorder()
	VoucherUpdate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestVoucherDetailNotFound(t *testing.T) {
	svc := stubVouchers{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
		},
	}
	req := addRouteParam(httptest.NewRequest(http.MethodGet, "/", nil), "voucherId", uuid.NewString())
	resp := httptest.NewRecorder()
	VoucherDetail(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestVoucherDeleteArchives(t *testing.T) {
	id := uuid.New()
	called := false
	svc := stubVouchers{
		archiveFn: func(ctx context.Context, got uuid.UUID) error {
			called = got == id
			return nil
		},
	}
	req := addRouteParam(httptest.NewRequest(http.MethodDelete, "/", nil), "voucherId", id.String())
	resp := httptest.NewRecorder()
	VoucherDelete(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK || !called {
		t.Fatalf("expected archive call, got %d called=%v", resp.Code, called)
	}
}
