package vouchers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db/dbtest"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t)), nil)
	require.NoError(t, err)
	return svc
}

func createInput(code string, start, end time.Time) CreateInput {
	return CreateInput{
		Code:          code,
		Type:          enums.VoucherTypePercentage,
		DiscountValue: 10,
		MinValueOrder: 100000,
		Quantity:      10,
		StartDate:     start,
		EndDate:       end,
	}
}

func TestCreateValidatesAndRejectsDuplicateCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := svc.Create(ctx, createInput("SALE10", now.Add(time.Hour), now))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	created, err := svc.Create(ctx, createInput("SALE10", now, now.Add(time.Hour)))
	require.NoError(t, err)
	require.Equal(t, enums.VoucherStatusActive, created.Status)

	_, err = svc.Create(ctx, createInput("SALE10", now, now.Add(time.Hour)))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestListFiltersByValidityAndSearch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := svc.Create(ctx, createInput("SUMMER", now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, createInput("WINTER", now.Add(24*time.Hour), now.Add(48*time.Hour)))
	require.NoError(t, err)

	valid := true
	page, err := svc.List(ctx, ListParams{Valid: &valid})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	require.Equal(t, "SUMMER", page.Items[0].Code)

	invalid := false
	page, err = svc.List(ctx, ListParams{Valid: &invalid})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	require.Equal(t, "WINTER", page.Items[0].Code)

	page, err = svc.List(ctx, ListParams{Search: "win", Page: pagination.Page{Limit: 5}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, 5, page.Limit)
}

func TestUpdateAndArchive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first, err := svc.Create(ctx, createInput("ONE", now, now.Add(time.Hour)))
	require.NoError(t, err)
	second, err := svc.Create(ctx, createInput("TWO", now, now.Add(time.Hour)))
	require.NoError(t, err)

	taken := "ONE"
	_, err = svc.Update(ctx, second.ID, UpdateInput{Code: &taken})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	qty := 3
	updated, err := svc.Update(ctx, first.ID, UpdateInput{Quantity: &qty})
	require.NoError(t, err)
	require.Equal(t, 3, updated.Quantity)
	require.Equal(t, "ONE", updated.Code)

	require.NoError(t, svc.Archive(ctx, first.ID))
	_, err = svc.Get(ctx, first.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	page, err := svc.List(ctx, ListParams{})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)

	_, err = svc.Get(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
