package vouchers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
)

const redemptionConstraint = "idx_voucher_redemptions_voucher_user"

// RedeemInput names the voucher, the redeeming customer and the order it is
// applied to.
type RedeemInput struct {
	VoucherID uuid.UUID
	UserID    uuid.UUID
	OrderID   uuid.UUID
	Subtotal  int64
}

// Tracker owns voucher quantity and the per-user redemption set.
type Tracker struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewTracker(repo Repository, logg *logger.Logger) (*Tracker, error) {
	if repo == nil {
		return nil, fmt.Errorf("voucher repository required")
	}
	return &Tracker{repo: repo, logg: logg, now: time.Now}, nil
}

// Redeem validates the voucher for this order and consumes one unit of it.
// It returns the voucher so callers can compute the discount.
func (t *Tracker) Redeem(ctx context.Context, tx *gorm.DB, input RedeemInput) (*models.Voucher, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	repo := t.repo.WithTx(tx)

	voucher, err := repo.FindByID(ctx, input.VoucherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load voucher")
	}
	if voucher.Status == enums.VoucherStatusArchived {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
	}
	if input.Subtotal < voucher.MinValueOrder {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order below voucher minimum").
			WithDetails(map[string]any{"minValueOrder": voucher.MinValueOrder})
	}
	if !voucher.ActiveAt(t.now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "voucher not active")
	}

	used, err := repo.HasRedemption(ctx, voucher.ID, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check voucher redemption")
	}
	if used {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "voucher already used")
	}

	affected, err := repo.DecrementQuantity(ctx, voucher.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement voucher quantity")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "voucher out of stock")
	}

	redemption := &models.VoucherRedemption{
		VoucherID: voucher.ID,
		UserID:    input.UserID,
		OrderID:   input.OrderID,
	}
	if err := repo.CreateRedemption(ctx, redemption); err != nil {
		if db.IsUniqueViolation(err, redemptionConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "voucher already used")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record voucher redemption")
	}
	voucher.Quantity--

	if t.logg != nil {
		logCtx := t.logg.WithOrderID(ctx, input.OrderID.String())
		logCtx = t.logg.WithField(logCtx, "voucher_id", voucher.ID.String())
		t.logg.Info(logCtx, "voucher redeemed")
	}
	return voucher, nil
}

// Release undoes a redemption. Quantity is only returned when a redemption
// row was actually removed, so repeated calls are harmless.
func (t *Tracker) Release(ctx context.Context, tx *gorm.DB, voucherID, userID uuid.UUID) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	repo := t.repo.WithTx(tx)
	deleted, err := repo.DeleteRedemption(ctx, voucherID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete voucher redemption")
	}
	if deleted == 0 {
		return nil
	}
	if err := repo.IncrementQuantity(ctx, voucherID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore voucher quantity")
	}
	if t.logg != nil {
		logCtx := t.logg.WithField(ctx, "voucher_id", voucherID.String())
		t.logg.Info(logCtx, "voucher released")
	}
	return nil
}
