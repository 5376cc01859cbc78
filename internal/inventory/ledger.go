package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
)

// ErrAlreadyReleased is returned by Release when the reservation was released
// earlier (or never existed). No quantities are touched in that case.
var ErrAlreadyReleased = errors.New("stock reservation already released")

// Line is a requested quantity of one per-store stock record.
type Line struct {
	ProductStoreID uuid.UUID
	Quantity       int
}

// PricedLine is a validated line with the catalog price resolved.
type PricedLine struct {
	ProductStoreID uuid.UUID
	ProductID      uuid.UUID
	StoreID        uuid.UUID
	Quantity       int
	UnitPrice      int64
}

func (l PricedLine) LinePrice() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// ReserveInput identifies the order that will own the reservation.
type ReserveInput struct {
	OrderID   uuid.UUID
	UserID    uuid.UUID
	VoucherID *uuid.UUID
	Lines     []Line
}

// Ledger keeps per-store and aggregate product quantities consistent with
// the orders that hold stock.
type Ledger struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewLedger(repo Repository, logg *logger.Logger) (*Ledger, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &Ledger{repo: repo, logg: logg, now: time.Now}, nil
}

// Quote validates lines against current stock without writing anything and
// returns them priced. All lines must come from the same store.
func (l *Ledger) Quote(ctx context.Context, tx *gorm.DB, lines []Line) ([]PricedLine, error) {
	merged, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}
	repo := l.repo.WithTx(tx)

	ids := make([]uuid.UUID, 0, len(merged))
	for _, line := range merged {
		ids = append(ids, line.ProductStoreID)
	}
	rows, err := repo.FindProductStores(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product stores")
	}
	byID := make(map[uuid.UUID]models.ProductStore, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	priced := make([]PricedLine, 0, len(merged))
	var storeID uuid.UUID
	for _, line := range merged {
		row, ok := byID[line.ProductStoreID]
		if !ok || row.Product == nil {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product store %s not found", line.ProductStoreID)
		}
		if storeID == uuid.Nil {
			storeID = row.StoreID
		} else if storeID != row.StoreID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "all items must belong to the same store")
		}
		if row.Quantity < line.Quantity || row.Product.Quantity < line.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "out of stock").
				WithDetails(map[string]any{
					"productStoreId": line.ProductStoreID.String(),
					"available":      row.Quantity,
					"requested":      line.Quantity,
				})
		}
		priced = append(priced, PricedLine{
			ProductStoreID: row.ID,
			ProductID:      row.ProductID,
			StoreID:        row.StoreID,
			Quantity:       line.Quantity,
			UnitPrice:      row.Product.Price,
		})
	}
	return priced, nil
}

// Reserve verifies every line first, then applies conditional decrements on
// the per-store and aggregate rows and records the ACTIVE reservation.
func (l *Ledger) Reserve(ctx context.Context, tx *gorm.DB, input ReserveInput) ([]PricedLine, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	priced, err := l.Quote(ctx, tx, input.Lines)
	if err != nil {
		return nil, err
	}

	repo := l.repo.WithTx(tx)
	for _, line := range priced {
		affected, err := repo.DecrementProductStore(ctx, line.ProductStoreID, line.Quantity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement product store")
		}
		if affected == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "out of stock")
		}
		affected, err = repo.DecrementProduct(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement product")
		}
		if affected == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "out of stock")
		}
	}

	reservation := &models.StockReservation{
		OrderID:   input.OrderID,
		UserID:    input.UserID,
		VoucherID: input.VoucherID,
		Status:    enums.ReservationStatusActive,
	}
	if err := repo.CreateReservation(ctx, reservation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock reservation")
	}
	if l.logg != nil {
		logCtx := l.logg.WithOrderID(ctx, input.OrderID.String())
		logCtx = l.logg.WithField(logCtx, "lines", len(priced))
		l.logg.Info(logCtx, "stock reserved")
	}
	return priced, nil
}

// Release returns the order's line quantities to stock. It flips the
// reservation first so a second call finds nothing to flip and returns
// ErrAlreadyReleased without applying deltas.
func (l *Ledger) Release(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	repo := l.repo.WithTx(tx)
	flipped, err := repo.MarkReleased(ctx, orderID, l.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release stock reservation")
	}
	if flipped == 0 {
		return ErrAlreadyReleased
	}

	items, err := repo.FindLineItems(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order line items")
	}
	for _, item := range items {
		if err := repo.IncrementProductStore(ctx, item.ProductStoreID, item.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore product store")
		}
		if err := repo.IncrementProduct(ctx, item.ProductID, item.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore product")
		}
	}
	if l.logg != nil {
		logCtx := l.logg.WithOrderID(ctx, orderID.String())
		l.logg.Info(logCtx, "stock released")
	}
	return nil
}

// mergeLines folds repeated product stores into one line so the stock check
// sees the full requested quantity.
func mergeLines(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	index := make(map[uuid.UUID]int, len(lines))
	merged := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line.ProductStoreID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "productStoreId is required")
		}
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		if pos, ok := index[line.ProductStoreID]; ok {
			merged[pos].Quantity += line.Quantity
			continue
		}
		index[line.ProductStoreID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}
