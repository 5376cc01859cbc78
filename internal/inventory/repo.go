package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

// Repository is the persistence surface of the ledger. Every method is meant
// to run on the caller's transaction via WithTx.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProductStores(ctx context.Context, ids []uuid.UUID) ([]models.ProductStore, error)
	DecrementProductStore(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	DecrementProduct(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	IncrementProductStore(ctx context.Context, id uuid.UUID, qty int) error
	IncrementProduct(ctx context.Context, id uuid.UUID, qty int) error
	CreateReservation(ctx context.Context, reservation *models.StockReservation) error
	MarkReleased(ctx context.Context, orderID uuid.UUID, at time.Time) (int64, error)
	FindReservation(ctx context.Context, orderID uuid.UUID) (*models.StockReservation, error)
	FindLineItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProductStores(ctx context.Context, ids []uuid.UUID) ([]models.ProductStore, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.ProductStore
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

func (r *repository) DecrementProductStore(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ProductStore{}).
		Where("id = ? AND quantity >= ?", id, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *repository) DecrementProduct(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *repository) IncrementProductStore(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductStore{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty)).Error
}

func (r *repository) IncrementProduct(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty)).Error
}

func (r *repository) CreateReservation(ctx context.Context, reservation *models.StockReservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// MarkReleased flips ACTIVE to RELEASED and reports how many rows changed.
func (r *repository) MarkReleased(ctx context.Context, orderID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.StockReservation{}).
		Where("order_id = ? AND status = ?", orderID, enums.ReservationStatusActive).
		Updates(map[string]any{
			"status":      enums.ReservationStatusReleased,
			"released_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) FindReservation(ctx context.Context, orderID uuid.UUID) (*models.StockReservation, error) {
	var reservation models.StockReservation
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&reservation).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) FindLineItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error) {
	var items []models.OrderLineItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}
