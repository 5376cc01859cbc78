package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

// Repository covers shippings plus the order and user reads assignment needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCourier(ctx context.Context, storeID uuid.UUID, exclude []uuid.UUID) (*models.User, error)
	FindStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Shipping, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Shipping, error)
	Create(ctx context.Context, shipping *models.Shipping) error
	Update(ctx context.Context, id uuid.UUID, from enums.ShippingStatus, updates map[string]any) (int64, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (int64, error)
	ListByShipper(ctx context.Context, shipperID uuid.UUID, page pagination.Page) ([]models.Shipping, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindCourier picks the lowest-id active shipper of the store outside the
// exclusion set. It returns nil when nobody is left.
func (r *repository) FindCourier(ctx context.Context, storeID uuid.UUID, exclude []uuid.UUID) (*models.User, error) {
	q := r.db.WithContext(ctx).
		Where("role = ? AND status = ? AND store_id = ?", enums.UserRoleShipper, enums.UserStatusActive, storeID)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	var couriers []models.User
	if err := q.Order("id ASC").Limit(1).Find(&couriers).Error; err != nil {
		return nil, err
	}
	if len(couriers) == 0 {
		return nil, nil
	}
	return &couriers[0], nil
}

func (r *repository) FindStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("id = ?", storeID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Shipping, error) {
	var rows []models.Shipping
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Shipping, error) {
	var shipping models.Shipping
	if err := db.ForUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&shipping).Error; err != nil {
		return nil, err
	}
	return &shipping, nil
}

func (r *repository) Create(ctx context.Context, shipping *models.Shipping) error {
	return r.db.WithContext(ctx).Omit("Order", "Store").Create(shipping).Error
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, from enums.ShippingStatus, updates map[string]any) (int64, error) {
	values := map[string]any{"updated_at": time.Now().UTC()}
	for key, value := range updates {
		values[key] = value
	}
	res := r.db.WithContext(ctx).
		Model(&models.Shipping{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	return res.RowsAffected, res.Error
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := db.ForUpdate(r.db.WithContext(ctx)).Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) ListByShipper(ctx context.Context, shipperID uuid.UUID, page pagination.Page) ([]models.Shipping, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Shipping{}).Where("shipper_id = ?", shipperID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Shipping
	err := q.
		Preload("Order").
		Preload("Store").
		Order("created_at DESC").
		Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	return rows, total, err
}
