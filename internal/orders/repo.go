package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

// Repository defines persistence operations for orders and the rows that
// hang off them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, updates map[string]any) (int64, error)
	SetPaymentURL(ctx context.Context, id uuid.UUID, paymentURL string) error
	CancelOpenShippings(ctx context.Context, orderID uuid.UUID) error
	RejectPendingRequests(ctx context.Context, orderID uuid.UUID, at time.Time) error
	List(ctx context.Context, query ListQuery) ([]models.Order, int64, error)
	FindExpiredPayments(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}

// ListQuery is the repository form of a listing request.
type ListQuery struct {
	Statuses      []enums.OrderStatus
	PaymentMethod *enums.PaymentMethod
	Search        string
	CreatedBy     *uuid.UUID
	Page          pagination.Page
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC").Order("id ASC") }).
		Preload("LineItems.Product").
		Preload("Voucher").
		Preload("Creator").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindForUpdate locks the order row. The voucher is loaded by a second plain
// query so the lock never spreads to the vouchers table.
func (r *repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := db.ForUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	if order.VoucherID != nil {
		var voucher models.Voucher
		err := r.db.WithContext(ctx).Where("id = ?", *order.VoucherID).First(&voucher).Error
		switch {
		case err == nil:
			order.Voucher = &voucher
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}
	return &order, nil
}

// UpdateStatus moves the order only if it is still in from. The affected row
// count tells the caller whether it won.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, updates map[string]any) (int64, error) {
	values := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for key, value := range updates {
		values[key] = value
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	return res.RowsAffected, res.Error
}

func (r *repository) SetPaymentURL(ctx context.Context, id uuid.UUID, paymentURL string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("payment_url", paymentURL).Error
}

func (r *repository) CancelOpenShippings(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Shipping{}).
		Where("order_id = ? AND status IN ?", orderID, []enums.ShippingStatus{enums.ShippingStatusPending, enums.ShippingStatusApproved}).
		Updates(map[string]any{
			"status":     enums.ShippingStatusCanceled,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) RejectPendingRequests(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderRequest{}).
		Where("order_id = ? AND status = ?", orderID, enums.RequestStatusPending).
		Updates(map[string]any{
			"status":      enums.RequestStatusRejected,
			"canceled_at": at,
			"updated_at":  at,
		}).Error
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if len(query.Statuses) > 0 {
		q = q.Where("orders.status IN ?", query.Statuses)
	}
	if query.PaymentMethod != nil {
		q = q.Where("orders.payment_method = ?", *query.PaymentMethod)
	}
	if query.CreatedBy != nil {
		q = q.Where("orders.created_by = ?", *query.CreatedBy)
	}
	if search := strings.ToLower(strings.TrimSpace(query.Search)); search != "" {
		q = q.Joins("JOIN users ON users.id = orders.created_by").
			Where("LOWER(users.first_name || ' ' || users.last_name) LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := q.
		Preload("LineItems").
		Preload("LineItems.Product").
		Preload("Voucher").
		Preload("Creator").
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Limit(query.Page.Limit).
		Offset(query.Page.Offset).
		Find(&rows).Error
	return rows, total, err
}

// FindExpiredPayments returns banking orders still waiting for payment that
// were created before cutoff, oldest first.
func (r *repository) FindExpiredPayments(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	q := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ? AND payment_method = ? AND created_at < ?", enums.OrderStatusPendingPayment, enums.PaymentMethodBanking, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Pluck("id", &ids).Error
	return ids, err
}
