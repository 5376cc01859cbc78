package orders

import (
	"github.com/google/uuid"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

// LineInput is one requested product-store quantity.
type LineInput struct {
	ProductStoreID uuid.UUID
	Quantity       int
}

// PlaceInput carries everything placement needs from the request.
type PlaceInput struct {
	ActorID       uuid.UUID
	ActorRole     enums.UserRole
	Items         []LineInput
	PaymentMethod enums.PaymentMethod
	VoucherID     *uuid.UUID
	ShippingFee   int64
	Contact       models.OrderContact
	ClientIP      string
	Origin        string
}

// ListParams filters the staff order listing. Status expands through
// enums.OrderStatus.FilterGroup.
type ListParams struct {
	Status        *enums.OrderStatus
	PaymentMethod *enums.PaymentMethod
	Search        string
	Page          pagination.Page
}

// OrderView is an order with its derived amounts.
type OrderView struct {
	models.Order
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

func NewOrderView(order models.Order) OrderView {
	totals := ComputeTotals(&order)
	return OrderView{Order: order, Discount: totals.Discount, Total: totals.Total}
}

func newOrderViews(rows []models.Order) []OrderView {
	views := make([]OrderView, 0, len(rows))
	for _, row := range rows {
		views = append(views, NewOrderView(row))
	}
	return views
}
