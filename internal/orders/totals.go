package orders

import (
	"github.com/LeDucTai-11/MyStore-BE/internal/vouchers"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
)

// Totals are the amounts derived from an order on every read.
type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shippingFee"`
	Discount    int64 `json:"discount"`
	Total       int64 `json:"total"`
}

// ComputeTotals expects order.Voucher to be loaded when the order has one.
func ComputeTotals(order *models.Order) Totals {
	if order == nil {
		return Totals{}
	}
	discount := vouchers.Discount(order.Voucher, order.Subtotal)
	return Totals{
		Subtotal:    order.Subtotal,
		ShippingFee: order.ShippingFee,
		Discount:    discount,
		Total:       order.Subtotal + order.ShippingFee - discount,
	}
}
