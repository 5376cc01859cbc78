package vouchers

import (
	"github.com/shopspring/decimal"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Discount returns the amount a voucher takes off subtotal. It depends only
// on the voucher's type and value, so it is stable before and after the
// voucher is redeemed. The result never exceeds subtotal.
func Discount(v *models.Voucher, subtotal int64) int64 {
	if v == nil || subtotal <= 0 {
		return 0
	}
	var amount int64
	switch v.Type {
	case enums.VoucherTypeFixed:
		amount = v.DiscountValue
	case enums.VoucherTypePercentage:
		amount = decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(v.DiscountValue)).
			Div(hundred).
			Round(0).
			IntPart()
	}
	if amount < 0 {
		return 0
	}
	if amount > subtotal {
		return subtotal
	}
	return amount
}
