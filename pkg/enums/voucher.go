package enums

import "fmt"

// VoucherType selects how the discount value is applied.
type VoucherType string

const (
	VoucherTypeFixed      VoucherType = "FIXED"
	VoucherTypePercentage VoucherType = "PERCENTAGE"
)

var validVoucherTypes = []VoucherType{
	VoucherTypeFixed,
	VoucherTypePercentage,
}

func (v VoucherType) String() string {
	return string(v)
}

func (v VoucherType) IsValid() bool {
	for _, candidate := range validVoucherTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

func ParseVoucherType(value string) (VoucherType, error) {
	for _, candidate := range validVoucherTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid voucher type %q", value)
}

// VoucherStatus replaces soft deletion: archived vouchers cannot be redeemed or listed.
type VoucherStatus string

const (
	VoucherStatusActive   VoucherStatus = "ACTIVE"
	VoucherStatusArchived VoucherStatus = "ARCHIVED"
)
