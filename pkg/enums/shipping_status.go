package enums

import "fmt"

// ShippingStatus tracks a courier assignment.
type ShippingStatus string

const (
	ShippingStatusPending   ShippingStatus = "PENDING"
	ShippingStatusApproved  ShippingStatus = "APPROVED"
	ShippingStatusRejected  ShippingStatus = "REJECTED"
	ShippingStatusCompleted ShippingStatus = "COMPLETED"
	ShippingStatusCanceled  ShippingStatus = "CANCELED"
)

var validShippingStatuses = []ShippingStatus{
	ShippingStatusPending,
	ShippingStatusApproved,
	ShippingStatusRejected,
	ShippingStatusCompleted,
	ShippingStatusCanceled,
}

func (s ShippingStatus) String() string {
	return string(s)
}

func (s ShippingStatus) IsValid() bool {
	for _, candidate := range validShippingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseShippingStatus(value string) (ShippingStatus, error) {
	for _, candidate := range validShippingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping status %q", value)
}
