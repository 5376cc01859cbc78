package enums

// ReservationStatus tracks whether an order still holds stock and voucher quantity.
type ReservationStatus string

const (
	ReservationStatusActive   ReservationStatus = "ACTIVE"
	ReservationStatusReleased ReservationStatus = "RELEASED"
)
