package models

// All lists every table the engine owns, in dependency order.
func All() []any {
	return []any{
		&Store{},
		&User{},
		&Product{},
		&ProductStore{},
		&Voucher{},
		&VoucherRedemption{},
		&Order{},
		&OrderLineItem{},
		&OrderRequest{},
		&StockReservation{},
		&Shipping{},
		&Bill{},
		&Payment{},
		&Notification{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
