package enums

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{OrderStatusPendingConfirm, OrderStatusConfirmed, true},
		{OrderStatusPendingConfirm, OrderStatusPaymentConfirmed, true},
		{OrderStatusPendingPayment, OrderStatusPaymentConfirmed, true},
		{OrderStatusConfirmed, OrderStatusDelivering, true},
		{OrderStatusPaymentConfirmed, OrderStatusDelivering, true},
		{OrderStatusDelivering, OrderStatusCompleted, true},
		{OrderStatusPendingPayment, OrderStatusCanceled, true},
		{OrderStatusDelivering, OrderStatusCanceled, true},
		{OrderStatusPendingConfirm, OrderStatusDelivering, false},
		{OrderStatusConfirmed, OrderStatusCompleted, false},
		{OrderStatusCompleted, OrderStatusCanceled, false},
		{OrderStatusCanceled, OrderStatusCanceled, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOrderStatusFilterGroup(t *testing.T) {
	require.ElementsMatch(t,
		[]OrderStatus{OrderStatusConfirmed, OrderStatusPaymentConfirmed},
		OrderStatusConfirmed.FilterGroup())
	require.ElementsMatch(t,
		[]OrderStatus{OrderStatusPendingConfirm, OrderStatusPendingPayment},
		OrderStatusPendingConfirm.FilterGroup())
	require.Equal(t, []OrderStatus{OrderStatusDelivering}, OrderStatusDelivering.FilterGroup())
}

func TestParseEnums(t *testing.T) {
	status, err := ParseOrderStatus("PAYMENT_CONFIRMED")
	require.NoError(t, err)
	require.Equal(t, OrderStatusPaymentConfirmed, status)

	_, err = ParseOrderStatus("payment_confirmed")
	require.Error(t, err)

	method, err := ParsePaymentMethod("BANKING")
	require.NoError(t, err)
	require.Equal(t, PaymentMethodBanking, method)

	role, err := ParseUserRole("SHIPPER")
	require.NoError(t, err)
	require.False(t, role.IsStaff())
	require.True(t, UserRoleAdmin.IsStaff())

	decision, err := ParseRequestStatus("REJECTED")
	require.NoError(t, err)
	require.True(t, decision.IsDecision())
	require.False(t, RequestStatusPending.IsDecision())

	_, err = ParseVoucherType("PERCENT")
	require.Error(t, err)
}

func TestNotificationTemplateType(t *testing.T) {
	require.Equal(t, NotificationTypePayment, TemplatePaymentConfirmed.Type())
	require.Equal(t, NotificationTypeShipping, TemplateNoCourierAvailable.Type())
	require.Equal(t, NotificationTypeOrder, TemplateOrderCanceled.Type())
}

func TestPaymentMethodConfirmedStatus(t *testing.T) {
	method, err := ParsePaymentMethod(" cod ")
	require.NoError(t, err)
	require.Equal(t, PaymentMethodCOD, method)
	require.False(t, method.IsPrepaid())
	require.Equal(t, OrderStatusConfirmed, method.ConfirmedStatus())

	require.True(t, PaymentMethodBanking.IsPrepaid())
	require.Equal(t, OrderStatusPaymentConfirmed, PaymentMethodBanking.ConfirmedStatus())

	_, err = ParsePaymentMethod("CARD")
	require.Error(t, err)
}

func TestOutboxDLQReasonParse(t *testing.T) {
	reason, err := ParseOutboxDLQErrorReason("unroutable")
	require.NoError(t, err)
	require.Equal(t, OutboxDLQReasonUnroutable, reason)

	_, err = ParseOutboxDLQErrorReason("timeout")
	require.Error(t, err)
}
