package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPreparing, OrderStatusShipped, true},
		{OrderStatusPreparing, OrderStatusCancelled, true},
		{OrderStatusPreparing, OrderStatusDelivered, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusPreparing, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusCancelled, OrderStatusPreparing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.False(t, OrderStatusPreparing.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatus("Lost").IsValid())
}

func TestPaymentStatusFor(t *testing.T) {
	assert.Equal(t, PaymentStatusPaid, PaymentStatusFor(PaymentMethodCreditCard))
	assert.Equal(t, PaymentStatusPending, PaymentStatusFor(PaymentMethodCashOnDelivery))
	assert.Equal(t, PaymentStatusPending, PaymentStatusFor(PaymentMethodBankTransfer))
}

func TestUserRoles(t *testing.T) {
	assert.True(t, UserRoleAdmin.IsStaff())
	assert.True(t, UserRoleEditor.IsStaff())
	assert.False(t, UserRoleCustomer.IsStaff())
	assert.False(t, UserRole("ROOT").IsValid())
}

func TestProductEffectivePrice(t *testing.T) {
	p := Product{Price: decimal.RequireFromString("100")}
	assert.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("100")))

	p.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString("80"))
	assert.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("80")))

	p.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString("120"))
	assert.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("100")))
}
