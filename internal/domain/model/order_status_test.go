package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func TestOrder_RevertStatus(t *testing.T) {
	tests := []struct {
		from       OrderStatus
		want       OrderStatus
		wantResult bool
	}{
		{from: OrderStatusPending, want: OrderStatusPending, wantResult: false},
		{from: OrderStatusPacked, want: OrderStatusPending, wantResult: true},
		{from: OrderStatusShipped, want: OrderStatusPacked, wantResult: true},
		{from: OrderStatusDelivered, want: OrderStatusShipped, wantResult: true},
		{from: OrderStatusCancelled, want: OrderStatusCancelled, wantResult: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			o := &Order{Status: tt.from}
			assert.Equal(t, tt.wantResult, o.CanRevertStatus())
			assert.Equal(t, tt.wantResult, o.RevertStatus())
			assert.Equal(t, tt.want, o.Status)
		})
	}
}

// 戻して進めると元に戻る
func TestOrder_RevertThenAdvance(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPacked, OrderStatusShipped, OrderStatusDelivered} {
		o := &Order{Status: s}
		assert.True(t, o.RevertStatus())
		assert.True(t, o.AdvanceStatus())
		assert.Equal(t, s, o.Status)
	}
}

func TestOrder_AdvanceStatus(t *testing.T) {
	o := &Order{Status: OrderStatusPending}
	var seen []OrderStatus
	for o.AdvanceStatus() {
		seen = append(seen, o.Status)
	}
	assert.Equal(t, []OrderStatus{OrderStatusPacked, OrderStatusShipped, OrderStatusDelivered}, seen)

	c := &Order{Status: OrderStatusCancelled}
	assert.False(t, c.AdvanceStatus())
	assert.Equal(t, OrderStatusCancelled, c.Status)
}

func TestOrder_Cancel(t *testing.T) {
	for s, want := range map[OrderStatus]bool{
		OrderStatusPending:   true,
		OrderStatusPacked:    true,
		OrderStatusShipped:   true,
		OrderStatusDelivered: false,
		OrderStatusCancelled: false,
	} {
		o := &Order{Status: s}
		assert.Equal(t, want, o.Cancel(), s)
		if want {
			assert.Equal(t, OrderStatusCancelled, o.Status)
		} else {
			assert.Equal(t, s, o.Status)
		}
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderStatusDelivered.Valid())
	assert.False(t, OrderStatus("lost").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestNewUser_ApprovalDecidedAtCreation(t *testing.T) {
	tests := []struct {
		role         Role
		wantApproved bool
		wantStaff    bool
	}{
		{role: RoleFarmer, wantApproved: true},
		{role: RoleSeller, wantApproved: false},
		{role: RoleAdmin, wantApproved: true, wantStaff: true},
	}
	for _, tt := range tests {
		u := NewUser("a@example.com", "hash", "A", tt.role, fixedNow)
		assert.Equal(t, tt.wantApproved, u.IsApproved, tt.role)
		assert.Equal(t, tt.wantStaff, u.IsStaff, tt.role)
		assert.True(t, u.IsActive)
	}

	_, err := ParseRole("Owner")
	assert.ErrorIs(t, err, ErrInvalidRole)
	r, err := ParseRole(" Seller ")
	assert.NoError(t, err)
	assert.Equal(t, RoleSeller, r)
}
