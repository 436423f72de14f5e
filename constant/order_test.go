package constant_test

import (
	"testing"

	"github.com/roastline/storefront/constant"
)

func TestCanTransition(t *testing.T) {
	statuses := []constant.OrderStatus{
		constant.OrderStatusPending,
		constant.OrderStatusProcessing,
		constant.OrderStatusShipped,
		constant.OrderStatusDelivered,
		constant.OrderStatusCancelled,
	}

	legal := map[constant.OrderStatus]map[constant.OrderStatus]bool{
		constant.OrderStatusPending:    {constant.OrderStatusProcessing: true, constant.OrderStatusCancelled: true},
		constant.OrderStatusProcessing: {constant.OrderStatusShipped: true, constant.OrderStatusCancelled: true},
		constant.OrderStatusShipped:    {constant.OrderStatusDelivered: true, constant.OrderStatusCancelled: true},
		constant.OrderStatusDelivered:  {},
		constant.OrderStatusCancelled:  {},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := legal[from][to]
			if got := constant.CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}

	if constant.CanTransition(constant.OrderStatusPending, constant.OrderStatus("refunded")) {
		t.Error("CanTransition to unknown status should be false")
	}
	if constant.CanTransition(constant.OrderStatus("refunded"), constant.OrderStatusPending) {
		t.Error("CanTransition from unknown status should be false")
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []constant.OrderStatus{
		constant.OrderStatusPending,
		constant.OrderStatusProcessing,
		constant.OrderStatusShipped,
		constant.OrderStatusDelivered,
		constant.OrderStatusCancelled,
	} {
		if !s.Valid() {
			t.Errorf("Valid(%s) = false, want true", s)
		}
	}
	if constant.OrderStatus("refunded").Valid() {
		t.Error("Valid(refunded) = true, want false")
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	terminal := map[constant.OrderStatus]bool{
		constant.OrderStatusPending:    false,
		constant.OrderStatusProcessing: false,
		constant.OrderStatusShipped:    false,
		constant.OrderStatusDelivered:  true,
		constant.OrderStatusCancelled:  true,
	}
	for s, want := range terminal {
		if got := s.Terminal(); got != want {
			t.Errorf("Terminal(%s) = %v, want %v", s, got, want)
		}
	}
	if constant.OrderStatus("refunded").Terminal() {
		t.Error("Terminal(refunded) = true, want false")
	}
}
