package model

import "testing"

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"pending", OrderStatusPending, "pending"},
		{"completed", OrderStatusCompleted, "completed"},
		{"failed", OrderStatusFailed, "failed"},
		{"refunded", OrderStatusRefunded, "refunded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
		})
	}
}

func TestPaymentStatusValues(t *testing.T) {
	cases := []struct {
		status PaymentStatus
		value  string
	}{
		{PaymentStatusPending, "pending"},
		{PaymentStatusPaid, "paid"},
		{PaymentStatusFailed, "failed"},
		{PaymentStatusRefunded, "refunded"},
	}

	for _, tc := range cases {
		if string(tc.status) != tc.value {
			t.Fatalf("expected %s, got %s", tc.value, tc.status)
		}
	}
}

func TestTicketStatusValues(t *testing.T) {
	cases := []struct {
		status TicketStatus
		value  string
	}{
		{TicketStatusReserved, "reserved"},
		{TicketStatusActive, "active"},
		{TicketStatusRefunded, "refunded"},
	}

	for _, tc := range cases {
		if string(tc.status) != tc.value {
			t.Fatalf("expected %s, got %s", tc.value, tc.status)
		}
	}
}
