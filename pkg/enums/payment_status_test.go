package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePaymentStatus(t *testing.T) {
	cases := map[string]PaymentStatus{
		"paid":        PaymentStatusPaid,
		"APPROVED":    PaymentStatusPaid,
		" pending ":   PaymentStatusPending,
		"refused":     PaymentStatusRefused,
		"Canceled":    PaymentStatusRefused,
		"chargedback": PaymentStatus("chargedback"),
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizePaymentStatus(raw), raw)
	}
}

func TestNextPaymentStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  PaymentStatus
		incoming PaymentStatus
		want     StatusTransition
	}{
		{"pending to paid", PaymentStatusPending, PaymentStatusPaid, TransitionApply},
		{"pending to refused", PaymentStatusPending, PaymentStatusRefused, TransitionApply},
		{"pending to unknown", PaymentStatusPending, "waiting_payment", TransitionApply},
		{"pending to pending", PaymentStatusPending, PaymentStatusPending, TransitionIgnore},
		{"paid again refreshes", PaymentStatusPaid, PaymentStatusPaid, TransitionRefresh},
		{"stale pending after paid", PaymentStatusPaid, PaymentStatusPending, TransitionIgnore},
		{"paid to refused", PaymentStatusPaid, PaymentStatusRefused, TransitionIgnore},
		{"refused to paid", PaymentStatusRefused, PaymentStatusPaid, TransitionIgnore},
		{"unknown back to pending", "waiting_payment", PaymentStatusPending, TransitionIgnore},
		{"unknown to paid", "waiting_payment", PaymentStatusPaid, TransitionApply},
		{"empty incoming", PaymentStatusPending, "", TransitionIgnore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextPaymentStatus(tt.current, tt.incoming))
		})
	}
}
