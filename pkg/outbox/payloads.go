package outbox

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRegistered is the data block of payment.registered.
type PaymentRegistered struct {
	PaymentID       int64           `json:"paymentId"`
	TrackingCode    string          `json:"trackingCode"`
	PaymentType     string          `json:"paymentType"`
	Amount          decimal.Decimal `json:"amount"`
	ProviderOrderID *string         `json:"providerOrderId,omitempty"`
	ExternalRef     string          `json:"externalRef"`
}

// PaymentStatusChanged is the data block of payment.status_changed.
type PaymentStatusChanged struct {
	PaymentID    int64      `json:"paymentId"`
	TrackingCode string     `json:"trackingCode"`
	PaymentType  string     `json:"paymentType"`
	From         string     `json:"from"`
	To           string     `json:"to"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`
}
