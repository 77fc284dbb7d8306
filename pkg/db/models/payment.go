package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/trackwise-backend/pkg/enums"
)

// PendingPaymentIndex guarantees one pending payment per tracking code and type.
const PendingPaymentIndex = "idx_unique_pending_payment"

// Payment is a PIX charge registered with the provider.
type Payment struct {
	ID           int64               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TrackingCode string              `gorm:"column:tracking_code;not null" json:"tracking_code"`
	Amount       decimal.Decimal     `gorm:"column:amount;not null" json:"amount"`
	PaymentType  string              `gorm:"column:payment_type;not null" json:"payment_type"`
	Status       enums.PaymentStatus `gorm:"column:status;not null;default:pending" json:"status"`
	PixCode      *string             `gorm:"column:pix_code" json:"pix_code"`
	OrderID      *string             `gorm:"column:order_id" json:"order_id"`
	ExternalRef  *string             `gorm:"column:external_ref" json:"external_ref"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	PaidAt       *time.Time          `gorm:"column:paid_at" json:"paid_at"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

// PaymentWithLead is the admin listing row joined to its lead.
type PaymentWithLead struct {
	Payment
	LeadNome    *string `gorm:"column:lead_nome" json:"lead_nome"`
	LeadProduto *string `gorm:"column:lead_produto" json:"lead_produto"`
}
