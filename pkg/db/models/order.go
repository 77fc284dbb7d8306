package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a free-form order record. Status is not constrained.
type Order struct {
	ID           int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TrackingCode string          `gorm:"column:tracking_code;not null" json:"tracking_code"`
	CustomerName *string         `gorm:"column:customer_name" json:"customer_name"`
	ProductName  *string         `gorm:"column:product_name" json:"product_name"`
	Amount       decimal.Decimal `gorm:"column:amount;not null;default:0" json:"amount"`
	Status       string          `gorm:"column:status;not null;default:pending" json:"status"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }
