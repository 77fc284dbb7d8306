package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lead is a customer shipment keyed by the digits of its document number.
type Lead struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Tracking    string          `gorm:"column:tracking;not null;uniqueIndex" json:"tracking"`
	Nome        string          `gorm:"column:nome;not null" json:"nome"`
	NomeProduto string          `gorm:"column:nome_produto;not null" json:"nome_produto"`
	Valor       decimal.Decimal `gorm:"column:valor;not null;default:0" json:"valor"`
	Telefone    *string         `gorm:"column:telefone" json:"telefone"`
	Endereco    *string         `gorm:"column:endereco" json:"endereco"`
	CPFCNPJ     *string         `gorm:"column:cpf_cnpj" json:"cpf_cnpj"`
	Email       *string         `gorm:"column:email" json:"email"`
	Data        *string         `gorm:"column:data" json:"data"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Lead) TableName() string { return "leads" }
