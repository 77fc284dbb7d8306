package payments

import (
	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	"github.com/angelmondragon/trackwise-backend/pkg/pagination"
	"github.com/angelmondragon/trackwise-backend/pkg/types"
)

const (
	MsgRegistered       = "Pagamento registrado com sucesso"
	MsgReused           = "Pagamento já existente (reutilizado)"
	MsgConfirmed        = "Pagamento confirmado com sucesso"
	MsgAllDeleted       = "Todos os pagamentos foram excluídos"
	msgRequiredFields   = "tracking_code, amount e payment_type são obrigatórios"
	msgInvalidAmount    = "amount deve ser um número maior ou igual a zero"
	msgDuplicatePayment = "Pagamento duplicado"
	msgPaymentNotFound  = "Pagamento não encontrado"
)

// Listing defaults for the admin payments page.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// RegisterRequest is the body of POST /api/payments.
type RegisterRequest struct {
	TrackingCode string               `json:"tracking_code"`
	Amount       types.Amount         `json:"amount"`
	PaymentType  string               `json:"payment_type"`
	OrderID      types.OptionalString `json:"order_id"`
}

// Input converts the HTTP body into a service input.
func (r RegisterRequest) Input(clientIP string) RegisterInput {
	return RegisterInput{
		TrackingCode: r.TrackingCode,
		Amount:       r.Amount,
		PaymentType:  r.PaymentType,
		OrderID:      r.OrderID.Trimmed(),
		ClientIP:     clientIP,
	}
}

// RegisterInput is the registration contract.
type RegisterInput struct {
	TrackingCode string
	Amount       types.Amount
	PaymentType  string
	OrderID      string
	ClientIP     string
}

// RegisterResult is returned for both fresh and reused payments.
type RegisterResult struct {
	Message         string  `json:"message"`
	PaymentID       int64   `json:"payment_id"`
	PixCode         *string `json:"pix_code"`
	ProviderOrderID *string `json:"provider_order_id"`
	SecureURL       *string `json:"secure_url,omitempty"`
	Reused          bool    `json:"-"`
}

// ListResult is one page of payments joined to their leads.
type ListResult struct {
	Payments   []models.PaymentWithLead `json:"payments"`
	Pagination pagination.Meta          `json:"pagination"`
}

// StatusUpdate is a provider-reported status for a provider identifier.
type StatusUpdate struct {
	ProviderID string
	Status     string
	Source     string
}

// StatusResult counts what a status update did.
type StatusResult struct {
	Matched int
	Updated int64
	Ignored int64
}
