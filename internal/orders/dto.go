package orders

import (
	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	"github.com/angelmondragon/trackwise-backend/pkg/pagination"
	"github.com/angelmondragon/trackwise-backend/pkg/types"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	defaultStatus = "pending"

	msgTrackingRequired = "tracking_code é obrigatório"
	msgOrderNotFound    = "Pedido não encontrado"

	MsgOrderDeleted     = "Pedido excluído com sucesso"
	MsgAllOrdersDeleted = "Todos os pedidos foram excluídos"
)

// ListParams filters the admin order listing.
type ListParams struct {
	pagination.Params
	Search string
}

// ListResult is one page of orders.
type ListResult struct {
	Orders     []models.Order  `json:"orders"`
	Pagination pagination.Meta `json:"pagination"`
}

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	TrackingCode types.OptionalString `json:"tracking_code"`
	CustomerName types.OptionalString `json:"customer_name"`
	ProductName  types.OptionalString `json:"product_name"`
	Amount       types.Amount         `json:"amount"`
	Status       types.OptionalString `json:"status"`
}

// UpdateOrderRequest is the body of PUT /api/orders/{id}. Only present fields
// are written.
type UpdateOrderRequest struct {
	TrackingCode types.OptionalString `json:"tracking_code"`
	CustomerName types.OptionalString `json:"customer_name"`
	ProductName  types.OptionalString `json:"product_name"`
	Amount       types.Amount         `json:"amount"`
	Status       types.OptionalString `json:"status"`
}

func (r UpdateOrderRequest) columns() map[string]any {
	cols := map[string]any{}
	if r.TrackingCode.Set {
		cols["tracking_code"] = r.TrackingCode.Value
	}
	if r.CustomerName.Set {
		cols["customer_name"] = r.CustomerName.Ptr()
	}
	if r.ProductName.Set {
		cols["product_name"] = r.ProductName.Ptr()
	}
	if r.Amount.Set {
		cols["amount"] = r.Amount.OrZero()
	}
	if r.Status.Set {
		cols["status"] = r.Status.Value
	}
	return cols
}
