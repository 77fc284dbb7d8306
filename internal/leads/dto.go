package leads

import (
	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	"github.com/angelmondragon/trackwise-backend/pkg/pagination"
)

const (
	msgTrackingNotFound = "Código de rastreio não encontrado"
	msgLeadNotFound     = "Lead não encontrado"
	msgNameRequired     = "Nome e nome do produto são obrigatórios"

	MsgLeadUpdated     = "Lead atualizado com sucesso"
	MsgLeadDeleted     = "Lead excluído com sucesso"
	MsgAllLeadsDeleted = "Todos os leads foram excluídos"
)

// ListParams filters the admin lead listing.
type ListParams struct {
	pagination.Params
	Search string
}

// ListResult is one page of leads.
type ListResult struct {
	Leads      []models.Lead   `json:"leads"`
	Pagination pagination.Meta `json:"pagination"`
}

// UpdateLeadRequest replaces the descriptive fields of a lead. The tracking
// code and value are immutable through this path.
type UpdateLeadRequest struct {
	Nome        string  `json:"nome"`
	NomeProduto string  `json:"nome_produto"`
	Telefone    *string `json:"telefone"`
	Endereco    *string `json:"endereco"`
	CPFCNPJ     *string `json:"cpf_cnpj"`
	Email       *string `json:"email"`
	Data        *string `json:"data"`
}

func (r UpdateLeadRequest) columns() map[string]any {
	return map[string]any{
		"nome":         r.Nome,
		"nome_produto": r.NomeProduto,
		"telefone":     r.Telefone,
		"endereco":     r.Endereco,
		"cpf_cnpj":     r.CPFCNPJ,
		"email":        r.Email,
		"data":         r.Data,
	}
}
