package leads

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/angelmondragon/trackwise-backend/pkg/db"
	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/pagination"
)

// Service exposes lead operations for the admin and tracking routes.
type Service interface {
	List(ctx context.Context, params ListParams) (ListResult, error)
	GetByTracking(ctx context.Context, tracking string) (*models.Lead, error)
	Update(ctx context.Context, id int64, req UpdateLeadRequest) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
	Import(ctx context.Context, r io.Reader) (ImportResult, error)
}

// ServiceParams bundles the dependencies required to build a lead service.
type ServiceParams struct {
	Repo         Repository
	Logger       *logger.Logger
	DefaultLimit int
	MaxLimit     int
}

type service struct {
	repo     Repository
	logg     *logger.Logger
	defLimit int
	maxLimit int
}

// NewService builds a lead service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("leads repository is required")
	}
	return &service{
		repo:     params.Repo,
		logg:     params.Logger,
		defLimit: params.DefaultLimit,
		maxLimit: params.MaxLimit,
	}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (ListResult, error) {
	page := params.Params.Normalize(s.defLimit, s.maxLimit)
	search := strings.TrimSpace(params.Search)

	leads, total, err := s.repo.List(ctx, search, page.Limit, page.Offset())
	if err != nil {
		return ListResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao buscar leads")
	}
	return ListResult{Leads: leads, Pagination: pagination.NewMeta(page, total)}, nil
}

func (s *service) GetByTracking(ctx context.Context, tracking string) (*models.Lead, error) {
	tracking = strings.TrimSpace(tracking)
	if tracking == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Código de rastreio é obrigatório")
	}
	lead, err := s.repo.FindByTracking(ctx, tracking)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgTrackingNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup lead")
	}
	return lead, nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateLeadRequest) error {
	req.Nome = strings.TrimSpace(req.Nome)
	req.NomeProduto = strings.TrimSpace(req.NomeProduto)
	if req.Nome == "" || req.NomeProduto == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, msgNameRequired)
	}

	changed, err := s.repo.Update(ctx, id, req.columns())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao atualizar lead")
	}
	if changed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgLeadNotFound)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao excluir lead")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgLeadNotFound)
	}
	return nil
}

func (s *service) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao excluir todos os leads")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "deleted", deleted), "all leads deleted")
	}
	return deleted, nil
}

func (s *service) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	return NewImporter(s.repo, s.logg).Import(ctx, r)
}
