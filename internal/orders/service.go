package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/trackwise-backend/pkg/db"
	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/pagination"
)

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the order service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (ListResult, error) {
	page := params.Params.Normalize(DefaultListLimit, MaxListLimit)
	orders, total, err := s.repo.List(ctx, strings.TrimSpace(params.Search), page.Limit, page.Offset())
	if err != nil {
		return ListResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao buscar pedidos")
	}
	return ListResult{Orders: orders, Pagination: pagination.NewMeta(page, total)}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgOrderNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao buscar pedido")
	}
	return order, nil
}

func (s *service) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	tracking := req.TrackingCode.Trimmed()
	if tracking == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgTrackingRequired)
	}
	status := req.Status.Trimmed()
	if status == "" {
		status = defaultStatus
	}

	order := &models.Order{
		TrackingCode: tracking,
		CustomerName: strPtr(req.CustomerName.Value),
		ProductName:  strPtr(req.ProductName.Value),
		Amount:       req.Amount.OrZero(),
		Status:       status,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao criar pedido")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"order_id":      order.ID,
			"tracking_code": order.TrackingCode,
		}), "order created")
	}
	return s.Get(ctx, order.ID)
}

func (s *service) Update(ctx context.Context, id int64, req UpdateOrderRequest) (*models.Order, error) {
	changed, err := s.repo.Update(ctx, id, req.columns())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao atualizar pedido")
	}
	if changed == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgOrderNotFound)
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao excluir pedido")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgOrderNotFound)
	}
	return nil
}

func (s *service) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao excluir todos os pedidos")
	}
	return deleted, nil
}

func strPtr(v string) *string {
	return &v
}
