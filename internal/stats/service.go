package stats

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
)

// Summary is the dashboard rollup. Every figure counts payments.
type Summary struct {
	TotalOrders        int64 `gorm:"column:total_orders" json:"totalOrders"`
	TotalPaidOrders    int64 `gorm:"column:total_paid_orders" json:"totalPaidOrders"`
	TotalPendingOrders int64 `gorm:"column:total_pending_orders" json:"totalPendingOrders"`
}

// Service serves GET /api/stats.
type Service interface {
	Summary(ctx context.Context) (Summary, error)
}

type counter interface {
	PaymentCounts(ctx context.Context) (Summary, error)
}

type service struct {
	repo counter
}

// NewService builds the stats service.
func NewService(repo counter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stats repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Summary(ctx context.Context) (Summary, error) {
	out, err := s.repo.PaymentCounts(ctx)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao buscar estatísticas")
	}
	return out, nil
}
