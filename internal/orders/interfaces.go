package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, search string, limit, offset int) ([]models.Order, int64, error)
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, id int64, columns map[string]any) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Service is the admin order ledger.
type Service interface {
	List(ctx context.Context, params ListParams) (ListResult, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error)
	Update(ctx context.Context, id int64, req UpdateOrderRequest) (*models.Order, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
}
