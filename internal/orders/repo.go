package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, search string, limit, offset int) ([]models.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Scopes(matchSearch(search)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]models.Order, 0, limit)
	err := r.db.WithContext(ctx).
		Scopes(matchSearch(search)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func matchSearch(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		like := "%" + search + "%"
		return db.Where("tracking_code LIKE ? OR customer_name LIKE ? OR product_name LIKE ? OR status LIKE ?", like, like, like, like)
	}
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Update writes columns and always bumps updated_at, so an empty column set
// still reports whether the row exists.
func (r *repository) Update(ctx context.Context, id int64, columns map[string]any) (int64, error) {
	set := make(map[string]any, len(columns)+1)
	for k, v := range columns {
		set[k] = v
	}
	set["updated_at"] = r.db.NowFunc()
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(set)
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Order{})
	return res.RowsAffected, res.Error
}
