package leads

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
)

// Repository persists leads.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, search string, limit, offset int) ([]models.Lead, int64, error)
	FindByTracking(ctx context.Context, tracking string) (*models.Lead, error)
	TrackingExists(ctx context.Context, tracking string) (bool, error)
	Create(ctx context.Context, lead *models.Lead) error
	Update(ctx context.Context, id int64, columns map[string]any) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a leads repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, search string, limit, offset int) ([]models.Lead, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Lead{}).
		Scopes(matchSearch(search)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	leads := make([]models.Lead, 0, limit)
	if err := r.db.WithContext(ctx).
		Scopes(matchSearch(search)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&leads).Error; err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func matchSearch(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		like := "%" + search + "%"
		return db.Where("tracking LIKE ? OR nome LIKE ? OR nome_produto LIKE ? OR email LIKE ?", like, like, like, like)
	}
}

func (r *repository) FindByTracking(ctx context.Context, tracking string) (*models.Lead, error) {
	var lead models.Lead
	if err := r.db.WithContext(ctx).Where("tracking = ?", tracking).First(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *repository) TrackingExists(ctx context.Context, tracking string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Lead{}).Where("tracking = ?", tracking).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *repository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *repository) Update(ctx context.Context, id int64, columns map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", id).Updates(columns)
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Lead{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Lead{})
	return res.RowsAffected, res.Error
}
