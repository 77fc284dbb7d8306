package payments

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	"github.com/angelmondragon/trackwise-backend/pkg/enums"
)

// Repository persists payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id int64) (*models.Payment, error)
	FindLatestPending(ctx context.Context, trackingCode, paymentType string) (*models.Payment, error)
	FindByOrderID(ctx context.Context, orderID string) ([]models.Payment, error)
	FindByPixCode(ctx context.Context, pixCode string) ([]models.Payment, error)
	CompareAndSetStatus(ctx context.Context, id int64, from, to enums.PaymentStatus, paidAt *time.Time) (bool, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time, afterID int64, limit int) ([]models.Payment, error)
	List(ctx context.Context, limit, offset int) ([]models.PaymentWithLead, int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindLatestPending(ctx context.Context, trackingCode, paymentType string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("tracking_code = ? AND payment_type = ? AND status = ?", trackingCode, paymentType, enums.PaymentStatusPending).
		Order("id DESC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID string) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindByPixCode(ctx context.Context, pixCode string) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).Where("pix_code = ?", pixCode).Order("id ASC").Find(&rows).Error
	return rows, err
}

// CompareAndSetStatus moves a row from one status to another. A nil paidAt
// leaves paid_at untouched. It reports false when the row is no longer in from.
func (r *repository) CompareAndSetStatus(ctx context.Context, id int64, from, to enums.PaymentStatus, paidAt *time.Time) (bool, error) {
	updates := map[string]any{"status": to}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// ListPendingBefore pages through pending payments older than cutoff in id
// order, returning rows with an id above afterID.
func (r *repository) ListPendingBefore(ctx context.Context, cutoff time.Time, afterID int64, limit int) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ? AND order_id IS NOT NULL AND order_id <> ''", enums.PaymentStatusPending, cutoff).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]models.PaymentWithLead, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Payment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]models.PaymentWithLead, 0, limit)
	err := r.db.WithContext(ctx).
		Table("payments AS p").
		Select("p.*, l.nome AS lead_nome, l.nome_produto AS lead_produto").
		Joins("LEFT JOIN leads l ON p.tracking_code = l.tracking").
		Order("p.created_at DESC, p.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Payment{})
	return res.RowsAffected, res.Error
}
