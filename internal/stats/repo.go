package stats

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	"github.com/angelmondragon/trackwise-backend/pkg/enums"
)

// Repository aggregates payment counts.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the stats queries to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// PaymentCounts returns total, paid and pending payment counts in one scan.
func (r *Repository) PaymentCounts(ctx context.Context) (Summary, error) {
	var out Summary
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select(
			"COUNT(*) AS total_orders, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS total_paid_orders, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS total_pending_orders",
			enums.PaymentStatusPaid, enums.PaymentStatusPending,
		).
		Scan(&out).Error
	return out, err
}
