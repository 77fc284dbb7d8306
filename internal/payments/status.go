package payments

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	"github.com/angelmondragon/trackwise-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
)

// ApplyProviderStatus matches rows by order_id, falling back to pix_code, and
// moves each one through the forward-only status lattice. Every changed row
// emits payment.status_changed in the same transaction.
func (s *service) ApplyProviderStatus(ctx context.Context, update StatusUpdate) (StatusResult, error) {
	providerID := strings.TrimSpace(update.ProviderID)
	incoming := enums.NormalizePaymentStatus(update.Status)
	if providerID == "" || incoming == "" {
		return StatusResult{}, pkgerrors.New(pkgerrors.CodeInvalidPayload, "Payload inválido")
	}

	ctx = s.logCtx(ctx, map[string]any{
		"provider_order_id": providerID,
		"incoming_status":   incoming,
		"source":            update.Source,
	})

	var result StatusResult
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		result = StatusResult{}
		repo := s.repo.WithTx(tx)

		rows, err := repo.FindByOrderID(ctx, providerID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			if rows, err = repo.FindByPixCode(ctx, providerID); err != nil {
				return err
			}
		}
		result.Matched = len(rows)

		for _, row := range rows {
			changed, err := s.transition(ctx, tx, repo, row, incoming, update.Source)
			if err != nil {
				return err
			}
			if changed {
				result.Updated++
			} else {
				result.Ignored++
			}
		}
		return nil
	})
	if err != nil {
		return StatusResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao atualizar pagamento")
	}
	return result, nil
}

func (s *service) transition(ctx context.Context, tx *gorm.DB, repo Repository, row models.Payment, incoming enums.PaymentStatus, source string) (bool, error) {
	var paidAt *time.Time
	if incoming == enums.PaymentStatusPaid {
		now := s.now()
		paidAt = &now
	}

	switch enums.NextPaymentStatus(row.Status, incoming) {
	case enums.TransitionRefresh:
		return repo.CompareAndSetStatus(ctx, row.ID, row.Status, row.Status, paidAt)
	case enums.TransitionApply:
		ok, err := repo.CompareAndSetStatus(ctx, row.ID, row.Status, incoming, paidAt)
		if err != nil || !ok {
			return false, err
		}
		return true, s.emitStatusChanged(ctx, tx, row, incoming, paidAt, source)
	default:
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"payment_id":     row.ID,
				"current_status": row.Status,
			}), "status transition ignored")
		}
		return false, nil
	}
}
