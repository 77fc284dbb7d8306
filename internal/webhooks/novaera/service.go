package novaerawebhook

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/angelmondragon/trackwise-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/metrics"
	"github.com/angelmondragon/trackwise-backend/pkg/novaera"
	"github.com/angelmondragon/trackwise-backend/pkg/outbox"
)

const (
	MsgProcessed        = "Webhook processado"
	MsgAlreadyProcessed = "Webhook já processado"
	msgInvalidPayload   = "Payload inválido"
)

// Result is the webhook response body.
type Result struct {
	Message   string `json:"message"`
	Updated   int64  `json:"updated"`
	Ignored   int64  `json:"-"`
	Duplicate bool   `json:"-"`
}

// StatusApplier moves local payments to a provider-reported status.
type StatusApplier interface {
	ApplyProviderStatus(ctx context.Context, update payments.StatusUpdate) (payments.StatusResult, error)
}

type ServiceParams struct {
	Payments StatusApplier
	Guard    *IdempotencyGuard
	Logger   *logger.Logger
	Metrics  *metrics.PaymentMetrics
}

// Service reconciles NovaEra postbacks with local payments.
type Service struct {
	payments StatusApplier
	guard    *IdempotencyGuard
	logg     *logger.Logger
	metrics  *metrics.PaymentMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, errors.New("status applier is required")
	}
	return &Service{
		payments: params.Payments,
		guard:    params.Guard,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// HandleEvent parses a raw postback body and applies it. Exact replays inside
// the dedupe window are acknowledged without touching storage.
func (s *Service) HandleEvent(ctx context.Context, body []byte) (Result, error) {
	update, err := parseEvent(body)
	if err != nil {
		s.metrics.IncWebhook(metrics.WebhookInvalid)
		return Result{}, err
	}

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"provider_order_id": update.ProviderID,
			"provider_status":   update.Status,
		})
	}

	seen, err := s.guard.CheckAndMark(ctx, body)
	if err != nil && s.logg != nil {
		// fail open: process without dedupe
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "webhook dedupe unavailable")
	}
	if seen {
		s.metrics.IncWebhook(metrics.WebhookDuplicate)
		return Result{Message: MsgAlreadyProcessed, Duplicate: true}, nil
	}

	res, err := s.payments.ApplyProviderStatus(ctx, update)
	if err != nil {
		if relErr := s.guard.Release(ctx, body); relErr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", relErr.Error()), "release webhook dedupe key")
		}
		return Result{}, err
	}

	switch {
	case res.Updated > 0:
		s.metrics.IncWebhook(metrics.WebhookUpdated)
	case res.Matched == 0:
		s.metrics.IncWebhook(metrics.WebhookUnmatched)
	default:
		s.metrics.IncWebhook(metrics.WebhookIgnored)
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"matched": res.Matched,
			"updated": res.Updated,
			"ignored": res.Ignored,
		}), "webhook processed")
	}
	return Result{Message: MsgProcessed, Updated: res.Updated, Ignored: res.Ignored}, nil
}

func parseEvent(body []byte) (payments.StatusUpdate, error) {
	var env novaera.Envelope
	if err := json.Unmarshal(body, &env); err != nil || env.Data == nil {
		return payments.StatusUpdate{}, pkgerrors.New(pkgerrors.CodeInvalidPayload, msgInvalidPayload)
	}
	id := env.Data.ProviderID()
	status := strings.TrimSpace(env.Data.Status)
	if id == "" || status == "" {
		return payments.StatusUpdate{}, pkgerrors.New(pkgerrors.CodeInvalidPayload, msgInvalidPayload)
	}
	return payments.StatusUpdate{ProviderID: id, Status: status, Source: outbox.SourceWebhook}, nil
}
