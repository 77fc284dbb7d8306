package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/trackwise-backend/internal/leads"
	"github.com/angelmondragon/trackwise-backend/internal/settings"
	"github.com/angelmondragon/trackwise-backend/pkg/db"
	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	"github.com/angelmondragon/trackwise-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/metrics"
	"github.com/angelmondragon/trackwise-backend/pkg/novaera"
	"github.com/angelmondragon/trackwise-backend/pkg/outbox"
	"github.com/angelmondragon/trackwise-backend/pkg/pagination"
)

// Customer placeholders used when no lead matches the tracking code.
const (
	placeholderName   = "Cliente"
	placeholderEmail  = "cliente@example.com"
	placeholderDigits = "00000000000"

	itemTitle = "Pagamento TrackWise"
)

// Service is the payment registration and reconciliation surface.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (RegisterResult, error)
	Confirm(ctx context.Context, id int64) error
	ApplyProviderStatus(ctx context.Context, update StatusUpdate) (StatusResult, error)
	ProviderTransaction(ctx context.Context, id string) (json.RawMessage, error)
	List(ctx context.Context, params pagination.Params) (ListResult, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Provider is the subset of the NovaEra client used here.
type Provider interface {
	CreateTransaction(ctx context.Context, creds novaera.Credentials, req novaera.CreateTransactionRequest) (novaera.Transaction, error)
	GetTransaction(ctx context.Context, creds novaera.Credentials, id string) (json.RawMessage, error)
}

// CredentialSource yields the current provider settings snapshot.
type CredentialSource interface {
	Provider() settings.ProviderSettings
}

// LeadFinder resolves the lead behind a tracking code.
type LeadFinder interface {
	FindByTracking(ctx context.Context, tracking string) (*models.Lead, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build a payment service.
type ServiceParams struct {
	Repo     Repository
	Leads    LeadFinder
	Settings CredentialSource
	Provider Provider
	Outbox   outbox.Emitter
	DB       txRunner
	Logger   *logger.Logger
	Metrics  *metrics.PaymentMetrics

	// DefaultPostbackURL is used when no postback URL is configured.
	DefaultPostbackURL string
	ProductImage       string
	PixExpiresDays     int
	Now                func() time.Time
}

type service struct {
	repo     Repository
	leads    LeadFinder
	settings CredentialSource
	provider Provider
	outbox   outbox.Emitter
	db       txRunner
	logg     *logger.Logger
	metrics  *metrics.PaymentMetrics

	defaultPostbackURL string
	productImage       string
	pixExpiresDays     int
	now                func() time.Time
}

// NewService validates dependencies and builds the payment service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("payments repository is required")
	case params.Leads == nil:
		return nil, fmt.Errorf("lead finder is required")
	case params.Settings == nil:
		return nil, fmt.Errorf("settings source is required")
	case params.Provider == nil:
		return nil, fmt.Errorf("payment provider is required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter is required")
	case params.DB == nil:
		return nil, fmt.Errorf("db runner is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	expires := params.PixExpiresDays
	if expires <= 0 {
		expires = 1
	}
	return &service{
		repo:               params.Repo,
		leads:              params.Leads,
		settings:           params.Settings,
		provider:           params.Provider,
		outbox:             params.Outbox,
		db:                 params.DB,
		logg:               params.Logger,
		metrics:            params.Metrics,
		defaultPostbackURL: params.DefaultPostbackURL,
		productImage:       params.ProductImage,
		pixExpiresDays:     expires,
		now:                now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	input.TrackingCode = strings.TrimSpace(input.TrackingCode)
	input.PaymentType = strings.TrimSpace(input.PaymentType)
	if input.TrackingCode == "" || input.PaymentType == "" || !input.Amount.Set {
		return RegisterResult{}, pkgerrors.New(pkgerrors.CodeValidation, msgRequiredFields)
	}
	if !input.Amount.Valid || input.Amount.Value.IsNegative() {
		return RegisterResult{}, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidAmount)
	}

	provider := s.settings.Provider()
	creds := provider.Credentials()
	if !creds.Configured() {
		s.metrics.IncRegistered(metrics.OutcomeFailed)
		return RegisterResult{}, pkgerrors.New(pkgerrors.CodeProviderNotConfigured, novaera.MsgNotConfigured)
	}

	if s.logg != nil {
		ctx = s.logg.WithTrackingCode(ctx, input.TrackingCode)
	}
	ctx = s.logCtx(ctx, map[string]any{"payment_type": input.PaymentType})

	existing, err := s.repo.FindLatestPending(ctx, input.TrackingCode, input.PaymentType)
	switch {
	case err == nil:
		return s.reused(ctx, existing), nil
	case !db.IsNotFound(err):
		s.metrics.IncRegistered(metrics.OutcomeFailed)
		return RegisterResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao buscar pagamento pendente")
	}

	lead, err := s.leads.FindByTracking(ctx, input.TrackingCode)
	if err != nil && !db.IsNotFound(err) {
		s.metrics.IncRegistered(metrics.OutcomeFailed)
		return RegisterResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao buscar dados do lead")
	}

	externalRef := input.OrderID
	if externalRef == "" {
		externalRef = fmt.Sprintf("tw_%s_%d", input.TrackingCode, s.now().UnixMilli())
	}
	postbackURL := strings.TrimSpace(provider.PostbackURL)
	if postbackURL == "" {
		postbackURL = s.defaultPostbackURL
	}

	req, err := s.buildTransaction(input, lead, externalRef, postbackURL)
	if err != nil {
		s.metrics.IncRegistered(metrics.OutcomeFailed)
		return RegisterResult{}, err
	}

	tx, err := s.provider.CreateTransaction(ctx, creds, req)
	if err != nil {
		s.metrics.IncRegistered(metrics.OutcomeFailed)
		if s.logg != nil {
			s.logg.Error(ctx, "provider transaction failed", err)
		}
		return RegisterResult{}, err
	}

	providerID := tx.ProviderID()
	payment := &models.Payment{
		TrackingCode: input.TrackingCode,
		Amount:       input.Amount.Value,
		PaymentType:  input.PaymentType,
		Status:       enums.PaymentStatusPending,
		PixCode:      optional(tx.Pix.QRCode),
		OrderID:      optional(firstNonEmpty(providerID, input.OrderID)),
		ExternalRef:  optional(externalRef),
	}

	err = s.db.WithTx(ctx, func(gtx *gorm.DB) error {
		if err := s.repo.WithTx(gtx).Create(ctx, payment); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, gtx, outbox.DomainEvent{
			EventType:     enums.EventPaymentRegistered,
			AggregateType: enums.AggregatePayment,
			AggregateID:   fmt.Sprint(payment.ID),
			Actor:         &outbox.ActorRef{Source: outbox.SourceAPI},
			Data: outbox.PaymentRegistered{
				PaymentID:       payment.ID,
				TrackingCode:    payment.TrackingCode,
				PaymentType:     payment.PaymentType,
				Amount:          payment.Amount,
				ProviderOrderID: payment.OrderID,
				ExternalRef:     externalRef,
			},
		})
	})
	if err != nil {
		if db.IsUniqueViolation(err, models.PendingPaymentIndex) {
			return s.reuse(ctx, input, providerID, externalRef)
		}
		s.metrics.IncRegistered(metrics.OutcomeFailed)
		return RegisterResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao registrar pagamento")
	}

	s.metrics.IncRegistered(metrics.OutcomeCreated)
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "payment_id", payment.ID), "payment registered")
	}
	return RegisterResult{
		Message:         MsgRegistered,
		PaymentID:       payment.ID,
		PixCode:         payment.PixCode,
		ProviderOrderID: payment.OrderID,
		SecureURL:       optional(tx.SecureURL),
	}, nil
}

// reuse answers a registration that lost the insert race to a concurrent
// request. The provider transaction created by this request has no local row
// and is left for manual review.
func (s *service) reuse(ctx context.Context, input RegisterInput, providerID, externalRef string) (RegisterResult, error) {
	s.metrics.IncOrphaned()
	if s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"provider_order_id": providerID,
			"external_ref":      externalRef,
		}), "orphaned provider transaction after duplicate pending payment")
	}

	existing, err := s.repo.FindLatestPending(ctx, input.TrackingCode, input.PaymentType)
	if err != nil {
		s.metrics.IncRegistered(metrics.OutcomeFailed)
		if db.IsNotFound(err) {
			return RegisterResult{}, pkgerrors.New(pkgerrors.CodeConflict, msgDuplicatePayment)
		}
		return RegisterResult{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgDuplicatePayment)
	}
	return s.reused(ctx, existing), nil
}

func (s *service) reused(ctx context.Context, existing *models.Payment) RegisterResult {
	s.metrics.IncRegistered(metrics.OutcomeReused)
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "payment_id", existing.ID), "pending payment reused")
	}
	return RegisterResult{
		Message:         MsgReused,
		PaymentID:       existing.ID,
		PixCode:         existing.PixCode,
		ProviderOrderID: existing.OrderID,
		Reused:          true,
	}
}

func (s *service) buildTransaction(input RegisterInput, lead *models.Lead, externalRef, postbackURL string) (novaera.CreateTransactionRequest, error) {
	customer := customerFor(lead)
	cents := AmountToCents(input.Amount.Value)

	metadata, err := json.Marshal(map[string]string{
		"provider":      "TrackWise",
		"tracking_code": input.TrackingCode,
	})
	if err != nil {
		return novaera.CreateTransactionRequest{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode metadata")
	}

	return novaera.CreateTransactionRequest{
		PaymentMethod: "pix",
		IP:            input.ClientIP,
		Pix:           novaera.PixOptions{ExpiresInDays: s.pixExpiresDays},
		Items: []novaera.Item{{
			Title:        itemTitle,
			Quantity:     1,
			Tangible:     false,
			UnitPrice:    cents,
			ProductImage: s.productImage,
		}},
		Amount:      cents,
		Customer:    customer,
		Metadata:    string(metadata),
		Traceable:   false,
		ExternalRef: externalRef,
		PostbackURL: postbackURL,
	}, nil
}

func customerFor(lead *models.Lead) novaera.Customer {
	name, email, phone, document := placeholderName, placeholderEmail, "", ""
	if lead != nil {
		name = firstNonEmpty(strings.TrimSpace(lead.Nome), placeholderName)
		email = firstNonEmpty(strings.TrimSpace(deref(lead.Email)), placeholderEmail)
		phone = leads.DigitsOnly(deref(lead.Telefone))
		document = leads.DigitsOnly(deref(lead.CPFCNPJ))
	}
	phone = firstNonEmpty(phone, placeholderDigits)
	document = firstNonEmpty(document, placeholderDigits)

	return novaera.Customer{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Document: novaera.Document{Type: ClassifyDocument(document), Number: document},
	}
}

// AmountToCents converts a currency amount to minor units, rounding half away
// from zero.
func AmountToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// ClassifyDocument reports cnpj for 14 digits and cpf for anything else.
func ClassifyDocument(digits string) string {
	if len(digits) == 14 {
		return novaera.DocumentCNPJ
	}
	return novaera.DocumentCPF
}

func (s *service) Confirm(ctx context.Context, id int64) error {
	now := s.now()
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if payment.Status == enums.PaymentStatusPaid {
			return nil
		}
		ok, err := repo.CompareAndSetStatus(ctx, payment.ID, payment.Status, enums.PaymentStatusPaid, &now)
		if err != nil || !ok {
			return err
		}
		return s.emitStatusChanged(ctx, tx, *payment, enums.PaymentStatusPaid, &now, outbox.SourceAPI)
	})
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, msgPaymentNotFound)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao confirmar pagamento")
	}
	return nil
}

func (s *service) ProviderTransaction(ctx context.Context, id string) (json.RawMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "id é obrigatório")
	}
	return s.provider.GetTransaction(ctx, s.settings.Provider().Credentials(), id)
}

func (s *service) List(ctx context.Context, params pagination.Params) (ListResult, error) {
	page := params.Normalize(DefaultListLimit, MaxListLimit)
	rows, total, err := s.repo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return ListResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao buscar pagamentos")
	}
	return ListResult{Payments: rows, Pagination: pagination.NewMeta(page, total)}, nil
}

func (s *service) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Erro ao excluir pagamentos")
	}
	return deleted, nil
}

func (s *service) emitStatusChanged(ctx context.Context, tx *gorm.DB, payment models.Payment, to enums.PaymentStatus, paidAt *time.Time, source string) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPaymentStatusChanged,
		AggregateType: enums.AggregatePayment,
		AggregateID:   fmt.Sprint(payment.ID),
		Actor:         &outbox.ActorRef{Source: source},
		Data: outbox.PaymentStatusChanged{
			PaymentID:    payment.ID,
			TrackingCode: payment.TrackingCode,
			PaymentType:  payment.PaymentType,
			From:         payment.Status.String(),
			To:           to.String(),
			PaidAt:       paidAt,
		},
	})
}

func (s *service) logCtx(ctx context.Context, fields map[string]any) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithFields(ctx, fields)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
