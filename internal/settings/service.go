package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/security"
)

// Service owns the provider settings snapshot.
type Service interface {
	Provider() ProviderSettings
	Reload(ctx context.Context) (ProviderSettings, error)
	Masked(ctx context.Context) (map[string]string, error)
	Update(ctx context.Context, req UpdateRequest) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build a settings service.
type ServiceParams struct {
	Repo    Repository
	DB      txRunner
	Sealer  *security.Sealer
	BaseURL string
	Logger  *logger.Logger
}

type service struct {
	repo    Repository
	db      txRunner
	sealer  *security.Sealer
	baseURL string
	logg    *logger.Logger

	mu       sync.RWMutex
	snapshot ProviderSettings
}

// NewService builds the service. Call Reload once before serving traffic.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("settings repository is required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner is required")
	}
	return &service{
		repo:    params.Repo,
		db:      params.DB,
		sealer:  params.Sealer,
		baseURL: params.BaseURL,
		logg:    params.Logger,
	}, nil
}

func (s *service) Provider() ProviderSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *service) Reload(ctx context.Context) (ProviderSettings, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return ProviderSettings{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load settings")
	}

	values, err := s.open(rows)
	if err != nil {
		return ProviderSettings{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrypt settings")
	}

	next := ProviderSettings{
		SecretKey:   values[KeySecretKey],
		PublicKey:   values[KeyPublicKey],
		PostbackURL: values[KeyPostbackURL],
	}

	s.mu.Lock()
	s.snapshot = next
	s.mu.Unlock()

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "provider_configured", next.Credentials().Configured()), "provider settings loaded")
	}
	return next, nil
}

func (s *service) Masked(ctx context.Context) (map[string]string, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load settings")
	}

	out := make(map[string]string, len(rows)+1)
	for _, row := range rows {
		if !isSecretKey(row.Key) {
			out[row.Key] = row.Value
			continue
		}
		plain, err := s.sealer.Open(row.Value)
		if err != nil {
			// unreadable with the current key; never echo ciphertext
			out[row.Key] = "***"
			continue
		}
		out[row.Key] = mask(plain)
	}
	out[KeyBaseURL] = s.baseURL
	return out, nil
}

func (s *service) Update(ctx context.Context, req UpdateRequest) error {
	entries := req.entries()
	if len(entries) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, msgNothingToUpdate)
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, entry := range entries {
			value := entry.value
			if entry.secret {
				sealed, err := s.sealer.Seal(value)
				if err != nil {
					return err
				}
				value = sealed
			}
			if err := repo.Upsert(ctx, entry.key, value); err != nil {
				return fmt.Errorf("save %s: %w", entry.key, err)
			}
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save settings")
	}

	_, err = s.Reload(ctx)
	return err
}

func (s *service) open(rows []models.Setting) (map[string]string, error) {
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		value := row.Value
		if isSecretKey(row.Key) {
			plain, err := s.sealer.Open(value)
			if err != nil {
				if errors.Is(err, security.ErrSealerMissing) {
					return nil, fmt.Errorf("%s is encrypted but no encryption key is configured", row.Key)
				}
				return nil, fmt.Errorf("%s: %w", row.Key, err)
			}
			value = plain
		}
		values[row.Key] = value
	}
	return values, nil
}
