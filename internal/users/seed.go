package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/trackwise-backend/pkg/config"
	"github.com/angelmondragon/trackwise-backend/pkg/db"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/security"
)

// EnsureAdmin creates the configured admin account when it does not exist.
// An existing account keeps its password. Reports whether a user was created.
func EnsureAdmin(ctx context.Context, repo *Repository, admin config.AdminConfig, pw config.PasswordConfig, logg *logger.Logger) (bool, error) {
	username := strings.TrimSpace(admin.Username)
	if username == "" || admin.Password == "" {
		return false, fmt.Errorf("admin username and password are required")
	}

	if _, err := repo.FindByUsername(ctx, username); err == nil {
		return false, nil
	} else if !db.IsNotFound(err) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := security.HashPassword(admin.Password, pw)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := repo.Create(ctx, username, hash); err != nil {
		if db.IsUniqueViolation(err, "") {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "username", username), "default admin user created")
	}
	return true, nil
}
