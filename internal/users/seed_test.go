package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/trackwise-backend/pkg/config"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/security"
	"github.com/angelmondragon/trackwise-backend/pkg/testdb"
)

var fastArgon = config.PasswordConfig{
	ArgonMemoryKB:    8 * 1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	repo := NewRepository(testdb.New(t).DB())
	ctx := context.Background()
	admin := config.AdminConfig{Username: "admin", Password: "admin123"}

	created, err := EnsureAdmin(ctx, repo, admin, fastArgon, logger.Nop())
	require.NoError(t, err)
	assert.True(t, created)

	user, err := repo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	ok, err := security.VerifyPassword("admin123", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	admin.Password = "changed"
	created, err = EnsureAdmin(ctx, repo, admin, fastArgon, logger.Nop())
	require.NoError(t, err)
	assert.False(t, created)

	again, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, again.PasswordHash)
}

func TestEnsureAdminRequiresCredentials(t *testing.T) {
	repo := NewRepository(testdb.New(t).DB())
	_, err := EnsureAdmin(context.Background(), repo, config.AdminConfig{Username: " "}, fastArgon, nil)
	assert.Error(t, err)
}
