package leads

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/pagination"
	"github.com/angelmondragon/trackwise-backend/pkg/testdb"
)

func newTestService(t *testing.T) (Service, Repository) {
	t.Helper()
	repo := NewRepository(testdb.New(t).DB())
	svc, err := NewService(ServiceParams{Repo: repo, DefaultLimit: 10, MaxLimit: 100})
	require.NoError(t, err)
	return svc, repo
}

func seedLead(t *testing.T, repo Repository, tracking, nome string) *models.Lead {
	t.Helper()
	lead := &models.Lead{
		Tracking:    tracking,
		Nome:        nome,
		NomeProduto: "Produto " + tracking,
		Valor:       decimal.RequireFromString("49.90"),
		Email:       strPtr(tracking + "@example.com"),
	}
	require.NoError(t, repo.Create(context.Background(), lead))
	return lead
}

func TestListPaginatesAndSearches(t *testing.T) {
	svc, repo := newTestService(t)
	for i := 0; i < 12; i++ {
		seedLead(t, repo, fmt.Sprintf("1234567890%d", i), fmt.Sprintf("Cliente %d", i))
	}
	seedLead(t, repo, "99999999999", "Maria Souza")

	res, err := svc.List(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Len(t, res.Leads, 10)
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 10, Total: 13, Pages: 2}, res.Pagination)
	assert.Equal(t, "99999999999", res.Leads[0].Tracking, "newest first")

	res, err = svc.List(context.Background(), ListParams{Params: pagination.Params{Page: 2, Limit: 10}})
	require.NoError(t, err)
	assert.Len(t, res.Leads, 3)

	res, err = svc.List(context.Background(), ListParams{Search: "Souza"})
	require.NoError(t, err)
	require.Len(t, res.Leads, 1)
	assert.Equal(t, "Maria Souza", res.Leads[0].Nome)
	assert.EqualValues(t, 1, res.Pagination.Total)
}

func TestGetByTracking(t *testing.T) {
	svc, repo := newTestService(t)
	seedLead(t, repo, "12345678901", "Ana")

	lead, err := svc.GetByTracking(context.Background(), "12345678901")
	require.NoError(t, err)
	assert.Equal(t, "Ana", lead.Nome)
	assert.True(t, lead.Valor.Equal(decimal.RequireFromString("49.9")))

	_, err = svc.GetByTracking(context.Background(), "000")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, msgTrackingNotFound, pkgerrors.As(err).Message())
}

func TestUpdateLead(t *testing.T) {
	svc, repo := newTestService(t)
	lead := seedLead(t, repo, "12345678901", "Ana")
	ctx := context.Background()

	err := svc.Update(ctx, lead.ID, UpdateLeadRequest{Nome: "Ana"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.NoError(t, svc.Update(ctx, lead.ID, UpdateLeadRequest{
		Nome:        "Ana Lima",
		NomeProduto: "Relógio",
		Telefone:    strPtr("11999990000"),
	}))
	got, err := repo.FindByTracking(ctx, "12345678901")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", got.Nome)
	assert.Equal(t, "Relógio", got.NomeProduto)
	require.NotNil(t, got.Telefone)
	assert.Equal(t, "11999990000", *got.Telefone)
	assert.Nil(t, got.Email, "omitted optional fields are cleared")

	err = svc.Update(ctx, lead.ID+100, UpdateLeadRequest{Nome: "x", NomeProduto: "y"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteLeads(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	first := seedLead(t, repo, "111", "A")
	seedLead(t, repo, "222", "B")
	seedLead(t, repo, "333", "C")

	require.NoError(t, svc.Delete(ctx, first.ID))
	err := svc.Delete(ctx, first.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	deleted, err := svc.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	res, err := svc.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Empty(t, res.Leads)
}
