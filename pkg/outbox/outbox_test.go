package outbox_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	"github.com/angelmondragon/trackwise-backend/pkg/enums"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/outbox"
	"github.com/angelmondragon/trackwise-backend/pkg/testdb"
)

func registeredEvent(id string) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventPaymentRegistered,
		AggregateType: enums.AggregatePayment,
		AggregateID:   id,
		Actor:         &outbox.ActorRef{Source: outbox.SourceAPI},
		Data: outbox.PaymentRegistered{
			PaymentID:    1,
			TrackingCode: "12345678901",
			PaymentType:  "taxa_liberacao",
			Amount:       decimal.RequireFromString("15.40"),
			ExternalRef:  "O1",
		},
	}
}

func TestEmitWritesEnvelope(t *testing.T) {
	client := testdb.New(t)
	repo := outbox.NewRepository(client.DB())
	svc := outbox.NewService(repo, logger.Nop())
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, registeredEvent("1"))
	}))

	rows, err := repo.ListByAggregate(ctx, "1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.EventPaymentRegistered, rows[0].EventType)
	assert.Nil(t, rows[0].PublishedAt)

	env, err := outbox.DecodeEnvelope(rows[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, 1, env.Version)
	assert.NotEmpty(t, env.EventID)
	require.NotNil(t, env.Actor)
	assert.Equal(t, outbox.SourceAPI, env.Actor.Source)
	assert.JSONEq(t, `{"paymentId":1,"trackingCode":"12345678901","paymentType":"taxa_liberacao","amount":15.4,"externalRef":"O1"}`, string(env.Data))
}

func TestEmitRollsBackWithTransaction(t *testing.T) {
	client := testdb.New(t)
	repo := outbox.NewRepository(client.DB())
	svc := outbox.NewService(repo, nil)
	ctx := context.Background()

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := svc.Emit(ctx, tx, registeredEvent("2")); err != nil {
			return err
		}
		return errors.New("insert failed")
	})
	require.Error(t, err)

	rows, err := repo.ListByAggregate(ctx, "2")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEmitRejectsUnknownTypesAndMissingTx(t *testing.T) {
	svc := outbox.NewService(outbox.NewRepository(nil), nil)
	assert.Error(t, svc.Emit(context.Background(), nil, registeredEvent("3")))

	client := testdb.New(t)
	event := registeredEvent("3")
	event.EventType = "payment.exploded"
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, event)
	})
	assert.Error(t, err)
}

func TestPublishLifecycle(t *testing.T) {
	client := testdb.New(t)
	repo := outbox.NewRepository(client.DB())
	svc := outbox.NewService(repo, nil)
	ctx := context.Background()

	for _, id := range []string{"10", "11", "12"} {
		require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
			return svc.Emit(ctx, tx, registeredEvent(id))
		}))
	}

	var batch []models.OutboxEvent
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		batch, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
		if err != nil {
			return err
		}
		if err := repo.MarkPublishedTx(tx, batch[0].ID); err != nil {
			return err
		}
		if err := repo.MarkFailedTx(tx, batch[1].ID, errors.New("deadline exceeded")); err != nil {
			return err
		}
		return repo.MarkTerminalTx(tx, batch[2].ID, errors.New("bad payload"), 3)
	}))
	require.Len(t, batch, 3)

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		remaining, err := repo.FetchUnpublishedForPublish(tx, 10, 3)
		require.Len(t, remaining, 1)
		assert.Equal(t, batch[1].ID, remaining[0].ID)
		assert.Equal(t, 1, remaining[0].AttemptCount)
		require.NotNil(t, remaining[0].LastError)
		assert.Equal(t, "deadline exceeded", *remaining[0].LastError)
		return err
	}))
}

func TestDeletePublishedBefore(t *testing.T) {
	client := testdb.New(t)
	repo := outbox.NewRepository(client.DB())
	svc := outbox.NewService(repo, nil)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := svc.Emit(ctx, tx, registeredEvent("20")); err != nil {
			return err
		}
		return svc.Emit(ctx, tx, registeredEvent("21"))
	}))

	old := time.Now().UTC().Add(-10 * 24 * time.Hour)
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).
		Where("aggregate_id = ?", "20").
		Update("published_at", old).Error)

	var deleted int64
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		deleted, err = repo.DeletePublishedBefore(ctx, tx, time.Now().UTC().Add(-7*24*time.Hour), 0)
		return err
	}))
	assert.EqualValues(t, 1, deleted)

	rows, err := repo.ListByAggregate(ctx, "21")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "unpublished rows are kept")
}

func TestDeletePublishedBeforeHonorsLimit(t *testing.T) {
	client := testdb.New(t)
	repo := outbox.NewRepository(client.DB())
	svc := outbox.NewService(repo, nil)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		for _, id := range []string{"30", "31", "32"} {
			if err := svc.Emit(ctx, tx, registeredEvent(id)); err != nil {
				return err
			}
		}
		return nil
	}))
	old := time.Now().UTC().Add(-30 * 24 * time.Hour)
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).
		Where("1 = 1").
		Update("published_at", old).Error)

	cutoff := time.Now().UTC().Add(-7 * 24 * time.Hour)
	var first, second int64
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		first, err = repo.DeletePublishedBefore(ctx, tx, cutoff, 2)
		return err
	}))
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		second, err = repo.DeletePublishedBefore(ctx, tx, cutoff, 2)
		return err
	}))
	assert.EqualValues(t, 2, first)
	assert.EqualValues(t, 1, second)
}

func TestDLQInsertTxDefaultsAndValidation(t *testing.T) {
	client := testdb.New(t)
	dlq := outbox.NewDLQRepository(client.DB())
	eventID := uuid.New()
	long := strings.Repeat("x", 5000)

	require.NoError(t, client.DB().Transaction(func(tx *gorm.DB) error {
		return dlq.InsertTx(tx, models.OutboxDLQ{
			EventID:       eventID,
			EventType:     enums.EventPaymentRegistered,
			AggregateType: enums.AggregatePayment,
			AggregateID:   "1",
			Payload:       models.RawJSON(`{"payment_id":1}`),
			ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
			ErrorMessage:  &long,
			AttemptCount:  10,
		})
	}))

	var stored models.OutboxDLQ
	require.NoError(t, client.DB().Where("event_id = ?", eventID).First(&stored).Error)
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.False(t, stored.FailedAt.IsZero())
	require.NotNil(t, stored.ErrorMessage)
	assert.Len(t, *stored.ErrorMessage, 1024)

	err := client.DB().Transaction(func(tx *gorm.DB) error {
		return dlq.InsertTx(tx, models.OutboxDLQ{EventID: uuid.New(), ErrorReason: "gave_up"})
	})
	assert.Error(t, err)
	assert.Error(t, dlq.InsertTx(nil, models.OutboxDLQ{ErrorReason: enums.OutboxDLQReasonNonRetryable}))
}
