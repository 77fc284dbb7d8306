package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/trackwise-backend/pkg/enums"
)

// OutboxDLQ keeps a copy of every outbox row the publisher gave up on.
type OutboxDLQ struct {
	ID            uuid.UUID                  `gorm:"column:id;primaryKey"`
	EventID       uuid.UUID                  `gorm:"column:event_id;not null"`
	EventType     enums.OutboxEventType      `gorm:"column:event_type;not null"`
	AggregateType enums.OutboxAggregateType  `gorm:"column:aggregate_type;not null"`
	AggregateID   string                     `gorm:"column:aggregate_id;not null"`
	Payload       RawJSON                    `gorm:"column:payload;not null"`
	ErrorReason   enums.OutboxDLQErrorReason `gorm:"column:error_reason;not null"`
	ErrorMessage  *string                    `gorm:"column:error_message"`
	AttemptCount  int                        `gorm:"column:attempt_count;not null;default:0"`
	FailedAt      time.Time                  `gorm:"column:failed_at"`
}

func (OutboxDLQ) TableName() string { return "outbox_dlq" }
