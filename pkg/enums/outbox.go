package enums

// OutboxAggregateType names the entity an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregatePayment OutboxAggregateType = "payment"
)

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	return a == AggregatePayment
}

// OutboxEventType is the routing key published as the event_type attribute.
type OutboxEventType string

const (
	EventPaymentRegistered    OutboxEventType = "payment.registered"
	EventPaymentStatusChanged OutboxEventType = "payment.status_changed"
)

var validEventTypes = []OutboxEventType{
	EventPaymentRegistered,
	EventPaymentStatusChanged,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}
