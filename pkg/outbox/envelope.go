package outbox

import (
	"encoding/json"
	"time"
)

// Actor sources.
const (
	SourceAPI     = "api"
	SourceWebhook = "webhook"
	SourceCron    = "cron"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	Source string `json:"source"`
	UserID *int64 `json:"userId,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DecodeEnvelope parses a stored payload.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return PayloadEnvelope{}, err
	}
	return env, nil
}
