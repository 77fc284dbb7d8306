package novaerawebhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/trackwise-backend/pkg/redis"
)

// IdempotencyScope namespaces webhook dedupe keys.
const IdempotencyScope = "novaera_webhook"

// IdempotencyGuard remembers delivered bodies for a TTL. A guard without a
// store lets every delivery through.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration) (*IdempotencyGuard, error) {
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &IdempotencyGuard{store: store, ttl: ttl, scope: IdempotencyScope}, nil
}

// Enabled reports whether replays are actually detected.
func (g *IdempotencyGuard) Enabled() bool {
	return g != nil && g.store != nil
}

// CheckAndMark returns true when body was already seen.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, body []byte) (bool, error) {
	if !g.Enabled() {
		return false, nil
	}
	set, err := g.store.SetNX(ctx, g.key(body), "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Release forgets body so a failed delivery can be retried.
func (g *IdempotencyGuard) Release(ctx context.Context, body []byte) error {
	if !g.Enabled() {
		return nil
	}
	return g.store.Del(ctx, g.key(body))
}

func (g *IdempotencyGuard) key(body []byte) string {
	sum := sha256.Sum256(body)
	return g.store.IdempotencyKey(g.scope, hex.EncodeToString(sum[:]))
}
