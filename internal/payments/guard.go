package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dinehub-mw/dinehub-backend/pkg/redis"
)

// WebhookGuard short-circuits duplicate gateway deliveries with a Redis SetNX
// marker. Terminal-state stickiness in the service remains the correctness
// backstop when Redis is unavailable.
type WebhookGuard struct {
	store    redis.IdempotencyStore
	ttl      time.Duration
	provider string
}

func NewWebhookGuard(store redis.IdempotencyStore, ttl time.Duration, provider string) (*WebhookGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if provider == "" {
		return nil, errors.New("provider is required")
	}
	return &WebhookGuard{
		store:    store,
		ttl:      ttl,
		provider: provider,
	}, nil
}

// CheckAndMark reports whether the event was already seen, marking it
// otherwise.
func (g *WebhookGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	key := g.store.WebhookEventKey(g.provider, eventID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set webhook dedupe key: %w", err)
	}
	return !set, nil
}

// Delete releases the marker so the provider's retry can be reprocessed.
func (g *WebhookGuard) Delete(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	key := g.store.WebhookEventKey(g.provider, eventID)
	return g.store.Del(ctx, key)
}
