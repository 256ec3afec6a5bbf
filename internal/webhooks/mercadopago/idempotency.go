package mpwebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matiascortez/vestia-backend/pkg/redis"
)

// IdempotencyGuard dedups provider deliveries by payment id. The provider
// retries webhooks aggressively; without the guard an approved payment would
// trigger duplicate confirmation emails.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark returns true when the payment id was already seen.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, paymentID string) (bool, error) {
	if paymentID == "" {
		return false, errors.New("payment id is required")
	}
	key := g.store.IdempotencyKey(g.scope, paymentID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete releases the mark so the provider's retry can re-run a delivery
// whose processing failed.
func (g *IdempotencyGuard) Delete(ctx context.Context, paymentID string) error {
	if paymentID == "" {
		return errors.New("payment id is required")
	}
	key := g.store.IdempotencyKey(g.scope, paymentID)
	return g.store.Del(ctx, key)
}
