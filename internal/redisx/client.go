package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Idempotency maps client supplied idempotency keys to created order ids.
type Idempotency struct{ R *redis.Client }

func (i *Idempotency) Lookup(ctx context.Context, userID, key string) (string, bool, error) {
	id, err := i.R.Get(ctx, IdemOrderCreateKey(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// Remember stores the mapping unless the key is already taken.
func (i *Idempotency) Remember(ctx context.Context, userID, key, orderID string) error {
	return i.R.SetNX(ctx, IdemOrderCreateKey(userID, key), orderID, TTLIdempotency).Err()
}

// Dedup remembers processed event ids.
type Dedup struct {
	R       *redis.Client
	Service string
}

// FirstSeen marks id as processed and reports whether this call was the first.
func (d *Dedup) FirstSeen(ctx context.Context, id string) (bool, error) {
	return d.R.SetNX(ctx, DedupKey(d.Service, id), "1", TTLDedup).Result()
}
