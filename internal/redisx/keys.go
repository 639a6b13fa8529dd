package redisx

import (
	"fmt"
	"time"
)

const (
	// idem:order:create:{user_id}:{idempotency_key} -> order_id
	KeyIdemOrderCreate = "idem:order:create:%s:%s"

	// dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)

func IdemOrderCreateKey(userID, key string) string {
	return fmt.Sprintf(KeyIdemOrderCreate, userID, key)
}

func DedupKey(service, id string) string {
	return fmt.Sprintf(KeyDedup, service, id)
}
