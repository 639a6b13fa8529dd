package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventProductCreated = "ProductCreated"
	EventOrderCreated   = "OrderCreated"
)

const (
	TopicProductCreated = "catalog.product.created"
	TopicOrderCreated   = "catalog.order.created"
)

// Topics lists every topic this service publishes to.
var Topics = []string{TopicProductCreated, TopicOrderCreated}

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // product or order id
	Payload       json.RawMessage `json:"payload"`
}

type ProductCreatedPayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

type ItemQty struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type OrderCreatedPayload struct {
	OrderID string    `json:"order_id"`
	UserID  string    `json:"user_id"`
	Items   []ItemQty `json:"items"`
}

func NewEnvelope(ctx context.Context, eventType, producer, correlationID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       TraceID(ctx),
		CorrelationID: correlationID,
		Payload:       b,
	}, nil
}

type traceKey struct{}

// WithTraceID attaches a request id that ends up on published events.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
