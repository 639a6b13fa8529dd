// Package events consumes catalog events and writes them to the audit log.
package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
	kafkax "github.com/ariefcatur/go-ecommerce-catalog/internal/kafka"
)

type Deduper interface {
	FirstSeen(ctx context.Context, id string) (bool, error)
}

type Auditor struct {
	dedup  Deduper
	logger *log.Entry
}

// NewAuditor returns an auditor; dedup may be nil, in which case redelivered
// events are logged again.
func NewAuditor(dedup Deduper, logger *log.Logger) *Auditor {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Auditor{dedup: dedup, logger: logger.WithField("component", "catalog-audit")}
}

// Handle is installed as the consumer handler. Undecodable messages are
// logged and skipped so they do not block the partition.
func (a *Auditor) Handle(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.DecodeEnvelope(m.Value)
	if err != nil {
		a.logger.WithError(err).WithFields(log.Fields{"topic": m.Topic, "offset": m.Offset}).Warn("skip malformed event")
		return nil
	}

	if a.dedup != nil {
		first, err := a.dedup.FirstSeen(ctx, env.EventID)
		if err != nil {
			a.logger.WithError(err).Warn("dedup unavailable")
		} else if !first {
			return nil
		}
	}

	entry := a.logger.WithFields(log.Fields{
		"event_id":   env.EventID,
		"event_type": env.EventType,
		"producer":   env.Producer,
		"trace_id":   env.TraceID,
	})

	switch env.EventType {
	case catalog.EventProductCreated:
		p, err := kafkax.UnwrapPayload[catalog.ProductCreatedPayload](env.Payload)
		if err != nil {
			entry.WithError(err).Warn("skip malformed payload")
			return nil
		}
		entry.WithFields(log.Fields{"product_id": p.ProductID, "name": p.Name, "price": p.Price}).Info("product created")
	case catalog.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[catalog.OrderCreatedPayload](env.Payload)
		if err != nil {
			entry.WithError(err).Warn("skip malformed payload")
			return nil
		}
		entry.WithFields(log.Fields{"order_id": p.OrderID, "user_id": p.UserID, "lines": len(p.Items)}).Info("order created")
	default:
		entry.Debug("ignore event")
	}
	return nil
}
