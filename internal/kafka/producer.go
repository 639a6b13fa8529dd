package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
)

var (
	ErrProducerClosed = errors.New("producer closed")
	ErrInboxFull      = errors.New("producer inbox full")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes catalog events asynchronously. Messages are queued in an
// inbox and written by a single goroutine started with Start.
type Producer struct {
	w       messageWriter
	inbox   chan kafka.Message
	closeCh chan struct{}
	logger  *log.Entry

	mu     sync.RWMutex
	closed bool
}

// NewProducer builds a producer whose messages carry their own topic.
func NewProducer(brokers []string, buf int) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}, buf)
}

func newProducer(w messageWriter, buf int) *Producer {
	if buf <= 0 {
		buf = 1
	}
	return &Producer{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		logger:  log.WithField("component", "kafka-producer"),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			if err := p.w.WriteMessages(ctx, m); err != nil {
				p.logger.WithError(err).WithField("topic", m.Topic).Error("write message failed")
			}
		}
		if err := p.w.Close(); err != nil {
			p.logger.WithError(err).Warn("close writer")
		}
	}()
}

// Publish implements catalog.EventPublisher. It never blocks: a full inbox
// drops the event and returns ErrInboxFull.
func (p *Producer) Publish(_ context.Context, topic string, ev catalog.Envelope) error {
	m, err := buildMessage(topic, ev)
	if err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}
	select {
	case p.inbox <- m:
		return nil
	default:
		return ErrInboxFull
	}
}

// Close stops accepting events; queued ones are still flushed.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
}

func (p *Producer) WaitClosed() { <-p.closeCh }

// buildMessage keys the message by correlation id so every event of one
// entity lands on the same partition.
func buildMessage(topic string, ev catalog.Envelope) (kafka.Message, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(ev.CorrelationID),
		Value: b,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(ev.EventType)},
			{Key: HeaderEventVersion, Value: []byte(strconv.Itoa(ev.EventVersion))},
		},
	}, nil
}
