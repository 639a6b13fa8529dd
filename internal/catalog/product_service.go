package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ProductService struct {
	repo     ProductRepository
	events   EventPublisher
	producer string
	now      func() time.Time
	logger   *log.Entry
}

func NewProductService(repo ProductRepository, events EventPublisher, producer string) *ProductService {
	if events == nil {
		events = NopPublisher
	}
	return &ProductService{
		repo:     repo,
		events:   events,
		producer: producer,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log.WithField("component", "product-service"),
	}
}

// CreateProduct stores a new product and returns its id. Price and size
// quantities are stored as given.
func (s *ProductService) CreateProduct(ctx context.Context, name string, price decimal.Decimal, sizes []Size) (string, error) {
	p := Product{
		Name:      name,
		Price:     price,
		Sizes:     append([]Size(nil), sizes...),
		CreatedAt: s.now(),
	}
	if p.Sizes == nil {
		p.Sizes = []Size{}
	}

	id, err := s.repo.InsertProduct(ctx, p)
	if err != nil {
		return "", fmt.Errorf("insert product: %w", err)
	}

	s.publish(ctx, TopicProductCreated, EventProductCreated, id, ProductCreatedPayload{
		ProductID: id,
		Name:      name,
		Price:     price.InexactFloat64(),
	})
	return id, nil
}

// ListProducts returns one page of products matching f. The page block is
// computed from the full match count, not the window.
func (s *ProductService) ListProducts(ctx context.Context, f ProductFilter, page Page) (ProductList, error) {
	if err := page.Validate(); err != nil {
		return ProductList{}, err
	}

	total, err := s.repo.CountProducts(ctx, f)
	if err != nil {
		return ProductList{}, fmt.Errorf("count products: %w", err)
	}
	ps, err := s.repo.FindProducts(ctx, f, page)
	if err != nil {
		return ProductList{}, fmt.Errorf("find products: %w", err)
	}

	data := make([]ProductSummary, 0, len(ps))
	for _, p := range ps {
		data = append(data, ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	return ProductList{
		Data: data,
		Page: Paginate(page.Offset, page.Limit, total),
	}, nil
}

func (s *ProductService) publish(ctx context.Context, topic, eventType, id string, payload any) {
	ev, err := NewEnvelope(ctx, eventType, s.producer, id, payload)
	if err == nil {
		err = s.events.Publish(ctx, topic, ev)
	}
	if err != nil {
		s.logger.WithError(err).WithField("id", id).Warn("publish event failed")
	}
}
