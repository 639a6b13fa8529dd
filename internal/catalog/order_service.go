package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type OrderService struct {
	orders   OrderRepository
	products ProductRepository
	events   EventPublisher
	producer string
	now      func() time.Time
	logger   *log.Entry
}

func NewOrderService(orders OrderRepository, products ProductRepository, events EventPublisher, producer string) *OrderService {
	if events == nil {
		events = NopPublisher
	}
	return &OrderService{
		orders:   orders,
		products: products,
		events:   events,
		producer: producer,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log.WithField("component", "order-service"),
	}
}

// CreateOrder validates that every referenced product exists and inserts the
// order. Nothing is written when any product is missing. The existence check
// and the insert are separate store calls; a product removed in between still
// ends up referenced by the new order.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, items []OrderItem) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", invalidf("userId is required")
	}
	if len(items) == 0 {
		return "", invalidf("items must not be empty")
	}
	for _, it := range items {
		if !s.products.ValidID(it.ProductID) {
			return "", invalidf("invalid productId %q", it.ProductID)
		}
		if it.Qty < 1 {
			return "", invalidf("qty for product %s must be >= 1", it.ProductID)
		}
	}

	ids := distinctProductIDs(items)
	found, err := s.products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return "", fmt.Errorf("find products: %w", err)
	}
	seen := make(map[string]struct{}, len(found))
	for _, p := range found {
		seen[p.ID] = struct{}{}
	}
	if len(seen) < len(ids) {
		return "", ErrProductNotFound
	}

	o := Order{
		UserID:    userID,
		Items:     append([]OrderItem(nil), items...),
		Status:    StatusCreated,
		CreatedAt: s.now(),
	}
	id, err := s.orders.InsertOrder(ctx, o)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	payload := OrderCreatedPayload{OrderID: id, UserID: userID, Items: make([]ItemQty, 0, len(items))}
	for _, it := range items {
		payload.Items = append(payload.Items, ItemQty{ProductID: it.ProductID, Qty: it.Qty})
	}
	ev, err := NewEnvelope(ctx, EventOrderCreated, s.producer, id, payload)
	if err == nil {
		err = s.events.Publish(ctx, TopicOrderCreated, ev)
	}
	if err != nil {
		s.logger.WithError(err).WithField("order_id", id).Warn("publish event failed")
	}
	return id, nil
}

// ListUserOrders returns one page of a user's orders with item names and a
// total priced at read time. Items whose product no longer resolves are left
// out of both the item list and the total.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string, page Page) (OrderList, error) {
	if err := page.Validate(); err != nil {
		return OrderList{}, err
	}

	total, err := s.orders.CountOrdersByUser(ctx, userID)
	if err != nil {
		return OrderList{}, fmt.Errorf("count orders: %w", err)
	}
	orders, err := s.orders.FindOrdersByUser(ctx, userID, page)
	if err != nil {
		return OrderList{}, fmt.Errorf("find orders: %w", err)
	}

	products, err := s.resolveProducts(ctx, orders)
	if err != nil {
		return OrderList{}, err
	}

	data := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		v := OrderView{ID: o.ID, Items: make([]OrderLine, 0, len(o.Items)), Total: decimal.Zero}
		for _, it := range o.Items {
			p, ok := products[it.ProductID]
			if !ok {
				continue
			}
			v.Items = append(v.Items, OrderLine{ProductID: it.ProductID, ProductName: p.Name, Qty: it.Qty})
			v.Total = v.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
		}
		data = append(data, v)
	}
	return OrderList{
		Data: data,
		Page: Paginate(page.Offset, page.Limit, total),
	}, nil
}

// resolveProducts loads every product referenced in the window with one lookup.
func (s *OrderService) resolveProducts(ctx context.Context, orders []Order) (map[string]Product, error) {
	var items []OrderItem
	for _, o := range orders {
		for _, it := range o.Items {
			if s.products.ValidID(it.ProductID) {
				items = append(items, it)
			}
		}
	}
	out := make(map[string]Product)
	if len(items) == 0 {
		return out, nil
	}
	found, err := s.products.FindProductsByIDs(ctx, distinctProductIDs(items))
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	for _, p := range found {
		out[p.ID] = p
	}
	return out, nil
}

func distinctProductIDs(items []OrderItem) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		out = append(out, it.ProductID)
	}
	return out
}
