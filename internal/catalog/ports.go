package catalog

import "context"

// ProductRepository is the products collection as seen by the services.
// Store adapters translate connectivity failures into ErrUnavailable.
type ProductRepository interface {
	InsertProduct(ctx context.Context, p Product) (string, error)
	FindProducts(ctx context.Context, f ProductFilter, page Page) ([]Product, error)
	CountProducts(ctx context.Context, f ProductFilter) (int64, error)
	// FindProductsByIDs returns the products that exist among ids, in no particular order.
	FindProductsByIDs(ctx context.Context, ids []string) ([]Product, error)
	// ValidID reports whether id has the shape of a store identifier.
	ValidID(id string) bool
}

type OrderRepository interface {
	InsertOrder(ctx context.Context, o Order) (string, error)
	FindOrdersByUser(ctx context.Context, userID string, page Page) ([]Order, error)
	CountOrdersByUser(ctx context.Context, userID string) (int64, error)
}

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, ev Envelope) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, Envelope) error { return nil }

// NopPublisher drops every event; used when no broker is configured.
var NopPublisher EventPublisher = nopPublisher{}
