package mongo

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
)

type sizeDoc struct {
	Size     string `bson:"size"`
	Quantity int    `bson:"quantity"`
}

type productDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Price     float64            `bson:"price"`
	Sizes     []sizeDoc          `bson:"sizes"`
	CreatedAt time.Time          `bson:"created_at"`
}

// orderItemDoc keeps productId as a hex string, matching existing data.
type orderItemDoc struct {
	ProductID string `bson:"productId"`
	Qty       int    `bson:"qty"`
}

type orderDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Items     []orderItemDoc     `bson:"items"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
}

func toProductDoc(p catalog.Product) productDoc {
	d := productDoc{
		Name:      p.Name,
		Price:     p.Price.InexactFloat64(),
		Sizes:     make([]sizeDoc, 0, len(p.Sizes)),
		CreatedAt: p.CreatedAt,
	}
	for _, s := range p.Sizes {
		d.Sizes = append(d.Sizes, sizeDoc{Size: s.Size, Quantity: s.Quantity})
	}
	return d
}

func (d productDoc) toDomain() catalog.Product {
	p := catalog.Product{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Price:     decimal.NewFromFloat(d.Price),
		CreatedAt: d.CreatedAt,
	}
	for _, s := range d.Sizes {
		p.Sizes = append(p.Sizes, catalog.Size{Size: s.Size, Quantity: s.Quantity})
	}
	return p
}

func toOrderDoc(o catalog.Order) orderDoc {
	d := orderDoc{
		UserID:    o.UserID,
		Items:     make([]orderItemDoc, 0, len(o.Items)),
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
	for _, it := range o.Items {
		d.Items = append(d.Items, orderItemDoc{ProductID: it.ProductID, Qty: it.Qty})
	}
	return d
}

func (d orderDoc) toDomain() catalog.Order {
	o := catalog.Order{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Status:    catalog.Status(d.Status),
		CreatedAt: d.CreatedAt,
	}
	for _, it := range d.Items {
		o.Items = append(o.Items, catalog.OrderItem{ProductID: it.ProductID, Qty: it.Qty})
	}
	return o
}
