package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
)

type OrderRepo struct{ Client *Client }

func (r *OrderRepo) InsertOrder(ctx context.Context, o catalog.Order) (string, error) {
	coll, err := r.Client.Collection(ctx, CollectionOrders)
	if err != nil {
		return "", err
	}
	res, err := coll.InsertOne(ctx, toOrderDoc(o))
	if err != nil {
		return "", r.Client.translate(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *OrderRepo) FindOrdersByUser(ctx context.Context, userID string, page catalog.Page) ([]catalog.Order, error) {
	coll, err := r.Client.Collection(ctx, CollectionOrders)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSkip(int64(page.Offset)).SetLimit(int64(page.Limit))
	cur, err := coll.Find(ctx, userFilter(userID), opts)
	if err != nil {
		return nil, r.Client.translate(err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, r.Client.translate(err)
	}
	out := make([]catalog.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *OrderRepo) CountOrdersByUser(ctx context.Context, userID string) (int64, error) {
	coll, err := r.Client.Collection(ctx, CollectionOrders)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, userFilter(userID))
	if err != nil {
		return 0, r.Client.translate(err)
	}
	return n, nil
}
