package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
)

// Server error codes returned for a malformed $regex.
const (
	codeBadValue     = 2
	codeInvalidRegex = 51091
)

type ProductRepo struct{ Client *Client }

func (r *ProductRepo) ValidID(id string) bool { return primitive.IsValidObjectID(id) }

func (r *ProductRepo) InsertProduct(ctx context.Context, p catalog.Product) (string, error) {
	coll, err := r.Client.Collection(ctx, CollectionProducts)
	if err != nil {
		return "", err
	}
	res, err := coll.InsertOne(ctx, toProductDoc(p))
	if err != nil {
		return "", r.Client.translate(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// FindProducts projects away sizes; list responses never include them.
func (r *ProductRepo) FindProducts(ctx context.Context, f catalog.ProductFilter, page catalog.Page) ([]catalog.Product, error) {
	coll, err := r.Client.Collection(ctx, CollectionProducts)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit)).
		SetProjection(bson.M{"name": 1, "price": 1})
	cur, err := coll.Find(ctx, productFilter(f), opts)
	if err != nil {
		return nil, r.queryError(err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, r.queryError(err)
	}
	return productsFromDocs(docs), nil
}

func (r *ProductRepo) CountProducts(ctx context.Context, f catalog.ProductFilter) (int64, error) {
	coll, err := r.Client.Collection(ctx, CollectionProducts)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, productFilter(f))
	if err != nil {
		return 0, r.queryError(err)
	}
	return n, nil
}

func (r *ProductRepo) FindProductsByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	coll, err := r.Client.Collection(ctx, CollectionProducts)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, idsFilter(ids))
	if err != nil {
		return nil, r.Client.translate(err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, r.Client.translate(err)
	}
	return productsFromDocs(docs), nil
}

func (r *ProductRepo) queryError(err error) error {
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == codeInvalidRegex || ce.Code == codeBadValue) {
		return fmt.Errorf("%w: invalid name pattern: %s", catalog.ErrInvalidInput, ce.Message)
	}
	return r.Client.translate(err)
}

func productsFromDocs(docs []productDoc) []catalog.Product {
	out := make([]catalog.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out
}
