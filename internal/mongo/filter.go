package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
)

// productFilter treats Name as a case-insensitive regex and Size as an exact
// match on any entry of sizes.
func productFilter(f catalog.ProductFilter) bson.M {
	q := bson.M{}
	if f.Name != "" {
		q["name"] = primitive.Regex{Pattern: f.Name, Options: "i"}
	}
	if f.Size != "" {
		q["sizes.size"] = f.Size
	}
	return q
}

// idsFilter skips ids that are not ObjectIDs; they cannot match anything.
func idsFilter(ids []string) bson.M {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	return bson.M{"_id": bson.M{"$in": oids}}
}

func userFilter(userID string) bson.M {
	return bson.M{"userId": userID}
}
