package repository

import (
	"context"

	"github.com/example/fooddash/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogRepository reads products, categories and restaurants.
type CatalogRepository struct {
	mongo *MongoRepository
}

func NewCatalogRepository(m *MongoRepository) *CatalogRepository {
	return &CatalogRepository{mongo: m}
}

// productDetailPipeline joins category and restaurant onto matching products.
func productDetailPipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionCategories,
			"localField":   "category",
			"foreignField": "_id",
			"as":           "categoryDoc",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$categoryDoc", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionRestaurants,
			"localField":   "restaurant",
			"foreignField": "_id",
			"as":           "restaurantDoc",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$restaurantDoc", "preserveNullAndEmptyArrays": true}}},
	}
}

func (r *CatalogRepository) ProductDetail(ctx context.Context, id primitive.ObjectID) (*models.ProductDetail, error) {
	details, err := r.ProductDetails(ctx, []primitive.ObjectID{id})
	if err != nil {
		return nil, err
	}
	d, ok := details[id]
	if !ok {
		return nil, translate("find product", mongo.ErrNoDocuments, "Product not found")
	}
	return d, nil
}

// ProductDetails resolves ids in one round trip. Missing products are
// absent from the result map.
func (r *CatalogRepository) ProductDetails(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.ProductDetail, error) {
	out := make(map[primitive.ObjectID]*models.ProductDetail, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	pipeline := productDetailPipeline(bson.M{"_id": bson.M{"$in": ids}})
	cursor, err := r.mongo.collection(collectionProducts).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate("aggregate products", err, "")
	}
	defer cursor.Close(ctx)

	var details []*models.ProductDetail
	if err := cursor.All(ctx, &details); err != nil {
		return nil, translate("decode products", err, "")
	}
	for _, d := range details {
		out[d.ID] = d
	}
	return out, nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.ProductDetail, int64, error) {
	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	match := bson.M{}
	if filter.CategoryID != nil {
		match["category"] = *filter.CategoryID
	}
	if filter.RestaurantID != nil {
		match["restaurant"] = *filter.RestaurantID
	}
	if filter.Available != nil {
		match["isAvailable"] = *filter.Available
	}

	coll := r.mongo.collection(collectionProducts)
	total, err := coll.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, translate("count products", err, "")
	}

	pipeline := productDetailPipeline(match)
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		bson.D{{Key: "$skip", Value: int64(filter.Page-1) * int64(filter.Limit)}},
		bson.D{{Key: "$limit", Value: int64(filter.Limit)}},
	)

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, translate("aggregate products", err, "")
	}
	defer cursor.Close(ctx)

	products := []*models.ProductDetail{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, translate("decode products", err, "")
	}
	return products, total, nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.mongo.collection(collectionCategories).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate("find categories", err, "")
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, translate("decode categories", err, "")
	}
	return categories, nil
}

func (r *CatalogRepository) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.mongo.collection(collectionRestaurants).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate("find restaurants", err, "")
	}
	defer cursor.Close(ctx)

	restaurants := []models.Restaurant{}
	if err := cursor.All(ctx, &restaurants); err != nil {
		return nil, translate("decode restaurants", err, "")
	}
	return restaurants, nil
}
