package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/fooddash/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CartRepository struct {
	mongo *MongoRepository
}

func NewCartRepository(m *MongoRepository) *CartRepository {
	return &CartRepository{mongo: m}
}

// FindByUser returns the user's cart, or nil when none exists yet.
func (r *CartRepository) FindByUser(ctx context.Context, userID string) (*models.Cart, error) {
	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	var cart models.Cart
	err := r.mongo.collection(collectionCarts).FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("find cart", err, "")
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// Save upserts the cart keyed by its owner. The assigned id is written back
// on first save.
func (r *CartRepository) Save(ctx context.Context, cart *models.Cart) error {
	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	cart.UpdatedAt = time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = cart.UpdatedAt
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	update := bson.M{
		"$set": bson.M{
			"items":     cart.Items,
			"updatedAt": cart.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"userId":    cart.UserID,
			"createdAt": cart.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.Cart
	err := r.mongo.collection(collectionCarts).
		FindOneAndUpdate(ctx, bson.M{"userId": cart.UserID}, update, opts).
		Decode(&saved)
	if err != nil {
		return translate("save cart", err, "Cart not found")
	}
	cart.ID = saved.ID
	cart.CreatedAt = saved.CreatedAt
	return nil
}
