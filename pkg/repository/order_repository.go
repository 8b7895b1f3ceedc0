package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/fooddash/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrStatusChanged is returned by TransitionStatus when the order left the
// expected state between read and write.
var ErrStatusChanged = errors.New("order status changed concurrently")

type OrderRepository struct {
	mongo *MongoRepository
}

func NewOrderRepository(m *MongoRepository) *OrderRepository {
	return &OrderRepository{mongo: m}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	res, err := r.mongo.collection(collectionOrders).InsertOne(ctx, order)
	if err != nil {
		return translate("insert order", err, "")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

// FindForUser loads an order owned by userID. Orders of other users are
// reported exactly like missing ones.
func (r *OrderRepository) FindForUser(ctx context.Context, userID string, id primitive.ObjectID) (*models.Order, error) {
	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	var order models.Order
	err := r.mongo.collection(collectionOrders).
		FindOne(ctx, bson.M{"_id": id, "userId": userID}).
		Decode(&order)
	if err != nil {
		return nil, translate("find order", err, "Order not found")
	}
	return &order, nil
}

func (r *OrderRepository) ListForUser(ctx context.Context, userID string, q models.OrderQuery) ([]*models.Order, int64, error) {
	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"userId": userID}
	if q.Status != nil {
		filter["orderStatus"] = *q.Status
	}

	coll := r.mongo.collection(collectionOrders)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate("count orders", err, "")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, translate("find orders", err, "")
	}
	defer cursor.Close(ctx)

	orders := []*models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, translate("decode orders", err, "")
	}
	return orders, total, nil
}

// TransitionStatus moves an order from `from` to `to` only if it is still in
// `from`, and returns the updated document.
func (r *OrderRepository) TransitionStatus(ctx context.Context, userID string, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": id, "userId": userID, "orderStatus": from}
	update := bson.M{"$set": bson.M{"orderStatus": to, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.mongo.collection(collectionOrders).FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrStatusChanged
	}
	if err != nil {
		return nil, translate("update order status", err, "")
	}
	return &order, nil
}

func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, userID string, id primitive.ObjectID, status models.PaymentStatus) (*models.Order, error) {
	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": id, "userId": userID}
	update := bson.M{"$set": bson.M{"paymentStatus": status, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.mongo.collection(collectionOrders).FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if err != nil {
		return nil, translate("update payment status", err, "Order not found")
	}
	return &order, nil
}

// DailyTrend groups the user's received orders in [start, end) by calendar
// day in timezone. Days without orders are not returned.
func (r *OrderRepository) DailyTrend(ctx context.Context, userID string, start, end time.Time, timezone string) ([]models.TrendPoint, error) {
	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"userId":      userID,
			"orderStatus": models.OrderStatusReceived,
			"orderDate":   bson.M{"$gte": start, "$lt": end},
		}}},
		{{Key: "$project", Value: bson.M{
			"day": bson.M{"$dateToString": bson.M{
				"format":   "%Y-%m-%d",
				"date":     "$orderDate",
				"timezone": timezone,
			}},
			"totalAmount": 1,
			"qty":         bson.M{"$sum": "$items.quantity"},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$day",
			"orders":      bson.M{"$sum": 1},
			"totalAmount": bson.M{"$sum": "$totalAmount"},
			"totalItems":  bson.M{"$sum": "$qty"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.mongo.collection(collectionOrders).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate("aggregate trend", err, "")
	}
	defer cursor.Close(ctx)

	var points []models.TrendPoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, translate("decode trend", err, "")
	}
	return points, nil
}
