package repository

import (
	"context"
	"time"

	"github.com/example/fooddash/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PaymentRepository is the payment ledger. Entries are appended, never edited.
type PaymentRepository struct {
	mongo *MongoRepository
}

func NewPaymentRepository(m *MongoRepository) *PaymentRepository {
	return &PaymentRepository{mongo: m}
}

func (r *PaymentRepository) Create(ctx context.Context, record *models.PaymentRecord) error {
	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	res, err := r.mongo.collection(collectionPayments).InsertOne(ctx, record)
	if err != nil {
		return translate("insert payment record", err, "")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = id
	}
	return nil
}

func (r *PaymentRepository) ListByOrderID(ctx context.Context, orderID string) ([]*models.PaymentRecord, error) {
	ctx, cancel := r.mongo.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.mongo.collection(collectionPayments).Find(ctx, bson.M{"orderId": orderID}, opts)
	if err != nil {
		return nil, translate("find payment records", err, "")
	}
	defer cursor.Close(ctx)

	records := []*models.PaymentRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, translate("decode payment records", err, "")
	}
	return records, nil
}
