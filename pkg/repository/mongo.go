package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/fooddash/pkg/apperr"
	"github.com/example/fooddash/pkg/config"
	"github.com/example/fooddash/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionProducts    = "products"
	collectionCategories  = "categories"
	collectionRestaurants = "restaurants"
	collectionCarts       = "carts"
	collectionOrders      = "orders"
	collectionPayments    = "paymentmethods"

	defaultOpTimeout = 5 * time.Second
)

type MongoRepository struct {
	client    *mongo.Client
	database  *mongo.Database
	config    *config.MongoDBConfig
	opTimeout time.Duration
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	return NewMongoRepositoryWithClient(client, cfg), nil
}

// NewMongoRepositoryWithClient wraps an already connected client.
func NewMongoRepositoryWithClient(client *mongo.Client, cfg *config.MongoDBConfig) *MongoRepository {
	timeout := cfg.OpTimeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}

	return &MongoRepository{
		client:    client,
		database:  client.Database(cfg.Database),
		config:    cfg,
		opTimeout: timeout,
	}
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoRepository) collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// withTimeout bounds a single store operation.
func (m *MongoRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.opTimeout)
}

// EnsureIndexes creates the indexes the stores rely on. It is safe to call
// on every start.
func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		collectionCarts: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionOrders: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "orderStatus", Value: 1}, {Key: "orderDate", Value: 1}}},
		},
		collectionPayments: {
			{Keys: bson.D{{Key: "orderId", Value: 1}}},
		},
		collectionProducts: {
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "restaurant", Value: 1}}},
		},
		m.config.AuditCollection: {
			{Keys: bson.D{{Key: "entity_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := m.collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// translate maps driver errors onto the application taxonomy. notFound is
// used for mongo.ErrNoDocuments.
func translate(op string, err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(notFound)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return apperr.Unavailable("store unavailable", fmt.Errorf("%s: %w", op, err))
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict(apperr.CodeDuplicate, "duplicate record")
	}
	return apperr.Internal("store failure", fmt.Errorf("%s: %w", op, err))
}

func (m *MongoRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	collection := m.collection(m.config.AuditCollection)
	log.CreatedAt = time.Now()
	_, err := collection.InsertOne(ctx, log)
	return translate("insert audit log", err, "")
}

func (m *MongoRepository) GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*models.AuditLog, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	collection := m.collection(m.config.AuditCollection)

	filter := bson.M{"entity_id": entityID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate("find audit logs", err, "")
	}
	defer cursor.Close(ctx)

	var logs []*models.AuditLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, translate("decode audit logs", err, "")
	}

	return logs, nil
}
