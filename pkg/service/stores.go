// Package service holds the business workflows: cart maintenance, the
// cart-to-order checkout, order queries, accounts and the payment ledger.
package service

import (
	"context"
	"time"

	"github.com/example/fooddash/pkg/models"
	"github.com/example/fooddash/pkg/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CatalogStore interface {
	ProductDetail(ctx context.Context, id primitive.ObjectID) (*models.ProductDetail, error)
	ProductDetails(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.ProductDetail, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.ProductDetail, int64, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
}

type CartStore interface {
	// FindByUser returns nil, nil when the user has no cart yet.
	FindByUser(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindForUser(ctx context.Context, userID string, id primitive.ObjectID) (*models.Order, error)
	ListForUser(ctx context.Context, userID string, q models.OrderQuery) ([]*models.Order, int64, error)
	// TransitionStatus returns repository.ErrStatusChanged when the order
	// is no longer in from.
	TransitionStatus(ctx context.Context, userID string, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, userID string, id primitive.ObjectID, status models.PaymentStatus) (*models.Order, error)
	DailyTrend(ctx context.Context, userID string, start, end time.Time, timezone string) ([]models.TrendPoint, error)
}

type PaymentStore interface {
	Create(ctx context.Context, record *models.PaymentRecord) error
	ListByOrderID(ctx context.Context, orderID string) ([]*models.PaymentRecord, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type UserStore interface {
	UserDirectory
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, changes map[string]interface{}) (*models.User, error)
}

// Notifier dispatches order emails. Both calls return without waiting for
// delivery.
type Notifier interface {
	OrderPlaced(order *models.Order, to notify.Recipient)
	OrderReceived(order *models.Order, to notify.Recipient)
}

type Auditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*models.AuditLog, error)
}

type CheckoutLocker interface {
	AcquireCheckoutLock(ctx context.Context, userID string, ttl time.Duration) (bool, func(context.Context) error, error)
}

type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}
