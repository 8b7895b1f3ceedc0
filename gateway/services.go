package gateway

import (
	"context"

	"github.com/example/fooddash/pkg/auth"
	"github.com/example/fooddash/pkg/models"
	"github.com/example/fooddash/pkg/service"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID string, in service.CreateOrderInput) (*models.Order, error)
	ListOrders(ctx context.Context, userID string, in service.ListOrdersInput) (*service.OrderPage, error)
	GetOrder(ctx context.Context, userID, orderID string) (*service.OrderView, error)
	OrderHistory(ctx context.Context, userID, orderID string) ([]*models.AuditLog, error)
	CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error)
	MarkReceived(ctx context.Context, userID, orderID string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, userID, orderID, status string) (*models.Order, error)
	PurchaseTrend(ctx context.Context, userID string) ([]models.TrendPoint, error)
}

type CartService interface {
	GetCart(ctx context.Context, userID string) (*service.CartView, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*service.CartView, error)
	UpdateItem(ctx context.Context, userID, productID string, quantity int) (*service.CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (*service.CartView, error)
	Clear(ctx context.Context, userID string) (*service.CartView, error)
}

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Me(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, in service.ProfileInput) (*models.User, error)
}

type CatalogService interface {
	ListProducts(ctx context.Context, q service.ProductQuery) (*service.ProductPage, error)
	GetProduct(ctx context.Context, productID string) (*models.ProductDetail, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
}

type PaymentService interface {
	Record(ctx context.Context, in service.RecordPaymentInput) (*models.PaymentRecord, error)
	ListByOrder(ctx context.Context, orderID string) ([]*models.PaymentRecord, error)
}

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// HealthChecker reports whether the backing stores are reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Orders   OrderService
	Carts    CartService
	Auth     AuthService
	Catalog  CatalogService
	Payments PaymentService
}
