package gateway

import (
	"context"
	"errors"

	"github.com/example/fooddash/pkg/auth"
	"github.com/example/fooddash/pkg/models"
	"github.com/example/fooddash/pkg/service"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID string, in service.CreateOrderInput) (*models.Order, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, userID string, in service.ListOrdersInput) (*service.OrderPage, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderPage), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, userID, orderID string) (*service.OrderView, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderView), args.Error(1)
}

func (m *MockOrderService) OrderHistory(ctx context.Context, userID, orderID string) ([]*models.AuditLog, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) MarkReceived(ctx context.Context, userID, orderID string) (*models.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) UpdatePaymentStatus(ctx context.Context, userID, orderID, status string) (*models.Order, error) {
	args := m.Called(ctx, userID, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) PurchaseTrend(ctx context.Context, userID string) ([]models.TrendPoint, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TrendPoint), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*service.CartView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartView), args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, userID string) (*service.CartView, error) {
	return m.cart(m.Called(ctx, userID))
}

func (m *MockCartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*service.CartView, error) {
	return m.cart(m.Called(ctx, userID, productID, quantity))
}

func (m *MockCartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*service.CartView, error) {
	return m.cart(m.Called(ctx, userID, productID, quantity))
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, productID string) (*service.CartView, error) {
	return m.cart(m.Called(ctx, userID, productID))
}

func (m *MockCartService) Clear(ctx context.Context, userID string) (*service.CartView, error) {
	return m.cart(m.Called(ctx, userID))
}

// stubTokens accepts "good-<user>" tokens.
type stubTokens struct{}

func (stubTokens) Parse(token string) (*auth.Claims, error) {
	const prefix = "good-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: token[len(prefix):], Role: models.RoleCustomer}, nil
}

type stubHealth struct {
	err error
}

func (h stubHealth) Ping(context.Context) error { return h.err }

var errBoom = errors.New("mongo: connection reset by peer")
