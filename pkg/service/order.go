package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/fooddash/pkg/apperr"
	"github.com/example/fooddash/pkg/config"
	"github.com/example/fooddash/pkg/events"
	"github.com/example/fooddash/pkg/models"
	"github.com/example/fooddash/pkg/notify"
	"github.com/example/fooddash/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	auditService      = "order-service"
	sideEffectTimeout = 5 * time.Second
)

const (
	ActionOrderCreated       = "order.created"
	ActionOrderCancelled     = "order.cancelled"
	ActionOrderReceived      = "order.received"
	ActionOrderPaymentStatus = "order.payment_status"
)

// OrderDeps are the collaborators of OrderService. Notifier, Publisher,
// Auditor and Locker may be nil.
type OrderDeps struct {
	Orders    OrderStore
	Carts     CartStore
	Catalog   CatalogStore
	Payments  PaymentStore
	Users     UserDirectory
	Notifier  Notifier
	Publisher events.Publisher
	Auditor   Auditor
	Locker    CheckoutLocker
}

type OrderService struct {
	OrderDeps
	location *time.Location
	lockTTL  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewOrderService(deps OrderDeps, cfg config.OrderConfig, logger *zap.Logger) (*OrderService, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load order timezone: %w", err)
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	return &OrderService{
		OrderDeps: deps,
		location:  loc,
		lockTTL:   cfg.CheckoutLockTTL,
		logger:    logger.Named("order"),
		now:       time.Now,
	}, nil
}

type CreateOrderInput struct {
	DeliveryInstructions string `json:"deliveryInstructions"`
	PaymentMethod        string `json:"paymentMethod"`
}

// CreateOrder turns the user's cart into a pending order. The order is the
// only write that can fail the call; the payment ledger entry, cart clear,
// notification, event and audit entry are logged on failure.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (*models.Order, error) {
	method, err := models.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, apperr.Validation("Invalid payment method")
	}

	release, err := s.lockCheckout(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}

	cart, err := s.Carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperr.InvalidState(apperr.CodeEmptyCart, "Cart is empty")
	}

	details, err := s.Catalog.ProductDetails(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	for _, item := range cart.Items {
		product := details[item.ProductID]
		if product == nil || !product.IsAvailable {
			return nil, apperr.InvalidState(apperr.CodeProductUnavailable,
				fmt.Sprintf("Product %s is not available", product.ProductName()))
		}
	}

	items := BuildOrderItems(cart, details)
	now := s.now()
	order := &models.Order{
		UserID:                userID,
		Items:                 items,
		TotalAmount:           models.TotalOf(items),
		DeliveryAddress:       models.DeliveryAddressFrom(user.Address),
		DeliveryInstructions:  in.DeliveryInstructions,
		PaymentMethod:         method,
		OrderStatus:           models.OrderStatusPending,
		PaymentStatus:         models.PaymentStatusPending,
		EstimatedDeliveryTime: now.Add(models.EstimatedDeliveryOffset),
		OrderDate:             now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, err
	}

	logger := s.logger.With(zap.String("order_id", order.ID.Hex()), zap.String("user_id", userID))
	logger.Info("Order created",
		zap.Float64("total_amount", order.TotalAmount),
		zap.Int("items", len(order.Items)))

	// The order is committed; the remaining writes must not be cut short
	// by the caller going away, or a retry would find the cart still full.
	post, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := s.Payments.Create(post, paymentRecordFor(order, user)); err != nil {
		logger.Error("Failed to record payment", zap.Error(err))
	}

	cart.Clear()
	if err := s.Carts.Save(post, cart); err != nil {
		logger.Error("Failed to clear cart after order", zap.Error(err))
	}

	if s.Notifier != nil {
		s.Notifier.OrderPlaced(order, recipientOf(user))
	}
	s.publish(events.TypeOrderCreated, order)
	s.audit(ActionOrderCreated, order, bson.M{
		"total_amount":   order.TotalAmount,
		"items":          len(order.Items),
		"payment_method": order.PaymentMethod,
	})

	return order, nil
}

// lockCheckout takes the per-user checkout lock. Without a locker, or when
// the lock store fails, the empty-cart check is the only guard.
func (s *OrderService) lockCheckout(ctx context.Context, userID string) (func(), error) {
	noop := func() {}
	if s.Locker == nil {
		return noop, nil
	}

	ok, release, err := s.Locker.AcquireCheckoutLock(ctx, userID, s.lockTTL)
	if err != nil {
		s.logger.Warn("Checkout lock unavailable", zap.String("user_id", userID), zap.Error(err))
		return noop, nil
	}
	if !ok {
		return nil, apperr.Conflict(apperr.CodeCheckoutInProgress, "Checkout already in progress")
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := release(ctx); err != nil {
			s.logger.Warn("Failed to release checkout lock", zap.String("user_id", userID), zap.Error(err))
		}
	}, nil
}

// BuildOrderItems snapshots each cart line. The cart's stored price wins
// over the live product price.
func BuildOrderItems(cart *models.Cart, details map[primitive.ObjectID]*models.ProductDetail) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		product := details[line.ProductID]
		items = append(items, models.OrderItem{
			ProductID:          line.ProductID,
			Quantity:           line.Quantity,
			Price:              unitPrice(line, product),
			ProductName:        product.ProductName(),
			CategoryName:       product.CategoryName(),
			RestaurantName:     product.RestaurantName(),
			RestaurantLocation: product.RestaurantLocation(),
			FoodType:           product.FoodType(),
		})
	}
	return items
}

func paymentRecordFor(order *models.Order, user *models.User) *models.PaymentRecord {
	return &models.PaymentRecord{
		Food:        order.FoodSummary(),
		Quantity:    order.TotalQuantity(),
		TotalPrice:  order.TotalAmount,
		PaymentMode: order.PaymentMethod.PaymentMode(),
		Status:      models.PaymentStatusPending,
		Customer: &models.CustomerInfo{
			Name:  user.Name,
			Email: user.Email,
			Phone: user.Phone,
		},
		OrderID:   order.ID.Hex(),
		CreatedAt: order.CreatedAt,
	}
}

func recipientOf(user *models.User) notify.Recipient {
	return notify.Recipient{Name: user.Name, Email: user.Email}
}

func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.transition(ctx, userID, orderID, models.OrderStatusCancelled, "Only pending orders can be cancelled")
	if err != nil {
		return nil, err
	}
	s.audit(ActionOrderCancelled, order, bson.M{"order_status": order.OrderStatus})
	return order, nil
}

// MarkReceived completes a pending order and sends the billing receipt.
func (s *OrderService) MarkReceived(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.transition(ctx, userID, orderID, models.OrderStatusReceived, "Only pending orders can be marked as received")
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		user, err := s.Users.GetByID(ctx, userID)
		if err != nil {
			s.logger.Error("Failed to load user for receipt",
				zap.String("order_id", order.ID.Hex()), zap.Error(err))
		} else {
			s.Notifier.OrderReceived(order, recipientOf(user))
		}
	}
	s.audit(ActionOrderReceived, order, bson.M{"order_status": order.OrderStatus})
	return order, nil
}

func (s *OrderService) transition(ctx context.Context, userID, orderID string, to models.OrderStatus, refusal string) (*models.Order, error) {
	id, err := parseID(orderID, "Order not found")
	if err != nil {
		return nil, err
	}

	current, err := s.Orders.FindForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !current.OrderStatus.CanTransitionTo(to) {
		return nil, apperr.InvalidState(apperr.CodeInvalidTransition, refusal)
	}

	order, err := s.Orders.TransitionStatus(ctx, userID, id, current.OrderStatus, to)
	if errors.Is(err, repository.ErrStatusChanged) {
		return nil, apperr.InvalidState(apperr.CodeInvalidTransition, refusal)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("from", string(current.OrderStatus)),
		zap.String("to", string(to)))
	s.publish(events.TypeOrderStatusChanged, order)
	return order, nil
}

// UpdatePaymentStatus sets paymentStatus regardless of orderStatus.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, userID, orderID, status string) (*models.Order, error) {
	paymentStatus, err := models.ParsePaymentStatus(status)
	if err != nil {
		return nil, apperr.Validation("Invalid payment status")
	}
	id, err := parseID(orderID, "Order not found")
	if err != nil {
		return nil, err
	}

	order, err := s.Orders.UpdatePaymentStatus(ctx, userID, id, paymentStatus)
	if err != nil {
		return nil, err
	}

	s.publish(events.TypeOrderPaymentStatusChanged, order)
	s.audit(ActionOrderPaymentStatus, order, bson.M{"payment_status": paymentStatus})
	return order, nil
}

func (s *OrderService) publish(eventType string, order *models.Order) {
	event := events.NewOrderEvent(eventType, order)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.Publisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish order event",
				zap.String("type", eventType),
				zap.String("order_id", event.OrderID),
				zap.Error(err))
		}
	}()
}

func (s *OrderService) audit(action string, order *models.Order, data bson.M) {
	if s.Auditor == nil {
		return
	}
	entry := &models.AuditLog{
		Service:  auditService,
		Action:   action,
		EntityID: order.ID.Hex(),
		UserID:   order.UserID,
		Data:     data,
	}
	go func() {
		if err := s.Auditor.CreateAuditLog(context.Background(), entry); err != nil {
			s.logger.Error("Failed to write audit log",
				zap.String("action", action),
				zap.String("order_id", entry.EntityID),
				zap.Error(err))
		}
	}()
}
