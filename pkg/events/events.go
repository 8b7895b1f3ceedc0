// Package events publishes order lifecycle events.
package events

import (
	"context"
	"time"

	"github.com/example/fooddash/pkg/models"
)

const (
	TypeOrderCreated              = "order.created"
	TypeOrderStatusChanged        = "order.status_changed"
	TypeOrderPaymentStatusChanged = "order.payment_status_changed"
)

type OrderEvent struct {
	Type          string               `json:"type"`
	OrderID       string               `json:"orderId"`
	UserID        string               `json:"userId"`
	OrderStatus   models.OrderStatus   `json:"orderStatus"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	TotalAmount   float64              `json:"totalAmount"`
	ItemCount     int                  `json:"itemCount"`
	OccurredAt    time.Time            `json:"occurredAt"`
}

// NewOrderEvent describes order as it is now.
func NewOrderEvent(eventType string, order *models.Order) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       order.ID.Hex(),
		UserID:        order.UserID,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: order.PaymentMethod,
		TotalAmount:   order.TotalAmount,
		ItemCount:     order.TotalQuantity(),
		OccurredAt:    time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// NopPublisher drops events. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
