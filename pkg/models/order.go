package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EstimatedDeliveryOffset is added to the order time to produce the ETA.
const EstimatedDeliveryOffset = 45 * time.Minute

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrderStatusPending, OrderStatusReceived, OrderStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// CanTransitionTo reports whether next may follow s. Only pending orders
// move; received and cancelled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s != OrderStatusPending {
		return false
	}
	return next == OrderStatusReceived || next == OrderStatusCancelled
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusReceived || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodEsewa  PaymentMethod = "esewa"
	PaymentMethodKhalti PaymentMethod = "khalti"
)

// ParsePaymentMethod accepts the enumerated methods; an empty string means cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	if s == "" {
		return PaymentMethodCash, nil
	}
	switch m := PaymentMethod(s); m {
	case PaymentMethodCash, PaymentMethodOnline, PaymentMethodCard, PaymentMethodEsewa, PaymentMethodKhalti:
		return m, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// PaymentMode is the ledger label for m: cash is recorded as "cod".
func (m PaymentMethod) PaymentMode() string {
	if m == PaymentMethodCash {
		return PaymentModeCOD
	}
	return string(m)
}

// OrderItem is a snapshot taken at order time. It is never rewritten when
// the product, category or restaurant changes later.
type OrderItem struct {
	ProductID          primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity           int                `bson:"quantity" json:"quantity"`
	Price              float64            `bson:"price" json:"price"`
	ProductName        string             `bson:"productName" json:"productName"`
	CategoryName       string             `bson:"categoryName" json:"categoryName"`
	RestaurantName     string             `bson:"restaurantName" json:"restaurantName"`
	RestaurantLocation string             `bson:"restaurantLocation" json:"restaurantLocation"`
	FoodType           string             `bson:"foodType" json:"foodType"`
}

func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// TotalOf sums price×quantity over items.
func TotalOf(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

type DeliveryAddress struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zipCode" json:"zipCode"`
	Country string `bson:"country" json:"country"`
}

// DeliveryAddressFrom expands the single address line kept on the user
// profile. Profiles have no structured address yet, so the remaining fields
// carry fixed placeholders.
func DeliveryAddressFrom(address string) DeliveryAddress {
	return DeliveryAddress{
		Street:  address,
		City:    "User's city",
		State:   "User's state",
		ZipCode: "00000",
		Country: "User's country",
	}
}

func (a DeliveryAddress) String() string {
	return strings.Join([]string{a.Street, a.City, a.State, a.ZipCode, a.Country}, ", ")
}

type Order struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID                string             `bson:"userId" json:"userId"`
	Items                 []OrderItem        `bson:"items" json:"items"`
	TotalAmount           float64            `bson:"totalAmount" json:"totalAmount"`
	DeliveryAddress       DeliveryAddress    `bson:"deliveryAddress" json:"deliveryAddress"`
	DeliveryInstructions  string             `bson:"deliveryInstructions" json:"deliveryInstructions"`
	PaymentMethod         PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	OrderStatus           OrderStatus        `bson:"orderStatus" json:"orderStatus"`
	PaymentStatus         PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	EstimatedDeliveryTime time.Time          `bson:"estimatedDeliveryTime" json:"estimatedDeliveryTime"`
	OrderDate             time.Time          `bson:"orderDate" json:"orderDate"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (o *Order) TotalQuantity() int {
	var n int
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// FoodSummary joins the snapshot product names, as recorded in the payment ledger.
func (o *Order) FoodSummary() string {
	names := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		names = append(names, item.ProductName)
	}
	return strings.Join(names, ", ")
}

// OrderQuery selects a page of a user's orders, newest first.
type OrderQuery struct {
	Status *OrderStatus
	Page   int
	Limit  int
}

func (q OrderQuery) Skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}
