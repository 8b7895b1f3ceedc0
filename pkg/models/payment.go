package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentModeCOD    = "cod"
	PaymentModeOnline = "online"
	PaymentModeCard   = "card"
	PaymentModeEsewa  = "esewa"
	PaymentModeKhalti = "khalti"
)

func ValidPaymentMode(mode string) error {
	switch mode {
	case PaymentModeCOD, PaymentModeOnline, PaymentModeCard, PaymentModeEsewa, PaymentModeKhalti:
		return nil
	}
	return fmt.Errorf("unknown payment mode %q", mode)
}

type CustomerInfo struct {
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// PaymentRecord is a ledger entry of a payment attempt. OrderID is a loose
// reference: it may name an order document or an externally supplied id.
type PaymentRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Food        string             `bson:"food" json:"food"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	TotalPrice  float64            `bson:"totalprice" json:"totalprice"`
	PaymentMode string             `bson:"paymentmode" json:"paymentmode"`
	Status      PaymentStatus      `bson:"status" json:"status"`
	Customer    *CustomerInfo      `bson:"customerInfo,omitempty" json:"customerInfo,omitempty"`
	OrderID     string             `bson:"orderId,omitempty" json:"orderId,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
