package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        string    `bson:"_id,omitempty" json:"id,omitempty"`
	Service   string    `bson:"service" json:"service"`
	Action    string    `bson:"action" json:"action"`
	EntityID  string    `bson:"entity_id" json:"entityId"`
	UserID    string    `bson:"user_id,omitempty" json:"userId,omitempty"`
	Data      bson.M    `bson:"data" json:"data,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// TrendPoint is one calendar day of received-order activity.
type TrendPoint struct {
	Date        string  `bson:"_id" json:"date"`
	Orders      int     `bson:"orders" json:"orders"`
	TotalAmount float64 `bson:"totalAmount" json:"totalAmount"`
	TotalItems  int     `bson:"totalItems" json:"totalItems"`
}
