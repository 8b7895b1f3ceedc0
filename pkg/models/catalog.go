package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

type Restaurant struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Location  string             `bson:"location" json:"location"`
	Contact   string             `bson:"contact,omitempty" json:"contact,omitempty"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Price        float64            `bson:"price" json:"price"`
	Image        string             `bson:"image,omitempty" json:"image,omitempty"`
	Type         string             `bson:"type" json:"type"`
	CategoryID   primitive.ObjectID `bson:"category" json:"category"`
	RestaurantID primitive.ObjectID `bson:"restaurant" json:"restaurant"`
	IsAvailable  bool               `bson:"isAvailable" json:"isAvailable"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductDetail is a product with its category and restaurant resolved.
// Either reference may be nil when the referenced document is gone.
type ProductDetail struct {
	Product    `bson:",inline"`
	Category   *Category   `bson:"categoryDoc,omitempty" json:"categoryDetails,omitempty"`
	Restaurant *Restaurant `bson:"restaurantDoc,omitempty" json:"restaurantDetails,omitempty"`
}

func (d *ProductDetail) CategoryName() string {
	if d == nil || d.Category == nil {
		return "Unknown Category"
	}
	return d.Category.Name
}

func (d *ProductDetail) RestaurantName() string {
	if d == nil || d.Restaurant == nil {
		return "Unknown Restaurant"
	}
	return d.Restaurant.Name
}

func (d *ProductDetail) RestaurantLocation() string {
	if d == nil || d.Restaurant == nil {
		return "Unknown Location"
	}
	return d.Restaurant.Location
}

func (d *ProductDetail) ProductName() string {
	if d == nil || d.Name == "" {
		return "Unknown Product"
	}
	return d.Name
}

func (d *ProductDetail) FoodType() string {
	if d == nil || d.Type == "" {
		return "Unknown Type"
	}
	return d.Type
}

// ProductFilter narrows catalog listings. Zero values mean "any".
type ProductFilter struct {
	CategoryID   *primitive.ObjectID
	RestaurantID *primitive.ObjectID
	Available    *bool
	Page         int
	Limit        int
}
