package service

import (
	"github.com/example/fooddash/pkg/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseID treats a malformed id like an unknown one.
func parseID(hex, notFound string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(notFound)
	}
	return id, nil
}
