package service

import (
	"context"
	"strconv"

	"github.com/example/fooddash/pkg/apperr"
	"github.com/example/fooddash/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CatalogService struct {
	catalog CatalogStore
}

func NewCatalogService(catalog CatalogStore) *CatalogService {
	return &CatalogService{catalog: catalog}
}

type ProductQuery struct {
	Category   string
	Restaurant string
	Available  string
	Page       int
	Limit      int
}

type ProductPage struct {
	Products   []*models.ProductDetail
	Pagination Pagination
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	page, limit := normalizePage(q.Page, q.Limit)
	filter := models.ProductFilter{Page: page, Limit: limit}

	if q.Category != "" {
		id, err := primitive.ObjectIDFromHex(q.Category)
		if err != nil {
			return nil, apperr.Validation("Invalid category id")
		}
		filter.CategoryID = &id
	}
	if q.Restaurant != "" {
		id, err := primitive.ObjectIDFromHex(q.Restaurant)
		if err != nil {
			return nil, apperr.Validation("Invalid restaurant id")
		}
		filter.RestaurantID = &id
	}
	if q.Available != "" {
		available, err := strconv.ParseBool(q.Available)
		if err != nil {
			return nil, apperr.Validation("available must be true or false")
		}
		filter.Available = &available
	}

	products, total, err := s.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: products, Pagination: newPagination(page, limit, total)}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*models.ProductDetail, error) {
	id, err := parseID(productID, "Product not found")
	if err != nil {
		return nil, err
	}
	return s.catalog.ProductDetail(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.catalog.ListCategories(ctx)
}

func (s *CatalogService) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return s.catalog.ListRestaurants(ctx)
}
