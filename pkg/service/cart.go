package service

import (
	"context"
	"time"

	"github.com/example/fooddash/pkg/apperr"
	"github.com/example/fooddash/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CartItemView is a cart line with its product resolved. Product is nil
// when the product no longer exists.
type CartItemView struct {
	ProductID primitive.ObjectID    `json:"productId"`
	Quantity  int                   `json:"quantity"`
	Price     float64               `json:"price"`
	Product   *models.ProductDetail `json:"product,omitempty"`
}

type CartView struct {
	ID          primitive.ObjectID `json:"_id"`
	UserID      string             `json:"userId"`
	Items       []CartItemView     `json:"items"`
	TotalItems  int                `json:"totalItems"`
	TotalAmount float64            `json:"totalAmount"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type CartService struct {
	carts   CartStore
	catalog CatalogStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewCartService(carts CartStore, catalog CatalogStore, logger *zap.Logger) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
		logger:  logger.Named("cart"),
		now:     time.Now,
	}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, cart)
}

func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, apperr.Validation("Quantity must be at least 1")
	}
	id, err := parseID(productID, "Product not found")
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.ProductDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		return nil, apperr.InvalidState(apperr.CodeProductUnavailable, "Product is not available")
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if i := cart.IndexOf(id); i >= 0 {
		cart.Items[i].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: id,
			Quantity:  quantity,
			Price:     models.PriceSnapshot(product.Price),
		})
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	s.logger.Debug("Item added to cart",
		zap.String("user_id", userID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity))
	return s.resolve(ctx, cart)
}

func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, apperr.Validation("Quantity must be at least 1")
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperr.NotFound("Cart not found")
	}

	id, err := parseID(productID, "Item not found in cart")
	if err != nil {
		return nil, err
	}
	i := cart.IndexOf(id)
	if i < 0 {
		return nil, apperr.NotFound("Item not found in cart")
	}
	cart.Items[i].Quantity = quantity

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.resolve(ctx, cart)
}

// RemoveItem drops productID from the cart. Removing an absent item is not
// an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if id, err := primitive.ObjectIDFromHex(productID); err == nil && cart.Remove(id) {
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, err
		}
	}
	return s.resolve(ctx, cart)
}

// Clear empties the cart but keeps the cart record.
func (s *CartService) Clear(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cart.IsEmpty() {
		cart.Clear()
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, err
		}
	}
	return s.resolve(ctx, cart)
}

func (s *CartService) load(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart = models.NewCart(userID, s.now())
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) resolve(ctx context.Context, cart *models.Cart) (*CartView, error) {
	details, err := s.catalog.ProductDetails(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}

	view := &CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     make([]CartItemView, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		product := details[item.ProductID]
		line := CartItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     unitPrice(item, product),
			Product:   product,
		}
		view.Items = append(view.Items, line)
		view.TotalItems += line.Quantity
		view.TotalAmount += line.Price * float64(line.Quantity)
	}
	return view, nil
}

// unitPrice prefers the price captured when the item was added.
func unitPrice(item models.CartItem, product *models.ProductDetail) float64 {
	if item.Price != nil {
		return *item.Price
	}
	if product != nil {
		return product.Price
	}
	return 0
}
