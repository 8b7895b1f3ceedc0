package service

import (
	"context"
	"time"

	"github.com/example/fooddash/pkg/apperr"
	"github.com/example/fooddash/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TrendDays       = 7
	trendDateLayout = "2006-01-02"
	historyLimit    = 50
)

// OrderItemView is a snapshot item plus the product as it is today, if it
// still exists.
type OrderItemView struct {
	models.OrderItem
	Product *models.ProductDetail `json:"product,omitempty"`
}

type OrderView struct {
	*models.Order
	Items []OrderItemView `json:"items"`
}

type ListOrdersInput struct {
	Status string
	Page   int
	Limit  int
}

type OrderPage struct {
	Orders     []*OrderView
	Pagination Pagination
}

func (s *OrderService) ListOrders(ctx context.Context, userID string, in ListOrdersInput) (*OrderPage, error) {
	page, limit := normalizePage(in.Page, in.Limit)
	q := models.OrderQuery{Page: page, Limit: limit}
	if in.Status != "" {
		status, err := models.ParseOrderStatus(in.Status)
		if err != nil {
			return nil, apperr.Validation("Invalid order status")
		}
		q.Status = &status
	}

	orders, total, err := s.Orders.ListForUser(ctx, userID, q)
	if err != nil {
		return nil, err
	}
	views, err := s.resolveOrders(ctx, orders)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: views, Pagination: newPagination(page, limit, total)}, nil
}

// GetOrder returns one of the user's orders. Another user's order is
// reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*OrderView, error) {
	id, err := parseID(orderID, "Order not found")
	if err != nil {
		return nil, err
	}
	order, err := s.Orders.FindForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	views, err := s.resolveOrders(ctx, []*models.Order{order})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// OrderHistory lists the audit trail of one of the user's orders, newest first.
func (s *OrderService) OrderHistory(ctx context.Context, userID, orderID string) ([]*models.AuditLog, error) {
	id, err := parseID(orderID, "Order not found")
	if err != nil {
		return nil, err
	}
	if _, err := s.Orders.FindForUser(ctx, userID, id); err != nil {
		return nil, err
	}
	if s.Auditor == nil {
		return []*models.AuditLog{}, nil
	}
	logs, err := s.Auditor.GetAuditLogs(ctx, id.Hex(), historyLimit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}
	return logs, nil
}

func (s *OrderService) resolveOrders(ctx context.Context, orders []*models.Order) ([]*OrderView, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, order := range orders {
		for _, item := range order.Items {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				ids = append(ids, item.ProductID)
			}
		}
	}

	details, err := s.Catalog.ProductDetails(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*OrderView, 0, len(orders))
	for _, order := range orders {
		view := &OrderView{Order: order, Items: make([]OrderItemView, 0, len(order.Items))}
		for _, item := range order.Items {
			view.Items = append(view.Items, OrderItemView{OrderItem: item, Product: details[item.ProductID]})
		}
		views = append(views, view)
	}
	return views, nil
}

// PurchaseTrend reports the user's received orders per day for the last
// seven days, today included.
func (s *OrderService) PurchaseTrend(ctx context.Context, userID string) ([]models.TrendPoint, error) {
	if userID == "" {
		return nil, apperr.Validation("User id is required")
	}
	today := startOfDay(s.now().In(s.location))
	start := today.AddDate(0, 0, -(TrendDays - 1))
	end := today.AddDate(0, 0, 1)

	points, err := s.Orders.DailyTrend(ctx, userID, start, end, s.location.String())
	if err != nil {
		return nil, err
	}
	return BuildTrend(today, points), nil
}

// BuildTrend lays points onto the seven days ending at today, oldest
// first. Missing days are zero.
func BuildTrend(today time.Time, points []models.TrendPoint) []models.TrendPoint {
	byDate := make(map[string]models.TrendPoint, len(points))
	for _, p := range points {
		byDate[p.Date] = p
	}

	out := make([]models.TrendPoint, 0, TrendDays)
	for i := TrendDays - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(trendDateLayout)
		p, ok := byDate[date]
		if !ok {
			p = models.TrendPoint{Date: date}
		}
		out = append(out, p)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
