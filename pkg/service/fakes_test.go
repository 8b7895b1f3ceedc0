package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/example/fooddash/pkg/apperr"
	"github.com/example/fooddash/pkg/config"
	"github.com/example/fooddash/pkg/models"
	"github.com/example/fooddash/pkg/notify"
	"github.com/example/fooddash/pkg/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store down")

type memCatalog struct {
	products map[primitive.ObjectID]*models.ProductDetail
}

func newMemCatalog() *memCatalog {
	return &memCatalog{products: map[primitive.ObjectID]*models.ProductDetail{}}
}

func (c *memCatalog) add(name string, price float64, available bool) *models.ProductDetail {
	p := &models.ProductDetail{
		Product: models.Product{
			ID:          primitive.NewObjectID(),
			Name:        name,
			Price:       price,
			Type:        "veg",
			IsAvailable: available,
		},
		Category:   &models.Category{ID: primitive.NewObjectID(), Name: "Nepali"},
		Restaurant: &models.Restaurant{ID: primitive.NewObjectID(), Name: "Everest Kitchen", Location: "Thamel"},
	}
	c.products[p.ID] = p
	return p
}

func (c *memCatalog) ProductDetail(_ context.Context, id primitive.ObjectID) (*models.ProductDetail, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, apperr.NotFound("Product not found")
	}
	return p, nil
}

func (c *memCatalog) ProductDetails(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.ProductDetail, error) {
	out := map[primitive.ObjectID]*models.ProductDetail{}
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (c *memCatalog) ListProducts(_ context.Context, f models.ProductFilter) ([]*models.ProductDetail, int64, error) {
	var all []*models.ProductDetail
	for _, p := range c.products {
		if f.Available != nil && p.IsAvailable != *f.Available {
			continue
		}
		all = append(all, p)
	}
	return all, int64(len(all)), nil
}

func (c *memCatalog) ListCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{Name: "Nepali"}}, nil
}

func (c *memCatalog) ListRestaurants(context.Context) ([]models.Restaurant, error) {
	return []models.Restaurant{{Name: "Everest Kitchen"}}, nil
}

type memCarts struct {
	mu      sync.Mutex
	carts   map[string]models.Cart
	saveErr error
	saves   int
}

func newMemCarts() *memCarts {
	return &memCarts{carts: map[string]models.Cart{}}
}

func copyCart(c models.Cart) *models.Cart {
	c.Items = append([]models.CartItem{}, c.Items...)
	return &c
}

func (s *memCarts) FindByUser(_ context.Context, userID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, nil
	}
	return copyCart(c), nil
}

func (s *memCarts) Save(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	s.carts[cart.UserID] = *copyCart(*cart)
	return nil
}

func (s *memCarts) put(userID string, items ...models.CartItem) {
	s.carts[userID] = models.Cart{ID: primitive.NewObjectID(), UserID: userID, Items: items}
}

func (s *memCarts) items(userID string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[userID].Items
}

type memOrders struct {
	mu            sync.Mutex
	orders        map[primitive.ObjectID]models.Order
	createErr     error
	transitionErr error
	// afterCreate runs once the order is stored.
	afterCreate func()
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[primitive.ObjectID]models.Order{}}
}

func (s *memOrders) Create(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	order.ID = primitive.NewObjectID()
	s.orders[order.ID] = *order
	if s.afterCreate != nil {
		s.afterCreate()
	}
	return nil
}

func (s *memOrders) FindForUser(_ context.Context, userID string, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.UserID != userID {
		return nil, apperr.NotFound("Order not found")
	}
	return &o, nil
}

func (s *memOrders) ListForUser(_ context.Context, userID string, q models.OrderQuery) ([]*models.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*models.Order
	for _, o := range s.orders {
		o := o
		if o.UserID != userID || (q.Status != nil && o.OrderStatus != *q.Status) {
			continue
		}
		matched = append(matched, &o)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := int(q.Skip())
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *memOrders) TransitionStatus(_ context.Context, userID string, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transitionErr != nil {
		return nil, s.transitionErr
	}
	o, ok := s.orders[id]
	if !ok || o.UserID != userID || o.OrderStatus != from {
		return nil, repository.ErrStatusChanged
	}
	o.OrderStatus = to
	s.orders[id] = o
	return &o, nil
}

func (s *memOrders) UpdatePaymentStatus(_ context.Context, userID string, id primitive.ObjectID, status models.PaymentStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.UserID != userID {
		return nil, apperr.NotFound("Order not found")
	}
	o.PaymentStatus = status
	s.orders[id] = o
	return &o, nil
}

func (s *memOrders) DailyTrend(_ context.Context, userID string, start, end time.Time, timezone string) ([]models.TrendPoint, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byDay := map[string]*models.TrendPoint{}
	for _, o := range s.orders {
		if o.UserID != userID || o.OrderStatus != models.OrderStatusReceived {
			continue
		}
		if o.OrderDate.Before(start) || !o.OrderDate.Before(end) {
			continue
		}
		day := o.OrderDate.In(loc).Format("2006-01-02")
		p, ok := byDay[day]
		if !ok {
			p = &models.TrendPoint{Date: day}
			byDay[day] = p
		}
		p.Orders++
		p.TotalAmount += o.TotalAmount
		p.TotalItems += o.TotalQuantity()
	}
	var out []models.TrendPoint
	for _, p := range byDay {
		out = append(out, *p)
	}
	return out, nil
}

func (s *memOrders) get(id primitive.ObjectID) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

func (s *memOrders) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type memPayments struct {
	mu      sync.Mutex
	records []*models.PaymentRecord
	err     error
}

func (s *memPayments) Create(ctx context.Context, record *models.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	record.ID = primitive.NewObjectID()
	s.records = append(s.records, record)
	return nil
}

func (s *memPayments) ListByOrderID(_ context.Context, orderID string) ([]*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.PaymentRecord{}
	for _, r := range s.records {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (s *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

func (s *memUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return apperr.Conflict(apperr.CodeDuplicate, "Email is already registered")
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (s *memUsers) UpdateProfile(_ context.Context, id string, changes map[string]interface{}) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	if v, ok := changes["name"].(string); ok {
		u.Name = v
	}
	if v, ok := changes["phone"].(string); ok {
		u.Phone = v
	}
	if v, ok := changes["address"].(string); ok {
		u.Address = v
	}
	return u, nil
}

type sentNotification struct {
	kind    string
	orderID primitive.ObjectID
	to      notify.Recipient
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) OrderPlaced(order *models.Order, to notify.Recipient) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{kind: "placed", orderID: order.ID, to: to})
}

func (n *recordingNotifier) OrderReceived(order *models.Order, to notify.Recipient) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{kind: "received", orderID: order.ID, to: to})
}

func (n *recordingNotifier) all() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification{}, n.sent...)
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (a *recordingAuditor) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, log)
	return nil
}

func (a *recordingAuditor) GetAuditLogs(_ context.Context, entityID string, _ int64) ([]*models.AuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*models.AuditLog
	for i := len(a.entries) - 1; i >= 0; i-- {
		if a.entries[i].EntityID == entityID {
			out = append(out, a.entries[i])
		}
	}
	return out, nil
}

func (a *recordingAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeLocker struct {
	held     bool
	err      error
	released int
}

func (l *fakeLocker) AcquireCheckoutLock(context.Context, string, time.Duration) (bool, func(context.Context) error, error) {
	if l.err != nil {
		return false, nil, l.err
	}
	if l.held {
		return false, func(context.Context) error { return nil }, nil
	}
	return true, func(context.Context) error { l.released++; return nil }, nil
}

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type orderFixture struct {
	svc      *OrderService
	catalog  *memCatalog
	carts    *memCarts
	orders   *memOrders
	payments *memPayments
	users    *memUsers
	notifier *recordingNotifier
	auditor  *recordingAuditor
	user     *models.User
}

func newOrderFixture() *orderFixture {
	user := &models.User{ID: "user-1", Name: "Asha", Email: "asha@example.com", Phone: "9800000000", Address: "X St"}
	f := &orderFixture{
		catalog:  newMemCatalog(),
		carts:    newMemCarts(),
		orders:   newMemOrders(),
		payments: &memPayments{},
		users:    newMemUsers(user),
		notifier: &recordingNotifier{},
		auditor:  &recordingAuditor{},
		user:     user,
	}
	svc, err := NewOrderService(OrderDeps{
		Orders:   f.orders,
		Carts:    f.carts,
		Catalog:  f.catalog,
		Payments: f.payments,
		Users:    f.users,
		Notifier: f.notifier,
		Auditor:  f.auditor,
	}, config.OrderConfig{Timezone: "UTC", CheckoutLockTTL: 30 * time.Second}, zap.NewNop())
	if err != nil {
		panic(err)
	}
	svc.now = func() time.Time { return fixedNow }
	f.svc = svc
	return f
}

func cartLine(p *models.ProductDetail, qty int, price *float64) models.CartItem {
	return models.CartItem{ProductID: p.ID, Quantity: qty, Price: price}
}
