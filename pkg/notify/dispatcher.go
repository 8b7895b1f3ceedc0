// Package notify sends order emails without blocking the request that
// triggered them.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/example/fooddash/pkg/models"
	"go.uber.org/zap"
)

const sendAttempts = 3

// Recipient is the addressee of an order email.
type Recipient struct {
	Name  string
	Email string
}

type orderPlaced struct {
	Order models.Order
	To    Recipient
}

type orderReceived struct {
	Order models.Order
	To    Recipient
}

// notificationActor renders and sends one message at a time.
type notificationActor struct {
	sender      Sender
	logger      *zap.Logger
	location    *time.Location
	sendTimeout time.Duration
	backoff     time.Duration
}

func (a *notificationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *orderPlaced:
		subject, body, err := RenderConfirmation(&msg.Order, msg.To, a.location)
		a.deliver("order_confirmation", &msg.Order, msg.To, subject, body, err)

	case *orderReceived:
		subject, body, err := RenderReceipt(&msg.Order, msg.To, a.location)
		a.deliver("order_receipt", &msg.Order, msg.To, subject, body, err)

	case *actor.Started:
		a.logger.Info("Notification actor started")

	case *actor.Stopped:
		a.logger.Info("Notification actor stopped")
	}
}

func (a *notificationActor) deliver(kind string, order *models.Order, to Recipient, subject, body string, renderErr error) {
	fields := []zap.Field{
		zap.String("type", kind),
		zap.String("order_id", order.ID.Hex()),
		zap.String("recipient", to.Email),
	}
	if renderErr != nil {
		a.logger.Error("Failed to render notification", append(fields, zap.Error(renderErr))...)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(time.Duration(attempt-1) * a.backoff)
		}
		ctx, cancel := context.WithTimeout(context.Background(), a.sendTimeout)
		lastErr = a.sender.Send(ctx, to.Email, subject, body)
		cancel()
		if lastErr == nil {
			a.logger.Info("Notification sent", append(fields, zap.Int("attempt", attempt))...)
			return
		}
		a.logger.Warn("Send attempt failed", append(fields, zap.Int("attempt", attempt), zap.Error(lastErr))...)
	}
	a.logger.Error("Notification dropped", append(fields, zap.Error(lastErr))...)
}

// Dispatcher hands order emails to a notification actor. Calls return
// immediately; delivery errors are only logged.
type Dispatcher struct {
	system *actor.ActorSystem
	pid    *actor.PID
	logger *zap.Logger
}

type DispatcherOption func(*notificationActor)

// WithLocation sets the timezone used for dates in emails.
func WithLocation(loc *time.Location) DispatcherOption {
	return func(a *notificationActor) { a.location = loc }
}

func WithSendTimeout(d time.Duration) DispatcherOption {
	return func(a *notificationActor) { a.sendTimeout = d }
}

func WithRetryBackoff(d time.Duration) DispatcherOption {
	return func(a *notificationActor) { a.backoff = d }
}

func NewDispatcher(sender Sender, logger *zap.Logger, opts ...DispatcherOption) (*Dispatcher, error) {
	logger = logger.Named("notification")
	system := actor.NewActorSystem()

	props := actor.PropsFromProducer(func() actor.Actor {
		a := &notificationActor{
			sender:      sender,
			logger:      logger,
			location:    time.UTC,
			sendTimeout: 15 * time.Second,
			backoff:     time.Second,
		}
		for _, opt := range opts {
			opt(a)
		}
		return a
	})
	pid, err := system.Root.SpawnNamed(props, "notification-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn notification actor: %w", err)
	}

	return &Dispatcher{system: system, pid: pid, logger: logger}, nil
}

func (d *Dispatcher) OrderPlaced(order *models.Order, to Recipient) {
	if !d.addressable(order, to) {
		return
	}
	d.system.Root.Send(d.pid, &orderPlaced{Order: *order, To: to})
}

func (d *Dispatcher) OrderReceived(order *models.Order, to Recipient) {
	if !d.addressable(order, to) {
		return
	}
	d.system.Root.Send(d.pid, &orderReceived{Order: *order, To: to})
}

func (d *Dispatcher) addressable(order *models.Order, to Recipient) bool {
	if to.Email == "" {
		d.logger.Warn("Missing recipient, notification skipped", zap.String("order_id", order.ID.Hex()))
		return false
	}
	return true
}

// Stop drains queued notifications and stops the actor.
func (d *Dispatcher) Stop() error {
	return d.system.Root.PoisonFuture(d.pid).Wait()
}
