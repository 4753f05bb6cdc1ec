// Package notification delivers browser push messages to reservation owners
// when their orders are checked in or cancelled.
package notification

import (
	"context"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"canteen-order-backend/internal/event"
	"canteen-order-backend/internal/model"
)

// SubscriptionStore is the slice of the data store the pool needs.
type SubscriptionStore interface {
	SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers delivering push notifications for
// domain events. It implements event.Notifier; Notify never blocks the
// emitting request beyond a channel handoff and drops events when the queue
// is full.
type WorkerPool struct {
	size    int
	jobs    chan event.Event
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	logger  *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, st SubscriptionStore, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan event.Event, size*4),
		store:   st,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		logger:  logger,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// Notify enqueues an event for delivery. Best effort: a full queue drops
// the event rather than stalling the caller.
func (wp *WorkerPool) Notify(_ context.Context, e event.Event) {
	select {
	case wp.jobs <- e:
	default:
		wp.logger.Warn("push queue full, dropping event", zap.String("event", e.Name))
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("push worker started", zap.Int("worker", id))
	for {
		select {
		case e := <-wp.jobs:
			wp.deliver(ctx, e)
		case <-ctx.Done():
			wp.logger.Debug("push worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// deliver resolves the event to a user-facing message and pushes it to all
// of the owner's subscriptions.
func (wp *WorkerPool) deliver(ctx context.Context, e event.Event) {
	message := messageFor(e.Name)
	if message == "" {
		return
	}

	userID, ok := payloadUserID(e)
	if !ok {
		return
	}

	subscriptions, err := wp.store.SubscriptionsForUser(ctx, userID)
	if err != nil {
		wp.logger.Warn("fetch subscriptions failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	for _, sub := range subscriptions {
		wp.push(ctx, sub, []byte(message))
	}
}

func messageFor(name string) string {
	switch name {
	case event.OrderCheckin:
		return "Your meal has been collected."
	case event.OrderCancelled:
		return "Your meal reservation was cancelled."
	default:
		return ""
	}
}

func payloadUserID(e event.Event) (int64, bool) {
	payload, ok := e.Payload.(map[string]any)
	if !ok {
		return 0, false
	}
	id, ok := payload["user_id"].(int64)
	return id, ok
}

// push sends a single web push notification.
func (wp *WorkerPool) push(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Warn("push send failed", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.logger.Info("pruning expired subscription", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.logger.Warn("delete expired subscription failed", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
