package notify

import (
	"context"

	"github.com/Dan9191/gold-savings/internal/models"
)

// Store is the persistence side used by the database strategies
type Store interface {
	CallNotifyRPC(ctx context.Context, n models.Notification) error
	EnqueueNotification(ctx context.Context, n models.Notification) error
	EnqueueNotificationReduced(ctx context.Context, n models.Notification) error
}

type storeStrategy struct {
	name    string
	deliver func(ctx context.Context, n models.Notification) error
}

func (s storeStrategy) Name() string { return s.name }

func (s storeStrategy) Deliver(ctx context.Context, n models.Notification) error {
	return s.deliver(ctx, n)
}

// RPC delivers through the database notification function
func RPC(store Store) Strategy {
	return storeStrategy{name: "rpc", deliver: store.CallNotifyRPC}
}

// Queue inserts the full notification into the delivery queue
func Queue(store Store) Strategy {
	return storeStrategy{name: "queue", deliver: store.EnqueueNotification}
}

// ReducedQueue inserts only the core notification fields
func ReducedQueue(store Store) Strategy {
	return storeStrategy{name: "queue_reduced", deliver: store.EnqueueNotificationReduced}
}

// DatabaseStrategies returns the standard RPC then queue fallback order
func DatabaseStrategies(store Store) []Strategy {
	return []Strategy{RPC(store), Queue(store), ReducedQueue(store)}
}
