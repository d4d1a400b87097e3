package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrUnknownPlan is returned by a provider for plans it does not sell.
	ErrUnknownPlan = errors.New("billing: unknown plan")
	// ErrSubscriptionNotFound is returned by a provider for subscriptions it does not hold.
	ErrSubscriptionNotFound = errors.New("billing: subscription not found")
	// ErrUnexpectedCommand is returned by a handler given a command of another type.
	ErrUnexpectedCommand = errors.New("billing: unexpected command")
)

// Subscription is a subscription as known by the payment provider.
type Subscription struct {
	ID       string
	UserID   string
	PlanID   string
	Canceled bool
}

// Provider is the payment provider the billing handlers talk to.
type Provider interface {
	CreateSubscription(ctx context.Context, userID, planID string) (Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (Subscription, error)
}

// MemoryProvider is an in-memory Provider.
type MemoryProvider struct {
	sync.Mutex
	plans         map[string]bool
	subscriptions map[string]Subscription
}

// NewMemoryProvider instantiates a provider selling the given plans.
func NewMemoryProvider(plans ...string) *MemoryProvider {
	pro := &MemoryProvider{
		plans:         make(map[string]bool, len(plans)),
		subscriptions: make(map[string]Subscription),
	}
	for _, plan := range plans {
		pro.plans[plan] = true
	}
	return pro
}

func (pro *MemoryProvider) CreateSubscription(ctx context.Context, userID, planID string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return Subscription{}, err
	}
	pro.Lock()
	defer pro.Unlock()
	if !pro.plans[planID] {
		return Subscription{}, fmt.Errorf("%w: %s", ErrUnknownPlan, planID)
	}
	sub := Subscription{
		ID:     uuid.NewString(),
		UserID: userID,
		PlanID: planID,
	}
	pro.subscriptions[sub.ID] = sub
	return sub, nil
}

func (pro *MemoryProvider) CancelSubscription(ctx context.Context, subscriptionID string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return Subscription{}, err
	}
	pro.Lock()
	defer pro.Unlock()
	sub, ok := pro.subscriptions[subscriptionID]
	if !ok {
		return Subscription{}, fmt.Errorf("%w: %s", ErrSubscriptionNotFound, subscriptionID)
	}
	sub.Canceled = true
	pro.subscriptions[subscriptionID] = sub
	return sub, nil
}

// Subscription returns the subscription stored under the id.
func (pro *MemoryProvider) Subscription(id string) (Subscription, bool) {
	pro.Lock()
	defer pro.Unlock()
	sub, ok := pro.subscriptions[id]
	return sub, ok
}
