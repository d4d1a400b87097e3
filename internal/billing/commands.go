package billing

import (
	"context"

	"github.com/io-da/dispatch"
)

const (
	CancelIdentifier    dispatch.Identifier = "billing.cancel"
	SubscribeIdentifier dispatch.Identifier = "billing.subscribe"
	NotifyIdentifier    dispatch.Identifier = "billing.notify"
)

// Cancel ends a subscription.
type Cancel struct {
	Ctx            context.Context
	SubscriptionID string
}

func (Cancel) Identifier() dispatch.Identifier {
	return CancelIdentifier
}

func (cmd Cancel) Context() context.Context {
	return contextOrBackground(cmd.Ctx)
}

// Subscribe starts a subscription of a user to a plan.
type Subscribe struct {
	Ctx    context.Context
	UserID string
	PlanID string
}

func (Subscribe) Identifier() dispatch.Identifier {
	return SubscribeIdentifier
}

func (cmd Subscribe) Context() context.Context {
	return contextOrBackground(cmd.Ctx)
}

// Notify sends a message to a user.
type Notify struct {
	Ctx     context.Context
	UserID  string
	Message string
}

func (Notify) Identifier() dispatch.Identifier {
	return NotifyIdentifier
}

func (cmd Notify) Context() context.Context {
	return contextOrBackground(cmd.Ctx)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
