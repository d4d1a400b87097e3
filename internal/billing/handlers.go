package billing

import (
	"fmt"
	"log"

	"github.com/io-da/dispatch"
)

// CancelHandler cancels subscriptions at the provider.
type CancelHandler struct {
	Provider Provider
}

func (hdl *CancelHandler) Handle(cmd dispatch.Command) (any, error) {
	c, ok := cmd.(Cancel)
	if !ok {
		return nil, unexpected(cmd)
	}
	return hdl.Provider.CancelSubscription(c.Context(), c.SubscriptionID)
}

// SubscribeHandler creates subscriptions at the provider.
type SubscribeHandler struct {
	Provider Provider
}

func (hdl *SubscribeHandler) Handle(cmd dispatch.Command) (any, error) {
	s, ok := cmd.(Subscribe)
	if !ok {
		return nil, unexpected(cmd)
	}
	return hdl.Provider.CreateSubscription(s.Context(), s.UserID, s.PlanID)
}

// NotifyHandler delivers notifications.
type NotifyHandler struct {
	Notifier Notifier
}

func (hdl *NotifyHandler) Handle(cmd dispatch.Command) (any, error) {
	n, ok := cmd.(Notify)
	if !ok {
		return nil, unexpected(cmd)
	}
	return nil, hdl.Notifier.Notify(n.Context(), n.UserID, n.Message)
}

func unexpected(cmd dispatch.Command) error {
	return fmt.Errorf("%w: %T", ErrUnexpectedCommand, cmd)
}

// LogErrorHandler logs every error reported by a bus.
type LogErrorHandler struct {
	Logger *log.Logger
}

func (hdl *LogErrorHandler) Handle(cmd dispatch.Command, err error) {
	id := dispatch.Identifier("<nil>")
	if cmd != nil {
		id = cmd.Identifier()
	}
	hdl.Logger.Printf("command=%s error=%v", id, err)
}

// NewRegistry binds the subscription commands to handlers using the provider.
func NewRegistry(provider Provider) (*dispatch.Registry, error) {
	reg := dispatch.NewRegistry()
	if err := reg.Register(CancelIdentifier, &CancelHandler{Provider: provider}); err != nil {
		return nil, err
	}
	if err := reg.Register(SubscribeIdentifier, &SubscribeHandler{Provider: provider}); err != nil {
		return nil, err
	}
	return reg, nil
}

// NewNotificationRegistry binds the notification command to a handler using the notifier.
func NewNotificationRegistry(notifier Notifier) (*dispatch.Registry, error) {
	reg := dispatch.NewRegistry()
	if err := reg.Register(NotifyIdentifier, &NotifyHandler{Notifier: notifier}); err != nil {
		return nil, err
	}
	return reg, nil
}
