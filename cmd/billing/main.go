// Command billing runs a batch of subscription commands through a dispatch bus.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/io-da/dispatch"
	"github.com/io-da/dispatch/internal/billing"
	"github.com/io-da/dispatch/internal/config"
	"github.com/io-da/dispatch/internal/telemetry"
	"github.com/io-da/dispatch/oteldispatch"
	"github.com/io-da/schedule"
)

func main() {
	logger := log.New(os.Stderr, "billing: ", log.LstdFlags)
	if err := run(context.Background(), logger); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, logger *log.Logger) error {
	cfg, err := config.LoadBilling()
	if err != nil {
		return err
	}

	tp, shutdown, err := telemetry.Setup(ctx, telemetry.Settings{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampling,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Printf("telemetry shutdown: %v", err)
		}
	}()

	provider := billing.NewMemoryProvider("basic", "premium")
	subscriptions, err := billing.NewRegistry(provider)
	if err != nil {
		return err
	}
	notifications, err := billing.NewNotificationRegistry(billing.NewLogNotifier(logger))
	if err != nil {
		return err
	}
	registry, err := dispatch.Merge(subscriptions, notifications)
	if err != nil {
		return err
	}
	traced, err := oteldispatch.Registry(registry, oteldispatch.WithTracerProvider(tp))
	if err != nil {
		return err
	}

	bus := dispatch.NewBus()
	bus.WorkerPoolSize(cfg.WorkerPoolSize)
	bus.QueueBuffer(cfg.QueueBuffer)
	bus.ErrorHandlers(&billing.LogErrorHandler{Logger: logger})
	if err := bus.Initialize(traced); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := bus.ShutdownWait(stopCtx); err != nil {
			logger.Printf("bus shutdown: %v", err)
		}
	}()

	outcomes := bus.HandleAll(
		billing.Subscribe{Ctx: ctx, UserID: "lol", PlanID: "basic"},
		billing.Subscribe{Ctx: ctx, UserID: "foo", PlanID: "premium"},
		billing.Cancel{Ctx: ctx, SubscriptionID: "bar"},
	)
	for _, out := range outcomes {
		if out.Err != nil {
			logger.Printf("command %d failed: %v", out.Index, out.Err)
			continue
		}
		if sub, ok := out.Data.(billing.Subscription); ok {
			logger.Printf("command %d: subscription %s user=%s plan=%s", out.Index, sub.ID, sub.UserID, sub.PlanID)
		}
	}

	if sub, ok := outcomes[0].Data.(billing.Subscription); ok {
		reminder := billing.Notify{Ctx: ctx, UserID: sub.UserID, Message: "your subscription renews soon"}
		if _, err := bus.Schedule(reminder, schedule.At(time.Now().Add(cfg.RenewalDelay))); err != nil {
			return err
		}
		logger.Printf("renewal reminder scheduled in %s", cfg.RenewalDelay)
		time.Sleep(cfg.RenewalDelay + 100*time.Millisecond)

		if _, err := bus.Handle(billing.Cancel{Ctx: ctx, SubscriptionID: sub.ID}); err != nil {
			return err
		}
		logger.Printf("subscription %s canceled", sub.ID)
	}
	return nil
}
