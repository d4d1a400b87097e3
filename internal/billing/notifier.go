package billing

import (
	"context"
	"log"
	"sync"
)

// Notifier delivers messages to users.
type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

// LogNotifier writes notifications to a logger and keeps them.
type LogNotifier struct {
	sync.Mutex
	logger *log.Logger
	sent   []string
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (ntf *LogNotifier) Notify(ctx context.Context, userID, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ntf.Lock()
	ntf.sent = append(ntf.sent, userID+": "+message)
	ntf.Unlock()
	ntf.logger.Printf("notify user=%s message=%q", userID, message)
	return nil
}

// Sent returns the delivered notifications in order.
func (ntf *LogNotifier) Sent() []string {
	ntf.Lock()
	defer ntf.Unlock()
	return append([]string(nil), ntf.sent...)
}
