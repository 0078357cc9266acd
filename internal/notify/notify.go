package notify

import (
	"context"
	"time"
)

// Alert is one state transition of a monitored service.
type Alert struct {
	Title string
	Text  string

	Service   string
	Host      string
	Status    string
	Message   string
	CheckedAt time.Time
}

type Notifier interface {
	Send(ctx context.Context, a Alert) error
}

type Multi []Notifier

func (m Multi) Send(ctx context.Context, a Alert) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, a); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
