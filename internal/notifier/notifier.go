package notifier

import (
	"context"
	"errors"
)

// Notifier delivers the run summary to one channel.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// Multi fans a notification out to every configured channel. A failing
// channel never blocks the others; errors are joined for the caller to log.
type Multi []Notifier

// Send delivers to all channels.
func (m Multi) Send(ctx context.Context, subject, body string) error {
	var errs []error
	for _, n := range m {
		if err := n.Send(ctx, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
