package notify

import (
	"context"
	"fmt"

	"ss-scraper/utils"
)

// NoNewOffersText is sent instead of the listing messages when nothing new
// was found.
const NoNewOffersText = "No new offers in the last 20 hours."

// Message is one chat message. Monospace messages are rendered in a
// fixed-width font so that table columns line up.
type Message struct {
	Text      string
	Monospace bool
}

// Channel delivers messages to a chat destination.
type Channel interface {
	Send(ctx context.Context, dest string, msg Message) error
	Close() error
}

// Opener acquires a Channel for a single dispatch.
type Opener func(ctx context.Context) (Channel, error)

// Notifier sends a batch of messages through a freshly opened Channel and
// releases it afterwards.
type Notifier struct {
	open   Opener
	logger *utils.Logger
}

func NewNotifier(open Opener, logger *utils.Logger) *Notifier {
	return &Notifier{open: open, logger: logger}
}

// Dispatch sends msgs to dest one after another, stopping at the first
// failure. Recipients correlate ranks across messages, so order matters.
func (n *Notifier) Dispatch(ctx context.Context, dest string, msgs []Message) (err error) {
	if len(msgs) == 0 {
		return nil
	}

	ch, err := n.open(ctx)
	if err != nil {
		return fmt.Errorf("notify: open channel: %w", err)
	}
	defer func() {
		if cerr := ch.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("notify: close channel: %w", cerr)
		}
	}()

	for i, m := range msgs {
		if err := ch.Send(ctx, dest, m); err != nil {
			return fmt.Errorf("notify: send message %d/%d: %w", i+1, len(msgs), err)
		}
	}
	n.logger.Info("[notify] Sent %d message(s) to %s", len(msgs), dest)
	return nil
}

// LogChannel writes messages to the logger instead of a chat. It is used
// for dry runs.
type LogChannel struct {
	Logger *utils.Logger
}

func (c LogChannel) Send(_ context.Context, dest string, msg Message) error {
	c.Logger.Info("[notify] (dry run) to %s:\n%s", dest, msg.Text)
	return nil
}

func (c LogChannel) Close() error { return nil }
