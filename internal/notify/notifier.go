// Package notify defines the outbound notification collaborator used by the
// alert evaluator. Delivery is best-effort by contract: implementations may
// fail, and callers log and continue rather than propagate.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Channel identifies a delivery medium.
type Channel string

// Supported channels.
const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Notifier dispatches a batch of alert messages over one channel.
type Notifier interface {
	Dispatch(ctx context.Context, channel Channel, userID string, messages []string) error
}

// LogNotifier is the default Notifier: it records the would-be delivery in
// the structured log. Real transports (SMTP, SMS gateway) implement the
// same interface and are swapped in at wiring time.
type LogNotifier struct {
	Log zerolog.Logger
}

// Dispatch implements Notifier.
func (n *LogNotifier) Dispatch(_ context.Context, channel Channel, userID string, messages []string) error {
	n.Log.Info().
		Str("channel", string(channel)).
		Str("user_id", userID).
		Int("count", len(messages)).
		Strs("messages", messages).
		Msg("dispatching alert notifications")
	return nil
}
