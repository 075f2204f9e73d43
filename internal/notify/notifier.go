// Package notify formats run outcomes into human-readable notifications and
// hands them to the notification transport.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

// Transport publishes one notification to the outbound channel.
type Transport interface {
	Publish(ctx context.Context, n models.Notification) error
}

// Notifier sends notifications on a best-effort basis.
type Notifier struct {
	transport Transport
	log       zerolog.Logger
}

// New returns a Notifier publishing through t.
func New(t Transport, log zerolog.Logger) *Notifier {
	return &Notifier{
		transport: t,
		log:       log.With().Str("component", "notify").Logger(),
	}
}

// Send publishes every notification in order. A failed publish is logged as
// NotificationFailed and does not stop the rest. Send reports how many were
// delivered; it never returns an error.
func (n *Notifier) Send(ctx context.Context, notes ...models.Notification) int {
	sent := 0
	for _, note := range notes {
		if err := n.transport.Publish(ctx, note); err != nil {
			err = models.NewError(models.KindNotificationFailed, "publish", err)
			n.log.Error().Err(err).Str("subject", note.Subject).Str("severity", string(note.Severity)).Msg("notification not sent")
			continue
		}
		n.log.Info().Str("subject", note.Subject).Str("severity", string(note.Severity)).Msg("notification sent")
		sent++
	}
	return sent
}
