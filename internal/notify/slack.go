// Package notify delivers generated reports to Slack.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
)

// SlackNotifier posts Socio Reports into a single channel. A nil notifier is
// safe to call, so callers can wire it unconditionally.
type SlackNotifier struct {
	api     *slack.Client
	channel string
}

// NewSlackNotifier builds a notifier for the given bot token and channel.
// Returns nil when the token or channel is empty.
func NewSlackNotifier(token, channel string) *SlackNotifier {
	if token == "" || channel == "" {
		return nil
	}
	return &SlackNotifier{
		api:     slack.New(token),
		channel: channel,
	}
}

// PublishReport posts the report as a single message with the title bolded.
func (n *SlackNotifier) PublishReport(title, body string) error {
	if n == nil {
		return nil
	}
	text := fmt.Sprintf("*%s*\n%s", title, body)
	_, ts, err := n.api.PostMessageContext(context.Background(), n.channel,
		slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	slog.Info("Notify: report posted to Slack", "channel", n.channel, "ts", ts)
	return nil
}
