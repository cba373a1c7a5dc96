package rolesync

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Notifier delivers operational alerts raised by the syncer.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// SlackNotifier posts alerts to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
}

// NewSlackNotifier creates a SlackNotifier.
func NewSlackNotifier(webhookURL string) (*SlackNotifier, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("rolesync: webhook url is required")
	}
	return &SlackNotifier{webhookURL: webhookURL}, nil
}

// Notify posts the message to the webhook.
func (n *SlackNotifier) Notify(ctx context.Context, message string) error {
	msg := &slack.WebhookMessage{Text: message}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return fmt.Errorf("rolesync: post webhook: %w", err)
	}
	return nil
}
