package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/buildgate/pkg/domain/interfaces"
	"github.com/m-mizutani/buildgate/pkg/domain/model"
	"github.com/m-mizutani/buildgate/pkg/domain/types"
)

type slackNotifier struct {
	webhookURL string
}

// NewSlack creates a Notifier posting to a Slack incoming webhook
func NewSlack(webhookURL string) interfaces.Notifier {
	return &slackNotifier{webhookURL: webhookURL}
}

// NotifyRelease posts a summary of a published release
func (n *slackNotifier) NotifyRelease(ctx context.Context, report *model.RunReport) error {
	if report.Release == nil {
		return nil
	}

	text := fmt.Sprintf("%s published release `%s` (%s): %s",
		types.AppName,
		report.Release.TagName,
		report.Decision.Reason,
		report.Release.HTMLURL,
	)

	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack notification",
			goerr.V("tag", report.Release.TagName),
		)
	}

	return nil
}

// NewNop returns a Notifier that does nothing, used when no webhook is configured
func NewNop() interfaces.Notifier {
	return &nopNotifier{}
}

type nopNotifier struct{}

func (n *nopNotifier) NotifyRelease(ctx context.Context, report *model.RunReport) error {
	return nil
}
