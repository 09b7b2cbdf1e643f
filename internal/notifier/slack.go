package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"github.com/fortuna/services/scorebot/internal/render"
	"github.com/fortuna/services/scorebot/pkg/models"
)

// SlackNotifier sends announcements to Slack via webhook
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	renderer   *render.Renderer
}

// NewSlackNotifier creates a new Slack notifier. Slack mrkdwn shares the
// Markdown style, so announcements are rendered again for it.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		renderer: render.New(render.Markdown),
	}
}

func (s *SlackNotifier) Name() string {
	return "slack"
}

// Notify implements Sink
func (s *SlackNotifier) Notify(ctx context.Context, a models.Announcement, _ string) error {
	return s.post(ctx, s.formatMessage(a))
}

// formatMessage prefixes an emoji for the announcement kind
func (s *SlackNotifier) formatMessage(a models.Announcement) string {
	return fmt.Sprintf("%s %s", emojiForKind(a.Kind), s.renderer.Announcement(a))
}

// SendStartupNotification announces that polling has started
func (s *SlackNotifier) SendStartupNotification(ctx context.Context, league string) error {
	message := fmt.Sprintf(
		"*Scorebot active*\nWatching the %s scoreboard\n_Started: %s_",
		league,
		time.Now().Format("2006-01-02 15:04:05 MST"),
	)
	return s.post(ctx, message)
}

func (s *SlackNotifier) post(ctx context.Context, text string) error {
	if s.webhookURL == "" {
		return fmt.Errorf("no webhook URL configured")
	}
	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.httpClient, msg); err != nil {
		return fmt.Errorf("failed to send Slack message: %w", err)
	}
	return nil
}

func emojiForKind(kind models.AnnouncementKind) string {
	switch kind {
	case models.KindGameStarted:
		return ":football:"
	case models.KindGameEnded:
		return ":checkered_flag:"
	case models.KindHalftime, models.KindSecondHalf:
		return ":stopwatch:"
	case models.KindScore:
		return ":rotating_light:"
	default:
		return ":bar_chart:"
	}
}
