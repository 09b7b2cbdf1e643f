package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/services/scorebot/internal/logging"
	"github.com/fortuna/services/scorebot/internal/render"
	"github.com/fortuna/services/scorebot/pkg/contracts"
	"github.com/fortuna/services/scorebot/pkg/models"
)

// Sink receives every rendered announcement
type Sink interface {
	Name() string
	Notify(ctx context.Context, a models.Announcement, text string) error
}

// Announcer renders announcements once and fans them out to sinks.
// A failing sink is logged and never blocks the others.
type Announcer struct {
	renderer *render.Renderer
	sinks    []Sink
	logger   *logrus.Entry
}

// NewAnnouncer creates an announcer
func NewAnnouncer(renderer *render.Renderer, sinks ...Sink) *Announcer {
	return &Announcer{
		renderer: renderer,
		sinks:    sinks,
		logger:   logging.WithComponent("announcer"),
	}
}

// AddSink registers another sink
func (a *Announcer) AddSink(s Sink) {
	a.sinks = append(a.sinks, s)
}

// Announce delivers each announcement to every sink, in order
func (a *Announcer) Announce(ctx context.Context, anns []models.Announcement) {
	for _, ann := range anns {
		text := a.renderer.Announcement(ann)
		a.logger.WithFields(logrus.Fields{
			"game_id": ann.GameID,
			"kind":    ann.Kind,
		}).Infof("Score announcement: %s", text)

		for _, sink := range a.sinks {
			if err := sink.Notify(ctx, ann, text); err != nil {
				a.logger.WithError(err).WithFields(logrus.Fields{
					"sink":    sink.Name(),
					"game_id": ann.GameID,
				}).Warn("Failed to deliver announcement")
			}
		}
	}
}

// ChatSink posts announcements to the live chat channels
type ChatSink struct {
	client   contracts.ChatClient
	channels []string
}

// NewChatSink creates a sink for the given channels
func NewChatSink(client contracts.ChatClient, channels []string) *ChatSink {
	return &ChatSink{client: client, channels: channels}
}

func (c *ChatSink) Name() string {
	return "chat"
}

// Notify sends text to every channel, continuing past failures
func (c *ChatSink) Notify(ctx context.Context, _ models.Announcement, text string) error {
	var errs []error
	for _, channel := range c.channels {
		if err := c.client.SendMessage(ctx, channel, text); err != nil {
			errs = append(errs, fmt.Errorf("channel %s: %w", channel, err))
		}
	}
	return errors.Join(errs...)
}

// OpsLog reports operational events to the log and the debug channel
type OpsLog struct {
	client  contracts.ChatClient
	channel string
	logger  *logrus.Entry
}

// NewOpsLog creates an ops reporter. An empty channel only logs.
func NewOpsLog(client contracts.ChatClient, channel string) *OpsLog {
	return &OpsLog{
		client:  client,
		channel: channel,
		logger:  logging.WithComponent("ops"),
	}
}

// Report logs msg and forwards it to the debug channel
func (o *OpsLog) Report(ctx context.Context, msg string) {
	o.logger.Info(msg)
	if o.channel == "" || o.client == nil {
		return
	}
	if err := o.client.SendMessage(ctx, o.channel, msg); err != nil {
		o.logger.WithError(err).Warn("Failed to send to debug channel")
	}
}
