package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/services/scorebot/internal/chat"
	"github.com/fortuna/services/scorebot/internal/logging"
	"github.com/fortuna/services/scorebot/pkg/contracts"
)

const updateTimeout = 60

// Bot is the Telegram chat adapter. It sends messages to chat ids or
// channel usernames and feeds incoming commands to a dispatcher.
type Bot struct {
	api       *tgbotapi.BotAPI
	parseMode string
	disabled  bool
	logger    *logrus.Entry
}

// NewBot creates a Telegram bot. If token is empty it returns a bot in
// disabled mode that logs messages instead of sending them.
func NewBot(token string, markdown bool) (*Bot, error) {
	logger := logging.WithComponent("telegram")

	parseMode := ""
	if markdown {
		parseMode = tgbotapi.ModeMarkdown
	}

	if token == "" {
		logger.Warn("No token provided, running in disabled mode (logging only)")
		return &Bot{disabled: true, parseMode: parseMode, logger: logger}, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	api.Debug = false

	logger.WithField("username", api.Self.UserName).Info("Authorized on Telegram")

	return &Bot{
		api:       api,
		parseMode: parseMode,
		logger:    logger,
	}, nil
}

// Disabled reports whether the bot only logs
func (b *Bot) Disabled() bool {
	return b.disabled
}

// SendMessage implements contracts.ChatClient. target is a numeric chat id
// or a public channel username such as "@cfbscores".
func (b *Bot) SendMessage(ctx context.Context, target string, text string) error {
	if b.disabled {
		b.logger.WithField("target", target).Infof("(disabled) %s", text)
		return nil
	}

	msg, err := newMessage(target, text)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg.ParseMode = b.parseMode

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

func newMessage(target, text string) (tgbotapi.MessageConfig, error) {
	if strings.HasPrefix(target, "@") {
		return tgbotapi.NewMessageToChannel(target, text), nil
	}
	chatID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("invalid chat target %q: %w", target, err)
	}
	return tgbotapi.NewMessage(chatID, text), nil
}

// Listen receives updates until ctx is cancelled and dispatches every
// command message. In disabled mode it just waits.
func (b *Bot) Listen(ctx context.Context, d *chat.Dispatcher) {
	if b.disabled {
		<-ctx.Done()
		return
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			cmd, ok := toCommand(d, update.Message)
			if !ok {
				continue
			}

			err := d.Dispatch(ctx, b, cmd)
			switch {
			case errors.Is(err, chat.ErrUnknownCommand):
				b.logger.WithField("command", cmd.Name).Debug("Ignoring unknown command")
			case err != nil:
				b.logger.WithError(err).WithField("command", cmd.Name).Warn("Command failed")
			}
		}
	}
}

// toCommand converts a Telegram message into a command. Group commands
// reply in the group; direct replies go to the sender's private chat.
func toCommand(d *chat.Dispatcher, message *tgbotapi.Message) (contracts.Command, bool) {
	if message == nil || message.Chat == nil {
		return contracts.Command{}, false
	}

	name, args, ok := d.ParseCommand(message.Text)
	if !ok {
		return contracts.Command{}, false
	}

	cmd := contracts.Command{
		Name:    name,
		Args:    args,
		ReplyTo: strconv.FormatInt(message.Chat.ID, 10),
	}
	if from := message.From; from != nil {
		cmd.Sender = strconv.FormatInt(from.ID, 10)
		cmd.SenderName = from.UserName
		if cmd.SenderName == "" {
			cmd.SenderName = from.FirstName
		}
	} else {
		cmd.Sender = cmd.ReplyTo
	}
	return cmd, true
}
