package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/services/scorebot/internal/chat"
	"github.com/fortuna/services/scorebot/internal/logging"
)

func TestNewBot_DisabledWithoutToken(t *testing.T) {
	bot, err := NewBot("", true)
	require.NoError(t, err)
	assert.True(t, bot.Disabled())
	assert.Equal(t, tgbotapi.ModeMarkdown, bot.parseMode)

	// disabled mode logs instead of sending, even for non-numeric targets
	assert.NoError(t, bot.SendMessage(context.Background(), "-100123", "Game Started: ..."))
	assert.NoError(t, bot.SendMessage(context.Background(), "#cfb", "hello"))
}

func TestListen_DisabledReturnsOnCancel(t *testing.T) {
	bot, err := NewBot("", false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		bot.Listen(ctx, chat.NewDispatcher("/"))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

func TestToCommand(t *testing.T) {
	d := chat.NewDispatcher("/")

	msg := &tgbotapi.Message{
		Text: "/score@ScoreBot ohio state",
		Chat: &tgbotapi.Chat{ID: -100500},
		From: &tgbotapi.User{ID: 42, UserName: "buckeyefan", FirstName: "Pat"},
	}
	cmd, ok := toCommand(d, msg)
	require.True(t, ok)
	assert.Equal(t, "score", cmd.Name)
	assert.Equal(t, []string{"ohio", "state"}, cmd.Args)
	assert.Equal(t, "-100500", cmd.ReplyTo)
	assert.Equal(t, "42", cmd.Sender)
	assert.Equal(t, "buckeyefan", cmd.SenderName)

	msg.From = &tgbotapi.User{ID: 7, FirstName: "Sam"}
	cmd, ok = toCommand(d, msg)
	require.True(t, ok)
	assert.Equal(t, "Sam", cmd.SenderName)

	msg.From = nil
	cmd, ok = toCommand(d, msg)
	require.True(t, ok)
	assert.Equal(t, "-100500", cmd.Sender)

	_, ok = toCommand(d, &tgbotapi.Message{Text: "just chatting", Chat: &tgbotapi.Chat{ID: 1}})
	assert.False(t, ok)

	_, ok = toCommand(d, nil)
	assert.False(t, ok)
}

// fakeTelegram records sendMessage calls against a stub Bot API
type fakeTelegram struct {
	mu    sync.Mutex
	sends []map[string]string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Score","username":"ScoreBot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.sends = append(f.sends, map[string]string{
			"chat_id":    r.PostForm.Get("chat_id"),
			"text":       r.PostForm.Get("text"),
			"parse_mode": r.PostForm.Get("parse_mode"),
		})
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"channel"}}}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestBot(t *testing.T) (*Bot, *fakeTelegram) {
	t.Helper()
	fake := &fakeTelegram{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	api, err := tgbotapi.NewBotAPIWithClient("test-token", server.URL+"/bot%s/%s", server.Client())
	require.NoError(t, err)

	return &Bot{api: api, parseMode: tgbotapi.ModeMarkdown, logger: logging.WithComponent("telegram")}, fake
}

func TestSendMessage_Targets(t *testing.T) {
	tests := []struct {
		name   string
		target string
		chatID string
	}{
		{name: "numeric group id", target: "-1001234567890", chatID: "-1001234567890"},
		{name: "private chat id", target: "42", chatID: "42"},
		{name: "channel username", target: "@cfbscores", chatID: "@cfbscores"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot, fake := newTestBot(t)

			require.NoError(t, bot.SendMessage(context.Background(), tt.target, "Game Started: *Michigan* 0 @ *Ohio State* 0"))

			require.Len(t, fake.sends, 1)
			assert.Equal(t, tt.chatID, fake.sends[0]["chat_id"])
			assert.Equal(t, "Game Started: *Michigan* 0 @ *Ohio State* 0", fake.sends[0]["text"])
			assert.Equal(t, tgbotapi.ModeMarkdown, fake.sends[0]["parse_mode"])
		})
	}
}

func TestSendMessage_InvalidTarget(t *testing.T) {
	bot, fake := newTestBot(t)

	err := bot.SendMessage(context.Background(), "cfbscores", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid chat target")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, bot.SendMessage(ctx, "@cfbscores", "hello"), context.Canceled)

	assert.Empty(t, fake.sends)
}
