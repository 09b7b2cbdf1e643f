package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fortuna/services/scorebot/pkg/models"
)

type mockHub struct {
	unregistered []*Client
}

func (m *mockHub) Unregister(c *Client) {
	m.unregistered = append(m.unregistered, c)
}

func update(gameID string, kind models.AnnouncementKind) models.AnnouncementUpdate {
	return models.AnnouncementUpdate{
		LeagueKey:    "college_football_fbs",
		Announcement: models.Announcement{GameID: gameID, Kind: kind},
	}
}

func TestClient_MatchesFilter(t *testing.T) {
	tests := []struct {
		name     string
		filter   models.SubscriptionFilter
		update   models.AnnouncementUpdate
		expected bool
	}{
		{
			name:     "empty filter matches everything",
			update:   update("g1", models.KindScore),
			expected: true,
		},
		{
			name:     "game filter matches",
			filter:   models.SubscriptionFilter{Games: []string{"g1", "g2"}},
			update:   update("g1", models.KindScore),
			expected: true,
		},
		{
			name:     "game filter doesn't match",
			filter:   models.SubscriptionFilter{Games: []string{"g2"}},
			update:   update("g1", models.KindScore),
			expected: false,
		},
		{
			name:     "kind filter matches",
			filter:   models.SubscriptionFilter{Kinds: []string{"game_started", "game_ended"}},
			update:   update("g1", models.KindGameEnded),
			expected: true,
		},
		{
			name:     "kind filter doesn't match",
			filter:   models.SubscriptionFilter{Kinds: []string{"game_ended"}},
			update:   update("g1", models.KindScore),
			expected: false,
		},
		{
			name:     "both filters must match",
			filter:   models.SubscriptionFilter{Games: []string{"g1"}, Kinds: []string{"halftime"}},
			update:   update("g1", models.KindScore),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient("test-client", nil, &mockHub{})
			c.SetFilter(tt.filter)
			assert.Equal(t, tt.expected, c.MatchesFilter(tt.update))
		})
	}
}

func TestClient_TrySend(t *testing.T) {
	c := NewClient("test-client", nil, &mockHub{})

	for i := 0; i < sendBufferSize; i++ {
		assert.True(t, c.TrySend(models.ServerMessage{Type: models.MessageTypeAnnouncement}))
	}
	assert.False(t, c.TrySend(models.ServerMessage{Type: models.MessageTypeAnnouncement}), "full buffer must not block")
}

func TestClient_HandleMessages(t *testing.T) {
	c := NewClient("test-client", nil, &mockHub{})

	c.handleClientMessage(models.ClientMessage{
		Type:    models.MessageTypeSubscribe,
		Payload: map[string]interface{}{"games": []interface{}{"g9"}},
	})
	assert.Equal(t, []string{"g9"}, c.GetFilter().Games)

	c.handleClientMessage(models.ClientMessage{Type: models.MessageTypeUnsubscribe})
	assert.Empty(t, c.GetFilter().Games)

	c.handleClientMessage(models.ClientMessage{Type: models.MessageTypeHeartbeat})
	msg := <-c.Send
	assert.Equal(t, models.MessageTypeHeartbeat, msg.Type)

	c.handleClientMessage(models.ClientMessage{Type: "bogus"})
	msg = <-c.Send
	assert.Equal(t, models.MessageTypeError, msg.Type)
	assert.Equal(t, "unknown_message_type", msg.Payload.(models.ErrorMessage).Code)
}

func TestClient_NewClientReceivesEverything(t *testing.T) {
	c := NewClient("test-client", nil, &mockHub{})

	for _, kind := range []models.AnnouncementKind{models.KindScore, models.KindGameStarted, models.KindGameEnded} {
		update := models.AnnouncementUpdate{Announcement: models.Announcement{Kind: kind, GameID: "401"}}
		assert.True(t, c.MatchesFilter(update), string(kind))
	}
	assert.Empty(t, c.GetFilter().Games)
	assert.Empty(t, c.GetFilter().Kinds)
}
