package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/services/scorebot/internal/client"
	"github.com/fortuna/services/scorebot/pkg/models"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub("college_football_fbs")
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h
}

func receive(t *testing.T, c *client.Client) models.ServerMessage {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return models.ServerMessage{}
	}
}

func TestHub_NotifyFansOutToMatchingClients(t *testing.T) {
	h := startHub(t)

	all := client.NewClient("all", nil, h)
	onlyG2 := client.NewClient("only-g2", nil, h)
	onlyG2.SetFilter(models.SubscriptionFilter{Games: []string{"g2"}})

	h.Register(all)
	h.Register(onlyG2)
	require.Eventually(t, func() bool { return h.GetClientCount() == 2 }, time.Second, 10*time.Millisecond)

	ann := models.Announcement{Kind: models.KindScore, GameID: "g1"}
	require.NoError(t, h.Notify(context.Background(), ann, "MICH 7 @ OSU 0 - Michigan touchdown"))

	msg := receive(t, all)
	assert.Equal(t, models.MessageTypeAnnouncement, msg.Type)
	update := msg.Payload.(models.AnnouncementUpdate)
	assert.Equal(t, "college_football_fbs", update.LeagueKey)
	assert.Equal(t, "g1", update.Announcement.GameID)
	assert.Equal(t, "MICH 7 @ OSU 0 - Michigan touchdown", update.Text)

	select {
	case <-onlyG2.Send:
		t.Fatal("filtered client should not receive g1")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := startHub(t)

	c := client.NewClient("c1", nil, h)
	h.Register(c)
	require.Eventually(t, func() bool { return h.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)

	h.Unregister(c)
	require.Eventually(t, func() bool { return h.GetClientCount() == 0 }, time.Second, 10*time.Millisecond)

	_, ok := <-c.Send
	assert.False(t, ok)

	metrics := h.GetMetrics()
	assert.Equal(t, int64(1), metrics["total_connections"])
	assert.Equal(t, 0, metrics["active_clients"])
}

func TestHub_BroadcastDropsWhenFull(t *testing.T) {
	// not running, so nothing drains the buffer
	h := NewHub("college_football_fbs")
	for i := 0; i < broadcastBufferSize+3; i++ {
		h.Broadcast(models.AnnouncementUpdate{})
	}
	assert.Equal(t, int64(3), h.GetMetrics()["dropped_broadcasts"])
	assert.Equal(t, "websocket", h.Name())
}

func TestHub_RegisterAfterStopDoesNotBlock(t *testing.T) {
	h := NewHub("college_football_fbs")
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := client.NewClient("late", nil, h)
	h.Register(c)
	h.Unregister(c)
	assert.Equal(t, 0, h.GetClientCount())
}
