package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/services/scorebot/pkg/models"
)

// maxStreamLen caps the stream; trimming is approximate
const maxStreamLen = 10000

// StreamPublisher publishes announcements to a Redis stream
type StreamPublisher struct {
	client *redis.Client
	stream string
}

// NewStreamPublisher creates a publisher for one league's stream
func NewStreamPublisher(client *redis.Client, league string) *StreamPublisher {
	return &StreamPublisher{
		client: client,
		stream: StreamKey(league),
	}
}

// StreamKey is the stream announcements for a league are written to
func StreamKey(league string) string {
	return fmt.Sprintf("scores.announcements.%s", league)
}

func (p *StreamPublisher) Name() string {
	return "redis-stream"
}

// Notify publishes one announcement with its rendered text
func (p *StreamPublisher) Notify(ctx context.Context, a models.Announcement, text string) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshaling announcement: %w", err)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":    string(data),
			"game_id": a.GameID,
			"kind":    string(a.Kind),
			"text":    text,
		},
	}).Err()
}
