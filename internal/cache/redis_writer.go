package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/services/scorebot/pkg/models"
)

// TTL constants
const (
	GamesListTTL = 24 * time.Hour
	LiveGameTTL  = 2 * time.Hour
	OtherGameTTL = 6 * time.Hour
)

// RedisWriter mirrors the published snapshot into Redis for other services.
// Nothing reads it back at startup.
type RedisWriter struct {
	client *redis.Client
	league string
}

// NewRedisWriter creates a new Redis writer for one league
func NewRedisWriter(client *redis.Client, league string) *RedisWriter {
	return &RedisWriter{
		client: client,
		league: league,
	}
}

func (w *RedisWriter) gameKey(gameID string) string {
	return fmt.Sprintf("scores:%s:game:%s", w.league, gameID)
}

func (w *RedisWriter) listKey() string {
	return fmt.Sprintf("scores:%s:games", w.league)
}

// WriteSnapshot stores every game and the id list in provider order
func (w *RedisWriter) WriteSnapshot(ctx context.Context, snap *models.Snapshot) error {
	pipe := w.client.Pipeline()

	games := snap.Games()
	ids := make([]interface{}, 0, len(games))
	for i := range games {
		game := &games[i]
		data, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("marshaling game %s: %w", game.GameID, err)
		}
		pipe.Set(ctx, w.gameKey(game.GameID), data, ttlForGame(game))
		ids = append(ids, game.GameID)
	}

	key := w.listKey()
	pipe.Del(ctx, key) // Clear old list
	if len(ids) > 0 {
		pipe.RPush(ctx, key, ids...)
	}
	pipe.Expire(ctx, key, GamesListTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// ReadGame retrieves one mirrored game
func (w *RedisWriter) ReadGame(ctx context.Context, gameID string) (*models.Game, error) {
	data, err := w.client.Get(ctx, w.gameKey(gameID)).Result()
	if err != nil {
		return nil, err
	}

	var game models.Game
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, fmt.Errorf("unmarshaling game: %w", err)
	}
	return &game, nil
}

// ReadGameIDs retrieves the mirrored id list
func (w *RedisWriter) ReadGameIDs(ctx context.Context) ([]string, error) {
	return w.client.LRange(ctx, w.listKey(), 0, -1).Result()
}

// ttlForGame keeps live games short-lived so a stalled poller ages them out
func ttlForGame(game *models.Game) time.Duration {
	if game.InProgress() {
		return LiveGameTTL
	}
	return OtherGameTTL
}
