package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/services/scorebot/pkg/models"
)

func newWriter(t *testing.T) (*RedisWriter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisWriter(client, "college_football_fbs"), mr
}

func TestWriteSnapshot(t *testing.T) {
	w, mr := newWriter(t)
	ctx := context.Background()

	snap := models.NewSnapshot([]models.Game{
		{GameID: "g2", Phase: models.PhaseInProgress, Home: models.Team{Name: "Ohio State", Score: 7}},
		{GameID: "g1", Phase: models.PhaseFinal, Home: models.Team{Name: "Akron", Score: 28}},
	}, time.Now())

	require.NoError(t, w.WriteSnapshot(ctx, snap))

	ids, err := w.ReadGameIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"g2", "g1"}, ids)

	game, err := w.ReadGame(ctx, "g2")
	require.NoError(t, err)
	assert.Equal(t, "Ohio State", game.Home.Name)
	assert.Equal(t, 7, game.Home.Score)

	assert.Equal(t, LiveGameTTL, mr.TTL("scores:college_football_fbs:game:g2"))
	assert.Equal(t, OtherGameTTL, mr.TTL("scores:college_football_fbs:game:g1"))
	assert.Equal(t, GamesListTTL, mr.TTL("scores:college_football_fbs:games"))

	// a later snapshot replaces the list
	require.NoError(t, w.WriteSnapshot(ctx, models.NewSnapshot([]models.Game{{GameID: "g3"}}, time.Now())))
	ids, err = w.ReadGameIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"g3"}, ids)

	// empty snapshot clears it
	require.NoError(t, w.WriteSnapshot(ctx, models.EmptySnapshot()))
	ids, err = w.ReadGameIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReadGame_Missing(t *testing.T) {
	w, _ := newWriter(t)
	_, err := w.ReadGame(context.Background(), "nope")
	assert.ErrorIs(t, err, redis.Nil)
}
