package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T, ttl time.Duration) (*RedisConversationRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisConversationRepository(rdb, ttl), mr
}

func TestAddAndLoadHistory(t *testing.T) {
	ctx := context.Background()
	r, mr := newRepo(t, 30*time.Minute)

	require.NoError(t, r.AddMessage(ctx, "s1", schema.UserMessage("What is Go?")))
	require.NoError(t, r.AddMessage(ctx, "s1", schema.AssistantMessage("A language.", nil)))

	h, err := r.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", h.SessionID)
	require.Len(t, h.Messages, 2)
	assert.Equal(t, schema.User, h.Messages[0].Role)
	assert.Equal(t, "A language.", h.Messages[1].Content)

	n, err := r.GetMessageCount(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, 30*time.Minute, mr.TTL(r.sessionKey("s1")))
}

func TestLoadHistoryUnknownSession(t *testing.T) {
	r, _ := newRepo(t, 0)

	h, err := r.LoadHistory(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, h.Messages)
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t, 0)
	require.NoError(t, r.AddMessage(ctx, "s1", schema.UserMessage("hi")))

	require.NoError(t, r.ClearHistory(ctx, "s1"))

	n, err := r.GetMessageCount(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t, 0)
	require.NoError(t, r.AddMessage(ctx, "a", schema.UserMessage("one")))
	require.NoError(t, r.AddMessage(ctx, "b", schema.UserMessage("two")))

	h, err := r.LoadHistory(ctx, "a")
	require.NoError(t, err)
	require.Len(t, h.Messages, 1)
	assert.Equal(t, "one", h.Messages[0].Content)
}

func TestRedisDownIsWrapped(t *testing.T) {
	r, mr := newRepo(t, 0)
	mr.Close()

	err := r.AddMessage(context.Background(), "s1", schema.UserMessage("hi"))
	assert.Error(t, err)
	_, err = r.LoadHistory(context.Background(), "s1")
	assert.Error(t, err)
}

func TestCorruptEntryFailsLoad(t *testing.T) {
	r, mr := newRepo(t, 0)
	_, err := mr.RPush(r.sessionKey("s1"), "not json")
	require.NoError(t, err)

	_, err = r.LoadHistory(context.Background(), "s1")
	assert.Error(t, err)
}
