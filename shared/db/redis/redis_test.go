package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisDB) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisDBFromClient(client)
}

func TestRedisDB_Connect(t *testing.T) {
	mr := miniredis.RunT(t)

	database := NewRedisDB(&Config{Host: mr.Host(), Port: mr.Port()})
	require.NoError(t, database.Connect(context.Background()))
	defer database.Close()

	assert.NotNil(t, database.Client())
	assert.NoError(t, database.Ping(context.Background()))
	assert.Error(t, database.Connect(context.Background()), "second Connect should fail")
}

func TestRedisDB_ConnectUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	database := NewRedisDB(&Config{Host: host, Port: port})
	err := database.Connect(context.Background())
	assert.Error(t, err)
	assert.Nil(t, database.Client())
}

func TestRedisDB_DefaultConfig(t *testing.T) {
	database := NewRedisDB(nil)
	assert.Equal(t, "localhost", database.cfg.Host)
	assert.Equal(t, "6379", database.cfg.Port)
}

func TestRedisDB_CloseAndPing(t *testing.T) {
	database := NewRedisDB(nil)
	assert.NoError(t, database.Close(), "closing an unconnected client is a no-op")
	assert.Error(t, database.Ping(context.Background()))
}

func TestRunInTransaction_Commit(t *testing.T) {
	mr, database := setupTestRedis(t)
	ctx := context.Background()

	err := database.RunInTransaction(ctx, func(txCtx context.Context) error {
		_, ok := GetPipeline(txCtx)
		assert.True(t, ok, "expected pipeline in context")

		cmd := GetCmdable(txCtx, database.Client())
		if err := cmd.Set(txCtx, "a", "1", 0).Err(); err != nil {
			return err
		}
		return cmd.Set(txCtx, "b", "2", 0).Err()
	})
	require.NoError(t, err)

	got, err := mr.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
	got, err = mr.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestRunInTransaction_Discard(t *testing.T) {
	mr, database := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("a", "old"))

	boom := errors.New("boom")
	err := database.RunInTransaction(ctx, func(txCtx context.Context) error {
		cmd := GetCmdable(txCtx, database.Client())
		_ = cmd.Set(txCtx, "a", "new", 0).Err()
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := mr.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "old", got, "queued writes must not be applied")
}

func TestRunInTransaction_Nested(t *testing.T) {
	_, database := setupTestRedis(t)
	ctx := context.Background()

	err := database.RunInTransaction(ctx, func(outerCtx context.Context) error {
		return database.RunInTransaction(outerCtx, func(innerCtx context.Context) error {
			outer, _ := GetPipeline(outerCtx)
			inner, _ := GetPipeline(innerCtx)
			assert.Same(t, outer, inner, "nested transaction should reuse the outer pipeline")
			return nil
		})
	})
	require.NoError(t, err)
}

func TestGetCmdable_WithoutTransaction(t *testing.T) {
	_, database := setupTestRedis(t)
	cmd := GetCmdable(context.Background(), database.Client())
	assert.Equal(t, database.Client(), cmd)
}
