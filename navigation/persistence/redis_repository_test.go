package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dfryer1193/campusnav/navigation/domain"
	rdb "github.com/dfryer1193/campusnav/shared/db/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *rdb.RedisDB) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, rdb.NewRedisDBFromClient(client)
}

func TestRedisImageRepository_ReplaceAll(t *testing.T) {
	_, database := setupTestRedis(t)
	repo := NewRedisImageRepository(database)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, []*domain.Image{
		{Name: "old.png", Payload: "old"},
	}))
	require.NoError(t, repo.ReplaceAll(ctx, []*domain.Image{
		{Name: "UK3-left.png", Payload: "bibabob"},
		{Name: "UK3-right.png", Payload: "pipupap"},
	}))

	imgs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"UK3-left.png":  "bibabob",
		"UK3-right.png": "pipupap",
	}, imagePayloads(imgs))
}

func TestRedisImageRepository_ReplaceAllEmpty(t *testing.T) {
	mr, database := setupTestRedis(t)
	repo := NewRedisImageRepository(database)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, []*domain.Image{{Name: "a", Payload: "p"}}))
	require.NoError(t, repo.ReplaceAll(ctx, nil))

	assert.False(t, mr.Exists(imagesKey))
	imgs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, imgs)
	assert.Empty(t, imgs)
}

func TestRedisImageRepository_EmptyName(t *testing.T) {
	_, database := setupTestRedis(t)
	repo := NewRedisImageRepository(database)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, []*domain.Image{{Name: "kept", Payload: "p"}}))

	err := repo.ReplaceAll(ctx, []*domain.Image{{Name: "", Payload: "p"}})
	assert.ErrorIs(t, err, domain.ErrPersistence)

	imgs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"kept": "p"}, imagePayloads(imgs))
}

func TestRedisClassroomRepository_ReplaceAll(t *testing.T) {
	_, database := setupTestRedis(t)
	repo := NewRedisClassroomRepository(database)
	ctx := context.Background()

	want := []*domain.Classroom{
		{Name: "R2", Description: "second", ImageRefs: []string{"x", "y", "x"}},
		{Name: "R1", Description: "first", ImageRefs: []string{}},
	}

	require.NoError(t, repo.ReplaceAll(ctx, []*domain.Classroom{{Name: "stale", Description: "d"}}))
	require.NoError(t, repo.ReplaceAll(ctx, want))

	got, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisClassroomRepository_EmptyName(t *testing.T) {
	_, database := setupTestRedis(t)
	repo := NewRedisClassroomRepository(database)

	err := repo.ReplaceAll(context.Background(), []*domain.Classroom{{Name: ""}})
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestRedisClassroomRepository_CorruptDocument(t *testing.T) {
	mr, database := setupTestRedis(t)
	repo := NewRedisClassroomRepository(database)

	_, err := mr.Push(classroomsKey, "not json")
	require.NoError(t, err)

	_, err = repo.ListAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestRedisRepositories_SharedTransaction(t *testing.T) {
	_, database := setupTestRedis(t)
	images := NewRedisImageRepository(database)
	classrooms := NewRedisClassroomRepository(database)
	ctx := context.Background()

	require.NoError(t, images.ReplaceAll(ctx, []*domain.Image{{Name: "kept", Payload: "p"}}))
	require.NoError(t, classrooms.ReplaceAll(ctx, []*domain.Classroom{{Name: "kept", Description: "d"}}))

	abort := errors.New("abort")
	err := database.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := images.ReplaceAll(txCtx, []*domain.Image{{Name: "staged", Payload: "s"}}); err != nil {
			return err
		}
		if err := classrooms.ReplaceAll(txCtx, []*domain.Classroom{{Name: "staged", Description: "d"}}); err != nil {
			return err
		}
		return abort
	})
	require.ErrorIs(t, err, abort)

	imgs, err := images.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"kept": "p"}, imagePayloads(imgs))

	rooms, err := classrooms.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "kept", rooms[0].Name)
}

func TestRedisRepositories_Disconnected(t *testing.T) {
	database := rdb.NewRedisDB(nil)
	ctx := context.Background()

	_, err := NewRedisImageRepository(database).ListAll(ctx)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	_, err = NewRedisClassroomRepository(database).ListAll(ctx)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	err = NewRedisClassroomRepository(database).ReplaceAll(ctx, []*domain.Classroom{{Name: "R1"}})
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
