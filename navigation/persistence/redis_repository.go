package persistence

import (
	"context"
	"fmt"

	"github.com/dfryer1193/campusnav/navigation/domain"
	rdb "github.com/dfryer1193/campusnav/shared/db/redis"
	"github.com/redis/go-redis/v9"
)

// Keys of the two collections inside the navigation_data namespace
const (
	imagesKey     = "navigation_data:images"
	classroomsKey = "navigation_data:classrooms"
)

var (
	_ domain.ImageRepository     = (*RedisImageRepository)(nil)
	_ domain.ClassroomRepository = (*RedisClassroomRepository)(nil)
)

// RedisImageRepository keeps images in a single hash: image name -> payload
type RedisImageRepository struct {
	db *rdb.RedisDB
}

func NewRedisImageRepository(database *rdb.RedisDB) *RedisImageRepository {
	return &RedisImageRepository{db: database}
}

// ReplaceAll deletes the hash and writes imgs back within one MULTI/EXEC block
func (r *RedisImageRepository) ReplaceAll(ctx context.Context, imgs []*domain.Image) error {
	fields := make([]any, 0, 2*len(imgs))
	for i, img := range imgs {
		if img == nil {
			return fmt.Errorf("%w: image %d is nil", domain.ErrPersistence, i)
		}
		if img.Name == "" {
			return fmt.Errorf("%w: image %d has an empty name", domain.ErrPersistence, i)
		}
		fields = append(fields, img.Name, img.Payload)
	}

	err := r.db.RunInTransaction(ctx, func(txCtx context.Context) error {
		cmd := rdb.GetCmdable(txCtx, r.db.Client())
		cmd.Del(txCtx, imagesKey)
		if len(fields) > 0 {
			cmd.HSet(txCtx, imagesKey, fields...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: failed to replace images: %w", domain.ErrPersistence, err)
	}
	return nil
}

// ListAll returns every image; order is whatever the hash yields
func (r *RedisImageRepository) ListAll(ctx context.Context) ([]*domain.Image, error) {
	client := r.db.Client()
	if client == nil {
		return nil, fmt.Errorf("%w: redis not connected", domain.ErrPersistence)
	}

	values, err := client.HGetAll(ctx, imagesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list images: %w", domain.ErrPersistence, err)
	}

	imgs := make([]*domain.Image, 0, len(values))
	for name, payload := range values {
		imgs = append(imgs, &domain.Image{Name: name, Payload: payload})
	}
	return imgs, nil
}

// RedisClassroomRepository keeps classrooms as JSON documents in a list so that
// iteration follows insertion order
type RedisClassroomRepository struct {
	db *rdb.RedisDB
}

func NewRedisClassroomRepository(database *rdb.RedisDB) *RedisClassroomRepository {
	return &RedisClassroomRepository{db: database}
}

// ReplaceAll deletes the list and pushes classrooms back in order within one MULTI/EXEC block
func (r *RedisClassroomRepository) ReplaceAll(ctx context.Context, classrooms []*domain.Classroom) error {
	docs := make([]any, 0, len(classrooms))
	for i, c := range classrooms {
		if c == nil {
			return fmt.Errorf("%w: classroom %d is nil", domain.ErrPersistence, i)
		}
		if c.Name == "" {
			return fmt.Errorf("%w: classroom %d has an empty name", domain.ErrPersistence, i)
		}
		encoded, err := encodeClassroom(c)
		if err != nil {
			return err
		}
		docs = append(docs, string(encoded))
	}

	err := r.db.RunInTransaction(ctx, func(txCtx context.Context) error {
		cmd := rdb.GetCmdable(txCtx, r.db.Client())
		cmd.Del(txCtx, classroomsKey)
		if len(docs) > 0 {
			cmd.RPush(txCtx, classroomsKey, docs...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: failed to replace classrooms: %w", domain.ErrPersistence, err)
	}
	return nil
}

// ListAll returns every classroom in insertion order
func (r *RedisClassroomRepository) ListAll(ctx context.Context) ([]*domain.Classroom, error) {
	client := r.db.Client()
	if client == nil {
		return nil, fmt.Errorf("%w: redis not connected", domain.ErrPersistence)
	}

	docs, err := client.LRange(ctx, classroomsKey, 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("%w: failed to list classrooms: %w", domain.ErrPersistence, err)
	}

	classrooms := make([]*domain.Classroom, 0, len(docs))
	for _, raw := range docs {
		c, err := decodeClassroom([]byte(raw))
		if err != nil {
			return nil, err
		}
		classrooms = append(classrooms, c)
	}
	return classrooms, nil
}
