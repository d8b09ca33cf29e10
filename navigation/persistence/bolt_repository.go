package persistence

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/dfryer1193/campusnav/navigation/domain"
	"github.com/dfryer1193/campusnav/shared/db/bolt"
	"go.etcd.io/bbolt"
)

// Buckets the bolt repositories store their records in
const (
	ImagesBucket     = "images"
	ClassroomsBucket = "classrooms"
)

var (
	_ domain.ImageRepository     = (*BoltImageRepository)(nil)
	_ domain.ClassroomRepository = (*BoltClassroomRepository)(nil)
)

// recreateBucket empties a bucket by dropping it, which also resets its sequence
func recreateBucket(tx *bbolt.Tx, name string) (*bbolt.Bucket, error) {
	if err := tx.DeleteBucket([]byte(name)); err != nil && err != bbolt.ErrBucketNotFound {
		return nil, err
	}
	return tx.CreateBucket([]byte(name))
}

func bucket(tx *bbolt.Tx, name string) (*bbolt.Bucket, error) {
	b := tx.Bucket([]byte(name))
	if b == nil {
		return nil, fmt.Errorf("bucket %s does not exist", name)
	}
	return b, nil
}

// BoltImageRepository stores image name -> payload in the images bucket
type BoltImageRepository struct {
	db *bolt.BoltDB
}

func NewBoltImageRepository(database *bolt.BoltDB) *BoltImageRepository {
	return &BoltImageRepository{db: database}
}

func (r *BoltImageRepository) ReplaceAll(ctx context.Context, imgs []*domain.Image) error {
	for i, img := range imgs {
		if img == nil {
			return fmt.Errorf("%w: image %d is nil", domain.ErrPersistence, i)
		}
		if img.Name == "" {
			return fmt.Errorf("%w: image %d has an empty name", domain.ErrPersistence, i)
		}
	}

	err := r.db.Update(ctx, func(tx *bbolt.Tx) error {
		b, err := recreateBucket(tx, ImagesBucket)
		if err != nil {
			return err
		}
		for _, img := range imgs {
			key := []byte(img.Name)
			if b.Get(key) != nil {
				return fmt.Errorf("duplicate image %q", img.Name)
			}
			if err := b.Put(key, []byte(img.Payload)); err != nil {
				return fmt.Errorf("failed to insert image %q: %w", img.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: failed to replace images: %w", domain.ErrPersistence, err)
	}
	return nil
}

// ListAll returns every image ordered by name
func (r *BoltImageRepository) ListAll(ctx context.Context) ([]*domain.Image, error) {
	imgs := []*domain.Image{}
	err := r.db.View(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, ImagesBucket)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			imgs = append(imgs, &domain.Image{Name: string(k), Payload: string(v)})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list images: %w", domain.ErrPersistence, err)
	}
	return imgs, nil
}

// BoltClassroomRepository stores classroom documents keyed by a big-endian
// sequence number, so that key order is insertion order
type BoltClassroomRepository struct {
	db *bolt.BoltDB
}

func NewBoltClassroomRepository(database *bolt.BoltDB) *BoltClassroomRepository {
	return &BoltClassroomRepository{db: database}
}

func (r *BoltClassroomRepository) ReplaceAll(ctx context.Context, classrooms []*domain.Classroom) error {
	docs := make([][]byte, 0, len(classrooms))
	seen := make(map[string]struct{}, len(classrooms))
	for i, c := range classrooms {
		if c == nil {
			return fmt.Errorf("%w: classroom %d is nil", domain.ErrPersistence, i)
		}
		if c.Name == "" {
			return fmt.Errorf("%w: classroom %d has an empty name", domain.ErrPersistence, i)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: duplicate classroom %q", domain.ErrPersistence, c.Name)
		}
		seen[c.Name] = struct{}{}

		encoded, err := encodeClassroom(c)
		if err != nil {
			return err
		}
		docs = append(docs, encoded)
	}

	err := r.db.Update(ctx, func(tx *bbolt.Tx) error {
		b, err := recreateBucket(tx, ClassroomsBucket)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)
			if err := b.Put(key, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: failed to replace classrooms: %w", domain.ErrPersistence, err)
	}
	return nil
}

// ListAll returns every classroom in insertion order
func (r *BoltClassroomRepository) ListAll(ctx context.Context) ([]*domain.Classroom, error) {
	classrooms := []*domain.Classroom{}
	err := r.db.View(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, ClassroomsBucket)
		if err != nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			c, err := decodeClassroom(v)
			if err != nil {
				return err
			}
			classrooms = append(classrooms, c)
			return nil
		})
	})
	if err != nil {
		return nil, asPersistenceError(fmt.Errorf("failed to list classrooms: %w", err))
	}
	return classrooms, nil
}
