package bolt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// DefaultPath is the default path for the bolt database file
	DefaultPath = "./navigation.bolt"

	openTimeout = 1 * time.Second
)

var ErrNotOpen = errors.New("bolt database not open")

// BoltDB wraps a bbolt.DB and creates the given buckets on Connect
type BoltDB struct {
	path    string
	buckets []string
	db      *bbolt.DB
}

func NewBoltDB(path string, buckets ...string) *BoltDB {
	if path == "" {
		path = DefaultPath
	}
	return &BoltDB{path: path, buckets: buckets}
}

// Path returns the database file path, DefaultPath when none was given
func (b *BoltDB) Path() string {
	return b.path
}

// Connect opens the database file and creates any missing bucket
func (b *BoltDB) Connect() error {
	if b.db != nil {
		return fmt.Errorf("database already connected")
	}

	db, err := bbolt.Open(b.path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range b.buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return err
	}

	b.db = db
	return nil
}

func (b *BoltDB) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// Ping verifies the database is open and readable
func (b *BoltDB) Ping(ctx context.Context) error {
	if b.db == nil {
		return ErrNotOpen
	}
	return b.db.View(func(*bbolt.Tx) error { return nil })
}

// txKey is the key type for storing a write transaction in context
type txKey struct{}

// WithTx returns a new context with the transaction attached
func WithTx(ctx context.Context, tx *bbolt.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTx retrieves the transaction from context if it exists
func GetTx(ctx context.Context) (*bbolt.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*bbolt.Tx)
	return tx, ok
}

// RunInTransaction runs fn inside one read-write transaction. A nested call
// reuses the outer transaction, so only the outermost call commits.
func (b *BoltDB) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := GetTx(ctx); ok {
		return fn(ctx)
	}
	if b.db == nil {
		return ErrNotOpen
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return fn(WithTx(ctx, tx))
	})
}

// Update runs fn with the transaction carried by ctx, or in a new
// read-write transaction when there is none.
func (b *BoltDB) Update(ctx context.Context, fn func(tx *bbolt.Tx) error) error {
	if tx, ok := GetTx(ctx); ok {
		return fn(tx)
	}
	if b.db == nil {
		return ErrNotOpen
	}
	return b.db.Update(fn)
}

// View runs fn with the transaction carried by ctx, or in a new read-only one
func (b *BoltDB) View(ctx context.Context, fn func(tx *bbolt.Tx) error) error {
	if tx, ok := GetTx(ctx); ok {
		return fn(tx)
	}
	if b.db == nil {
		return ErrNotOpen
	}
	return b.db.View(fn)
}
