package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dfryer1193/campusnav/navigation/domain"
	"github.com/dfryer1193/campusnav/shared/db"
)

var _ domain.ImageRepository = (*SQLiteImageRepository)(nil)

// SQLiteImageRepository implements domain.ImageRepository using SQL database (SQLite)
type SQLiteImageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new SQLiteImageRepository from a standard sql.DB
func NewImageRepository(sqlDB *sql.DB) *SQLiteImageRepository {
	return &SQLiteImageRepository{
		db: sqlDB,
	}
}

const deleteAllImagesQuery = `DELETE FROM images`

const insertImageQuery = `
	INSERT INTO images (name, payload)
	VALUES (?, ?)
`

// ReplaceAll drops every image and inserts imgs within a transaction.
// When ctx already carries a transaction the caller decides when to commit.
func (r *SQLiteImageRepository) ReplaceAll(ctx context.Context, imgs []*domain.Image) error {
	for i, img := range imgs {
		if img == nil {
			return fmt.Errorf("%w: image %d is nil", domain.ErrPersistence, i)
		}
		if img.Name == "" {
			return fmt.Errorf("%w: image %d has an empty name", domain.ErrPersistence, i)
		}
	}

	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)
		if _, err := executor.ExecContext(txCtx, deleteAllImagesQuery); err != nil {
			return fmt.Errorf("%w: failed to drop images: %w", domain.ErrPersistence, err)
		}

		for _, img := range imgs {
			if _, err := executor.ExecContext(txCtx, insertImageQuery, img.Name, img.Payload); err != nil {
				return fmt.Errorf("%w: failed to insert image %q: %w", domain.ErrPersistence, img.Name, err)
			}
		}

		return nil
	})
	return asPersistenceError(err)
}

const listImagesQuery = `
	SELECT name, payload
	FROM images
	ORDER BY name
`

// ListAll retrieves every stored image
func (r *SQLiteImageRepository) ListAll(ctx context.Context) ([]*domain.Image, error) {
	rows, err := r.db.QueryContext(ctx, listImagesQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list images: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	imgs := make([]*domain.Image, 0)
	for rows.Next() {
		var row imageRow
		if err := rows.Scan(&row.Name, &row.Payload); err != nil {
			return nil, fmt.Errorf("%w: failed to scan image row: %w", domain.ErrPersistence, err)
		}
		imgs = append(imgs, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating image rows: %w", domain.ErrPersistence, err)
	}

	return imgs, nil
}

// imageRow is a private struct used to scan database rows
type imageRow struct {
	Name    string `db:"name"`
	Payload string `db:"payload"`
}

func (ir *imageRow) toDomain() *domain.Image {
	return &domain.Image{
		Name:    ir.Name,
		Payload: ir.Payload,
	}
}
