package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dfryer1193/campusnav/navigation/domain"
	"github.com/dfryer1193/campusnav/shared/db"
)

var _ domain.ClassroomRepository = (*SQLiteClassroomRepository)(nil)

// SQLiteClassroomRepository implements domain.ClassroomRepository using SQL database (SQLite).
// Image references are stored as a JSON array so their order and duplicates survive.
type SQLiteClassroomRepository struct {
	db *sql.DB
}

// NewClassroomRepository creates a new SQLiteClassroomRepository from a standard sql.DB
func NewClassroomRepository(sqlDB *sql.DB) *SQLiteClassroomRepository {
	return &SQLiteClassroomRepository{
		db: sqlDB,
	}
}

const deleteAllClassroomsQuery = `DELETE FROM classrooms`

const insertClassroomQuery = `
	INSERT INTO classrooms (name, description, image_refs)
	VALUES (?, ?, ?)
`

// ReplaceAll drops every classroom and inserts classrooms in order within a transaction
func (r *SQLiteClassroomRepository) ReplaceAll(ctx context.Context, classrooms []*domain.Classroom) error {
	rows := make([]classroomRow, 0, len(classrooms))
	for i, c := range classrooms {
		if c == nil {
			return fmt.Errorf("%w: classroom %d is nil", domain.ErrPersistence, i)
		}
		if c.Name == "" {
			return fmt.Errorf("%w: classroom %d has an empty name", domain.ErrPersistence, i)
		}
		row, err := newClassroomRow(c)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)
		if _, err := executor.ExecContext(txCtx, deleteAllClassroomsQuery); err != nil {
			return fmt.Errorf("%w: failed to drop classrooms: %w", domain.ErrPersistence, err)
		}

		for _, row := range rows {
			if _, err := executor.ExecContext(txCtx, insertClassroomQuery, row.Name, row.Description, row.ImageRefs); err != nil {
				return fmt.Errorf("%w: failed to insert classroom %q: %w", domain.ErrPersistence, row.Name, err)
			}
		}

		return nil
	})
	return asPersistenceError(err)
}

const listClassroomsQuery = `
	SELECT name, description, image_refs
	FROM classrooms
	ORDER BY position
`

// ListAll retrieves every stored classroom in insertion order
func (r *SQLiteClassroomRepository) ListAll(ctx context.Context) ([]*domain.Classroom, error) {
	rows, err := r.db.QueryContext(ctx, listClassroomsQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list classrooms: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	classrooms := make([]*domain.Classroom, 0)
	for rows.Next() {
		var row classroomRow
		if err := rows.Scan(&row.Name, &row.Description, &row.ImageRefs); err != nil {
			return nil, fmt.Errorf("%w: failed to scan classroom row: %w", domain.ErrPersistence, err)
		}
		c, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		classrooms = append(classrooms, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating classroom rows: %w", domain.ErrPersistence, err)
	}

	return classrooms, nil
}

// classroomRow is a private struct used to scan database rows
type classroomRow struct {
	Name        string `db:"name"`
	Description string `db:"description"`
	ImageRefs   string `db:"image_refs"`
}

func newClassroomRow(c *domain.Classroom) (classroomRow, error) {
	refs := c.ImageRefs
	if refs == nil {
		refs = []string{}
	}
	encoded, err := json.Marshal(refs)
	if err != nil {
		return classroomRow{}, fmt.Errorf("%w: failed to encode image refs of %q: %w", domain.ErrPersistence, c.Name, err)
	}
	return classroomRow{
		Name:        c.Name,
		Description: c.Description,
		ImageRefs:   string(encoded),
	}, nil
}

func (cr *classroomRow) toDomain() (*domain.Classroom, error) {
	refs := make([]string, 0)
	if err := json.Unmarshal([]byte(cr.ImageRefs), &refs); err != nil {
		return nil, fmt.Errorf("%w: corrupt image refs for classroom %q: %w", domain.ErrPersistence, cr.Name, err)
	}
	return &domain.Classroom{
		Name:        cr.Name,
		Description: cr.Description,
		ImageRefs:   refs,
	}, nil
}
