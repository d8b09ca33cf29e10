package sqlite

import (
	"path/filepath"
	"testing"
)

func connectTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	database := NewSQLiteDB(&SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err := database.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestRunMigrations(t *testing.T) {
	db := connectTestDB(t).DB()

	for _, table := range []string{"schema_migrations", "images", "classrooms"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to check %s table: %v", table, err)
		}
		if count != 1 {
			t.Errorf("%s table not created", table)
		}
	}

	var version int
	var name string
	err := db.QueryRow("SELECT version, name FROM schema_migrations ORDER BY version DESC LIMIT 1").Scan(&version, &name)
	if err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}
	if name != "create_classrooms_table" {
		t.Errorf("name = %q, want %q", name, "create_classrooms_table")
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	cfg := &SQLiteConfig{
		Path: dbPath,
	}

	// Connect first time
	database := NewSQLiteDB(cfg)
	if err := database.Connect(); err != nil {
		t.Fatalf("First Connect() error = %v", err)
	}
	database.Close()

	// Connect second time - migrations should not fail
	database = NewSQLiteDB(cfg)
	if err := database.Connect(); err != nil {
		t.Fatalf("Second Connect() error = %v", err)
	}
	defer database.Close()

	var count int
	err := database.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = 1").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("migration recorded %d times, want 1", count)
	}
}

func TestImagesTableSchema(t *testing.T) {
	db := connectTestDB(t).DB()

	if _, err := db.Exec("INSERT INTO images (name, payload) VALUES (?, ?)", "left.png", "bibabob"); err != nil {
		t.Fatalf("Failed to insert image: %v", err)
	}

	if _, err := db.Exec("INSERT INTO images (name, payload) VALUES (?, ?)", "left.png", "other"); err == nil {
		t.Error("duplicate image name should violate the primary key")
	}

	if _, err := db.Exec("INSERT INTO images (name, payload) VALUES (?, ?)", "", "empty"); err == nil {
		t.Error("empty image name should violate the check constraint")
	}
}

func TestClassroomsTableSchema(t *testing.T) {
	db := connectTestDB(t).DB()

	for _, name := range []string{"R2", "R1"} {
		if _, err := db.Exec("INSERT INTO classrooms (name, description) VALUES (?, ?)", name, "d"); err != nil {
			t.Fatalf("Failed to insert classroom: %v", err)
		}
	}

	rows, err := db.Query("SELECT name, image_refs FROM classrooms ORDER BY position")
	if err != nil {
		t.Fatalf("Failed to query classrooms: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name, refs string
		if err := rows.Scan(&name, &refs); err != nil {
			t.Fatalf("Failed to scan: %v", err)
		}
		if refs != "[]" {
			t.Errorf("image_refs default = %q, want %q", refs, "[]")
		}
		names = append(names, name)
	}

	if len(names) != 2 || names[0] != "R2" || names[1] != "R1" {
		t.Errorf("names = %v, want insertion order [R2 R1]", names)
	}

	if _, err := db.Exec("INSERT INTO classrooms (name, description) VALUES (?, ?)", "R1", "dup"); err == nil {
		t.Error("duplicate classroom name should violate the unique constraint")
	}
}
