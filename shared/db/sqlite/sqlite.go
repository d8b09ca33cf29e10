package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/dfryer1193/campusnav/shared/db"
	_ "modernc.org/sqlite"
)

const (
	// DefaultPath is the default path for the SQLite database
	DefaultPath = "./navigation.db"
)

type SQLiteConfig struct {
	Path string
}

// NewSQLiteConfig returns a config for path, falling back to DefaultPath
func NewSQLiteConfig(path string) *SQLiteConfig {
	if path == "" {
		path = DefaultPath
	}

	return &SQLiteConfig{
		Path: path,
	}
}

// SQLiteDB implements the db.Database interface for SQLite
type SQLiteDB struct {
	dbPath string
	db     *sql.DB
}

// NewSQLiteDB creates a new SQLite database instance
func NewSQLiteDB(cfg *SQLiteConfig) *SQLiteDB {
	return &SQLiteDB{
		dbPath: cfg.Path,
	}
}

// Pragmas are passed through the DSN so that every pooled connection gets them,
// not only the one that happened to run an Exec.
var pragmas = []string{
	"journal_mode(WAL)",   // Write-Ahead Logging for better concurrency
	"synchronous(NORMAL)", // Balance between safety and performance
	"foreign_keys(ON)",
	"busy_timeout(5000)", // Wait up to 5 seconds if database is locked
	"cache_size(-64000)", // Use 64MB cache (negative means KB)
}

func (s *SQLiteDB) dsn() string {
	params := url.Values{}
	for _, p := range pragmas {
		params.Add("_pragma", p)
	}
	// Writers take the lock up front instead of failing on upgrade
	params.Set("_txlock", "immediate")
	return s.dbPath + "?" + params.Encode()
}

// Connect opens a connection to the SQLite database
func (s *SQLiteDB) Connect() error {
	if s.db != nil {
		return fmt.Errorf("database already connected")
	}

	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying *sql.DB instance
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

var _ db.Database = (*SQLiteDB)(nil)
