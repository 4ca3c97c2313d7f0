package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/footprint/internal/cache"
)

// FileName is the database file created inside the cache directory.
const FileName = "footprint.db"

// DB is a SQLite-backed cache.Store. Values and sets carry an optional
// expiry; expired rows read as missing and are removed lazily or by Purge.
type DB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	now func() time.Time
}

var _ cache.Store = (*DB)(nil)

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool

	// Now overrides the clock used for expiry. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database inside dbDir.
func Open(dbDir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &DB{
		db:     db,
		dbPath: dbPath,
		now:    opts.Now,
	}
	if store.now == nil {
		store.now = time.Now
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// Path returns the database file path.
func (s *DB) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *DB) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *DB) createTables() error {
	schema := `
	-- Key/value entries such as serialized reports
	CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_entries_expires ON entries(expires_at);

	-- String sets such as the user agent pool
	CREATE TABLE IF NOT EXISTS sets (
		key TEXT PRIMARY KEY,
		expires_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS set_members (
		key TEXT NOT NULL,
		member TEXT NOT NULL,
		PRIMARY KEY (key, member)
	);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// expiry converts a TTL into the stored expires_at value; 0 means never.
func (s *DB) expiry(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return s.now().Add(ttl).UnixMilli()
}

// live reports whether a row with expiresAt is still valid.
func (s *DB) live(expiresAt int64) bool {
	return expiresAt == 0 || expiresAt > s.now().UnixMilli()
}

// Get implements cache.Store.
func (s *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM entries WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cache.ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	if !s.live(expiresAt) {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key); err != nil {
			return nil, fmt.Errorf("failed to delete expired entry: %w", err)
		}
		return nil, cache.ErrMiss
	}
	return value, nil
}

// Set implements cache.Store. Writing an existing key replaces it.
func (s *DB) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	query := `
	INSERT INTO entries (key, value, expires_at, updated_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		expires_at = excluded.expires_at,
		updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, key, value, s.expiry(ttl)); err != nil {
		return fmt.Errorf("failed to set entry: %w", err)
	}
	return nil
}

// RandomMember implements cache.Store.
func (s *DB) RandomMember(ctx context.Context, key string) (string, error) {
	ok, err := s.setLive(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", cache.ErrMiss
	}

	var member string
	err = s.db.QueryRowContext(ctx,
		`SELECT member FROM set_members WHERE key = ? ORDER BY RANDOM() LIMIT 1`, key,
	).Scan(&member)
	if errors.Is(err, sql.ErrNoRows) {
		return "", cache.ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to get random member: %w", err)
	}
	return member, nil
}

// AddMembers implements cache.Store.
func (s *DB) AddMembers(ctx context.Context, key string, members []string, ttl time.Duration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// An expired set is replaced rather than extended.
	ok, err := s.setLiveTx(ctx, tx, key)
	if err != nil {
		return err
	}
	if !ok {
		if _, err := tx.ExecContext(ctx, `DELETE FROM set_members WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to clear expired set: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO sets (key, expires_at) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET expires_at = excluded.expires_at
	`, key, s.expiry(ttl)); err != nil {
		return fmt.Errorf("failed to upsert set: %w", err)
	}

	for _, m := range members {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO set_members (key, member) VALUES (?, ?)`, key, m,
		); err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit set: %w", err)
	}
	return nil
}

// Exists implements cache.Store.
func (s *DB) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := s.Get(ctx, key); err == nil {
		return true, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		return false, err
	}
	return s.setLive(ctx, key)
}

// Purge deletes every expired entry and set. It returns the number of
// removed entries and sets.
func (s *DB) Purge(ctx context.Context) (int64, error) {
	now := s.now().UnixMilli()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE expires_at != 0 AND expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge entries: %w", err)
	}
	entries, _ := res.RowsAffected() //nolint:errcheck // sqlite always reports it

	if _, err := s.db.ExecContext(ctx, `
	DELETE FROM set_members WHERE key IN (
		SELECT key FROM sets WHERE expires_at != 0 AND expires_at <= ?
	)`, now); err != nil {
		return 0, fmt.Errorf("failed to purge set members: %w", err)
	}
	res, err = s.db.ExecContext(ctx,
		`DELETE FROM sets WHERE expires_at != 0 AND expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sets: %w", err)
	}
	sets, _ := res.RowsAffected() //nolint:errcheck // sqlite always reports it

	return entries + sets, nil
}

func (s *DB) setLive(ctx context.Context, key string) (bool, error) {
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, `SELECT expires_at FROM sets WHERE key = ?`, key).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get set: %w", err)
	}
	return s.live(expiresAt), nil
}

func (s *DB) setLiveTx(ctx context.Context, tx *sql.Tx, key string) (bool, error) {
	var expiresAt int64
	err := tx.QueryRowContext(ctx, `SELECT expires_at FROM sets WHERE key = ?`, key).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get set: %w", err)
	}
	return s.live(expiresAt), nil
}
