package resultcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"agora/internal/config"
	"agora/internal/services"
)

// Store manages the single-slot cache backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is the raw stored slot.
type Entry struct {
	Payload    []byte
	RunID      string
	ProgramaID int
	SavedAt    time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the cache database under the state directory.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "resultcache", "open", "config is required", nil)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "resultcache", "open", "ensure directories", err)
	}
	return OpenPath(cfg.CachePath())
}

// OpenPath opens the cache database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrStorage, "resultcache", "open", "create state dir", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "resultcache", "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrStorage, "resultcache", "open",
				fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrStorage, "resultcache", "open", "init schema", err)
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put overwrites the slot with entry.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	ctx = ensureContext(ctx)
	if len(entry.Payload) == 0 {
		return services.Wrap(services.ErrStorage, "resultcache", "put", "empty payload", nil)
	}
	savedAt := entry.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	var runID any
	if entry.RunID != "" {
		runID = entry.RunID
	}
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `INSERT INTO comparison_cache (slot, payload, run_id, programa_id, saved_at)
VALUES (1, ?, ?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET
    payload = excluded.payload,
    run_id = excluded.run_id,
    programa_id = excluded.programa_id,
    saved_at = excluded.saved_at`,
			string(entry.Payload), runID, entry.ProgramaID, savedAt.UTC().Format(time.RFC3339Nano))
		return err
	})
	if err != nil {
		return services.Wrap(services.ErrStorage, "resultcache", "put", "write slot", err)
	}
	return nil
}

// PutCache encodes cache as an envelope and stores it.
func (s *Store) PutCache(ctx context.Context, cache *Cache) error {
	payload, err := Encode(cache)
	if err != nil {
		return services.Wrap(services.ErrStorage, "resultcache", "put", "serialize", err)
	}
	return s.Put(ctx, Entry{
		Payload:    payload,
		RunID:      cache.Metadata.RunID,
		ProgramaID: cache.Metadata.ProgramaID,
	})
}

// Get reads the slot. The boolean is false when the slot is empty.
func (s *Store) Get(ctx context.Context) (Entry, bool, error) {
	ctx = ensureContext(ctx)
	var (
		entry   Entry
		payload string
		runID   sql.NullString
		savedAt string
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT payload, run_id, programa_id, saved_at FROM comparison_cache WHERE slot = 1",
		).Scan(&payload, &runID, &entry.ProgramaID, &savedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, services.Wrap(services.ErrStorage, "resultcache", "get", "read slot", err)
	}
	entry.Payload = []byte(payload)
	entry.RunID = runID.String
	if ts, parseErr := time.Parse(time.RFC3339Nano, savedAt); parseErr == nil {
		entry.SavedAt = ts
	}
	return entry, true, nil
}

// Delete empties the slot. Deleting an empty slot is not an error.
func (s *Store) Delete(ctx context.Context) error {
	ctx = ensureContext(ctx)
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, "DELETE FROM comparison_cache WHERE slot = 1")
		return err
	})
	if err != nil {
		return services.Wrap(services.ErrStorage, "resultcache", "delete", "clear slot", err)
	}
	return nil
}
