package resultcache

import (
	"context"
	"log/slog"
	"time"

	"agora/internal/config"
	"agora/internal/logging"
)

// Session is the best-effort view of the Store used by the comparison flow.
// A Session without a store behaves as an always-empty cache.
type Session struct {
	store  *Store
	logger *slog.Logger
	now    func() time.Time
}

// NewSession wraps an open store. store may be nil.
func NewSession(store *Store, logger *slog.Logger) *Session {
	return &Session{
		store:  store,
		logger: logging.NewComponentLogger(logger, "resultcache"),
		now:    time.Now,
	}
}

// OpenSession opens the store for cfg. Open failures are logged and yield a
// Session that persists nothing.
func OpenSession(cfg *config.Config, logger *slog.Logger) *Session {
	store, err := Open(cfg)
	session := NewSession(store, logger)
	if err != nil {
		logging.WarnWithContext(session.logger, "comparison cache unavailable", "cache_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the state directory"),
			logging.String(logging.FieldImpact, "results will not be kept between commands"),
		)
	}
	return session
}

// Available reports whether a backing store is open.
func (s *Session) Available() bool {
	return s != nil && s.store != nil
}

// Store exposes the strict store, or nil when unavailable.
func (s *Session) Store() *Store {
	if s == nil {
		return nil
	}
	return s.store
}

// Close releases the backing store.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	return s.store.Close()
}

// Save replaces the cached run. Errors are logged, never returned.
func (s *Session) Save(ctx context.Context, cache *Cache) {
	if !s.Available() || cache == nil {
		return
	}
	if err := s.store.PutCache(ctx, cache); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "comparison results not cached", "cache_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on "+s.store.Path()),
			logging.String(logging.FieldImpact, "results and exports will be unavailable after this command"),
		)
		return
	}
	logging.WithContext(ctx, s.logger).Debug("comparison results cached",
		logging.Int("total_estudiantes", cache.Response.TotalEstudiantes),
		logging.Int("pensum_materias", len(cache.Metadata.PensumMaterias)),
	)
}

// Load returns the cached run. It returns nil, false when the slot is empty or
// the stored value cannot be decoded.
func (s *Session) Load(ctx context.Context) (*Cache, bool) {
	if !s.Available() {
		return nil, false
	}
	entry, ok, err := s.store.Get(ctx)
	if err != nil {
		logging.WarnWithContext(s.logger, "comparison cache unreadable", "cache_load_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no cached results are shown"),
		)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	cache, format, err := Decode(entry.Payload, s.now())
	if err != nil {
		logging.WarnWithContext(s.logger, "cached comparison results are malformed", "cache_decode_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run agora results clear and compare again"),
			logging.String(logging.FieldImpact, "no cached results are shown"),
		)
		return nil, false
	}
	if format != FormatEnvelope {
		s.logger.Info("loaded comparison results from older format", logging.String("format", string(format)))
	}
	return cache, true
}

// Clear empties the cache. Errors are logged, never returned.
func (s *Session) Clear(ctx context.Context) {
	if !s.Available() {
		return
	}
	if err := s.store.Delete(ctx); err != nil {
		logging.WarnWithContext(s.logger, "comparison cache not cleared", "cache_clear_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale results may still be shown"),
		)
	}
}
