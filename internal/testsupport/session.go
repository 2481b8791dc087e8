package testsupport

import (
	"testing"

	"agora/internal/config"
	"agora/internal/logging"
	"agora/internal/resultcache"
)

// MustOpenSession opens the result cache for cfg and registers cleanup.
func MustOpenSession(t testing.TB, cfg *config.Config) *resultcache.Session {
	t.Helper()

	store, err := resultcache.Open(cfg)
	if err != nil {
		t.Fatalf("resultcache.Open: %v", err)
	}
	session := resultcache.NewSession(store, logging.NewNop())
	t.Cleanup(func() {
		_ = session.Close()
	})
	return session
}
