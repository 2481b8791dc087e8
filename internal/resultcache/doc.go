// Package resultcache persists the most recent comparison run so the results,
// detail and export commands can read it without contacting the backend.
//
// The Store is a SQLite database holding a single slot: saving a run replaces
// the previous one, and the schema rejects a second row. Values are stored as a
// versioned JSON envelope. Decode also accepts the unversioned
// {response, metadata} object and the legacy bare verification response, for
// which default metadata is synthesized.
//
// Session wraps the Store with best-effort semantics: failures are logged with
// their impact and swallowed, so a broken cache never blocks showing results.
// Schema changes bump schemaVersion; users clear the database to adopt them.
package resultcache
