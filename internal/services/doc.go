// Package services defines shared utilities consumed by the comparison
// pipeline and the AGORA backend integration.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, program IDs, operations, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (authentication, HTTP, storage, export precondition, decode, validation)
//     so callers can surface a consistent hint to the user.
package services
