// Package textutil provides text processing utilities for name matching and
// filename sanitization.
//
// The primary use cases are:
//   - Normalizing subject and student names so comparisons ignore case,
//     surrounding whitespace, and diacritics
//   - Sanitizing filenames and path segments for export files
package textutil
