// Package export renders cached comparison runs as printable HTML reports and
// .xlsx workbooks.
//
// Everything is derived from a resultcache.Cache; no network calls are made.
// The matrix export matches backend subject names against the curriculum by
// normalized name and refuses to run without a curriculum subject list
// (ErrMissingCurriculum), so no malformed workbook is ever written. Names that
// match no curriculum column are collected as Unmatched entries and written to
// their own sheet.
//
// Reports use metadata.generadoEn rather than the wall clock, so identical input
// renders identical bytes.
package export
