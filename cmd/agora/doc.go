// Package main hosts the agora CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into AGORA backend calls
// (program, curriculum and configuration lookups, bulk eligibility
// comparison) and into operations on the locally cached comparison run:
// listing, filtering, per-student detail, export to .xlsx or printable HTML,
// import and clear. Configuration resolution, logger construction and client
// wiring live in commandContext so subcommands only deal with presentation.
//
// Keep this package lean: extend internal/comparison, internal/export or the
// AGORA client first, then surface the behaviour through a command here.
package main
