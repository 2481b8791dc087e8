// Package preflight provides readiness checks for the paths and services the
// agora CLI depends on.
//
// The CLI "agora status" command runs RunAll and renders one line per check:
// state and export directories, the bearer token, backend reachability, the
// result cache, and the desktop opener used by `results export --open`.
// Checks never mutate state; a failing check only reports why.
package preflight
