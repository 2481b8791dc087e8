package preflight

import (
	"context"
	"os"

	"agora/internal/config"
	"agora/internal/resultcache"
)

// Severity grades a failed check. Required checks block the compare
// workflow; optional ones only limit a feature.
type Severity int

const (
	SeverityRequired Severity = iota
	SeverityOptional
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Detail   string
	Severity Severity
}

// RunAll executes every check for cfg. client may be nil, in which case the
// backend check reports a configuration failure.
func RunAll(ctx context.Context, cfg *config.Config, client ProgramLister, session *resultcache.Session) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}

	// The export directory is created on first export.
	if _, err := os.Stat(cfg.Paths.ExportDir); err == nil {
		results = append(results, CheckDirectoryAccess("Export directory", cfg.Paths.ExportDir))
	} else {
		results = append(results, Result{Name: "Export directory", Passed: true, Detail: cfg.Paths.ExportDir + " (created on first export)"})
	}

	results = append(results, CheckToken(cfg.API.Token))
	results = append(results, CheckBackend(ctx, cfg.API.BaseURL, client))
	results = append(results, CheckResultCache(ctx, session))

	opener := CheckOpener()
	opener.Severity = SeverityOptional
	results = append(results, opener)

	return results
}

// Ready reports whether every required check passed.
func Ready(results []Result) bool {
	for _, r := range results {
		if !r.Passed && r.Severity == SeverityRequired {
			return false
		}
	}
	return true
}
