package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"agora/internal/preflight"
	"agora/internal/resultcache"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var errNotReady = errors.New("agora is not ready to run comparisons")

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration, backend access and local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var lister preflight.ProgramLister
			if client, err := ctx.client(); err == nil {
				lister = client
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var results []preflight.Result
			_ = ctx.withSession(func(session *resultcache.Session) error {
				results = preflight.RunAll(cmd.Context(), cfg, lister, session)
				return nil
			})
			renderStatus(out, results, colorize)
			if !preflight.Ready(results) {
				return errNotReady
			}
			return nil
		},
	}
}

func renderStatus(out io.Writer, results []preflight.Result, colorize bool) {
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
			if r.Severity == preflight.SeverityOptional {
				kind = statusWarn
			}
		}
		fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusKindLabel(kind), message)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	return paint(base, statusKindColor(kind), colorize)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "OK"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ansiGreen
	}
}
