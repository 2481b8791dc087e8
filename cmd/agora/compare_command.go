package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"agora/internal/comparacion"
	"agora/internal/comparison"
	"agora/internal/resultcache"
)

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var programaID int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "compare --programa ID FILE...",
		Short: "Verify transcripts against a program's curriculum",
		Long: "Uploads academic transcripts (.csv, .xlsx, .xls) for bulk eligibility " +
			"verification, enriches the result with the program's current curriculum and " +
			"semester limit, and caches the run for the results commands.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			progress := cmd.ErrOrStderr()
			colorize := shouldColorize(progress)

			return ctx.withSession(func(session *resultcache.Session) error {
				svc, err := comparison.NewService(comparison.Deps{
					Config:  cfg,
					Client:  client,
					Session: session,
					Logger:  ctx.log(),
					OnTransition: func(tr comparison.Transition) {
						if !jsonOutput {
							printTransition(progress, tr, colorize)
						}
					},
				})
				if err != nil {
					return err
				}

				svc.Begin(cmd.Context())
				cache, err := svc.Submit(cmd.Context(), comparison.Request{ProgramaID: programaID, Files: args})
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, cache)
				}
				printRunSummary(cmd.OutOrStdout(), cache, shouldColorize(cmd.OutOrStdout()))
				if !session.Available() {
					fmt.Fprintln(cmd.OutOrStdout(), "Results were not cached; export them before running another command.")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Use `agora results list` to browse and `agora results export` to export.")
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&programaID, "programa", "p", 0, "Program id to verify against")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the cached run as JSON")
	_ = cmd.MarkFlagRequired("programa")
	return cmd
}

func printTransition(out io.Writer, tr comparison.Transition, colorize bool) {
	switch tr.To {
	case comparison.StateUploading:
		fmt.Fprintln(out, paint("Uploading transcripts...", ansiBlue, colorize))
	case comparison.StateFailure:
		fmt.Fprintln(out, paint("Verification failed", ansiRed, colorize))
	case comparison.StateEnriching:
		fmt.Fprintln(out, paint("Fetching curriculum and configuration...", ansiBlue, colorize))
	case comparison.StateCached:
		fmt.Fprintln(out, paint("Results stored", ansiGreen, colorize))
	}
}

func printRunSummary(out io.Writer, cache *resultcache.Cache, colorize bool) {
	resp := cache.Response
	meta := cache.Metadata
	limite := "N/A"
	if meta.SemestreLimite != nil {
		limite = fmt.Sprintf("%d", *meta.SemestreLimite)
	}
	programa := fmt.Sprintf("%d", meta.ProgramaID)
	if meta.ProgramaNombre != nil {
		programa = fmt.Sprintf("%s (%d)", *meta.ProgramaNombre, meta.ProgramaID)
	}
	rows := [][]string{
		{"Programa", programa},
		{"Total de estudiantes", fmt.Sprintf("%d", resp.TotalEstudiantes)},
		{"Elegibles", paint(fmt.Sprintf("%d (%.1f%%)", resp.Elegibles, comparacion.Porcentaje(resp.Elegibles, resp.TotalEstudiantes)), ansiGreen, colorize)},
		{"No elegibles", paint(fmt.Sprintf("%d (%.1f%%)", resp.NoElegibles, comparacion.Porcentaje(resp.NoElegibles, resp.TotalEstudiantes)), ansiRed, colorize)},
		{"Semestre límite", limite},
		{"Materias del pensum", fmt.Sprintf("%d", len(meta.PensumMaterias))},
	}
	fmt.Fprintln(out, renderTable(tableSpec{headers: []string{"Resumen", "Valor"}, rows: rows}))
}
