package main

import (
	"github.com/spf13/cobra"

	"agora/internal/comparison"
	"agora/internal/export"
	"agora/internal/resultcache"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var programaID int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "verify --programa ID FILE",
		Short: "Verify one transcript without touching cached results",
		Long: "Uploads a single academic transcript (.csv, .xlsx, .xls) for individual " +
			"eligibility verification and prints the student's result. The cached " +
			"comparison run is left as it is.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}

			return ctx.withSession(func(session *resultcache.Session) error {
				svc, err := comparison.NewService(comparison.Deps{
					Config:  cfg,
					Client:  client,
					Session: session,
					Logger:  ctx.log(),
				})
				if err != nil {
					return err
				}

				estudiante, err := svc.Verify(cmd.Context(), programaID, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, estudiante)
				}
				printEstudiante(cmd.OutOrStdout(), export.BuildDetalle(nil, *estudiante))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&programaID, "programa", "p", 0, "Program id to verify against")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the student record as JSON")
	_ = cmd.MarkFlagRequired("programa")
	return cmd
}
