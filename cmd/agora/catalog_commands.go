package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"agora/internal/pensum"
	"agora/internal/services"
)

func parseProgramaID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, services.Wrap(services.ErrValidation, "catalog", "programa", fmt.Sprintf("invalid program id %q", arg), nil)
	}
	return id, nil
}

func newProgramasCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "programas",
		Short: "List academic programs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			programas, err := client.ListarProgramas(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, programas)
			}
			out := cmd.OutOrStdout()
			if len(programas) == 0 {
				fmt.Fprintln(out, "No programs registered")
				return nil
			}
			rows := make([][]string, 0, len(programas))
			for _, p := range programas {
				pensumActivo := "-"
				if p.PensumActivoID != nil {
					pensumActivo = strconv.Itoa(*p.PensumActivoID)
				}
				rows = append(rows, []string{strconv.Itoa(p.ProgramaID), p.NombrePrograma, yesNo(p.EsActivo), pensumActivo})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				headers: []string{"ID", "Programa", "Activo", "Pensum activo"},
				rows:    rows,
				aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print programs as JSON")
	return cmd
}

func newPensumCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "pensum PROGRAMA_ID",
		Short: "Show the current curriculum of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			programaID, err := parseProgramaID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			actual, err := client.ObtenerPensumActual(cmd.Context(), programaID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if actual.PensumActual == nil {
				if jsonOutput {
					return writeJSON(cmd, actual)
				}
				fmt.Fprintf(out, "Program %d has no active curriculum\n", programaID)
				return nil
			}
			semestres, err := client.ObtenerMateriasPorSemestre(cmd.Context(), actual.PensumActual.PensumID)
			if err != nil {
				return err
			}
			resumen := pensum.BuildResumen(semestres)
			if jsonOutput {
				return writeJSON(cmd, struct {
					Pensum   *pensum.Actual          `json:"pensum"`
					Materias []pensum.MateriaResumen `json:"materias"`
				}{actual.PensumActual, resumen})
			}

			p := actual.PensumActual
			fmt.Fprintf(out, "%s · pensum %d (%d) · %d créditos obligatorios\n",
				actual.ProgramaNombre, p.PensumID, p.AnioCreacion, p.CreditosObligatoriosTotales)
			rows := make([][]string, 0, len(resumen))
			creditos := 0
			for _, m := range resumen {
				rows = append(rows, []string{strconv.Itoa(m.Semestre), m.Nombre, strconv.Itoa(m.Creditos), yesNo(m.EsElectiva)})
				creditos += m.Creditos
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				headers: []string{"Semestre", "Materia", "Créditos", "Electiva"},
				rows:    rows,
				aligns:  []columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
				footer:  []string{"", fmt.Sprintf("%d materias", len(resumen)), strconv.Itoa(creditos)},
			}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the curriculum summary as JSON")
	return cmd
}

func newConfiguracionCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "configuracion PROGRAMA_ID",
		Short: "Show the active eligibility configuration of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			programaID, err := parseProgramaID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			conf, err := client.ObtenerConfiguracion(cmd.Context(), programaID)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, conf)
			}
			rows := [][]string{
				{"Programa", fmt.Sprintf("%s (%d)", conf.ProgramaNombre, conf.ProgramaID)},
				{"Nota aprobatoria", strconv.FormatFloat(conf.NotaAprobatoria, 'f', 1, 64)},
				{"Semestre límite electivas", strconv.Itoa(conf.SemestreLimiteElectivas)},
				{"Activa", yesNo(conf.EsActivo)},
				{"Actualizada", conf.FechaActualizacion},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableSpec{headers: []string{"Campo", "Valor"}, rows: rows}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the configuration as JSON")
	return cmd
}
