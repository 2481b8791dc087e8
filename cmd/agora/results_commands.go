package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"agora/internal/comparacion"
	"agora/internal/export"
	"agora/internal/resultcache"
	"agora/internal/services"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	resultsCmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect and export the cached comparison run",
	}

	resultsCmd.AddCommand(newResultsListCommand(ctx))
	resultsCmd.AddCommand(newResultsShowCommand(ctx))
	resultsCmd.AddCommand(newResultsExportCommand(ctx))
	resultsCmd.AddCommand(newResultsClearCommand(ctx))
	resultsCmd.AddCommand(newResultsImportCommand(ctx))

	return resultsCmd
}

// loadResults reads the cached run or reports that none exists.
func loadResults(ctx *commandContext, cmd *cobra.Command) (*resultcache.Cache, error) {
	var cache *resultcache.Cache
	err := ctx.withSession(func(session *resultcache.Session) error {
		loaded, ok := session.Load(cmd.Context())
		if !ok {
			return errNoResults
		}
		cache = loaded
		return nil
	})
	return cache, err
}

func parseFiltro(busqueda, estado string) (comparacion.Filtro, error) {
	parsed, err := comparacion.ParseEstadoFiltro(estado)
	if err != nil {
		return comparacion.Filtro{}, services.Wrap(services.ErrValidation, "results", "filter", err.Error(), nil)
	}
	return comparacion.Filtro{Busqueda: busqueda, Estado: parsed}, nil
}

func newResultsListCommand(ctx *commandContext) *cobra.Command {
	var busqueda string
	var estado string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students of the cached run",
		RunE: func(cmd *cobra.Command, args []string) error {
			filtro, err := parseFiltro(busqueda, estado)
			if err != nil {
				return err
			}
			cache, err := loadResults(ctx, cmd)
			if err != nil {
				return err
			}
			resultados := comparacion.Filtrar(cache.Response.Resultados, filtro)
			stats := comparacion.CalcularEstadisticas(cache.Response.Resultados)

			if jsonOutput {
				return writeJSON(cmd, struct {
					Estadisticas comparacion.Estadisticas `json:"estadisticas"`
					Metadata     resultcache.Metadata     `json:"metadata"`
					Resultados   []comparacion.Estudiante `json:"resultados"`
				}{stats, cache.Metadata, resultados})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Total: %d · Elegibles: %d (%.1f%%) · No elegibles: %d (%.1f%%) · Avance promedio: %.1f%%\n",
				stats.Total, stats.Elegibles, stats.PorcentajeElegibles,
				stats.NoElegibles, stats.PorcentajeNoElegibles, stats.PromedioAvance)
			if len(resultados) == 0 {
				fmt.Fprintln(out, "No students match the current filter")
				return nil
			}
			rows := make([][]string, 0, len(resultados))
			for _, e := range resultados {
				rows = append(rows, []string{
					e.Estudiante,
					paint(e.EstadoLabel(), estadoColor(e.Estado), colorize),
					fmt.Sprintf("%.1f%%", e.PorcentajeAvance),
					strconv.Itoa(e.SemestreMaximo),
					fmt.Sprintf("%d/%d", e.CreditosAprobados, e.CreditosObligatoriosTotales),
					strconv.Itoa(len(e.MateriasFaltantes)),
					strconv.Itoa(len(e.MateriasDespuesLimite)),
				})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				headers: []string{"Estudiante", "Estado", "Avance", "Sem. máx", "Créditos", "Faltantes", "Tardías"},
				rows:    rows,
				aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
				footer:  []string{fmt.Sprintf("%d de %d", len(resultados), stats.Total)},
			}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&busqueda, "buscar", "b", "", "Filter by student identifier (case and accent insensitive)")
	cmd.Flags().StringVarP(&estado, "estado", "e", "TODOS", "Filter by status: TODOS, ELEGIBLE, NO_ELEGIBLE")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print statistics and students as JSON")
	return cmd
}

func newResultsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show STUDENT",
		Short: "Show one student's comparison detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := loadResults(ctx, cmd)
			if err != nil {
				return err
			}
			estudiante, ok := comparacion.Buscar(cache.Response.Resultados, args[0])
			if !ok {
				return fmt.Errorf("student %q not found in the cached run", args[0])
			}
			if jsonOutput {
				return writeJSON(cmd, estudiante)
			}

			printEstudiante(cmd.OutOrStdout(), export.BuildDetalle(cache, estudiante))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the student record as JSON")
	return cmd
}

// printEstudiante renders a student's record followed by its subject lines.
func printEstudiante(out io.Writer, detalle export.Detalle) {
	colorize := shouldColorize(out)
	estudiante := detalle.Estudiante
	info := [][]string{
		{"Estudiante", estudiante.Estudiante},
		{"Estado", paint(estudiante.EstadoLabel(), estadoColor(estudiante.Estado), colorize)},
		{"Semestre máximo", strconv.Itoa(estudiante.SemestreMaximo)},
		{"Créditos aprobados", fmt.Sprintf("%d de %d", estudiante.CreditosAprobados, estudiante.CreditosObligatoriosTotales)},
		{"Periodos matriculados", strconv.Itoa(estudiante.PeriodosMatriculados)},
		{"Avance", fmt.Sprintf("%.1f%%", estudiante.PorcentajeAvance)},
		{"Nivelado", yesNo(estudiante.Nivelado)},
	}
	fmt.Fprintln(out, renderTable(tableSpec{headers: []string{"Campo", "Valor"}, rows: info}))

	if len(detalle.Materias) == 0 {
		fmt.Fprintln(out, "No subjects reported for this student")
		return
	}
	rows := make([][]string, 0, len(detalle.Materias))
	for _, m := range detalle.Materias {
		rows = append(rows, []string{m.Nombre, optionalInt(m.Semestre), optionalInt(m.Creditos), m.Estado})
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		headers: []string{"Materia", "Semestre", "Créditos", "Estado"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
		footer:  []string{fmt.Sprintf("Faltantes %d · Tardías %d", detalle.Faltantes, detalle.Tardias)},
	}))
}

func newResultsExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var estudianteID string
	var porMateria bool
	var openAfter bool
	var busqueda string
	var estado string

	cmd := &cobra.Command{
		Use:       "export xlsx|pdf",
		Short:     "Export the cached run as a workbook or printable report",
		Long:      "xlsx writes a workbook (summary, student × subject matrix). pdf writes a self-printing HTML report to save as PDF from the browser.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"xlsx", "pdf"},
		RunE: func(cmd *cobra.Command, args []string) error {
			formato := strings.ToLower(strings.TrimSpace(args[0]))
			if formato != "xlsx" && formato != "pdf" {
				return fmt.Errorf("unknown export format %q (expected xlsx or pdf)", args[0])
			}
			filtro, err := parseFiltro(busqueda, estado)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cache, err := loadResults(ctx, cmd)
			if err != nil {
				return err
			}

			opts := export.Options{
				Institution: cfg.Export.Institution,
				Location:    time.Local,
				PorMateria:  porMateria,
				Filtro:      filtro,
				Logger:      ctx.log(),
			}

			var estudiante *comparacion.Estudiante
			if strings.TrimSpace(estudianteID) != "" {
				found, ok := comparacion.Buscar(cache.Response.Resultados, estudianteID)
				if !ok {
					return fmt.Errorf("student %q not found in the cached run", estudianteID)
				}
				estudiante = &found
			}

			ext := "xlsx"
			if formato == "pdf" {
				ext = "html"
			}
			target := strings.TrimSpace(outPath)
			if target == "" {
				name := ""
				if estudiante != nil {
					name = estudiante.Estudiante
				}
				target = filepath.Join(cfg.Paths.ExportDir, export.FileName(cache, name, ext, opts.Location))
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create export directory: %w", err)
			}

			err = export.WriteFile(target, func(w io.Writer) error {
				switch {
				case formato == "xlsx" && estudiante != nil:
					return export.WriteStudentWorkbook(w, cache, *estudiante, opts)
				case formato == "xlsx":
					_, err := export.WriteWorkbook(w, cache, opts)
					return err
				case estudiante != nil:
					return export.WriteStudentReport(w, cache, *estudiante, opts)
				default:
					return export.WriteReport(w, cache, opts)
				}
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			if formato == "pdf" && !openAfter {
				fmt.Fprintln(cmd.OutOrStdout(), "Open the report in a browser to print or save it as PDF (or pass --open).")
			}
			if openAfter {
				if err := export.Open(target); err != nil {
					return fmt.Errorf("open %s: %w", target, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: export_dir/reporte_<...>_<fecha>.<ext>)")
	cmd.Flags().StringVar(&estudianteID, "estudiante", "", "Export a single student's report")
	cmd.Flags().BoolVar(&porMateria, "por-materia", false, "Report detail table per subject instead of per student")
	cmd.Flags().BoolVar(&openAfter, "open", false, "Open the exported file with the desktop handler")
	cmd.Flags().StringVarP(&busqueda, "buscar", "b", "", "Restrict report students by identifier")
	cmd.Flags().StringVarP(&estado, "estado", "e", "TODOS", "Restrict report students by status")
	return cmd
}

func newResultsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the cached comparison run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(session *resultcache.Session) error {
				store := session.Store()
				if store == nil {
					return services.Wrap(services.ErrStorage, "results", "clear", "result cache unavailable", nil)
				}
				if err := store.Delete(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared cached comparison results")
				return nil
			})
		},
	}
}

func newResultsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load a saved comparison run (JSON) into the cache",
		Long:  "Accepts the cached envelope, a {response, metadata} object, or a bare verification response as returned by the backend.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			cache, format, err := resultcache.Decode(raw, time.Now())
			if err != nil {
				return err
			}
			return ctx.withSession(func(session *resultcache.Session) error {
				store := session.Store()
				if store == nil {
					return services.Wrap(services.ErrStorage, "results", "import", "result cache unavailable", nil)
				}
				if err := store.PutCache(cmd.Context(), cache); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d students (%s format)\n", cache.Response.TotalEstudiantes, format)
				if !cache.HasCurriculum() {
					fmt.Fprintln(cmd.OutOrStdout(), "No curriculum in the imported run; matrix export is unavailable.")
				}
				return nil
			})
		},
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}
