package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"agora/internal/comparacion"
	"agora/internal/logging"
	"agora/internal/resultcache"
	"agora/internal/textutil"
)

// Sheet names.
const (
	SheetResumen     = "Resumen"
	SheetMatriz      = "Matriz"
	SheetSinMatch    = "Sin coincidencia"
	SheetInformacion = "Información"
	SheetMaterias    = "Materias"
)

const (
	colorPrimario = "#1E3A8A"
	colorFalta    = "#FECACA"
	colorTarde    = "#FDE68A"
	colorAprobada = "#BBF7D0"
	colorNoEval   = "#E5E7EB"
)

type workbookStyles struct {
	title  int
	header int
	cells  map[string]int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var styles workbookStyles
	var err error
	styles.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: colorPrimario},
	})
	if err != nil {
		return styles, fmt.Errorf("title style: %w", err)
	}
	styles.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorPrimario}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return styles, fmt.Errorf("header style: %w", err)
	}
	styles.cells = make(map[string]int, 4)
	for _, pair := range [][2]string{
		{CellFalta, colorFalta},
		{CellAprobadaTarde, colorTarde},
		{CellAprobada, colorAprobada},
		{CellNoEvaluada, colorNoEval},
	} {
		value := pair[0]
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{pair[1]}},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return styles, fmt.Errorf("cell style %s: %w", value, err)
		}
		styles.cells[value] = id
	}
	return styles, nil
}

// WriteWorkbook writes the run workbook: Resumen, Matriz, and Sin coincidencia
// when some backend names matched no curriculum subject. It writes nothing and
// returns ErrMissingCurriculum when the run has no curriculum.
func WriteWorkbook(w io.Writer, cache *resultcache.Cache, opts Options) (*Matrix, error) {
	matrix, err := BuildMatrix(cache)
	if err != nil {
		return nil, refuse(opts, "xlsx", err)
	}
	reportUnmatched(opts, matrix)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetName("Sheet1", SheetResumen); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := writeResumenSheet(f, styles, cache, opts); err != nil {
		return nil, err
	}
	if err := writeMatrizSheet(f, styles, matrix); err != nil {
		return nil, err
	}
	if len(matrix.Unmatched) > 0 {
		if err := writeUnmatchedSheet(f, styles, matrix.Unmatched); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	opts.logger().Info("workbook exported",
		logging.Int("estudiantes", len(matrix.Rows)),
		logging.Int("materias", len(matrix.Columns)),
		logging.Int("sin_coincidencia", len(matrix.Unmatched)),
	)
	return matrix, nil
}

func writeResumenSheet(f *excelize.File, styles workbookStyles, cache *resultcache.Cache, opts Options) error {
	resp := cache.Response
	total := resp.TotalEstudiantes
	loc := opts.location()
	rows := [][]any{
		{"REPORTE GENERAL DE COMPARACIÓN DE PENSUM"},
		{"Sistema AGORA - " + opts.institution()},
		{},
		{"RESUMEN ESTADÍSTICO"},
		{"Programa", programaLabel(cache.Metadata)},
		{"Total de estudiantes", total},
		{"Estudiantes elegibles", fmt.Sprintf("%d (%s)", resp.Elegibles, porcentaje(comparacion.Porcentaje(resp.Elegibles, total)))},
		{"Estudiantes no elegibles", fmt.Sprintf("%d (%s)", resp.NoElegibles, porcentaje(comparacion.Porcentaje(resp.NoElegibles, total)))},
		{"Semestre límite", optionalInt(cache.Metadata.SemestreLimite)},
		{"Materias del pensum", len(cache.Metadata.PensumMaterias)},
		{},
		{"Fecha de generación", fechaCorta(cache.Metadata.GeneradoEn, loc)},
	}
	if err := setRows(f, SheetResumen, 1, rows); err != nil {
		return err
	}
	for _, cell := range []string{"A1", "A4"} {
		if err := f.SetCellStyle(SheetResumen, cell, cell, styles.title); err != nil {
			return fmt.Errorf("style %s: %w", cell, err)
		}
	}
	if err := f.SetColWidth(SheetResumen, "A", "A", 25); err != nil {
		return fmt.Errorf("set summary width: %w", err)
	}
	if err := f.SetColWidth(SheetResumen, "B", "B", 20); err != nil {
		return fmt.Errorf("set summary width: %w", err)
	}
	return nil
}

func writeMatrizSheet(f *excelize.File, styles workbookStyles, matrix *Matrix) error {
	if _, err := f.NewSheet(SheetMatriz); err != nil {
		return fmt.Errorf("create matrix sheet: %w", err)
	}

	header := []any{"Estudiante", "Estado", "% Avance"}
	for _, column := range matrix.Columns {
		header = append(header, fmt.Sprintf("S%d - %s", column.Semestre, column.Nombre))
	}
	if err := f.SetSheetRow(SheetMatriz, "A1", &header); err != nil {
		return fmt.Errorf("write matrix header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("matrix header width: %w", err)
	}
	if err := f.SetCellStyle(SheetMatriz, "A1", lastCol+"1", styles.header); err != nil {
		return fmt.Errorf("style matrix header: %w", err)
	}

	for i, row := range matrix.Rows {
		values := make([]any, 0, len(row.Cells)+3)
		values = append(values, row.Estudiante.Estudiante, row.Estudiante.EstadoLabel(), row.Estudiante.PorcentajeAvance)
		for _, cell := range row.Cells {
			values = append(values, cell)
		}
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetMatriz, start, &values); err != nil {
			return fmt.Errorf("write matrix row %d: %w", i+1, err)
		}
		for j, cell := range row.Cells {
			name, err := excelize.CoordinatesToCellName(j+4, i+2)
			if err != nil {
				return err
			}
			if style, ok := styles.cells[cell]; ok {
				if err := f.SetCellStyle(SheetMatriz, name, name, style); err != nil {
					return fmt.Errorf("style %s: %w", name, err)
				}
			}
		}
	}

	if err := f.SetColWidth(SheetMatriz, "A", "A", 35); err != nil {
		return fmt.Errorf("set matrix width: %w", err)
	}
	if err := f.SetColWidth(SheetMatriz, "B", "C", 12); err != nil {
		return fmt.Errorf("set matrix width: %w", err)
	}
	if len(matrix.Columns) > 0 {
		if err := f.SetColWidth(SheetMatriz, "D", lastCol, 18); err != nil {
			return fmt.Errorf("set matrix width: %w", err)
		}
	}
	if err := f.SetPanes(SheetMatriz, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("freeze matrix header: %w", err)
	}
	return nil
}

func writeUnmatchedSheet(f *excelize.File, styles workbookStyles, unmatched []Unmatched) error {
	if _, err := f.NewSheet(SheetSinMatch); err != nil {
		return fmt.Errorf("create unmatched sheet: %w", err)
	}
	rows := [][]any{{"Estudiante", "Materia reportada", "Origen"}}
	for _, u := range unmatched {
		rows = append(rows, []any{u.Estudiante, u.Materia, u.Origen})
	}
	if err := setRows(f, SheetSinMatch, 1, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSinMatch, "A1", "C1", styles.header); err != nil {
		return fmt.Errorf("style unmatched header: %w", err)
	}
	if err := f.SetColWidth(SheetSinMatch, "A", "B", 35); err != nil {
		return fmt.Errorf("set unmatched width: %w", err)
	}
	return f.SetColWidth(SheetSinMatch, "C", "C", 28)
}

// WriteStudentWorkbook writes the single-student workbook with Información and
// Materias sheets. It works with or without a cached curriculum.
func WriteStudentWorkbook(w io.Writer, cache *resultcache.Cache, estudiante comparacion.Estudiante, opts Options) error {
	detalle := BuildDetalle(cache, estudiante)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return err
	}
	if err := f.SetSheetName("Sheet1", SheetInformacion); err != nil {
		return fmt.Errorf("rename info sheet: %w", err)
	}

	info := [][]any{
		{"REPORTE DETALLADO DE ESTUDIANTE"},
		{"Sistema AGORA - " + opts.institution()},
		{},
		{"INFORMACIÓN DEL ESTUDIANTE"},
		{"Estudiante", estudiante.Estudiante},
		{"Programa", programaLabel(cache.Metadata)},
		{"Estado final", estudiante.EstadoLabel()},
		{"Semestre máximo", estudiante.SemestreMaximo},
		{"Créditos aprobados", fmt.Sprintf("%d de %d", estudiante.CreditosAprobados, estudiante.CreditosObligatoriosTotales)},
		{"Periodos matriculados", estudiante.PeriodosMatriculados},
		{"% Avance", porcentaje(estudiante.PorcentajeAvance)},
		{"Nivelado", siNo(estudiante.Nivelado)},
		{},
		{"RESUMEN DE MATERIAS"},
		{"Materias faltantes", detalle.Faltantes},
		{"Aprobadas después del límite", detalle.Tardias},
	}
	if detalle.ConPensum {
		info = append(info,
			[]any{"Materias aprobadas", detalle.Aprobadas},
			[]any{"Materias no evaluadas", detalle.NoEvaluadas},
		)
	}
	info = append(info,
		[]any{"Total de materias", len(detalle.Materias)},
		[]any{},
		[]any{"Fecha de generación", fechaCorta(cache.Metadata.GeneradoEn, opts.location())},
	)
	if err := setRows(f, SheetInformacion, 1, info); err != nil {
		return err
	}
	for _, cell := range []string{"A1", "A4", "A14"} {
		if err := f.SetCellStyle(SheetInformacion, cell, cell, styles.title); err != nil {
			return fmt.Errorf("style %s: %w", cell, err)
		}
	}
	if err := f.SetColWidth(SheetInformacion, "A", "A", 25); err != nil {
		return fmt.Errorf("set info width: %w", err)
	}
	if err := f.SetColWidth(SheetInformacion, "B", "B", 30); err != nil {
		return fmt.Errorf("set info width: %w", err)
	}

	if _, err := f.NewSheet(SheetMaterias); err != nil {
		return fmt.Errorf("create subjects sheet: %w", err)
	}
	rows := [][]any{{"Materia", "Semestre", "Créditos", "Estado", "Observaciones"}}
	for _, m := range detalle.Materias {
		rows = append(rows, []any{m.Nombre, optionalInt(m.Semestre), optionalInt(m.Creditos), m.Estado, m.Observacion})
	}
	if err := setRows(f, SheetMaterias, 1, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetMaterias, "A1", "E1", styles.header); err != nil {
		return fmt.Errorf("style subjects header: %w", err)
	}
	for i, m := range detalle.Materias {
		if style, ok := styles.cells[m.Estado]; ok {
			cell, err := excelize.CoordinatesToCellName(4, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(SheetMaterias, cell, cell, style); err != nil {
				return fmt.Errorf("style %s: %w", cell, err)
			}
		}
	}
	widths := []float64{30, 10, 10, 28, 40}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetMaterias, col, col, width); err != nil {
			return fmt.Errorf("set subjects width: %w", err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, firstRow int, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, firstRow+i)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, firstRow+i, err)
		}
	}
	return nil
}

func siNo(v bool) string {
	return textutil.Ternary(v, "Sí", "No")
}
