package export

import (
	"fmt"
	"slices"

	"agora/internal/comparacion"
	"agora/internal/pensum"
	"agora/internal/resultcache"
	"agora/internal/services"
	"agora/internal/textutil"
)

// Matrix cell values.
const (
	CellFalta          = "Falta"
	CellAprobadaTarde  = "Aprobada después del límite"
	CellAprobada       = "Aprobada"
	CellNoEvaluada     = "No evaluada"
	OrigenFaltante     = "Faltante"
	OrigenDespuesLimit = "Aprobada después del límite"
)

// ErrMissingCurriculum refuses exports that need curriculum columns.
var ErrMissingCurriculum = fmt.Errorf("%w: la exportación de matriz requiere las materias del pensum; ejecute una nueva comparación", services.ErrExportPrecondition)

// Row is one student with one cell per matrix column.
type Row struct {
	Estudiante comparacion.Estudiante
	Cells      []string
}

// Unmatched is a backend subject name that matched no curriculum column.
type Unmatched struct {
	Estudiante string
	Materia    string
	Origen     string
}

// Matrix is the student by subject status grid.
type Matrix struct {
	Columns   []pensum.MateriaResumen
	Rows      []Row
	Unmatched []Unmatched
}

// BuildMatrix derives the status grid from a cached run. Columns follow the
// curriculum ordinal.
func BuildMatrix(cache *resultcache.Cache) (*Matrix, error) {
	if !cache.HasCurriculum() {
		return nil, ErrMissingCurriculum
	}

	columns := slices.Clone(cache.Metadata.PensumMaterias)
	slices.SortStableFunc(columns, func(a, b pensum.MateriaResumen) int {
		return a.Orden - b.Orden
	})

	known := make(map[string]struct{}, len(columns))
	for i := range columns {
		if columns[i].NombreNormalizado == "" {
			columns[i].NombreNormalizado = textutil.Normalize(columns[i].Nombre)
		}
		known[columns[i].NombreNormalizado] = struct{}{}
	}

	matrix := &Matrix{
		Columns: columns,
		Rows:    make([]Row, 0, len(cache.Response.Resultados)),
	}
	for _, estudiante := range cache.Response.Resultados {
		faltantes, tardias := studentSets(estudiante)
		cells := make([]string, len(columns))
		for i, column := range columns {
			cells[i] = cellFor(column, faltantes, tardias, cache.Metadata.SemestreLimite)
		}
		matrix.Rows = append(matrix.Rows, Row{Estudiante: estudiante, Cells: cells})

		for _, nombre := range estudiante.MateriasFaltantes {
			if _, ok := known[textutil.Normalize(nombre)]; !ok {
				matrix.Unmatched = append(matrix.Unmatched, Unmatched{Estudiante: estudiante.Estudiante, Materia: nombre, Origen: OrigenFaltante})
			}
		}
		for _, materia := range estudiante.MateriasDespuesLimite {
			if _, ok := known[textutil.Normalize(materia.Materia)]; !ok {
				matrix.Unmatched = append(matrix.Unmatched, Unmatched{Estudiante: estudiante.Estudiante, Materia: materia.Materia, Origen: OrigenDespuesLimit})
			}
		}
	}
	return matrix, nil
}

func studentSets(estudiante comparacion.Estudiante) (map[string]struct{}, map[string]struct{}) {
	faltantes := make(map[string]struct{}, len(estudiante.MateriasFaltantes))
	for _, nombre := range estudiante.MateriasFaltantes {
		faltantes[textutil.Normalize(nombre)] = struct{}{}
	}
	tardias := make(map[string]struct{}, len(estudiante.MateriasDespuesLimite))
	for _, materia := range estudiante.MateriasDespuesLimite {
		tardias[textutil.Normalize(materia.Materia)] = struct{}{}
	}
	return faltantes, tardias
}

func cellFor(column pensum.MateriaResumen, faltantes, tardias map[string]struct{}, limite *int) string {
	if _, ok := faltantes[column.NombreNormalizado]; ok {
		return CellFalta
	}
	if _, ok := tardias[column.NombreNormalizado]; ok {
		return CellAprobadaTarde
	}
	if limite == nil || column.Semestre <= *limite {
		return CellAprobada
	}
	return CellNoEvaluada
}

// ColumnTotals counts each cell value per column.
type ColumnTotals struct {
	Materia    pensum.MateriaResumen
	Faltan     int
	Tardias    int
	Aprobadas  int
	NoEvaluada int
}

// Totals aggregates the matrix by subject.
func (m *Matrix) Totals() []ColumnTotals {
	totals := make([]ColumnTotals, len(m.Columns))
	for i, column := range m.Columns {
		totals[i].Materia = column
	}
	for _, row := range m.Rows {
		for i, cell := range row.Cells {
			switch cell {
			case CellFalta:
				totals[i].Faltan++
			case CellAprobadaTarde:
				totals[i].Tardias++
			case CellAprobada:
				totals[i].Aprobadas++
			default:
				totals[i].NoEvaluada++
			}
		}
	}
	return totals
}
