package export

import (
	"agora/internal/comparacion"
	"agora/internal/resultcache"
	"agora/internal/textutil"
)

// MateriaDetalle is one subject line of a single-student report.
type MateriaDetalle struct {
	Nombre      string
	Semestre    *int
	Creditos    *int
	Estado      string
	Observacion string
}

// Detalle is the per-student view used by the student workbook and report.
type Detalle struct {
	Estudiante  comparacion.Estudiante
	Materias    []MateriaDetalle
	Faltantes   int
	Tardias     int
	Aprobadas   int
	NoEvaluadas int
	ConPensum   bool
}

// BuildDetalle lists a student's subjects. With a cached curriculum every
// subject is classified like a matrix row; without one only the subjects the
// backend reported are listed.
func BuildDetalle(cache *resultcache.Cache, estudiante comparacion.Estudiante) Detalle {
	detalle := Detalle{Estudiante: estudiante, ConPensum: cache.HasCurriculum()}

	if detalle.ConPensum {
		matrix, err := BuildMatrix(&resultcache.Cache{
			Response: comparacion.VerificacionMasiva{Resultados: []comparacion.Estudiante{estudiante}},
			Metadata: cache.Metadata,
		})
		if err == nil && len(matrix.Rows) == 1 {
			for i, column := range matrix.Columns {
				semestre, creditos := column.Semestre, column.Creditos
				detalle.add(MateriaDetalle{
					Nombre:   column.Nombre,
					Semestre: &semestre,
					Creditos: &creditos,
					Estado:   matrix.Rows[0].Cells[i],
				})
			}
			for _, u := range matrix.Unmatched {
				estado := CellFalta
				if u.Origen == OrigenDespuesLimit {
					estado = CellAprobadaTarde
				}
				detalle.add(MateriaDetalle{Nombre: u.Materia, Estado: estado, Observacion: "No coincide con ninguna materia del pensum"})
			}
			return detalle
		}
	}

	for _, nombre := range estudiante.MateriasFaltantes {
		detalle.add(MateriaDetalle{Nombre: nombre, Estado: CellFalta})
	}
	for _, materia := range estudiante.MateriasDespuesLimite {
		if textutil.Normalize(materia.Materia) == "" {
			continue
		}
		detalle.add(MateriaDetalle{
			Nombre:   materia.Materia,
			Semestre: materia.Semestre,
			Creditos: materia.Creditos,
			Estado:   CellAprobadaTarde,
		})
	}
	return detalle
}

func (d *Detalle) add(m MateriaDetalle) {
	if m.Observacion == "" {
		m.Observacion = observacion(m.Estado)
	}
	switch m.Estado {
	case CellFalta:
		d.Faltantes++
	case CellAprobadaTarde:
		d.Tardias++
	case CellAprobada:
		d.Aprobadas++
	default:
		d.NoEvaluadas++
	}
	d.Materias = append(d.Materias, m)
}

func observacion(estado string) string {
	switch estado {
	case CellFalta:
		return "Materia pendiente hasta el semestre límite"
	case CellAprobadaTarde:
		return "Aprobada después del semestre límite"
	case CellAprobada:
		return "Materia completada"
	default:
		return "Fuera del semestre límite"
	}
}
