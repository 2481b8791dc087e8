package comparacion

// Estado codes reported by the backend.
const (
	EstadoNoElegible = 0
	EstadoElegible   = 1
)

// MateriaAprobadaDespuesLimite is a subject approved after the configured
// semester limit. Semestre and Creditos are nil when the backend did not know
// them.
type MateriaAprobadaDespuesLimite struct {
	Materia  string `json:"materia"`
	Semestre *int   `json:"semestre"`
	Creditos *int   `json:"creditos"`
}

// Estudiante is the verification outcome for one transcript.
type Estudiante struct {
	Estudiante                  string                         `json:"estudiante"`
	SemestreMaximo              int                            `json:"semestre_maximo"`
	CreditosAprobados           int                            `json:"creditos_aprobados"`
	CreditosObligatoriosTotales int                            `json:"creditos_obligatorios_totales"`
	PeriodosMatriculados        int                            `json:"periodos_matriculados"`
	PorcentajeAvance            float64                        `json:"porcentaje_avance"`
	Nivelado                    bool                           `json:"nivelado"`
	Estado                      int                            `json:"estado"`
	MateriasFaltantes           []string                       `json:"materias_faltantes_hasta_semestre_limite"`
	MateriasDespuesLimite       []MateriaAprobadaDespuesLimite `json:"materias_aprobadas_despues_semestre_limite"`
}

// Elegible reports whether the backend marked the student as eligible. Codes
// other than EstadoElegible are never treated as eligible.
func (e Estudiante) Elegible() bool {
	return e.Estado == EstadoElegible
}

// EstadoLabel renders the status code for humans.
func (e Estudiante) EstadoLabel() string {
	return EstadoLabel(e.Estado)
}

// EstadoLabel renders a backend status code.
func EstadoLabel(estado int) string {
	switch estado {
	case EstadoElegible:
		return "Elegible"
	case EstadoNoElegible:
		return "No elegible"
	default:
		return "desconocido"
	}
}

// VerificacionMasiva is the aggregate result of one bulk verification call.
type VerificacionMasiva struct {
	TotalEstudiantes int          `json:"total_estudiantes"`
	Elegibles        int          `json:"elegibles"`
	NoElegibles      int          `json:"no_elegibles"`
	Resultados       []Estudiante `json:"resultados"`
}
