package pensum

// Materia is one curriculum subject as returned by the backend.
type Materia struct {
	MateriaID     int    `json:"materia_id"`
	NombreMateria string `json:"nombre_materia"`
	Creditos      int    `json:"creditos"`
	EsElectiva    bool   `json:"es_electiva"`
	Semestre      int    `json:"semestre"`
}

// Semestre groups the subjects of one semester.
type Semestre struct {
	Semestre        int       `json:"semestre"`
	Materias        []Materia `json:"materias"`
	CreditosTotales int       `json:"creditos_totales"`
}

// Actual describes the active curriculum of a program.
type Actual struct {
	PensumID                    int    `json:"pensum_id"`
	ProgramaID                  int    `json:"programa_id"`
	ProgramaNombre              string `json:"programa_nombre"`
	AnioCreacion                int    `json:"anio_creacion"`
	EsActivo                    bool   `json:"es_activo"`
	CreditosObligatoriosTotales int    `json:"creditos_obligatorios_totales"`
	TotalMateriasObligatorias   int    `json:"total_materias_obligatorias"`
	TotalMateriasElectivas      int    `json:"total_materias_electivas"`
}

// ProgramaPensum is the payload of the current-curriculum lookup. PensumActual
// is nil when the program has no active curriculum.
type ProgramaPensum struct {
	ProgramaID     int     `json:"programa_id"`
	ProgramaNombre string  `json:"programa_nombre"`
	PensumActual   *Actual `json:"pensum_actual"`
	Message        string  `json:"message,omitempty"`
}

// MateriasResponse is the flat subject listing of a curriculum.
type MateriasResponse struct {
	Message  string    `json:"message"`
	Materias []Materia `json:"materias"`
	Total    int       `json:"total"`
}

// MateriaResumen is one export column: a curriculum subject with its
// normalized name and stable ordinal.
type MateriaResumen struct {
	MateriaID         int    `json:"materiaId"`
	Nombre            string `json:"nombre"`
	Semestre          int    `json:"semestre"`
	NombreNormalizado string `json:"nombreNormalizado"`
	EsElectiva        bool   `json:"esElectiva"`
	Creditos          int    `json:"creditos"`
	Orden             int    `json:"orden"`
}
