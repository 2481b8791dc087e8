package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"agora/internal/comparacion"
	"agora/internal/logging"
	"agora/internal/resultcache"
	"agora/internal/textutil"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

type reportData struct {
	Institution    string
	Programa       string
	Total          int
	Elegibles      int
	NoElegibles    int
	PctElegibles   string
	PctNoElegibles string
	SemestreLimite string
	PromedioAvance string
	Generado       string
	PorMateria     bool
	ConPensum      bool
	FiltroDesc     string
	Estudiantes    []studentRow
	Materias       []materiaRow
}

type studentRow struct {
	Nombre         string
	Estado         string
	EstadoClase    string
	SemestreMaximo int
	Creditos       string
	Avance         string
	Faltantes      int
}

type materiaRow struct {
	Semestre    string
	Nombre      string
	Faltan      int
	Tardias     int
	Aprobadas   int
	NoEvaluadas int
}

// WriteReport renders the printable run report. The detail table lists
// students, or subjects when opts.PorMateria is set.
func WriteReport(w io.Writer, cache *resultcache.Cache, opts Options) error {
	if cache == nil {
		return fmt.Errorf("write report: no cached results")
	}
	resp := cache.Response
	stats := comparacion.CalcularEstadisticas(resp.Resultados)
	data := reportData{
		Institution:    opts.institution(),
		Programa:       programaLabel(cache.Metadata),
		Total:          resp.TotalEstudiantes,
		Elegibles:      resp.Elegibles,
		NoElegibles:    resp.NoElegibles,
		PctElegibles:   porcentaje(comparacion.Porcentaje(resp.Elegibles, resp.TotalEstudiantes)),
		PctNoElegibles: porcentaje(comparacion.Porcentaje(resp.NoElegibles, resp.TotalEstudiantes)),
		SemestreLimite: optionalInt(cache.Metadata.SemestreLimite),
		PromedioAvance: porcentaje(stats.PromedioAvance),
		Generado:       fechaLarga(cache.Metadata.GeneradoEn, opts.location()),
		PorMateria:     opts.PorMateria,
		ConPensum:      cache.HasCurriculum(),
		FiltroDesc:     describeFiltro(opts.Filtro),
	}

	if opts.PorMateria {
		data.Materias = materiaRows(cache, opts)
	} else {
		for _, e := range comparacion.Filtrar(resp.Resultados, opts.Filtro) {
			data.Estudiantes = append(data.Estudiantes, studentRow{
				Nombre:         e.Estudiante,
				Estado:         e.EstadoLabel(),
				EstadoClase:    estadoClase(e.Estado),
				SemestreMaximo: e.SemestreMaximo,
				Creditos:       fmt.Sprintf("%d/%d", e.CreditosAprobados, e.CreditosObligatoriosTotales),
				Avance:         porcentaje(e.PorcentajeAvance),
				Faltantes:      len(e.MateriasFaltantes),
			})
		}
	}

	if err := templates.ExecuteTemplate(w, "report", data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func materiaRows(cache *resultcache.Cache, opts Options) []materiaRow {
	if matrix, err := BuildMatrix(cache); err == nil {
		reportUnmatched(opts, matrix)
		totals := matrix.Totals()
		rows := make([]materiaRow, 0, len(totals))
		for _, t := range totals {
			rows = append(rows, materiaRow{
				Semestre:    strconv.Itoa(t.Materia.Semestre),
				Nombre:      t.Materia.Nombre,
				Faltan:      t.Faltan,
				Tardias:     t.Tardias,
				Aprobadas:   t.Aprobadas,
				NoEvaluadas: t.NoEvaluada,
			})
		}
		return rows
	}

	// Without a curriculum only backend-reported names can be aggregated.
	index := make(map[string]int)
	var rows []materiaRow
	add := func(nombre string, semestre *int, tarde bool) {
		key := textutil.Normalize(nombre)
		if key == "" {
			return
		}
		pos, ok := index[key]
		if !ok {
			pos = len(rows)
			index[key] = pos
			rows = append(rows, materiaRow{Semestre: optionalInt(semestre), Nombre: nombre})
		}
		if tarde {
			rows[pos].Tardias++
		} else {
			rows[pos].Faltan++
		}
	}
	for _, e := range cache.Response.Resultados {
		for _, nombre := range e.MateriasFaltantes {
			add(nombre, nil, false)
		}
		for _, m := range e.MateriasDespuesLimite {
			add(m.Materia, m.Semestre, true)
		}
	}
	return rows
}

type studentData struct {
	Institution    string
	Programa       string
	Estudiante     string
	SemestreMaximo int
	Periodos       int
	Creditos       string
	Avance         string
	Nivelado       string
	SemestreLimite string
	Materias       []studentMateria
	Faltantes      int
	Tardias        int
	Aprobadas      int
	NoEvaluadas    int
	ConPensum      bool
	EstadoClase    string
	Resultado      string
	Generado       string
}

type studentMateria struct {
	Nombre      string
	Semestre    string
	Creditos    string
	Estado      string
	Observacion string
	Clase       string
}

// WriteStudentReport renders the printable report of one student.
func WriteStudentReport(w io.Writer, cache *resultcache.Cache, estudiante comparacion.Estudiante, opts Options) error {
	if cache == nil {
		return fmt.Errorf("write student report: no cached results")
	}
	detalle := BuildDetalle(cache, estudiante)
	data := studentData{
		Institution:    opts.institution(),
		Programa:       programaLabel(cache.Metadata),
		Estudiante:     estudiante.Estudiante,
		SemestreMaximo: estudiante.SemestreMaximo,
		Periodos:       estudiante.PeriodosMatriculados,
		Creditos:       fmt.Sprintf("%d de %d", estudiante.CreditosAprobados, estudiante.CreditosObligatoriosTotales),
		Avance:         porcentaje(estudiante.PorcentajeAvance),
		Nivelado:       siNo(estudiante.Nivelado),
		SemestreLimite: optionalInt(cache.Metadata.SemestreLimite),
		Faltantes:      detalle.Faltantes,
		Tardias:        detalle.Tardias,
		Aprobadas:      detalle.Aprobadas,
		NoEvaluadas:    detalle.NoEvaluadas,
		ConPensum:      detalle.ConPensum,
		EstadoClase:    estadoClase(estudiante.Estado),
		Resultado:      resultado(estudiante),
		Generado:       fechaLarga(cache.Metadata.GeneradoEn, opts.location()),
	}
	for _, m := range detalle.Materias {
		data.Materias = append(data.Materias, studentMateria{
			Nombre:      m.Nombre,
			Semestre:    optionalInt(m.Semestre),
			Creditos:    optionalInt(m.Creditos),
			Estado:      m.Estado,
			Observacion: m.Observacion,
			Clase:       cellClase(m.Estado),
		})
	}

	if err := templates.ExecuteTemplate(w, "student", data); err != nil {
		return fmt.Errorf("render student report: %w", err)
	}
	opts.logger().Debug("student report rendered", logging.Int("materias", len(data.Materias)))
	return nil
}

func estadoClase(estado int) string {
	switch estado {
	case comparacion.EstadoElegible:
		return "elegible"
	case comparacion.EstadoNoElegible:
		return "no-elegible"
	default:
		return "desconocido"
	}
}

func cellClase(estado string) string {
	switch estado {
	case CellFalta:
		return "falta"
	case CellAprobadaTarde:
		return "tarde"
	case CellAprobada:
		return "aprobada"
	default:
		return "no-evaluada"
	}
}

func resultado(e comparacion.Estudiante) string {
	switch e.Estado {
	case comparacion.EstadoElegible:
		return "El estudiante SÍ es elegible"
	case comparacion.EstadoNoElegible:
		return "El estudiante NO es elegible"
	default:
		return "Estado de elegibilidad desconocido"
	}
}

func describeFiltro(f comparacion.Filtro) string {
	var parts []string
	if s := strings.TrimSpace(f.Busqueda); s != "" {
		parts = append(parts, "búsqueda: "+s)
	}
	switch f.Estado {
	case comparacion.FiltroElegible:
		parts = append(parts, "solo elegibles")
	case comparacion.FiltroNoElegible:
		parts = append(parts, "solo no elegibles")
	}
	return strings.Join(parts, ", ")
}
