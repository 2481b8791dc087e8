package comparacion

import (
	"fmt"
	"math"
	"strings"

	"agora/internal/textutil"
)

// EstadoFiltro selects students by eligibility.
type EstadoFiltro string

const (
	FiltroTodos      EstadoFiltro = "TODOS"
	FiltroElegible   EstadoFiltro = "ELEGIBLE"
	FiltroNoElegible EstadoFiltro = "NO_ELEGIBLE"
)

// ParseEstadoFiltro accepts the filter names case-insensitively. The empty
// string selects every student.
func ParseEstadoFiltro(value string) (EstadoFiltro, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", string(FiltroTodos):
		return FiltroTodos, nil
	case string(FiltroElegible), "ELEGIBLES", "APTO":
		return FiltroElegible, nil
	case string(FiltroNoElegible), "NO_ELEGIBLES", "NO_APTO":
		return FiltroNoElegible, nil
	default:
		return "", fmt.Errorf("estado filter %q: expected TODOS, ELEGIBLE or NO_ELEGIBLE", value)
	}
}

// Filtro narrows a result list.
type Filtro struct {
	Busqueda string
	Estado   EstadoFiltro
}

// Filtrar returns the students whose identifier contains Busqueda (ignoring case
// and diacritics) and whose status matches Estado.
func Filtrar(resultados []Estudiante, filtro Filtro) []Estudiante {
	buscar := textutil.Normalize(filtro.Busqueda) != ""
	out := make([]Estudiante, 0, len(resultados))
	for _, estudiante := range resultados {
		if buscar && !textutil.Contains(estudiante.Estudiante, filtro.Busqueda) {
			continue
		}
		switch filtro.Estado {
		case FiltroElegible:
			if !estudiante.Elegible() {
				continue
			}
		case FiltroNoElegible:
			if estudiante.Estado != EstadoNoElegible {
				continue
			}
		}
		out = append(out, estudiante)
	}
	return out
}

// Buscar finds a student by identifier. Exact matches win over normalized ones.
func Buscar(resultados []Estudiante, id string) (Estudiante, bool) {
	for _, estudiante := range resultados {
		if estudiante.Estudiante == id {
			return estudiante, true
		}
	}
	if textutil.Normalize(id) == "" {
		return Estudiante{}, false
	}
	for _, estudiante := range resultados {
		if textutil.EqualFold(estudiante.Estudiante, id) {
			return estudiante, true
		}
	}
	return Estudiante{}, false
}

// Estadisticas summarizes a run.
type Estadisticas struct {
	Total                 int     `json:"total"`
	Elegibles             int     `json:"elegibles"`
	NoElegibles           int     `json:"noElegibles"`
	Desconocidos          int     `json:"desconocidos"`
	PorcentajeElegibles   float64 `json:"porcentajeElegibles"`
	PorcentajeNoElegibles float64 `json:"porcentajeNoElegibles"`
	PromedioAvance        float64 `json:"promedioAvance"`
}

// CalcularEstadisticas counts results by status. Percentages are rounded to one
// decimal and are zero for an empty run.
func CalcularEstadisticas(resultados []Estudiante) Estadisticas {
	stats := Estadisticas{Total: len(resultados)}
	var avance float64
	for _, estudiante := range resultados {
		switch estudiante.Estado {
		case EstadoElegible:
			stats.Elegibles++
		case EstadoNoElegible:
			stats.NoElegibles++
		default:
			stats.Desconocidos++
		}
		avance += estudiante.PorcentajeAvance
	}
	if stats.Total > 0 {
		stats.PorcentajeElegibles = Porcentaje(stats.Elegibles, stats.Total)
		stats.PorcentajeNoElegibles = Porcentaje(stats.NoElegibles, stats.Total)
		stats.PromedioAvance = roundOne(avance / float64(stats.Total))
	}
	return stats
}

// Porcentaje returns part/total*100 rounded to one decimal; zero when total is 0.
func Porcentaje(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return roundOne(float64(part) / float64(total) * 100)
}

func roundOne(v float64) float64 {
	return math.Round(v*10) / 10
}
