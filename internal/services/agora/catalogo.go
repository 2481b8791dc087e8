package agora

import (
	"context"
	"fmt"
	"net/http"

	"agora/internal/pensum"
	"agora/internal/services"
)

// Programa is one academic program.
type Programa struct {
	ProgramaID     int    `json:"programa_id"`
	NombrePrograma string `json:"nombre_programa"`
	EsActivo       bool   `json:"es_activo"`
	PensumActivoID *int   `json:"pensum_activo_id"`
}

// ProgramasResponse is the program listing payload.
type ProgramasResponse struct {
	Message   string     `json:"message"`
	Programas []Programa `json:"programas"`
	Total     int        `json:"total"`
}

// Configuracion is the active eligibility configuration of a program.
type Configuracion struct {
	ConfiguracionID         int     `json:"configuracion_id"`
	ProgramaID              int     `json:"programa_id"`
	ProgramaNombre          string  `json:"programa_nombre"`
	NotaAprobatoria         float64 `json:"nota_aprobatoria"`
	SemestreLimiteElectivas int     `json:"semestre_limite_electivas"`
	EsActivo                bool    `json:"es_activo"`
	FechaCreacion           string  `json:"fecha_creacion"`
	FechaActualizacion      string  `json:"fecha_actualizacion"`
}

// ListarProgramas returns every program known to the backend.
func (c *Client) ListarProgramas(ctx context.Context) ([]Programa, error) {
	var out ProgramasResponse
	err := c.do(ctx, request{
		operation: "listar_programas",
		method:    http.MethodGet,
		path:      "programa/",
		timeout:   c.lookupTimeout,
		fallback:  "Error listando programas",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Programas == nil {
		out.Programas = []Programa{}
	}
	return out.Programas, nil
}

// ObtenerPensumActual returns the active curriculum of a program.
func (c *Client) ObtenerPensumActual(ctx context.Context, programaID int) (*pensum.ProgramaPensum, error) {
	if programaID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "agora", "obtener_pensum_actual", "programa_id must be positive", nil)
	}
	var out pensum.ProgramaPensum
	err := c.do(ctx, request{
		operation: "obtener_pensum_actual",
		method:    http.MethodGet,
		path:      fmt.Sprintf("pensum/programa/%d/actual/", programaID),
		timeout:   c.lookupTimeout,
		fallback:  "Error obteniendo pensum actual",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ObtenerMateriasPorSemestre returns the curriculum subjects grouped by
// semester.
func (c *Client) ObtenerMateriasPorSemestre(ctx context.Context, pensumID int) ([]pensum.Semestre, error) {
	if pensumID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "agora", "obtener_materias", "pensum_id must be positive", nil)
	}
	var out pensum.MateriasResponse
	err := c.do(ctx, request{
		operation: "obtener_materias",
		method:    http.MethodGet,
		path:      fmt.Sprintf("materia/pensum/%d/", pensumID),
		timeout:   c.lookupTimeout,
		fallback:  "Error obteniendo materias por pensum",
	}, &out)
	if err != nil {
		return nil, err
	}
	return pensum.AgruparPorSemestre(out.Materias), nil
}

// ObtenerConfiguracion returns the eligibility configuration of a program.
func (c *Client) ObtenerConfiguracion(ctx context.Context, programaID int) (*Configuracion, error) {
	if programaID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "agora", "obtener_configuracion", "programa_id must be positive", nil)
	}
	var out Configuracion
	err := c.do(ctx, request{
		operation: "obtener_configuracion",
		method:    http.MethodGet,
		path:      fmt.Sprintf("configuracion/programa/%d/", programaID),
		timeout:   c.lookupTimeout,
		fallback:  "Error al obtener configuración",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
