package resultcache

import (
	"time"

	"agora/internal/comparacion"
	"agora/internal/pensum"
)

// Metadata describes the context a run was produced in. Nullable fields are nil
// when enrichment could not determine them.
type Metadata struct {
	ProgramaID     int                     `json:"programaId"`
	ProgramaNombre *string                 `json:"programaNombre"`
	PensumID       *int                    `json:"pensumId"`
	PensumMaterias []pensum.MateriaResumen `json:"pensumMaterias"`
	SemestreLimite *int                    `json:"semestreLimite"`
	GeneradoEn     time.Time               `json:"generadoEn"`
	RunID          string                  `json:"runId,omitempty"`
}

// Cache is the persisted unit: one verification response plus its metadata.
type Cache struct {
	Response comparacion.VerificacionMasiva `json:"response"`
	Metadata Metadata                       `json:"metadata"`
}

// HasCurriculum reports whether the run carries the subject list needed for the
// matrix export.
func (c *Cache) HasCurriculum() bool {
	return c != nil && len(c.Metadata.PensumMaterias) > 0
}
