package export

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"agora/internal/comparacion"
	"agora/internal/logging"
	"agora/internal/resultcache"
	"agora/internal/textutil"
)

const defaultInstitution = "Universidad del Cauca"

// Options configures every export format. A nil Location renders generadoEn in
// UTC. PorMateria switches the report detail table to one row per subject and
// Filtro narrows the student rows of the report.
type Options struct {
	Institution string
	Location    *time.Location
	PorMateria  bool
	Filtro      comparacion.Filtro
	Logger      *slog.Logger
}

func (o Options) institution() string {
	if s := strings.TrimSpace(o.Institution); s != "" {
		return s
	}
	return defaultInstitution
}

func (o Options) location() *time.Location {
	if o.Location != nil {
		return o.Location
	}
	return time.UTC
}

func (o Options) logger() *slog.Logger {
	return logging.NewComponentLogger(o.Logger, "export")
}

var meses = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// fechaLarga renders "14 de marzo de 2026, 15:09".
func fechaLarga(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("%d de %s de %d, %02d:%02d", t.Day(), meses[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

func fechaCorta(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

func porcentaje(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func optionalInt(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}

func optionalString(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return *v
}

func programaLabel(meta resultcache.Metadata) string {
	if meta.ProgramaNombre != nil && strings.TrimSpace(*meta.ProgramaNombre) != "" {
		return *meta.ProgramaNombre
	}
	if meta.ProgramaID > 0 {
		return fmt.Sprintf("Programa %d", meta.ProgramaID)
	}
	return "Programa no registrado"
}

// FileName builds the default export file name: reporte_general_<fecha>.<ext>
// for the whole run, reporte_<estudiante>_<fecha>.<ext> for one student.
func FileName(cache *resultcache.Cache, estudiante, ext string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	fecha := time.Now().In(loc).Format("2006-01-02")
	if cache != nil && !cache.Metadata.GeneradoEn.IsZero() {
		fecha = fechaCorta(cache.Metadata.GeneradoEn, loc)
	}
	if strings.TrimSpace(estudiante) == "" {
		return fmt.Sprintf("reporte_general_%s.%s", fecha, ext)
	}
	return textutil.SanitizeFileName(fmt.Sprintf("reporte_%s_%s.%s", textutil.SanitizeToken(estudiante), fecha, ext))
}

func refuse(opts Options, formato string, err error) error {
	logging.WarnWithContext(opts.logger(), "matrix export refused", "export_precondition_failed",
		logging.String("formato", formato),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "run a new comparison so the curriculum is cached"),
		logging.String(logging.FieldImpact, "no file was written"),
	)
	return err
}

func reportUnmatched(opts Options, matrix *Matrix) {
	if len(matrix.Unmatched) == 0 {
		return
	}
	logging.WarnWithContext(opts.logger(), "subject names not found in curriculum", "export_unmatched_subjects",
		logging.Int("sin_coincidencia", len(matrix.Unmatched)),
		logging.String("ejemplo", matrix.Unmatched[0].Materia),
		logging.String(logging.FieldErrorHint, "compare backend subject names with the curriculum listing"),
		logging.String(logging.FieldImpact, "unmatched names are listed on the Sin coincidencia sheet"),
	)
}
