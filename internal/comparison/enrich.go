package comparison

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"agora/internal/logging"
	"agora/internal/pensum"
	"agora/internal/resultcache"
	"agora/internal/services/agora"
)

type curriculum struct {
	pensumID *int
	nombre   string
	materias []pensum.MateriaResumen
}

// enrich looks up the current curriculum and the eligibility configuration
// concurrently. Both lookups settle before the metadata is assembled; a
// failed lookup leaves its fields null.
func (s *Service) enrich(ctx context.Context, programaID int) resultcache.Metadata {
	logger := logging.WithContext(ctx, s.logger)
	var (
		cur  *curriculum
		conf *agora.Configuracion
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		result, err := s.fetchCurriculum(egCtx, programaID)
		if err != nil {
			logging.WarnWithContext(logger, "curriculum lookup failed", "enrichment_curriculum_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that the program has an active pensum"),
				logging.String(logging.FieldImpact, "matrix export unavailable for this run"),
			)
		}
		cur = result
		return nil
	})
	eg.Go(func() error {
		result, err := s.client.ObtenerConfiguracion(egCtx, programaID)
		if err != nil {
			logging.WarnWithContext(logger, "configuration lookup failed", "enrichment_configuration_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the program's eligibility configuration"),
				logging.String(logging.FieldImpact, "semester limit unknown; every subject is treated as evaluated"),
			)
			return nil
		}
		conf = result
		return nil
	})
	_ = eg.Wait()

	meta := resultcache.Metadata{
		ProgramaID:     programaID,
		PensumMaterias: []pensum.MateriaResumen{},
	}
	if cur != nil {
		meta.PensumID = cur.pensumID
		meta.PensumMaterias = cur.materias
		if cur.nombre != "" {
			nombre := cur.nombre
			meta.ProgramaNombre = &nombre
		}
	}
	if conf != nil {
		if conf.SemestreLimiteElectivas > 0 {
			limite := conf.SemestreLimiteElectivas
			meta.SemestreLimite = &limite
		}
		if meta.ProgramaNombre == nil && strings.TrimSpace(conf.ProgramaNombre) != "" {
			nombre := strings.TrimSpace(conf.ProgramaNombre)
			meta.ProgramaNombre = &nombre
		}
	}

	logger.Info("comparison metadata enriched",
		logging.Int("pensum_materias", len(meta.PensumMaterias)),
		logging.Bool("semestre_limite", meta.SemestreLimite != nil),
	)
	return meta
}

// fetchCurriculum returns whatever it resolved before failing, so a program
// name survives a failed subject listing.
func (s *Service) fetchCurriculum(ctx context.Context, programaID int) (*curriculum, error) {
	actual, err := s.client.ObtenerPensumActual(ctx, programaID)
	if err != nil {
		return nil, err
	}
	result := &curriculum{
		nombre:   strings.TrimSpace(actual.ProgramaNombre),
		materias: []pensum.MateriaResumen{},
	}
	if actual.PensumActual == nil {
		s.logger.Info("program has no active curriculum", logging.Int(logging.FieldProgramaID, programaID))
		return result, nil
	}
	if result.nombre == "" {
		result.nombre = strings.TrimSpace(actual.PensumActual.ProgramaNombre)
	}
	pensumID := actual.PensumActual.PensumID
	result.pensumID = &pensumID

	semestres, err := s.client.ObtenerMateriasPorSemestre(ctx, pensumID)
	if err != nil {
		return result, err
	}
	result.materias = pensum.BuildResumen(semestres)
	return result, nil
}
