package comparison

import (
	"context"
	"os"
	"path/filepath"

	"agora/internal/comparacion"
	"agora/internal/logging"
	"agora/internal/services"
	"agora/internal/services/agora"
)

// Verify checks a single transcript against programaID. It applies the same
// validation as Submit but neither takes the run lock nor touches the cache.
func (s *Service) Verify(ctx context.Context, programaID int, path string) (*comparacion.Estudiante, error) {
	if err := s.Validate(Request{ProgramaID: programaID, Files: []string{path}}); err != nil {
		return nil, err
	}

	ctx = services.WithProgramaID(ctx, programaID)
	ctx = services.WithOperation(ctx, "verify")
	logger := logging.WithContext(ctx, s.logger)

	f, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "comparison", "verify", "open "+path, err)
	}
	defer f.Close()

	estudiante, err := s.client.VerificarIndividual(ctx, programaID, agora.Upload{Name: filepath.Base(path), Content: f})
	if err != nil {
		logger.Error("individual verification failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		)
		return nil, err
	}
	logger.Info("individual verification completed",
		logging.String("archivo", filepath.Base(path)),
		logging.Int("estado", estudiante.Estado),
	)
	return estudiante, nil
}
