package comparison

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"agora/internal/comparacion"
	"agora/internal/config"
	"agora/internal/logging"
	"agora/internal/pensum"
	"agora/internal/resultcache"
	"agora/internal/services"
	"agora/internal/services/agora"
)

// ErrRunInProgress reports that another process holds the comparison lock.
var ErrRunInProgress = errors.New("another comparison is already running")

// Backend is the subset of the AGORA client a comparison needs.
type Backend interface {
	VerificarMasiva(ctx context.Context, programaID int, files []agora.Upload) (*comparacion.VerificacionMasiva, error)
	VerificarIndividual(ctx context.Context, programaID int, file agora.Upload) (*comparacion.Estudiante, error)
	ObtenerPensumActual(ctx context.Context, programaID int) (*pensum.ProgramaPensum, error)
	ObtenerMateriasPorSemestre(ctx context.Context, pensumID int) ([]pensum.Semestre, error)
	ObtenerConfiguracion(ctx context.Context, programaID int) (*agora.Configuracion, error)
}

// Deps carries the collaborators of a Service. Config, Client and Session are
// required; Now and NewRunID default to the wall clock and random uuids.
type Deps struct {
	Config       *config.Config
	Client       Backend
	Session      *resultcache.Session
	Logger       *slog.Logger
	Now          func() time.Time
	NewRunID     func() string
	OnTransition func(Transition)
}

// Service orchestrates comparison submissions.
type Service struct {
	client       Backend
	session      *resultcache.Session
	logger       *slog.Logger
	now          func() time.Time
	newRunID     func() string
	onTransition func(Transition)
	lockPath     string
	stateDir     string
	maxFiles     int
	allowed      []string
	validate     *validator.Validate

	mu    sync.Mutex
	state State
}

// NewService validates deps and returns an idle Service.
func NewService(deps Deps) (*Service, error) {
	if deps.Config == nil || deps.Client == nil || deps.Session == nil {
		return nil, errors.New("comparison service requires config, client, and session")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	newRunID := deps.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}
	allowed := append([]string(nil), deps.Config.Comparison.AllowedExtensions...)
	return &Service{
		client:       deps.Client,
		session:      deps.Session,
		logger:       logging.NewComponentLogger(deps.Logger, "comparison"),
		now:          now,
		newRunID:     newRunID,
		onTransition: deps.OnTransition,
		lockPath:     deps.Config.RunLockPath(),
		stateDir:     deps.Config.Paths.StateDir,
		maxFiles:     deps.Config.Comparison.MaxFiles,
		allowed:      allowed,
		validate:     newValidator(allowed),
		state:        StateIdle,
	}, nil
}

// Begin discards any cached run, as entering the comparison view does.
func (s *Service) Begin(ctx context.Context) {
	s.session.Clear(ctx)
}

// Submit validates req, uploads the transcripts, enriches the response and
// caches the run. Validation and upload failures are returned unchanged and
// leave the cache untouched.
func (s *Service) Submit(ctx context.Context, req Request) (*resultcache.Cache, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.stateDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrStorage, "comparison", "lock", "create state directory", err)
	}
	lock := flock.New(s.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "comparison", "lock", "acquire run lock", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrRunInProgress, s.lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("failed to release comparison lock", logging.Error(err))
		}
	}()

	runID := s.newRunID()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithRequestID(ctx, runID)
	ctx = services.WithProgramaID(ctx, req.ProgramaID)
	ctx = services.WithOperation(ctx, "compare")
	logger := logging.WithContext(ctx, s.logger)

	s.transition(runID, StateUploading, nil)
	started := s.now()
	resp, err := s.upload(ctx, req)
	if err != nil {
		logger.Error("bulk verification failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		)
		s.transition(runID, StateFailure, err)
		s.transition(runID, StateIdle, nil)
		return nil, err
	}
	logger.Info("bulk verification completed",
		logging.Int("archivos", len(req.Files)),
		logging.Int("total_estudiantes", resp.TotalEstudiantes),
		logging.Int("elegibles", resp.Elegibles),
		logging.Duration("duracion", s.now().Sub(started)),
	)
	s.transition(runID, StateSuccess, nil)

	s.transition(runID, StateEnriching, nil)
	meta := s.enrich(ctx, req.ProgramaID)
	meta.GeneradoEn = s.now().UTC()
	meta.RunID = runID

	cache := &resultcache.Cache{Response: *resp, Metadata: meta}
	s.session.Save(ctx, cache)
	s.transition(runID, StateCached, nil)
	s.transition(runID, StateNavigated, nil)
	return cache, nil
}

func (s *Service) upload(ctx context.Context, req Request) (*comparacion.VerificacionMasiva, error) {
	uploads := make([]agora.Upload, 0, len(req.Files))
	files := make([]*os.File, 0, len(req.Files))
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	for _, path := range req.Files {
		f, err := os.Open(path)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "comparison", "upload", "open "+path, err)
		}
		files = append(files, f)
		uploads = append(uploads, agora.Upload{Name: filepath.Base(path), Content: f})
	}
	return s.client.VerificarMasiva(ctx, req.ProgramaID, uploads)
}
