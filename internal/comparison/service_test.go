package comparison_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"

	"agora/internal/comparison"
	"agora/internal/config"
	"agora/internal/logging"
	"agora/internal/pensum"
	"agora/internal/resultcache"
	"agora/internal/services"
	"agora/internal/services/agora"
	"agora/internal/testsupport"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)

type harness struct {
	cfg         *config.Config
	backend     *testsupport.Backend
	session     *resultcache.Session
	service     *comparison.Service
	transitions []comparison.Transition
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()

	backend := testsupport.NewBackend(t)
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithBaseURL(backend.URL())}, opts...)...)
	client, err := agora.New(agora.Config{BaseURL: cfg.API.BaseURL, Token: cfg.API.Token})
	if err != nil {
		t.Fatalf("agora.New: %v", err)
	}
	h := &harness{
		cfg:     cfg,
		backend: backend,
		session: testsupport.MustOpenSession(t, cfg),
	}
	h.service, err = comparison.NewService(comparison.Deps{
		Config:   cfg,
		Client:   client,
		Session:  h.session,
		Logger:   logging.NewNop(),
		Now:      func() time.Time { return fixedNow },
		NewRunID: func() string { return "run-1" },
		OnTransition: func(tr comparison.Transition) {
			h.transitions = append(h.transitions, tr)
		},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return h
}

func (h *harness) states() []comparison.State {
	out := make([]comparison.State, 0, len(h.transitions))
	for _, tr := range h.transitions {
		out = append(out, tr.To)
	}
	return out
}

func (h *harness) respondCatalog() {
	h.backend.Respond("pensum/programa/7/actual/", http.StatusOK, map[string]any{
		"programa_id":     7,
		"programa_nombre": "Ingeniería de Sistemas",
		"pensum_actual": map[string]any{
			"pensum_id":       12,
			"programa_id":     7,
			"programa_nombre": "Ingeniería de Sistemas",
			"es_activo":       true,
		},
	})
	h.backend.Respond("materia/pensum/12/", http.StatusOK, map[string]any{
		"materias": []map[string]any{
			{"materia_id": 3, "nombre_materia": "Física I", "creditos": 3, "semestre": 2},
			{"materia_id": 1, "nombre_materia": "Cálculo I", "creditos": 4, "semestre": 1},
			{"materia_id": 4, "nombre_materia": "Electiva Técnica", "creditos": 3, "semestre": 7, "es_electiva": true},
		},
		"total": 3,
	})
	h.backend.Respond("configuracion/programa/7/", http.StatusOK, map[string]any{
		"configuracion_id":          1,
		"programa_id":               7,
		"programa_nombre":           "Ingeniería de Sistemas",
		"semestre_limite_electivas": 6,
		"es_activo":                 true,
	})
}

func verificacion() map[string]any {
	return map[string]any{
		"total_estudiantes": 3,
		"elegibles":         2,
		"no_elegibles":      1,
		"resultados": []map[string]any{
			{"estudiante": "ana", "estado": 1, "porcentaje_avance": 100},
			{"estudiante": "beto", "estado": 1, "porcentaje_avance": 95.5},
			{"estudiante": "carla", "estado": 0, "porcentaje_avance": 60,
				"materias_faltantes_hasta_semestre_limite": []string{"Cálculo I"}},
		},
	}
}

func TestSubmitCachesEnrichedRun(t *testing.T) {
	h := newHarness(t)
	h.respondCatalog()
	h.backend.Respond("historias/verificar/masiva/", http.StatusOK, verificacion())

	files := testsupport.WriteTranscripts(t, t.TempDir(), "ana.csv", "beto.csv", "carla.csv")
	ctx := context.Background()
	h.service.Begin(ctx)

	cache, err := h.service.Submit(ctx, comparison.Request{ProgramaID: 7, Files: files})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if cache.Response.Elegibles != 2 || cache.Response.TotalEstudiantes != 3 {
		t.Fatalf("unexpected response counts: %+v", cache.Response)
	}
	if cache.Metadata.ProgramaID != 7 {
		t.Fatalf("expected programaId 7, got %d", cache.Metadata.ProgramaID)
	}
	if cache.Metadata.PensumID == nil || *cache.Metadata.PensumID != 12 {
		t.Fatalf("unexpected pensum id: %v", cache.Metadata.PensumID)
	}
	if cache.Metadata.SemestreLimite == nil || *cache.Metadata.SemestreLimite != 6 {
		t.Fatalf("unexpected semestre limite: %v", cache.Metadata.SemestreLimite)
	}
	if cache.Metadata.ProgramaNombre == nil || *cache.Metadata.ProgramaNombre != "Ingeniería de Sistemas" {
		t.Fatalf("unexpected programa nombre: %v", cache.Metadata.ProgramaNombre)
	}
	var nombres []string
	for i, m := range cache.Metadata.PensumMaterias {
		if m.Orden != i {
			t.Fatalf("materia %q has orden %d at index %d", m.Nombre, m.Orden, i)
		}
		nombres = append(nombres, m.Nombre)
	}
	if diff := cmp.Diff([]string{"Cálculo I", "Física I", "Electiva Técnica"}, nombres); diff != "" {
		t.Fatalf("pensum materias mismatch (-want +got):\n%s", diff)
	}
	if cache.Metadata.RunID != "run-1" || !cache.Metadata.GeneradoEn.Equal(fixedNow) {
		t.Fatalf("unexpected run metadata: %+v", cache.Metadata)
	}

	want := []comparison.State{
		comparison.StateUploading,
		comparison.StateSuccess,
		comparison.StateEnriching,
		comparison.StateCached,
		comparison.StateNavigated,
	}
	if diff := cmp.Diff(want, h.states()); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}

	if got := h.backend.CallCount("historias/verificar/masiva/"); got != 1 {
		t.Fatalf("expected one upload, got %d", got)
	}
	for _, call := range h.backend.Calls() {
		if call.Path != "historias/verificar/masiva" {
			continue
		}
		if call.ProgramaID != "7" {
			t.Fatalf("expected programa_id 7, got %q", call.ProgramaID)
		}
		if diff := cmp.Diff([]string{"ana.csv", "beto.csv", "carla.csv"}, call.Files); diff != "" {
			t.Fatalf("uploaded files mismatch (-want +got):\n%s", diff)
		}
		if call.Auth != "Bearer test-token" {
			t.Fatalf("unexpected auth header %q", call.Auth)
		}
	}

	loaded, ok := h.session.Load(ctx)
	if !ok {
		t.Fatal("expected cached run after submit")
	}
	if diff := cmp.Diff(cache, loaded); diff != "" {
		t.Fatalf("cached run mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitRejectsTooManyFilesBeforeAnyRequest(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	files := make([]string, 51)
	for i := range files {
		files[i] = filepath.Join(dir, fmt.Sprintf("historia_%02d.csv", i))
	}

	_, err := h.service.Submit(context.Background(), comparison.Request{ProgramaID: 7, Files: files})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := h.backend.CallCount(""); got != 0 {
		t.Fatalf("expected no requests, got %d", got)
	}
	if len(h.transitions) != 0 {
		t.Fatalf("expected no transitions, got %v", h.states())
	}
}

func TestValidate(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	valid := testsupport.WriteTranscripts(t, dir, "ana.csv", "beto.XLSX")
	pdf := testsupport.WriteTranscripts(t, dir, "carla.pdf")
	folder := filepath.Join(dir, "carpeta.csv")
	if err := os.Mkdir(folder, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cases := []struct {
		name    string
		req     comparison.Request
		wantErr bool
	}{
		{name: "valid", req: comparison.Request{ProgramaID: 7, Files: valid}},
		{name: "missing program", req: comparison.Request{Files: valid}, wantErr: true},
		{name: "no files", req: comparison.Request{ProgramaID: 7}, wantErr: true},
		{name: "extension not allowed", req: comparison.Request{ProgramaID: 7, Files: pdf}, wantErr: true},
		{name: "file missing", req: comparison.Request{ProgramaID: 7, Files: []string{filepath.Join(dir, "nadie.csv")}}, wantErr: true},
		{name: "directory", req: comparison.Request{ProgramaID: 7, Files: []string{folder}}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := h.service.Validate(tc.req)
			if tc.wantErr {
				if !errors.Is(err, services.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSubmitSurfacesBackendMessage(t *testing.T) {
	h := newHarness(t)
	h.backend.Respond("historias/verificar/masiva/", http.StatusBadRequest, map[string]any{"error": "Formato no soportado"})
	files := testsupport.WriteTranscripts(t, t.TempDir(), "ana.csv")
	ctx := context.Background()
	h.service.Begin(ctx)

	_, err := h.service.Submit(ctx, comparison.Request{ProgramaID: 7, Files: files})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Formato no soportado" {
		t.Fatalf("expected backend message, got %q", err.Error())
	}
	want := []comparison.State{comparison.StateUploading, comparison.StateFailure, comparison.StateIdle}
	if diff := cmp.Diff(want, h.states()); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
	if h.transitions[1].Err == nil {
		t.Fatal("expected failure transition to carry the error")
	}
	if h.service.State() != comparison.StateIdle {
		t.Fatalf("expected idle state, got %s", h.service.State())
	}
	if _, ok := h.session.Load(ctx); ok {
		t.Fatal("expected nothing cached after a failed upload")
	}
	if got := h.backend.CallCount("configuracion/programa/7/"); got != 0 {
		t.Fatalf("expected no enrichment after failure, got %d calls", got)
	}
}

func TestSubmitWithoutTokenFailsWithoutRequest(t *testing.T) {
	h := newHarness(t, testsupport.WithToken(""))
	files := testsupport.WriteTranscripts(t, t.TempDir(), "ana.csv")

	_, err := h.service.Submit(context.Background(), comparison.Request{ProgramaID: 7, Files: files})
	if !errors.Is(err, services.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if got := h.backend.CallCount(""); got != 0 {
		t.Fatalf("expected no requests, got %d", got)
	}
}

func TestSubmitDegradesMetadataWhenEnrichmentFails(t *testing.T) {
	h := newHarness(t)
	h.backend.Respond("historias/verificar/masiva/", http.StatusOK, verificacion())
	h.backend.Respond("configuracion/programa/7/", http.StatusInternalServerError, map[string]any{"detail": "boom"})
	files := testsupport.WriteTranscripts(t, t.TempDir(), "ana.csv")

	cache, err := h.service.Submit(context.Background(), comparison.Request{ProgramaID: 7, Files: files})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	meta := cache.Metadata
	if meta.PensumID != nil || meta.SemestreLimite != nil || meta.ProgramaNombre != nil {
		t.Fatalf("expected null metadata, got %+v", meta)
	}
	if meta.PensumMaterias == nil || len(meta.PensumMaterias) != 0 {
		t.Fatalf("expected empty curriculum, got %v", meta.PensumMaterias)
	}
	if cache.HasCurriculum() {
		t.Fatal("expected no curriculum")
	}
	if _, ok := h.session.Load(context.Background()); !ok {
		t.Fatal("expected degraded run to be cached")
	}
}

func TestSubmitKeepsProgramNameWithoutActiveCurriculum(t *testing.T) {
	h := newHarness(t)
	h.backend.Respond("historias/verificar/masiva/", http.StatusOK, verificacion())
	h.backend.Respond("pensum/programa/7/actual/", http.StatusOK, map[string]any{
		"programa_id":     7,
		"programa_nombre": "Ingeniería Civil",
		"pensum_actual":   nil,
	})
	files := testsupport.WriteTranscripts(t, t.TempDir(), "ana.csv")

	cache, err := h.service.Submit(context.Background(), comparison.Request{ProgramaID: 7, Files: files})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if cache.Metadata.ProgramaNombre == nil || *cache.Metadata.ProgramaNombre != "Ingeniería Civil" {
		t.Fatalf("unexpected programa nombre: %v", cache.Metadata.ProgramaNombre)
	}
	if diff := cmp.Diff([]pensum.MateriaResumen{}, cache.Metadata.PensumMaterias); diff != "" {
		t.Fatalf("expected empty curriculum (-want +got):\n%s", diff)
	}
	if got := h.backend.CallCount("materia/pensum/12/"); got != 0 {
		t.Fatalf("expected no subject lookup, got %d", got)
	}
}

func TestSubmitRefusesWhileLocked(t *testing.T) {
	h := newHarness(t)
	h.backend.Respond("historias/verificar/masiva/", http.StatusOK, verificacion())
	files := testsupport.WriteTranscripts(t, t.TempDir(), "ana.csv")

	if err := h.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	other := flock.New(h.cfg.RunLockPath())
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("lock: ok=%v err=%v", locked, err)
	}
	t.Cleanup(func() { _ = other.Unlock() })

	_, err = h.service.Submit(context.Background(), comparison.Request{ProgramaID: 7, Files: files})
	if !errors.Is(err, comparison.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if got := h.backend.CallCount(""); got != 0 {
		t.Fatalf("expected no requests, got %d", got)
	}
}

func TestBeginClearsPreviousRun(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.session.Save(ctx, &resultcache.Cache{Metadata: resultcache.Metadata{ProgramaID: 3, GeneradoEn: fixedNow}})
	if _, ok := h.session.Load(ctx); !ok {
		t.Fatal("expected seeded run")
	}
	h.service.Begin(ctx)
	if _, ok := h.session.Load(ctx); ok {
		t.Fatal("expected Begin to clear the cached run")
	}
}

func TestNewServiceRequiresDeps(t *testing.T) {
	if _, err := comparison.NewService(comparison.Deps{}); err == nil {
		t.Fatal("expected error for missing deps")
	}
}

func TestVerifySendsSingleTranscript(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.session.Save(ctx, &resultcache.Cache{Metadata: resultcache.Metadata{ProgramaID: 3, GeneradoEn: fixedNow}})
	body := map[string]any{"estudiante": "dana", "estado": 0, "porcentaje_avance": 70.5}
	body["materias_faltantes_hasta_semestre_limite"] = []string{"Cálculo I"}
	h.backend.Respond("historias/verificar/", http.StatusOK, body)
	path := testsupport.WriteTranscripts(t, t.TempDir(), "dana.xlsx")[0]

	got, err := h.service.Verify(ctx, 7, path)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if got.Estudiante != "dana" || got.Elegible() {
		t.Fatalf("unexpected result: %+v", got)
	}
	if diff := cmp.Diff([]string{"Cálculo I"}, got.MateriasFaltantes); diff != "" {
		t.Fatalf("faltantes mismatch (-want +got):\n%s", diff)
	}

	calls := h.backend.Calls()
	if len(calls) != 1 || calls[0].Path != "historias/verificar" {
		t.Fatalf("expected one individual verification call, got %+v", calls)
	}
	if calls[0].ProgramaID != "7" || calls[0].Auth != "Bearer test-token" {
		t.Fatalf("unexpected call: %+v", calls[0])
	}
	if diff := cmp.Diff([]string{"dana.xlsx"}, calls[0].Files); diff != "" {
		t.Fatalf("uploaded files mismatch (-want +got):\n%s", diff)
	}
	if len(h.transitions) != 0 {
		t.Fatalf("verify must not drive the comparison state machine, got %v", h.states())
	}
	if cached, ok := h.session.Load(ctx); !ok || cached.Metadata.ProgramaID != 3 {
		t.Fatalf("verify must leave the cached run alone, got %+v %v", cached, ok)
	}
}

func TestVerifyValidatesBeforeRequest(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	pdf := filepath.Join(dir, "dana.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	csv := testsupport.WriteTranscripts(t, dir, "dana.csv")[0]

	if _, err := h.service.Verify(context.Background(), 7, pdf); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for .pdf, got %v", err)
	}
	if _, err := h.service.Verify(context.Background(), 0, csv); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing program, got %v", err)
	}
	if got := h.backend.CallCount(""); got != 0 {
		t.Fatalf("expected no requests, got %d", got)
	}
}

func TestVerifySurfacesBackendMessage(t *testing.T) {
	h := newHarness(t)
	h.backend.Respond("historias/verificar/", http.StatusBadRequest, map[string]any{"error": "Formato no soportado"})
	path := testsupport.WriteTranscripts(t, t.TempDir(), "dana.csv")[0]

	_, err := h.service.Verify(context.Background(), 7, path)
	if err == nil || err.Error() != "Formato no soportado" {
		t.Fatalf("expected backend message, got %v", err)
	}
	if !errors.Is(err, services.ErrHTTP) {
		t.Fatalf("expected ErrHTTP, got %v", err)
	}
}
