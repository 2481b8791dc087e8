package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Call is one request received by a Backend.
type Call struct {
	Method     string
	Path       string
	ProgramaID string
	Files      []string
	Auth       string
}

type reply struct {
	status int
	body   any
}

// Backend is an in-process AGORA REST backend. Routes answer with the reply
// registered through Respond, or 404 with a JSON detail when none is set.
type Backend struct {
	Server *httptest.Server

	mu      sync.Mutex
	replies map[string]reply
	calls   []Call
}

// NewBackend starts a Backend serving under /api and registers cleanup.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{replies: make(map[string]reply)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the API base URL to put in the client config.
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

// Respond registers the JSON body returned for path, relative to the API root
// (for example "historias/verificar/masiva/").
func (b *Backend) Respond(path string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies[strings.Trim(path, "/")] = reply{status: status, body: body}
}

// Calls returns a copy of the requests received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallCount returns the number of requests received for path, or in total
// when path is empty.
func (b *Backend) CallCount(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if path == "" {
		return len(b.calls)
	}
	want := strings.Trim(path, "/")
	count := 0
	for _, c := range b.calls {
		if c.Path == want {
			count++
		}
	}
	return count
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api"), "/")
	call := Call{Method: r.Method, Path: path, Auth: r.Header.Get("Authorization")}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			call.ProgramaID = r.FormValue("programa_id")
			for _, field := range []string{"historias", "historia"} {
				for _, fh := range r.MultipartForm.File[field] {
					call.Files = append(call.Files, fh.Filename)
				}
			}
		}
	}

	b.mu.Lock()
	b.calls = append(b.calls, call)
	rep, ok := b.replies[path]
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "No encontrado"})
		return
	}
	w.WriteHeader(rep.status)
	_ = json.NewEncoder(w).Encode(rep.body)
}
