package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/sys/unix"

	"agora/internal/export"
	"agora/internal/resultcache"
	"agora/internal/services"
	"agora/internal/services/agora"
)

const backendTimeout = 5 * time.Second

// ProgramLister is the backend call used as a reachability check.
type ProgramLister interface {
	ListarProgramas(ctx context.Context) ([]agora.Programa, error)
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckToken reports whether a bearer token is configured.
func CheckToken(token string) Result {
	const name = "Access token"
	if token == "" {
		return Result{Name: name, Detail: "not set (export AGORA_TOKEN or set api.token)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckBackend lists programs with a short timeout. A rejected token is
// reported separately from an unreachable backend.
func CheckBackend(ctx context.Context, baseURL string, client ProgramLister) Result {
	const name = "AGORA backend"
	if client == nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: client not configured)", baseURL)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, backendTimeout)
	defer cancel()

	programas, err := client.ListarProgramas(checkCtx)
	if err != nil {
		var apiErr *agora.APIError
		switch {
		case errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden):
			return Result{Name: name, Detail: fmt.Sprintf("%s (auth failed: %s)", baseURL, apiErr.Message)}
		case errors.Is(err, services.ErrDecode):
			return Result{Name: name, Detail: fmt.Sprintf("%s (unexpected response; is this the AGORA api root?)", baseURL)}
		default:
			return Result{Name: name, Detail: fmt.Sprintf("%s (unreachable: %v)", baseURL, err)}
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d programs)", baseURL, len(programas))}
}

// CheckResultCache reports whether the cache is open and what it holds.
func CheckResultCache(ctx context.Context, session *resultcache.Session) Result {
	const name = "Result cache"
	if !session.Available() {
		return Result{Name: name, Detail: "unavailable (results are not kept between commands)"}
	}
	cache, ok := session.Load(ctx)
	if !ok {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (empty)", session.Store().Path())}
	}
	detail := fmt.Sprintf("%d students, program %d", cache.Response.TotalEstudiantes, cache.Metadata.ProgramaID)
	if !cache.HasCurriculum() {
		detail += ", no curriculum (matrix export unavailable)"
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckOpener verifies the desktop opener used by `results export --open`.
func CheckOpener() Result {
	const name = "Desktop opener"
	command, _ := export.OpenerCommand(runtime.GOOS)
	if _, err := exec.LookPath(command); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found (open exports manually)", command)}
	}
	return Result{Name: name, Passed: true, Detail: command}
}
