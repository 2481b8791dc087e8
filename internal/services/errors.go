package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAuthentication     = errors.New("authentication required")
	ErrHTTP               = errors.New("http failure")
	ErrStorage            = errors.New("storage failure")
	ErrExportPrecondition = errors.New("export precondition failed")
	ErrDecode             = errors.New("malformed response")
	ErrValidation         = errors.New("validation error")
	ErrConfiguration      = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrHTTP
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Hint returns the suggested next step for a classified failure.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthentication):
		return "set AGORA_TOKEN or [api] token in the config file"
	case errors.Is(err, ErrValidation):
		return "check the selected files and program id"
	case errors.Is(err, ErrExportPrecondition):
		return "run a new comparison so the curriculum is cached"
	case errors.Is(err, ErrStorage):
		return "check permissions on the state directory"
	case errors.Is(err, ErrDecode):
		return "verify api.base_url points at the AGORA backend"
	case errors.Is(err, ErrConfiguration):
		return "run agora config validate"
	case errors.Is(err, ErrHTTP):
		return "retry the operation once the backend is reachable"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
