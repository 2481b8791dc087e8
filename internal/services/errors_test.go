package services_test

import (
	"errors"
	"strings"
	"testing"

	"agora/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("disk full")
	err := services.Wrap(services.ErrStorage, "resultcache", "save", "write slot", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"resultcache", "save", "write slot"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "", "", "", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestHintMapping(t *testing.T) {
	authErr := services.Wrap(services.ErrAuthentication, "agora", "verificar", "no token", nil)
	if hint := services.Hint(authErr); !strings.Contains(hint, "AGORA_TOKEN") {
		t.Fatalf("unexpected auth hint: %q", hint)
	}
	if hint := services.Hint(errors.New("other")); hint != "check logs for details" {
		t.Fatalf("unexpected default hint: %q", hint)
	}
	if hint := services.Hint(nil); hint != "" {
		t.Fatalf("expected empty hint for nil, got %q", hint)
	}
}
