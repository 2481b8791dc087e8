package services_test

import (
	"context"
	"testing"

	"agora/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithProgramaID(ctx, 7)
	ctx = services.WithOperation(ctx, "verificar_masiva")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if id, ok := services.ProgramaIDFromContext(ctx); !ok || id != 7 {
		t.Fatalf("unexpected programa id: %v %v", id, ok)
	}
	if op, ok := services.OperationFromContext(ctx); !ok || op != "verificar_masiva" {
		t.Fatalf("unexpected operation: %v %v", op, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithOperation(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.OperationFromContext(ctx); ok {
		t.Fatal("expected no operation value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
	if _, ok := services.ProgramaIDFromContext(ctx); ok {
		t.Fatal("expected no programa id value")
	}
}
