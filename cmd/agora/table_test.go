package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderTablePadsRowsAndKeepsFooterCase(t *testing.T) {
	out := renderTable(tableSpec{
		headers: []string{"Materia", "Créditos"},
		rows:    [][]string{{"Cálculo I", "4"}, {"Física I"}},
		aligns:  []columnAlignment{alignLeft, alignRight},
		footer:  []string{"2 materias", "4"},
	})
	for _, want := range []string{"MATERIA", "Cálculo I", "Física I", "2 materias"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected table to contain %q:\n%s", want, out)
		}
	}
	if renderTable(tableSpec{}) != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestPaintOnlyWhenColorized(t *testing.T) {
	if got := paint("Elegible", ansiGreen, false); got != "Elegible" {
		t.Fatalf("expected plain text, got %q", got)
	}
	if got := paint("Elegible", ansiGreen, true); got != ansiGreen+"Elegible"+ansiReset {
		t.Fatalf("unexpected colorized text %q", got)
	}
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
}
