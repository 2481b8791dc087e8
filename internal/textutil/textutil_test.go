package textutil_test

import (
	"testing"
	"unicode"

	"agora/internal/textutil"
)

func TestNormalizeStripsDiacritics(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "  Cálculo I ", want: "calculo i"},
		{input: "ÁLGEBRA LINEAL", want: "algebra lineal"},
		{input: "Programación Orientada", want: "programacion orientada"},
		{input: "Ñandú", want: "nandu"},
		{input: "", want: ""},
		{input: "   ", want: ""},
		{input: "Ética y Comunicación Oral", want: "etica y comunicacion oral"},
	}
	for _, tc := range cases {
		if got := textutil.Normalize(tc.input); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeIsIdempotentAndClean(t *testing.T) {
	inputs := []string{
		"Cálculo Diferencial",
		" Física II ",
		"ESTRUCTURAS DE DATOS",
		"Güiro",
		"ÀÉÎÕÜ ç",
		"naïve café",
		"104650011",
	}
	for _, input := range inputs {
		once := textutil.Normalize(input)
		if twice := textutil.Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", input, once, twice)
		}
		for _, r := range once {
			if r >= 0x0300 && r <= 0x036F {
				t.Errorf("Normalize(%q) kept combining mark %U", input, r)
			}
			if unicode.IsUpper(r) {
				t.Errorf("Normalize(%q) kept uppercase rune %q", input, r)
			}
		}
	}
}

func eachRune(tables []*unicode.RangeTable, fn func(rune)) {
	for _, table := range tables {
		for _, r16 := range table.R16 {
			for r := rune(r16.Lo); r <= rune(r16.Hi); r += rune(r16.Stride) {
				fn(r)
			}
		}
		for _, r32 := range table.R32 {
			for r := rune(r32.Lo); r <= rune(r32.Hi); r += rune(r32.Stride) {
				fn(r)
			}
		}
	}
}

func TestNormalizeFoldsStyledAndCaselessCapitals(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "𝐂𝐀𝐋𝐂𝐔𝐋𝐎 I", want: "calculo i"},
		{input: "ℝ𝕖𝕕𝕖𝕤", want: "redes"},
		{input: "Ⓐⓑ", want: "ab"},
		{input: "ᴬᴮ", want: "ab"},
		{input: "Ⅻ", want: "xii"},
		{input: "ＦÍＳＩＣＡ", want: "fisica"},
	}
	for _, tc := range cases {
		if got := textutil.Normalize(tc.input); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}

	tables := []*unicode.RangeTable{
		unicode.Lu, unicode.Lt, unicode.Lm, unicode.Nl, unicode.So, unicode.Sk, unicode.Mn,
		unicode.Other_Uppercase,
	}
	eachRune(tables, func(r rune) {
		input := "x" + string(r) + "y"
		once := textutil.Normalize(input)
		if twice := textutil.Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %U: %q then %q", r, once, twice)
		}
		for _, out := range once {
			if unicode.IsUpper(out) {
				t.Errorf("Normalize(%U) kept uppercase rune %U", r, out)
			}
			if unicode.Is(unicode.Mn, out) {
				t.Errorf("Normalize(%U) kept combining mark %U", r, out)
			}
		}
	})
}

func TestContainsAndEqualFold(t *testing.T) {
	if !textutil.Contains("Juan Pérez - 104650011", "perez") {
		t.Fatal("expected diacritic-insensitive substring match")
	}
	if textutil.Contains("Juan Pérez", "gomez") {
		t.Fatal("unexpected match")
	}
	if !textutil.EqualFold("Cálculo I", "calculo i ") {
		t.Fatal("expected normalized equality")
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := textutil.SanitizeFileName(" reporte: 2024/1 "); got != "reporte- 2024-1" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
	if got := textutil.SanitizeFileName(""); got != "" {
		t.Fatalf("expected empty name, got %q", got)
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "Juan Pérez", want: "juan_perez"},
		{input: "104650011", want: "104650011"},
		{input: "  ", want: "sin_nombre"},
		{input: "--José--", want: "jose"},
		{input: "a/b\\c", want: "a_b_c"},
	}
	for _, tc := range cases {
		if got := textutil.SanitizeToken(tc.input); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTernary(t *testing.T) {
	if textutil.Ternary(true, "Elegible", "No elegible") != "Elegible" {
		t.Fatal("expected first branch")
	}
	if textutil.Ternary(false, 1, 2) != 2 {
		t.Fatal("expected second branch")
	}
}
