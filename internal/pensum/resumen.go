package pensum

import (
	"slices"

	"agora/internal/textutil"
)

// BuildResumen flattens semester groups into an ordered subject list. Groups are
// sorted by ascending semester; subjects keep their order within a group and
// Orden equals the output index.
func BuildResumen(grupos []Semestre) []MateriaResumen {
	ordenados := slices.Clone(grupos)
	slices.SortStableFunc(ordenados, func(a, b Semestre) int {
		return a.Semestre - b.Semestre
	})

	total := 0
	for _, grupo := range ordenados {
		total += len(grupo.Materias)
	}

	resumen := make([]MateriaResumen, 0, total)
	for _, grupo := range ordenados {
		for _, materia := range grupo.Materias {
			semestre := materia.Semestre
			if semestre == 0 {
				semestre = grupo.Semestre
			}
			resumen = append(resumen, MateriaResumen{
				MateriaID:         materia.MateriaID,
				Nombre:            materia.NombreMateria,
				Semestre:          semestre,
				NombreNormalizado: textutil.Normalize(materia.NombreMateria),
				EsElectiva:        materia.EsElectiva,
				Creditos:          materia.Creditos,
				Orden:             len(resumen),
			})
		}
	}
	return resumen
}

// AgruparPorSemestre groups a flat subject listing by semester, preserving the
// listing order inside each group and summing credits.
func AgruparPorSemestre(materias []Materia) []Semestre {
	index := make(map[int]int)
	grupos := make([]Semestre, 0)
	for _, materia := range materias {
		pos, ok := index[materia.Semestre]
		if !ok {
			pos = len(grupos)
			index[materia.Semestre] = pos
			grupos = append(grupos, Semestre{Semestre: materia.Semestre})
		}
		grupos[pos].Materias = append(grupos[pos].Materias, materia)
		grupos[pos].CreditosTotales += materia.Creditos
	}
	slices.SortStableFunc(grupos, func(a, b Semestre) int {
		return a.Semestre - b.Semestre
	})
	return grupos
}
