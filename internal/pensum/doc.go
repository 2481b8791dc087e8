// Package pensum models a program curriculum and flattens it into the ordered
// subject list used as matrix export columns.
//
// The backend returns subjects as a flat listing; AgruparPorSemestre groups them
// by semester with credit totals and BuildResumen turns the groups into
// MateriaResumen rows whose Orden field is the row position.
package pensum
