// Package comparacion holds the eligibility verification result model and the
// read-only helpers the results views use: filtering by student and status,
// run statistics, and lookup of a single student.
//
// Results are never mutated after decoding; every helper returns new slices.
package comparacion
