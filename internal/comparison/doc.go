// Package comparison runs the bulk eligibility comparison end to end.
//
// A Service validates the selected transcripts, uploads them to the AGORA
// backend, enriches the response with the program's current curriculum and
// semester limit, and stores the run in the single-slot result cache. Each
// submission walks the state machine Idle → Uploading → Success → Enriching →
// Cached → Navigated, or Uploading → Failure → Idle when the backend rejects
// the upload. Enrichment is best-effort: lookup failures are logged and leave
// the affected metadata empty.
//
// All collaborators arrive through Deps; the package keeps no global state.
package comparison
