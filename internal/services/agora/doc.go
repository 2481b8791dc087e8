// Package agora is the HTTP client for the AGORA academic backend.
//
// It covers the bulk and single-transcript eligibility verification uploads and
// the read-only lookups used to enrich a comparison run: program listing,
// current curriculum, curriculum subjects and the active eligibility
// configuration. Every call issues exactly one request; nothing is retried.
//
// Non-2xx responses become *APIError values whose message is taken from the
// response body's error, detail or message field (in that order) and which
// match services.ErrHTTP under errors.Is. Bodies that are not JSON fail with
// services.ErrDecode.
package agora
