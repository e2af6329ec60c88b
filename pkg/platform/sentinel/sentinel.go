package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the backend client return
// these (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: entity does not exist in a store or at the backend
//   - ErrUnavailable: backend or store temporarily unreachable
//   - ErrRejected: backend refused the request (bad credentials, invalid upload)
//   - ErrMalformed: backend answered with a payload that could not be decoded
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrRejected     = errors.New("rejected")
	ErrMalformed    = errors.New("malformed response")
)
