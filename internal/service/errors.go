package service

import "errors"

// Error kinds surfaced by the core. Controllers map these to HTTP statuses
// with errors.Is; every rejection is local to one request and nothing is
// retried automatically.
var (
	ErrValidation           = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrRateLimited          = errors.New("daily evaluation limit reached")
	ErrDuplicateSubmission  = errors.New("submission too similar to a previous answer")
	ErrEvaluationFailed     = errors.New("evaluation service failed")
	ErrTranscriptionQuota   = errors.New("daily transcription limit reached")
	ErrChallengeUnavailable = errors.New("no challenge available for this answer")
	ErrChallengeConsumed    = errors.New("challenge already answered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailTaken           = errors.New("email already registered")
)
