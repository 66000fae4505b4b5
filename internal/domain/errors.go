package domain

import "errors"

// Common domain errors
var (
	// Selection errors
	ErrNoCandidates  = errors.New("candidate set is empty")
	ErrUnknownScorer = errors.New("unknown scorer name")
	ErrNoScorers     = errors.New("scorer set is empty")

	// Clustering errors
	ErrDimensionMismatch = errors.New("embedding dimensionality mismatch")
	ErrEmptyEmbedding    = errors.New("embedding vector is empty")

	// Experiment errors
	ErrExperimentNotFound  = errors.New("experiment not found")
	ErrInvalidTransition   = errors.New("invalid experiment status transition")
	ErrExperimentNotLive   = errors.New("experiment is not running")
	ErrExperimentFinal     = errors.New("experiment is in a terminal state")
	ErrArmOutcomeMismatch  = errors.New("arm outcomes do not match experiment arms")
	ErrConversionsExceeded = errors.New("conversions exceed impressions")
	ErrStatusConflict      = errors.New("experiment status changed concurrently")

	// Evolution errors
	ErrIterationCapReached = errors.New("winner iteration cap reached")
	ErrRoundCapReached     = errors.New("evolution round cap reached for lineage root")
	ErrNotAWinner          = errors.New("ad does not meet winner criteria")
	ErrNoMutableVariables  = errors.New("no mutable variables available")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
)

// IsCapacityError reports whether err signals an evolution cap was hit.
// Callers should stop evolving the ad rather than retry.
func IsCapacityError(err error) bool {
	return errors.Is(err, ErrIterationCapReached) || errors.Is(err, ErrRoundCapReached)
}

// DomainError wraps a domain error with additional context
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func NewDomainError(err error, message string) *DomainError {
	return &DomainError{Err: err, Message: message}
}
