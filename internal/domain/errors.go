package domain

import "errors"

// Failure kinds. Loading failures abort the load but never the session;
// question failures abort the turn and are rendered into the transcript.
var (
	ErrDataLoad   = errors.New("dataset could not be processed")
	ErrEmptyIndex = errors.New("retrieval index is empty")
	ErrGeneration = errors.New("answer generation failed")
	ErrBadAnswer  = errors.New("invalid answer format")
)
