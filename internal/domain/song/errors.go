package song

import "errors"

// Sentinel errors for song identity and chart parsing.
var (
	ErrInvalidIDLength = errors.New("song id must be 32 characters")
	ErrInvalidIDChar   = errors.New("song id contains an invalid character")
	ErrUnknownChart    = errors.New("unknown chart")
)
