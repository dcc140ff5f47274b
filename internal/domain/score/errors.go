package score

import "errors"

// Sentinel errors for score decoding.
var (
	ErrUnknownLamp = errors.New("unknown lamp code")
)
