package service

import "errors"

// Sentinel errors for the update service.
var (
	// ErrPrimaryCatalog aborts a run: without the canonical catalog no song can be identified.
	ErrPrimaryCatalog = errors.New("primary catalog fetch failed")
	ErrNoSources      = errors.New("no sources configured")
	ErrUnknownJob     = errors.New("unknown job kind")
)
