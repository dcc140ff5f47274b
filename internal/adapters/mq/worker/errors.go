package worker

import "errors"

// Sentinel errors for job execution.
var (
	ErrJobPanicked = errors.New("job panicked")
)
