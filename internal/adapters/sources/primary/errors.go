package primary

import (
	"errors"

	"github.com/okian/ddrsync/internal/adapters/sources/httpclient"
)

// Sentinel errors for the primary source.
var (
	ErrStatus            = httpclient.ErrStatus
	ErrUnexpectedPayload = errors.New("unexpected primary payload")
	ErrBPMPage           = errors.New("unexpected song details page")
)
