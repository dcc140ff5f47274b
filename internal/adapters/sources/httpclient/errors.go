package httpclient

import "errors"

// Sentinel errors for HTTP transport.
var (
	ErrStatus = errors.New("unexpected http status")
)
