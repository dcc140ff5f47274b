package secondary

import (
	"errors"

	"github.com/okian/ddrsync/internal/adapters/sources/httpclient"
)

// Sentinel errors for the secondary source.
var (
	ErrStatus         = httpclient.ErrStatus
	ErrMalformedPage  = errors.New("malformed secondary page")
	ErrInvalidAccount = errors.New("invalid secondary account code")
)
