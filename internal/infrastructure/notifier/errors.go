package notifier

import "errors"

var (
	// ErrNullEndpoint ...
	ErrNullEndpoint = errors.New("webhook endpoint must not be null")
)
