package inmemory

import "errors"

var (
	// ErrPaymentAlreadyExists ...
	ErrPaymentAlreadyExists = errors.New("payment already exists")
)
