package domain

import "errors"

var (
	// ErrPaymentAlreadyTerminal is thrown when trying to move a payment out
	// of a terminal status.
	ErrPaymentAlreadyTerminal = errors.New("payment is in a terminal status")
	// ErrPaymentMustBeNew is thrown when trying to start confirming a payment
	// that is not in New status.
	ErrPaymentMustBeNew = errors.New("payment must be in New status to start confirming")
	// ErrPaymentNullExpiryTime ...
	ErrPaymentNullExpiryTime = errors.New("payment must have an expiry time set")
	// ErrPaymentExpiryTimeNotReached ...
	ErrPaymentExpiryTimeNotReached = errors.New("payment expiry time has not been reached yet")
	// ErrPaymentNotFound ...
	ErrPaymentNotFound = errors.New("payment not found")
)
