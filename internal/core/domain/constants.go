package domain

const (
	// PaymentStatusCodeNew is the status of a payment right after its intent
	// has been created on the gateway.
	PaymentStatusCodeNew = iota
	// PaymentStatusCodeConfirming is the status of a payment whose deposit
	// has been detected by the gateway but not yet settled.
	PaymentStatusCodeConfirming
	// PaymentStatusCodeConfirmed is the terminal status of a settled payment.
	PaymentStatusCodeConfirmed
	// PaymentStatusCodeExpired is the terminal status of a payment whose
	// deadline passed without settlement.
	PaymentStatusCodeExpired
	// PaymentStatusCodeFailed is the terminal status of a payment rejected by
	// the gateway or the underlying processor.
	PaymentStatusCodeFailed
)
