package domain

import "github.com/shopspring/decimal"

// Estimate is a provisional conversion of a source amount into the selected
// settlement currency. It lives only until superseded by a newer request.
type Estimate struct {
	SourceAmount    decimal.Decimal
	SourceCurrency  string
	TargetCurrency  string
	EstimatedAmount decimal.Decimal
	// RequestSeq is a monotonically increasing token stamped at request time.
	// Only the estimate carrying the greatest sequence seen so far may be
	// displayed; lower sequences are stale and must be dropped.
	RequestSeq uint64
}
