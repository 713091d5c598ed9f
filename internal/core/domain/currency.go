package domain

import "github.com/shopspring/decimal"

// Currency is a settlement asset the gateway accepts deposits in. Currencies
// are immutable once fetched and are keyed by their code.
type Currency struct {
	Code      string
	Name      string
	Symbol    string
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
}

// InRange returns whether the given source amount can be settled in this
// currency, ie. it lies within the [MinAmount, MaxAmount] interval.
func (c Currency) InRange(amount decimal.Decimal) bool {
	if amount.LessThan(c.MinAmount) {
		return false
	}
	if c.MaxAmount.IsPositive() && amount.GreaterThan(c.MaxAmount) {
		return false
	}
	return true
}

// Network is a settlement network scoped to exactly one currency. The pair
// (currency code, network code) is the addressing unit for a deposit.
type Network struct {
	Code string
	Name string
}
