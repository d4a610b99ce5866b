// Package money holds the shared fixed-point conventions for amounts.
//
// All amounts in the system are decimal.Decimal values. Binary floats drift
// across repeated additions over a long-lived ledger, so they never appear in
// the balance path. A single tolerance constant is shared by every
// reconciliation check (split sums, settlement bounds, the simplifier's zero
// test) so that the system has one notion of "close enough to zero".
package money

import "github.com/shopspring/decimal"

// Tolerance is the maximum absolute difference treated as reconciled,
// in currency units.
var Tolerance = decimal.NewFromFloat(0.01)

// Hundred is the percentage base used by percentage splits.
var Hundred = decimal.NewFromInt(100)

// Equalish reports whether a and b differ by at most Tolerance.
func Equalish(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// NearZero reports whether d is within Tolerance of zero.
func NearZero(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(Tolerance)
}
