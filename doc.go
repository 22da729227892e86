/*
Package vat implements percentage rates, such as value-added tax rates, and
applies them to monetary amounts.
It keeps the rate as exact decimal text and delegates monetary arithmetic to
the [money] package, which in turn relies on the [decimal] package.

# Features

  - Immutable percentage values, ensuring safe usage across multiple goroutines
  - A single canonical text form used for comparison, display and persistence
  - Calculation of the tax portion and the tax-inclusive total of an amount
  - Rounding half down, in accordance with the currency's scale
  - Text, JSON, binary, BSON and SQL encodings of the canonical form

# Representation

A [Percentage] is a canonical decimal string.
The canonical string always contains exactly one decimal point with at
least one digit on each side of it, never starts with a plus sign and
never has trailing zeros beyond the single mandatory fractional digit:

	5          → 5.0
	5.000000   → 5.0
	4.400000   → 4.4
	+.25       → 0.25
	2.1e1      → 21.0

Leading zeros of the integer part are preserved as written, unless the
number is in exponential notation.
Two percentages are equal if and only if their canonical strings are equal.
The zero value of a Percentage is 0.0.

# Operations

The package provides [Percentage.Tax], which computes the tax portion of an
amount, and [Percentage.Inclusive], which adds that portion to the amount.
Both operations keep the currency of the amount.

# Rounding

The multiplication factor is the percentage converted to a binary
floating-point ratio and rendered with 14 significant digits.
The product of the amount and the factor is rounded to the scale of the
currency using rounding half down: exact halves are rounded toward zero.
See [RoundHalfDownToCurr].

# Errors

Parsing fails with an error wrapping [ErrInvalidPercentage] when the input
is empty, is not a valid numeric string, or ends with a decimal separator.
Arithmetic returns errors produced by the [money] package, such as
coefficient overflow.
Constructors prefixed with Must panic instead of returning an error.

[money]: https://pkg.go.dev/github.com/govalues/money
[decimal]: https://pkg.go.dev/github.com/govalues/decimal
*/
package vat
