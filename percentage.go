package vat

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/govalues/decimal"
	"github.com/govalues/money"
)

// ErrInvalidPercentage is returned when a string cannot be parsed as a percentage.
var ErrInvalidPercentage = errors.New("invalid percentage")

const (
	zeroText    = "0.0" // canonical form of the zero percentage
	ratioDigits = 14    // significant digits of the multiplication factor
)

// Percentage type represents a percentage rate, such as a VAT rate.
// Its zero value corresponds to "0.0".
// Percentage is designed to be safe for concurrent use by multiple goroutines.
type Percentage struct {
	text string // canonical form, empty for "0.0"
}

// newPercentageUnsafe creates a new percentage from a canonical string.
// Use it only if you are absolutely sure that the string is canonical.
func newPercentageUnsafe(text string) Percentage {
	if text == zeroText {
		text = ""
	}
	return Percentage{text: text}
}

// Zero returns the zero percentage "0.0".
// It is equal to the zero value of [Percentage] and to the result of Parse("0").
func Zero() Percentage {
	return Percentage{}
}

// Parse converts a string to a percentage.
// The input string must be in one of the following formats:
//
//	21
//	4.400000
//	-0.5
//	+.25
//	2.1e1
//
// The formal EBNF grammar for the supported format is as follows:
//
//	sign           ::= '+' | '-'
//	digits         ::= { '0' | '1' | '2' | '3' | '4' | '5' | '6' | '7' | '8' | '9' }
//	significand    ::= digits '.' digits | '.' digits | digits
//	exponent       ::= ('e' | 'E') [sign] digits
//	numeric-string ::= [sign] significand [exponent]
//
// Parse returns an error wrapping [ErrInvalidPercentage] if:
//   - the string is empty or contains any whitespaces;
//   - the string ends with a decimal point, for example "5.";
//   - the string does not represent a valid decimal number;
//   - the integer part of the number has more than [decimal.MaxPrec] digits.
func Parse(s string) (Percentage, error) {
	return ParseWithSep(s, '.')
}

// ParseWithSep is like [Parse] but uses sep as the decimal separator.
// The canonical form always uses '.' as the decimal point:
//
//	ParseWithSep("7,50", ',') → 7.5
//
// ParseWithSep returns an error wrapping [ErrInvalidPercentage] if sep is
// a digit, a sign, or an exponent marker, or if sep is not '.' and the string
// contains '.'.
func ParseWithSep(s string, sep rune) (Percentage, error) {
	text, err := canonicalize(s, sep)
	if err != nil {
		return Percentage{}, fmt.Errorf("parsing percentage: %w", err)
	}
	return newPercentageUnsafe(text), nil
}

// MustParse is like [Parse] but panics if the string cannot be parsed.
// It simplifies safe initialization of global variables holding percentages.
func MustParse(s string) Percentage {
	p, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("MustParse(%q) failed: %v", s, err))
	}
	return p
}

// NewFromDecimal converts a decimal to a percentage.
// Trailing zeros of the decimal are not preserved:
//
//	NewFromDecimal(decimal.MustParse("19.00")) → 19.0
func NewFromDecimal(d decimal.Decimal) (Percentage, error) {
	text, err := canonicalize(d.String(), '.')
	if err != nil {
		return Percentage{}, fmt.Errorf("converting decimal: %w", err)
	}
	return newPercentageUnsafe(text), nil
}

// String implements the [fmt.Stringer] interface and returns the canonical
// representation of a percentage, without the percent sign.
// See also methods [Percentage.Percent] and [Percentage.Format].
//
// [fmt.Stringer]: https://pkg.go.dev/fmt#Stringer
func (p Percentage) String() string {
	if p.text == "" {
		return zeroText
	}
	return p.text
}

// Percent returns the canonical representation followed by the percent sign,
// for example "21.0%".
func (p Percentage) Percent() string {
	return p.String() + "%"
}

// Ratio returns the percentage divided by 100 as a binary floating-point number.
//
// This conversion may lose data, as float64 has a smaller precision
// than the canonical representation.
func (p Percentage) Ratio() float64 {
	// The canonical form is always a valid float literal.
	f, _ := strconv.ParseFloat(p.String(), 64)
	return f / 100
}

// IsZero returns true if the canonical representation is exactly "0.0".
// Negative zero "-0.0" and zeros with leading zeros, like "00.0",
// are not considered zero.
func (p Percentage) IsZero() bool {
	return p.text == ""
}

// Equal returns true if percentages have the same canonical representation.
func (p Percentage) Equal(q Percentage) bool {
	return p.text == q.text
}

// SameValueAs returns true if the canonical representation is equal to s.
// The string s is compared as is, without normalization:
//
//	MustParse("5").SameValueAs("5.0") → true
//	MustParse("5").SameValueAs("5")   → false
func (p Percentage) SameValueAs(s string) bool {
	return p.String() == s
}

// Less returns true if ratio of percentage p is less than ratio of percentage q.
// See also method [Percentage.Ratio].
func (p Percentage) Less(q Percentage) bool {
	return p.Ratio() < q.Ratio()
}

// LessOrEqual returns true if ratio of percentage p is less than or equal to
// ratio of percentage q.
// See also method [Percentage.Ratio].
func (p Percentage) LessOrEqual(q Percentage) bool {
	return p.Ratio() <= q.Ratio()
}

// factor returns the multiplier applied to amounts.
// The ratio is rendered with [ratioDigits] significant digits, so that
// binary floating-point noise does not reach the amount.
func (p Percentage) factor() (decimal.Decimal, error) {
	s := strconv.FormatFloat(p.Ratio(), 'g', ratioDigits, 64)
	return decimal.Parse(s)
}

// Tax returns the tax portion of amount a, rounded to the scale of its currency
// using rounding half down.
// If amount a is zero, the result is zero in the currency of the amount.
// The product is rounded only once, even when it has more than
// [decimal.MaxPrec] digits.
// See also methods [Percentage.Inclusive] and [RoundHalfDownToCurr].
//
// Tax returns an error if the integer part of the result has more than
// ([decimal.MaxPrec] - [money.Currency.Scale]) digits.
func (p Percentage) Tax(a money.Amount) (money.Amount, error) {
	b, err := p.tax(a)
	if err != nil {
		return money.Amount{}, fmt.Errorf("computing [%v * %k]: %w", a, p, err)
	}
	return b, nil
}

func (p Percentage) tax(a money.Amount) (money.Amount, error) {
	c := a.Curr()
	if a.IsZero() {
		return money.ParseAmount(c.Code(), "0")
	}
	e, err := p.factor()
	if err != nil {
		return money.Amount{}, err
	}
	return mulHalfDown(a, e)
}

// Inclusive returns amount a increased by its tax portion.
// The currency of the result is the currency of amount a.
// See also method [Percentage.Tax].
//
// Inclusive returns an error if the integer part of the result has more than
// ([decimal.MaxPrec] - [money.Currency.Scale]) digits.
func (p Percentage) Inclusive(a money.Amount) (money.Amount, error) {
	b, err := p.Tax(a)
	if err != nil {
		return money.Amount{}, err
	}
	c, err := a.Add(b)
	if err != nil {
		return money.Amount{}, fmt.Errorf("computing [%v + %v]: %w", a, b, err)
	}
	return c, nil
}
