package vat

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/govalues/decimal"
)

// maxTextLen is the length of the longest string accepted by [decimal.Parse].
const maxTextLen = 330

// canonicalize converts a numeric string using sep as its decimal separator
// to the canonical form of a percentage.
func canonicalize(s string, sep rune) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty string: %w", ErrInvalidPercentage)
	}

	// Separator
	if sep != '.' {
		switch {
		case sep >= '0' && sep <= '9',
			sep == '+', sep == '-',
			sep == 'e', sep == 'E',
			sep == utf8.RuneError:
			return "", fmt.Errorf("separator %q: %w", sep, ErrInvalidPercentage)
		case strings.ContainsRune(s, '.'):
			return "", fmt.Errorf("unexpected '.' with separator %q: %w", sep, ErrInvalidPercentage)
		}
		s = strings.ReplaceAll(s, string(sep), ".")
	}

	// Validation
	if _, err := decimal.Parse(s); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPercentage, err)
	}
	mant, exp, hasExp := strings.Cut(s, "e")
	if !hasExp {
		mant, exp, hasExp = strings.Cut(s, "E")
	}
	if strings.HasSuffix(mant, ".") {
		return "", fmt.Errorf("no fractional digits: %w", ErrInvalidPercentage)
	}

	// Exponential notation
	if hasExp {
		e, err := strconv.Atoi(exp)
		if err != nil {
			return "", fmt.Errorf("exponent %q: %w", exp, ErrInvalidPercentage)
		}
		s = expand(mant, e)
	}

	text := normalize(s)
	if len(text) > maxTextLen {
		return "", fmt.Errorf("string is too long: %w", ErrInvalidPercentage)
	}
	return text, nil
}

// expand rewrites a significand multiplied by 10^exp in plain notation.
// All digits of the significand are kept, and so is its sign, even for zero.
// Leading zeros of the integer part are removed.
//
//	expand("2.1", 1)   → "21"
//	expand("-0", 1)    → "-0"
//	expand("1", -3)    → "0.001"
func expand(mant string, exp int) string {
	var sign string
	if mant != "" && (mant[0] == '-' || mant[0] == '+') {
		sign, mant = mant[:1], mant[1:]
	}
	whole, frac, _ := strings.Cut(mant, ".")
	digits := whole + frac
	point := len(whole) + exp

	switch {
	case point <= 0:
		whole, frac = "", strings.Repeat("0", -point)+digits
	case point >= len(digits):
		whole, frac = digits+strings.Repeat("0", point-len(digits)), ""
	default:
		whole, frac = digits[:point], digits[point:]
	}
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}

	if frac == "" {
		return sign + whole
	}
	return sign + whole + "." + frac
}

// normalize rewrites a valid numeric string in plain notation to canonical form.
// The integer part is kept as written.
func normalize(s string) string {
	// Sign
	var neg bool
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, ok := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	switch {
	case !ok:
		frac = "0"
	case frac != "0":
		frac = strings.TrimRight(frac, "0")
		if frac == "" {
			frac = "0"
		}
	}

	var b strings.Builder
	b.Grow(len(whole) + len(frac) + 2)
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(whole)
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
