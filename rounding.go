package vat

import (
	"fmt"

	"github.com/govalues/decimal"
	"github.com/govalues/money"
	exact "github.com/shopspring/decimal"
)

// RoundHalfDownToCurr returns an amount rounded to the scale of its currency
// using [rounding half down]: values exactly halfway between two
// representable amounts are rounded toward zero.
//
//	EUR 0.025  → EUR 0.02
//	EUR 0.0251 → EUR 0.03
//	EUR -0.035 → EUR -0.03
//
// [rounding half down]: https://en.wikipedia.org/wiki/Rounding#Rounding_half_toward_zero
func RoundHalfDownToCurr(a money.Amount) (money.Amount, error) {
	c := a.Curr()
	d, err := roundHalfDown(a.Decimal(), c.Scale())
	if err != nil {
		return money.Amount{}, fmt.Errorf("rounding %v: %w", a, err)
	}
	return money.ParseAmount(c.Code(), d.String())
}

// roundHalfDown returns decimal d rounded to the given number of digits after
// the decimal point, with ties rounded toward zero.
func roundHalfDown(d decimal.Decimal, scale int) (decimal.Decimal, error) {
	if d.Scale() <= scale {
		return d, nil
	}
	t := d.Trunc(scale)

	// Reminder
	r, err := d.Sub(t)
	if err != nil {
		return decimal.Decimal{}, err
	}
	half, err := decimal.New(5, scale+1)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if r.CmpAbs(half) <= 0 {
		return t, nil
	}

	// Away from zero
	ulp, err := decimal.New(1, scale)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return t.Add(ulp.CopySign(d))
}

// mulHalfDown returns the product of amount a and factor e rounded half down
// to the scale of the currency.
// Products that do not fit into [decimal.MaxPrec] digits are computed with
// arbitrary precision and rounded only once.
func mulHalfDown(a money.Amount, e decimal.Decimal) (money.Amount, error) {
	c, d := a.Curr(), a.Decimal()
	if d.Prec()+e.Prec() <= decimal.MaxPrec && d.Scale()+e.Scale() <= decimal.MaxScale {
		b, err := a.Mul(e)
		if err != nil {
			return money.Amount{}, err
		}
		return RoundHalfDownToCurr(b)
	}

	x, err := exact.NewFromString(d.String())
	if err != nil {
		return money.Amount{}, err
	}
	y, err := exact.NewFromString(e.String())
	if err != nil {
		return money.Amount{}, err
	}
	z := x.Mul(y)

	scale := int32(c.Scale()) //nolint:gosec
	t := z.Truncate(scale)
	half := exact.New(5, -scale-1)
	if z.Sub(t).Abs().GreaterThan(half) {
		t = t.Add(exact.New(int64(z.Sign()), -scale))
	}
	return money.ParseAmount(c.Code(), t.StringFixed(scale))
}
