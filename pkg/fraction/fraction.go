// Package fraction provides an exact rational number type for musical time.
//
// Values are always kept reduced with a positive denominator, and zero is the
// zero value, so two fractions are equal exactly when == says they are.
package fraction

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalid reports a string that is not a fraction.
var ErrInvalid = errors.New("invalid fraction")

// Fraction is a reduced num/den pair.
type Fraction struct {
	num int64
	den int64
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// New returns num/den reduced. It panics when den is zero.
func New(num, den int64) Fraction {
	if den == 0 {
		panic("fraction: zero denominator")
	}
	if num == 0 {
		return Fraction{}
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(num, den)
	return Fraction{num: num / g, den: den / g}
}

// Int returns n/1.
func Int(n int64) Fraction {
	return New(n, 1)
}

// Parse reads "n", "n/d" or "/d" (meaning 1/d).
func Parse(s string) (Fraction, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Fraction{}, fmt.Errorf("%w: empty", ErrInvalid)
	}
	numStr, denStr, hasSlash := strings.Cut(s, "/")
	if numStr == "" && hasSlash {
		numStr = "1"
	}
	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return Fraction{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	if !hasSlash {
		return Int(num), nil
	}
	den, err := strconv.ParseInt(strings.TrimSpace(denStr), 10, 64)
	if err != nil || den == 0 {
		return Fraction{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return New(num, den), nil
}

// Num returns the numerator.
func (f Fraction) Num() int64 { return f.num }

// Den returns the denominator, 1 for zero.
func (f Fraction) Den() int64 {
	if f.den == 0 {
		return 1
	}
	return f.den
}

func (f Fraction) Add(g Fraction) Fraction {
	return New(f.num*g.Den()+g.num*f.Den(), f.Den()*g.Den())
}

func (f Fraction) Sub(g Fraction) Fraction {
	return New(f.num*g.Den()-g.num*f.Den(), f.Den()*g.Den())
}

func (f Fraction) Mul(g Fraction) Fraction {
	return New(f.num*g.num, f.Den()*g.Den())
}

// Div panics when g is zero.
func (f Fraction) Div(g Fraction) Fraction {
	return New(f.num*g.Den(), f.Den()*g.num)
}

// Cmp returns -1, 0 or +1.
func (f Fraction) Cmp(g Fraction) int {
	l, r := f.num*g.Den(), g.num*f.Den()
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

func (f Fraction) Less(g Fraction) bool { return f.Cmp(g) < 0 }

func (f Fraction) IsZero() bool { return f.num == 0 }

func (f Fraction) Sign() int {
	switch {
	case f.num < 0:
		return -1
	case f.num > 0:
		return 1
	}
	return 0
}

func (f Fraction) Abs() Fraction {
	if f.num < 0 {
		return Fraction{num: -f.num, den: f.den}
	}
	return f
}

// Floor returns the greatest integer not above f.
func (f Fraction) Floor() int64 {
	q := f.num / f.Den()
	if f.num%f.Den() != 0 && f.num < 0 {
		q--
	}
	return q
}

// Mod returns f modulo m, in [0, m) for positive m.
func (f Fraction) Mod(m Fraction) Fraction {
	return f.Sub(m.Mul(Int(f.Div(m).Floor())))
}

// Round returns the multiple of unit nearest to f; halves round up.
func (f Fraction) Round(unit Fraction) Fraction {
	half := New(1, 2)
	return unit.Mul(Int(f.Div(unit).Add(half).Floor()))
}

func Min(a, b Fraction) Fraction {
	if b.Less(a) {
		return b
	}
	return a
}

func Max(a, b Fraction) Fraction {
	if a.Less(b) {
		return b
	}
	return a
}

func (f Fraction) Float64() float64 {
	return float64(f.num) / float64(f.Den())
}

func (f Fraction) String() string {
	if f.Den() == 1 {
		return strconv.FormatInt(f.num, 10)
	}
	return strconv.FormatInt(f.num, 10) + "/" + strconv.FormatInt(f.den, 10)
}
