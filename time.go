package framelib

import (
	"fmt"
	"math/big"
)

// DefaultSamplingRate is substituted whenever a non-positive sampling rate is
// supplied to a Time conversion, matching FrameLib_DSP::setSamplingRate.
const DefaultSamplingRate = 44100.0

// Time is an exact timestamp in samples, held as a reduced rational
// (Num/Den) so that fractional advances from scheduler nodes accumulate
// without drift. It must never be compared via float64 equality; Compare,
// Before, After and Equal are exact.
type Time struct {
	num int64
	den int64 // always > 0
}

// Zero is the time origin.
var Zero = Time{num: 0, den: 1}

// NewTime builds a reduced Time from a numerator/denominator pair. A zero or
// negative denominator is treated as 1 (whole samples).
func NewTime(num, den int64) Time {
	if den <= 0 {
		den = 1
	}
	return reduce(num, den)
}

// FromSamples builds a whole-sample Time.
func FromSamples(n int64) Time { return Time{num: n, den: 1} }

// FromMilliseconds converts a millisecond duration to samples at the given
// sampling rate, rounding half-to-even. A non-positive rate falls back to
// DefaultSamplingRate.
func FromMilliseconds(ms float64, samplingRate float64) Time {
	return FromSeconds(ms/1000.0, samplingRate)
}

// FromSeconds converts a second duration to samples at the given sampling
// rate, rounding half-to-even. A non-positive rate falls back to
// DefaultSamplingRate.
func FromSeconds(s float64, samplingRate float64) Time {
	if samplingRate <= 0 {
		samplingRate = DefaultSamplingRate
	}
	return FromSamples(roundHalfToEven(s * samplingRate))
}

func roundHalfToEven(v float64) int64 {
	floor := int64(v)
	if v < 0 && float64(floor) != v {
		floor--
	}
	frac := v - float64(floor)
	switch {
	case frac < 0.5:
		return floor
	case frac > 0.5:
		return floor + 1
	default:
		if floor%2 == 0 {
			return floor
		}
		return floor + 1
	}
}

func reduce(num, den int64) Time {
	if den < 0 {
		num, den = -num, -den
	}
	if num == 0 {
		return Time{num: 0, den: 1}
	}
	g := gcd(absInt64(num), den)
	if g > 1 {
		num /= g
		den /= g
	}
	return Time{num: num, den: den}
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Samples returns the time truncated to whole samples.
func (t Time) Samples() int64 {
	if t.den == 1 {
		return t.num
	}
	q := t.num / t.den
	return q
}

// Seconds returns a float64 approximation; never used for equality checks.
func (t Time) Seconds(samplingRate float64) float64 {
	if samplingRate <= 0 {
		samplingRate = DefaultSamplingRate
	}
	return (float64(t.num) / float64(t.den)) / samplingRate
}

// Add returns t + o, exactly.
func (t Time) Add(o Time) Time {
	n := new(big.Int).Mul(big.NewInt(t.num), big.NewInt(o.den))
	n.Add(n, new(big.Int).Mul(big.NewInt(o.num), big.NewInt(t.den)))
	d := new(big.Int).Mul(big.NewInt(t.den), big.NewInt(o.den))
	return reduceBig(n, d)
}

// Sub returns t - o, saturating at Zero ("valid from" semantics: a node's
// valid range never extends before time zero).
func (t Time) Sub(o Time) Time {
	n := new(big.Int).Mul(big.NewInt(t.num), big.NewInt(o.den))
	n.Sub(n, new(big.Int).Mul(big.NewInt(o.num), big.NewInt(t.den)))
	d := new(big.Int).Mul(big.NewInt(t.den), big.NewInt(o.den))
	result := reduceBig(n, d)
	if result.num < 0 {
		return Zero
	}
	return result
}

func reduceBig(num, den *big.Int) Time {
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	if num.Sign() == 0 {
		return Time{num: 0, den: 1}
	}
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(num), den)
	if g.Sign() != 0 {
		num.Div(num, g)
		den.Div(den, g)
	}
	return Time{num: num.Int64(), den: den.Int64()}
}

// Compare returns -1, 0 or +1 as t is less than, equal to, or greater than o.
func (t Time) Compare(o Time) int {
	lhs := new(big.Int).Mul(big.NewInt(t.num), big.NewInt(o.den))
	rhs := new(big.Int).Mul(big.NewInt(o.num), big.NewInt(t.den))
	return lhs.Cmp(rhs)
}

func (t Time) Equal(o Time) bool     { return t.Compare(o) == 0 }
func (t Time) Before(o Time) bool    { return t.Compare(o) < 0 }
func (t Time) After(o Time) bool     { return t.Compare(o) > 0 }
func (t Time) LessEqual(o Time) bool { return t.Compare(o) <= 0 }
func (t Time) GreaterEqual(o Time) bool {
	return t.Compare(o) >= 0
}

// String renders t as "num/den" samples, exact and independent of any
// sampling rate.
func (t Time) String() string {
	if t.den == 1 {
		return fmt.Sprintf("%d", t.num)
	}
	return fmt.Sprintf("%d/%d", t.num, t.den)
}

// Min returns the earlier of two times.
func Min(a, b Time) Time {
	if a.Before(b) {
		return a
	}
	return b
}

// Max returns the later of two times.
func Max(a, b Time) Time {
	if a.After(b) {
		return a
	}
	return b
}
