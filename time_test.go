package framelib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func Test_FromSamples(t *testing.T) {
	assert.True(t, FromSamples(10).Equal(NewTime(10, 1)))
	assert.True(t, FromSamples(0).Equal(Zero))
}

func Test_AddExact(t *testing.T) {
	a := NewTime(1, 3)
	b := NewTime(1, 6)
	assert.True(t, a.Add(b).Equal(NewTime(1, 2)), "1/3 + 1/6 should reduce to 1/2")
}

func Test_SubSaturatesAtZero(t *testing.T) {
	a := FromSamples(5)
	b := FromSamples(10)
	assert.True(t, a.Sub(b).Equal(Zero), "Sub must never go negative")
}

func Test_CompareOrdering(t *testing.T) {
	assert.True(t, FromSamples(1).Before(FromSamples(2)))
	assert.True(t, FromSamples(2).After(FromSamples(1)))
	assert.True(t, FromSamples(2).Equal(FromSamples(2)))
	assert.True(t, FromSamples(2).LessEqual(FromSamples(2)))
	assert.True(t, FromSamples(2).GreaterEqual(FromSamples(2)))
}

func Test_MinMax(t *testing.T) {
	a, b := FromSamples(3), FromSamples(7)
	assert.True(t, Min(a, b).Equal(a))
	assert.True(t, Max(a, b).Equal(b))
}

func Test_RoundHalfToEven(t *testing.T) {
	assert.Equal(t, int64(2), roundHalfToEven(2.5))
	assert.Equal(t, int64(4), roundHalfToEven(3.5))
	assert.Equal(t, int64(-2), roundHalfToEven(-2.5))
}

func Test_FromSecondsDefaultRate(t *testing.T) {
	got := FromSeconds(1.0, 0)
	assert.Equal(t, int64(DefaultSamplingRate), got.Samples())
}

// Property: adding a Time to itself N times never makes it appear to go
// backwards, for any non-negative sample count and any positive denominator.
func Test_AddIsMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		num := rapid.Int64Range(0, 1_000_000).Draw(t, "num")
		den := rapid.Int64Range(1, 1000).Draw(t, "den")
		step := NewTime(num, den)

		acc := Zero
		for i := 0; i < 5; i++ {
			next := acc.Add(step)
			assert.True(t, next.GreaterEqual(acc), "accumulation must never regress")
			acc = next
		}
	})
}
