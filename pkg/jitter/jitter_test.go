package jitter

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_DoublesUntilMax(t *testing.T) {
	base, max := 100*time.Millisecond, time.Second

	assert.Equal(t, 100*time.Millisecond, backoff(base, max, 0))
	assert.Equal(t, 200*time.Millisecond, backoff(base, max, 1))
	assert.Equal(t, 800*time.Millisecond, backoff(base, max, 3))
	assert.Equal(t, time.Second, backoff(base, max, 4))
	assert.Equal(t, time.Second, backoff(base, max, 40))
}

func TestExponentialBackoff_WithinJitterBounds(t *testing.T) {
	for attempt := range 6 {
		d := ExponentialBackoff(50*time.Millisecond, 2*time.Second, attempt, DefaultJitter)
		want := backoff(50*time.Millisecond, 2*time.Second, attempt)

		assert.GreaterOrEqual(t, d, want)
		assert.LessOrEqual(t, d, want+want/2)
	}
}

func TestDurationWithRand_Deterministic(t *testing.T) {
	a := DurationWithRand(time.Second, 0.5, rand.New(rand.NewPCG(1, 2)))
	b := DurationWithRand(time.Second, 0.5, rand.New(rand.NewPCG(1, 2)))

	assert.Equal(t, a, b)
	assert.Equal(t, time.Second, DurationWithRand(time.Second, 0, rand.New(rand.NewPCG(1, 2))))
}
