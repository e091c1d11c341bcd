package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBurstThenRefill(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	rl.interval = 10 * time.Millisecond

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// other clients keep their own bucket
	assert.True(t, rl.Allow("10.0.0.2"))

	// one interval later a token is back
	rl.buckets["10.0.0.1"].lastRefill = time.Now().Add(-rl.interval)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiterRefillCapsAtBurst(t *testing.T) {
	rl := NewRateLimiter(5, 3)
	rl.interval = time.Millisecond

	assert.True(t, rl.Allow("10.0.0.9"))
	// a long idle stretch refills many intervals but never beyond burst
	rl.buckets["10.0.0.9"].lastRefill = time.Now().Add(-time.Second)
	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.9"))
	}
	rl.buckets["10.0.0.9"].lastRefill = time.Now()
	assert.False(t, rl.Allow("10.0.0.9"))
}
