package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllow_WithinBurst(t *testing.T) {
	krl := New(1, 3)

	// Burst tokens are available immediately
	assert.True(t, krl.Allow("user-1"))
	assert.True(t, krl.Allow("user-1"))
	assert.True(t, krl.Allow("user-1"))

	// Burst exhausted
	assert.False(t, krl.Allow("user-1"))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	krl := New(1, 1)

	assert.True(t, krl.Allow("user-1"))
	assert.False(t, krl.Allow("user-1"))

	// A different key has its own bucket
	assert.True(t, krl.Allow("user-2"))
}

func TestGetLimiter_ReusesExisting(t *testing.T) {
	krl := New(10, 5)

	first := krl.getLimiter("user-1")
	second := krl.getLimiter("user-1")
	assert.Same(t, first, second)
}
