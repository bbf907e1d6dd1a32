package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadingPhase_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from LoadingPhase
		to   LoadingPhase
		want bool
	}{
		{"idle to creating", PhaseIdle, PhaseCreatingSession, true},
		{"creating to loading", PhaseCreatingSession, PhaseLoadingItems, true},
		{"creating to error", PhaseCreatingSession, PhaseError, true},
		{"loading to complete", PhaseLoadingItems, PhaseComplete, true},
		{"loading to error", PhaseLoadingItems, PhaseError, true},

		{"idle to loading skips creation", PhaseIdle, PhaseLoadingItems, false},
		{"idle to complete", PhaseIdle, PhaseComplete, false},
		{"idle to error", PhaseIdle, PhaseError, false},
		{"creating to complete skips loading", PhaseCreatingSession, PhaseComplete, false},
		{"loading back to creating", PhaseLoadingItems, PhaseCreatingSession, false},
		{"complete is terminal", PhaseComplete, PhaseLoadingItems, false},
		{"complete to error", PhaseComplete, PhaseError, false},
		{"error is terminal", PhaseError, PhaseCreatingSession, false},
		{"self transition", PhaseLoadingItems, PhaseLoadingItems, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestLoadingPhase_Terminal(t *testing.T) {
	assert.True(t, PhaseComplete.Terminal())
	assert.True(t, PhaseError.Terminal())
	assert.False(t, PhaseIdle.Terminal())
	assert.False(t, PhaseCreatingSession.Terminal())
	assert.False(t, PhaseLoadingItems.Terminal())
}

func TestLoadingPhase_Valid(t *testing.T) {
	for _, p := range []LoadingPhase{PhaseIdle, PhaseCreatingSession, PhaseLoadingItems, PhaseComplete, PhaseError} {
		assert.True(t, p.Valid(), "phase %s", p)
	}
	assert.False(t, LoadingPhase("loading").Valid())
	assert.False(t, LoadingPhase("").Valid())
}
