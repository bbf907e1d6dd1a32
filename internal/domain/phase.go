package domain

// LoadingPhase is the state of one anchor-selection cycle in the swipe
// engine. Exactly one controller owns the phase for an active selection.
type LoadingPhase string

const (
	// PhaseIdle means no anchor is selected.
	PhaseIdle LoadingPhase = "idle"

	// PhaseCreatingSession means session creation (and history retrieval)
	// is in flight.
	PhaseCreatingSession LoadingPhase = "creating-session"

	// PhaseLoadingItems means the candidate pool is being built.
	PhaseLoadingItems LoadingPhase = "loading-items"

	// PhaseComplete means the pool is published and swipes are accepted.
	PhaseComplete LoadingPhase = "complete"

	// PhaseError means the cycle failed; all partial state has been reset.
	PhaseError LoadingPhase = "error"
)

// Valid checks if the phase is valid.
func (p LoadingPhase) Valid() bool {
	switch p {
	case PhaseIdle, PhaseCreatingSession, PhaseLoadingItems, PhaseComplete, PhaseError:
		return true
	default:
		return false
	}
}

// Terminal reports whether the phase ends an anchor-selection cycle.
// A new anchor selection restarts from idle.
func (p LoadingPhase) Terminal() bool {
	return p == PhaseComplete || p == PhaseError
}

// CanTransition reports whether the phase may move from p to next. The only
// legal path is idle → creating-session → loading-items → {complete|error},
// with error reachable from either intermediate phase.
func (p LoadingPhase) CanTransition(next LoadingPhase) bool {
	switch p {
	case PhaseIdle:
		return next == PhaseCreatingSession
	case PhaseCreatingSession:
		return next == PhaseLoadingItems || next == PhaseError
	case PhaseLoadingItems:
		return next == PhaseComplete || next == PhaseError
	default:
		return false
	}
}
