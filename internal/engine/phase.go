package engine

import (
	"time"

	"github.com/benbjohnson/clock"
)

type GamePhase string

const (
	PhaseLobby      GamePhase = "lobby"
	PhaseLoading    GamePhase = "loading"
	PhaseWarmup     GamePhase = "warmup"
	PhaseInProgress GamePhase = "in_progress"
	PhaseOvertime   GamePhase = "overtime"
	PhasePostGame   GamePhase = "post_game"
	PhaseCustom     GamePhase = "custom"
)

// PhaseController tracks the current match phase and the lock flag. Phases
// are unordered (any phase may follow any phase); only the lock flag is a
// real two-state machine.
type PhaseController struct {
	clock      clock.Clock
	phase      GamePhase
	prev       GamePhase
	locked     bool
	started    bool
	matchStart time.Time
}

func NewPhaseController(clk clock.Clock) *PhaseController {
	return &PhaseController{clock: clk, phase: PhaseLobby, prev: PhaseLobby}
}

func (pc *PhaseController) Phase() GamePhase    { return pc.phase }
func (pc *PhaseController) Previous() GamePhase { return pc.prev }
func (pc *PhaseController) Locked() bool        { return pc.locked }

// MatchStart reports when the match first entered InProgress.
func (pc *PhaseController) MatchStart() (time.Time, bool) {
	return pc.matchStart, pc.started
}

// SetPhase records the transition. changed is false when the phase is
// unchanged; startedNow is true only on the first transition into InProgress,
// which also stamps the match start time.
func (pc *PhaseController) SetPhase(p GamePhase) (changed, startedNow bool) {
	if p == pc.phase {
		return false, false
	}
	pc.prev = pc.phase
	pc.phase = p
	if p == PhaseInProgress && !pc.started {
		pc.started = true
		pc.matchStart = pc.clock.Now()
		return true, true
	}
	return true, false
}

// Lock reports whether the flag actually transitioned, so a second call is
// observable as a no-op.
func (pc *PhaseController) Lock() bool {
	if pc.locked {
		return false
	}
	pc.locked = true
	return true
}

func (pc *PhaseController) Unlock() bool {
	if !pc.locked {
		return false
	}
	pc.locked = false
	return true
}

func (pc *PhaseController) Reset() {
	pc.phase = PhaseLobby
	pc.prev = PhaseLobby
	pc.locked = false
	pc.started = false
	pc.matchStart = time.Time{}
}
