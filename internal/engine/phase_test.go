package engine

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseController_SetPhaseNoopWhenUnchanged(t *testing.T) {
	pc := NewPhaseController(clock.NewMock())

	changed, _ := pc.SetPhase(PhaseLobby)
	assert.False(t, changed)
	assert.Equal(t, PhaseLobby, pc.Phase())
	assert.Equal(t, PhaseLobby, pc.Previous())
}

func TestPhaseController_FirstInProgressStampsMatchStart(t *testing.T) {
	mock := clock.NewMock()
	pc := NewPhaseController(mock)
	mock.Add(time.Minute)

	changed, startedNow := pc.SetPhase(PhaseInProgress)
	require.True(t, changed)
	require.True(t, startedNow)
	start, ok := pc.MatchStart()
	require.True(t, ok)
	assert.Equal(t, mock.Now(), start)

	// leaving and re-entering InProgress must not re-stamp
	pc.SetPhase(PhaseOvertime)
	mock.Add(time.Minute)
	_, startedNow = pc.SetPhase(PhaseInProgress)
	assert.False(t, startedNow)
	again, _ := pc.MatchStart()
	assert.Equal(t, start, again)
}

func TestPhaseController_AnyPhaseMayFollowAnyPhase(t *testing.T) {
	pc := NewPhaseController(clock.NewMock())
	seq := []GamePhase{PhasePostGame, PhaseWarmup, PhaseOvertime, PhaseLobby, PhaseCustom}
	for _, p := range seq {
		changed, _ := pc.SetPhase(p)
		require.True(t, changed, "transition into %s", p)
		assert.Equal(t, p, pc.Phase())
	}
	assert.Equal(t, PhaseLobby, pc.Previous())
}

func TestPhaseController_LockIsIdempotent(t *testing.T) {
	pc := NewPhaseController(clock.NewMock())

	assert.True(t, pc.Lock())
	assert.False(t, pc.Lock()) // second call observable as no-op
	assert.True(t, pc.Locked())

	assert.True(t, pc.Unlock())
	assert.False(t, pc.Unlock())
	assert.False(t, pc.Locked())
}

func TestPhaseController_Reset(t *testing.T) {
	mock := clock.NewMock()
	pc := NewPhaseController(mock)
	pc.SetPhase(PhaseInProgress)
	pc.Lock()

	pc.Reset()

	assert.Equal(t, PhaseLobby, pc.Phase())
	assert.False(t, pc.Locked())
	_, started := pc.MatchStart()
	assert.False(t, started)
}
