package engine

type SignalType string

const (
	SigPhaseChanged         SignalType = "PhaseChanged"
	SigPlayerJoined         SignalType = "PlayerJoinedInProgress"
	SigJoinDenied           SignalType = "JoinDenied"
	SigBackfillStarted      SignalType = "BackfillStarted"
	SigBackfillPlayerJoined SignalType = "BackfillPlayerJoined"
	SigBackfillComplete     SignalType = "BackfillComplete"
	SigBackfillCancelled    SignalType = "BackfillCancelled"
	SigBackfillFailed       SignalType = "BackfillFailed"
	SigGameLocked           SignalType = "GameLocked"
	SigGameUnlocked         SignalType = "GameUnlocked"

	// Discovery-record attribute updates, consumed by whatever external
	// listing mechanism exists. Best-effort, fire-and-forget.
	SigJoinableChanged      SignalType = "JoinableChanged"
	SigBackfillSlotsChanged SignalType = "BackfillSlotsChanged"
)

// Signal is one queued engine notification. Fields beyond Type are populated
// per signal kind.
type Signal struct {
	Type          SignalType `json:"type"`
	OldPhase      GamePhase  `json:"old_phase,omitempty"`
	NewPhase      GamePhase  `json:"new_phase,omitempty"`
	CandidateID   string     `json:"candidate_id,omitempty"`
	DisplayName   string     `json:"display_name,omitempty"`
	Reason        DenyReason `json:"reason,omitempty"`
	Team          int        `json:"team,omitempty"`
	RequestID     string     `json:"request_id,omitempty"`
	Slots         int        `json:"slots,omitempty"`
	Joinable      bool       `json:"joinable,omitempty"`
	NeedsBackfill bool       `json:"needs_backfill,omitempty"`
}

func ContainsSignal(signals []Signal, st SignalType) bool {
	for _, s := range signals {
		if s.Type == st {
			return true
		}
	}
	return false
}

func CountSignal(signals []Signal, st SignalType) int {
	n := 0
	for _, s := range signals {
		if s.Type == st {
			n++
		}
	}
	return n
}
