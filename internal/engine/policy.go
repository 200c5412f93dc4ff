package engine

import "time"

type DenyReason string

const (
	DeniedPhase   DenyReason = "phase"
	DeniedFull    DenyReason = "full"
	DeniedTimeout DenyReason = "timeout"
	DeniedLocked  DenyReason = "locked"
	DeniedBanned  DenyReason = "banned"
	DeniedOther   DenyReason = "other" // reserved
)

type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
}

func Allow() Decision            { return Decision{Allowed: true} }
func Deny(r DenyReason) Decision { return Decision{Reason: r} }

// Banlist is the externally supplied membership check consulted last during
// admission.
type Banlist interface {
	IsBanned(candidateID string) bool
}

// PolicyState is the slice of live match state the admission policy reads.
// Callers build it fresh on every evaluation; decisions are never cached.
type PolicyState struct {
	Phase         GamePhase
	Locked        bool
	Occupancy     int
	Capacity      int
	MatchStarted  bool
	Elapsed       time.Duration // since match start; meaningful only when MatchStarted
	TimeRemaining time.Duration // estimated; 0 = unknown
}

// Evaluate decides whether a candidate may join. Checks run cheapest first
// and short-circuit on the first failure. The function is pure: identical
// inputs always yield the identical decision.
//
// An empty candidateID skips the ban check, which is how backfill requests
// re-validate without a specific candidate.
func Evaluate(cfg Config, st PolicyState, candidateID string, bans Banlist) Decision {
	if !cfg.AllowJoinInProgress {
		return Deny(DeniedLocked)
	}
	if st.Locked {
		return Deny(DeniedLocked)
	}
	if !cfg.PhaseAllowed(st.Phase) {
		return Deny(DeniedPhase)
	}
	if st.Occupancy >= st.Capacity {
		return Deny(DeniedFull)
	}
	if st.MatchStarted && cfg.JoinTimeout > 0 && st.Elapsed > cfg.JoinTimeout {
		return Deny(DeniedTimeout)
	}
	if cfg.MinTimeRemaining > 0 && st.TimeRemaining > 0 && st.TimeRemaining < cfg.MinTimeRemaining {
		return Deny(DeniedTimeout)
	}
	if candidateID != "" && bans != nil && bans.IsBanned(candidateID) {
		return Deny(DeniedBanned)
	}
	return Allow()
}
