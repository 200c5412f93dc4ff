package engine

import (
	"math/rand"
	"time"

	"github.com/benbjohnson/clock"
)

// Engine composes the phase controller, admission policy, team balancer,
// backfill ledger and the auto-backfill trigger behind one facade. A single
// authority goroutine owns it, so it carries no internal locking. All
// notifications land on a signal queue the owner drains once per processed
// message or tick.
type Engine struct {
	cfg     Config
	clock   clock.Clock
	bans    Banlist
	phases  *PhaseController
	ledger  *Ledger
	history *JoinHistory

	occupancy     int
	capacity      int
	teamCounts    map[int]int
	timeRemaining time.Duration

	trigger deferredBackfill
	signals []Signal
	rng     *rand.Rand
}

func New(cfg Config, clk clock.Clock, bans Banlist) *Engine {
	return &Engine{
		cfg:        cfg,
		clock:      clk,
		bans:       bans,
		phases:     NewPhaseController(clk),
		ledger:     NewLedger(clk),
		history:    NewJoinHistory(cfg.HistoryLimit),
		capacity:   cfg.MaxPlayers,
		teamCounts: map[int]int{},
		rng:        rand.New(rand.NewSource(clk.Now().UnixNano())),
	}
}

func (e *Engine) emit(s Signal) { e.signals = append(e.signals, s) }

// DrainSignals returns queued signals in emission order and clears the
// queue. Observers run outside the engine, so a callback can never reenter
// mid-mutation.
func (e *Engine) DrainSignals() []Signal {
	out := e.signals
	e.signals = nil
	return out
}

func (e *Engine) Phase() GamePhase { return e.phases.Phase() }
func (e *Engine) Locked() bool     { return e.phases.Locked() }
func (e *Engine) Occupancy() int   { return e.occupancy }
func (e *Engine) Capacity() int    { return e.capacity }
func (e *Engine) Config() Config   { return e.cfg }

// SetPhase is a no-op when the phase is unchanged. The first transition into
// InProgress stamps match start and, when configured, locks the game.
func (e *Engine) SetPhase(p GamePhase) {
	old := e.phases.Phase()
	changed, startedNow := e.phases.SetPhase(p)
	if !changed {
		return
	}
	e.emit(Signal{Type: SigPhaseChanged, OldPhase: old, NewPhase: p})
	if startedNow && e.cfg.LockOnStart {
		e.Lock()
	}
}

// Lock is idempotent. A real transition cancels any active backfill request,
// disarms the pending trigger and clears joinability outward.
func (e *Engine) Lock() {
	if !e.phases.Lock() {
		return
	}
	if req := e.ledger.Cancel(); req != nil {
		e.emit(Signal{Type: SigBackfillCancelled, RequestID: req.ID})
		e.emit(Signal{Type: SigBackfillSlotsChanged, NeedsBackfill: false})
	}
	e.trigger.cancel()
	e.emit(Signal{Type: SigGameLocked})
	e.emit(Signal{Type: SigJoinableChanged, Joinable: false})
}

// Unlock clears the lock flag. The advertised joinable state comes from the
// live policy, not the flag alone: a full match stays unjoinable.
func (e *Engine) Unlock() {
	if !e.phases.Unlock() {
		return
	}
	e.emit(Signal{Type: SigGameUnlocked})
	e.emit(Signal{Type: SigJoinableChanged, Joinable: e.Evaluate("").Allowed})
}

func (e *Engine) policyState() PolicyState {
	st := PolicyState{
		Phase:         e.phases.Phase(),
		Locked:        e.phases.Locked(),
		Occupancy:     e.occupancy,
		Capacity:      e.capacity,
		TimeRemaining: e.timeRemaining,
	}
	if start, ok := e.phases.MatchStart(); ok {
		st.MatchStarted = true
		st.Elapsed = e.clock.Now().Sub(start)
	}
	return st
}

// Evaluate runs the admission policy against fresh state. Events may arrive
// in any order; nothing here is cached between calls.
func (e *Engine) Evaluate(candidateID string) Decision {
	return Evaluate(e.cfg, e.policyState(), candidateID, e.bans)
}

// ProcessJoinInProgress resolves one join attempt. Denial mutates nothing
// beyond the JoinDenied signal; success assigns a team, records history,
// bumps counters and fulfills a matching backfill request, all before
// returning.
func (e *Engine) ProcessJoinInProgress(candidateID, displayName string, isBackfill bool, backfillRequestID string) (JoinRecord, Decision) {
	e.expireBackfill()
	dec := e.Evaluate(candidateID)
	if !dec.Allowed {
		e.emit(Signal{Type: SigJoinDenied, CandidateID: candidateID, Reason: dec.Reason})
		return JoinRecord{}, dec
	}

	var originID string
	var fulfilled *BackfillRequest
	var completed bool
	if isBackfill {
		if fulfilled, completed = e.ledger.Fulfill(backfillRequestID); fulfilled != nil {
			originID = fulfilled.ID
		}
	}

	team := AssignTeam(e.teamCounts, e.cfg.TeamBalancing)
	rec := JoinRecord{
		CandidateID:       candidateID,
		DisplayName:       displayName,
		Team:              team,
		SpawnHint:         e.spawnHint(),
		Phase:             e.phases.Phase(),
		JoinedAt:          e.clock.Now(),
		BackfillRequestID: originID,
	}
	e.history.Append(rec)
	e.occupancy++
	e.teamCounts[team]++

	if fulfilled != nil {
		e.emit(Signal{Type: SigBackfillPlayerJoined, CandidateID: candidateID, RequestID: fulfilled.ID})
		if completed {
			e.emit(Signal{Type: SigBackfillComplete, RequestID: fulfilled.ID})
			e.emit(Signal{Type: SigBackfillSlotsChanged, NeedsBackfill: false})
		}
	}
	e.emit(Signal{Type: SigPlayerJoined, CandidateID: candidateID, DisplayName: displayName, Team: team})
	return rec, dec
}

func (e *Engine) spawnHint() string {
	if !e.cfg.UseSpecialSpawns || len(e.cfg.SpawnPoints) == 0 {
		return "default"
	}
	return e.cfg.SpawnPoints[e.rng.Intn(len(e.cfg.SpawnPoints))]
}

// PlayerLeft records a departure and, when conditions hold, arms the
// debounced auto-backfill trigger. The debounce leaves a reconnecting player
// a window to reclaim the slot before it is advertised.
func (e *Engine) PlayerLeft(candidateID string, team *int) {
	if e.occupancy > 0 {
		e.occupancy--
	}
	if team != nil {
		if n := e.teamCounts[*team]; n > 0 {
			e.teamCounts[*team] = n - 1
		}
	}
	if !e.cfg.AutoBackfill {
		return
	}
	if e.occupancy < e.cfg.MinPlayersForBackfill {
		return
	}
	if e.ledger.Requesting() || e.trigger.armed {
		return
	}
	e.trigger.schedule(e.clock.Now().Add(e.cfg.AutoBackfillDelay))
}

// RequestBackfill opens a request for the given number of slots. An existing
// in-flight request comes back untouched; nil means slots was non-positive
// or the admission policy refused.
func (e *Engine) RequestBackfill(slots int, preferredTeam *int) *BackfillRequest {
	e.expireBackfill()
	if e.ledger.Requesting() {
		return e.ledger.Active()
	}
	if slots <= 0 {
		return nil
	}
	if dec := e.Evaluate(""); !dec.Allowed {
		return nil
	}
	req := e.ledger.Open(slots, preferredTeam, e.cfg)
	e.emit(Signal{Type: SigBackfillStarted, RequestID: req.ID, Slots: req.SlotsNeeded})
	e.emit(Signal{Type: SigBackfillSlotsChanged, NeedsBackfill: true, Slots: req.SlotsNeeded})
	return req
}

// RequestBackfillForAllSlots recruits for every currently open seat.
func (e *Engine) RequestBackfillForAllSlots() *BackfillRequest {
	return e.RequestBackfill(e.capacity-e.occupancy, nil)
}

func (e *Engine) CancelBackfill() *BackfillRequest {
	req := e.ledger.Cancel()
	if req == nil {
		return nil
	}
	e.emit(Signal{Type: SigBackfillCancelled, RequestID: req.ID})
	e.emit(Signal{Type: SigBackfillSlotsChanged, NeedsBackfill: false})
	return req
}

// ActiveBackfill lazily expires before reporting, so stale state is never
// observed or acted on.
func (e *Engine) ActiveBackfill() *BackfillRequest {
	e.expireBackfill()
	return e.ledger.Active()
}

func (e *Engine) expireBackfill() {
	if req := e.ledger.ExpireIfDue(); req != nil {
		e.emit(Signal{Type: SigBackfillFailed, RequestID: req.ID})
		e.emit(Signal{Type: SigBackfillSlotsChanged, NeedsBackfill: false})
	}
}

// Tick sweeps request expiry and fires the debounced trigger when due. The
// trigger re-checks capacity and policy now, not at schedule time; a stale
// departure must not create an invalid request.
func (e *Engine) Tick() {
	e.expireBackfill()
	if !e.trigger.due(e.clock.Now()) {
		return
	}
	e.trigger.cancel()
	if e.occupancy >= e.capacity {
		return
	}
	e.RequestBackfill(1, nil)
}

// SetOccupancy accepts an external correction for out-of-band changes.
func (e *Engine) SetOccupancy(n int) {
	if n < 0 {
		n = 0
	}
	e.occupancy = n
}

func (e *Engine) SetCapacity(n int) {
	if n < 0 {
		n = 0
	}
	e.capacity = n
}

// SetTeamCounts replaces the team snapshot. The map is copied so later
// mutation by its owner cannot tear a decision.
func (e *Engine) SetTeamCounts(counts map[int]int) {
	e.teamCounts = make(map[int]int, len(counts))
	for id, n := range counts {
		e.teamCounts[id] = n
	}
}

func (e *Engine) TeamCounts() map[int]int {
	out := make(map[int]int, len(e.teamCounts))
	for id, n := range e.teamCounts {
		out[id] = n
	}
	return out
}

// SetTimeRemaining pushes the estimated time left in the match; 0 clears it.
func (e *Engine) SetTimeRemaining(d time.Duration) { e.timeRemaining = d }

func (e *Engine) History() []JoinRecord { return e.history.Records() }

// Reset clears phase, lock flag, active request, pending trigger and history
// without replacing the instance. Occupancy counters are externally owned
// and survive.
func (e *Engine) Reset() {
	e.phases.Reset()
	e.ledger.Reset()
	e.history.Reset()
	e.trigger.cancel()
	e.signals = nil
}

// StateView is the externally visible snapshot replicas mirror without
// re-running admission logic.
type StateView struct {
	Phase         GamePhase        `json:"phase"`
	PreviousPhase GamePhase        `json:"previous_phase"`
	Locked        bool             `json:"locked"`
	Occupancy     int              `json:"occupancy"`
	Capacity      int              `json:"capacity"`
	TeamCounts    map[int]int      `json:"team_counts,omitempty"`
	Backfill      *BackfillRequest `json:"backfill,omitempty"`
	HistoryLen    int              `json:"history_len"`
}

func (e *Engine) View() StateView {
	var bf *BackfillRequest
	if req := e.ActiveBackfill(); req != nil {
		cp := *req
		bf = &cp
	}
	return StateView{
		Phase:         e.phases.Phase(),
		PreviousPhase: e.phases.Previous(),
		Locked:        e.phases.Locked(),
		Occupancy:     e.occupancy,
		Capacity:      e.capacity,
		TeamCounts:    e.TeamCounts(),
		Backfill:      bf,
		HistoryLen:    e.history.Len(),
	}
}
