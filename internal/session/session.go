package session

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/matchforge/jip-backend/internal/discovery"
	"github.com/matchforge/jip-backend/internal/engine"
)

type Msg interface{ isSessionMsg() }

// Command is one authority operation applied to the engine.
type Command struct {
	Type              CommandType
	Phase             engine.GamePhase
	CandidateID       string
	DisplayName       string
	IsBackfill        bool
	BackfillRequestID string
	Team              *int
	Slots             int
	PreferredTeam     *int
	Counts            map[int]int
	Value             int
	Reply             chan Result // optional; nil for fire-and-forget callers
}

func (Command) isSessionMsg() {}

type CommandType string

const (
	CmdSetPhase         CommandType = "SetPhase"
	CmdLock             CommandType = "Lock"
	CmdUnlock           CommandType = "Unlock"
	CmdJoin             CommandType = "Join"
	CmdLeave            CommandType = "Leave"
	CmdRequestBackfill  CommandType = "RequestBackfill"
	CmdBackfillAllSlots CommandType = "RequestBackfillForAllSlots"
	CmdCancelBackfill   CommandType = "CancelBackfill"
	CmdSetTeamCounts    CommandType = "SetTeamCounts"
	CmdSetOccupancy     CommandType = "SetOccupancy"
	CmdSetCapacity      CommandType = "SetCapacity"
	CmdSetTimeRemaining CommandType = "SetTimeRemaining" // Value in seconds
	CmdReset            CommandType = "Reset"
)

// Result is the definite outcome of a command. Nothing here is an error:
// denials and no-ops are reported through Decision and OK.
type Result struct {
	OK       bool                    `json:"ok"`
	Decision engine.Decision         `json:"decision,omitempty"`
	Record   *engine.JoinRecord      `json:"record,omitempty"`
	Request  *engine.BackfillRequest `json:"request,omitempty"`
}

type Subscribe struct {
	ClientID string
	Outbox   chan Snapshot
}

func (Subscribe) isSessionMsg() {}

type Unsubscribe struct{ ClientID string }

func (Unsubscribe) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isSessionMsg() {}

// Snapshot is what replicas receive on every state change: the mirrorable
// view plus the signals that produced it, in emission order.
type Snapshot struct {
	Version int              `json:"version"`
	State   engine.StateView `json:"state"`
	Signals []engine.Signal  `json:"signals,omitempty"`
}

type View struct {
	Version    int
	NumClients int
	State      engine.StateView
}

// Deps carries the collaborators a session needs. Zero values get safe
// defaults, which keeps test setup short.
type Deps struct {
	Clock        clock.Clock
	Bans         engine.Banlist
	Discovery    discovery.Publisher
	Log          *zap.Logger
	TickInterval time.Duration
}

// Session is the single authority for one match: one goroutine owns the
// engine, applies commands in arrival order and broadcasts snapshots.
type Session struct {
	code    string
	inbox   chan Msg
	eng     *engine.Engine
	version int
	clients map[string]chan Snapshot
	deps    Deps
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewSession(parent context.Context, code string, cfg engine.Config, deps Deps) *Session {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Discovery == nil {
		deps.Discovery = discovery.NewMemory()
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.TickInterval == 0 {
		deps.TickInterval = time.Second
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		code:    code,
		inbox:   make(chan Msg, 64),
		eng:     engine.New(cfg, deps.Clock, deps.Bans),
		clients: make(map[string]chan Snapshot),
		deps:    deps,
		ctx:     ctx,
		cancel:  cancel,
	}
	go s.loop()
	return s
}

// Inbox exposes the message channel to the transport layers and tests.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) Code() string { return s.code }

func (s *Session) loop() {
	ticker := s.deps.Clock.Ticker(s.deps.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case <-ticker.C:
			// Periodic sweep: backfill expiry and the debounced trigger.
			s.eng.Tick()
			s.flush()

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Subscribe:
				// same send-or-drop as broadcast: a subscriber that can't
				// take the initial snapshot must not wedge the loop
				select {
				case msg.Outbox <- Snapshot{Version: s.version, State: s.eng.View()}:
					s.clients[msg.ClientID] = msg.Outbox
				default:
					close(msg.Outbox)
				}

			case Unsubscribe:
				// close so a ranging consumer (the ws writer) exits
				if ch, ok := s.clients[msg.ClientID]; ok {
					close(ch)
					delete(s.clients, msg.ClientID)
				}

			case Command:
				res := s.apply(msg)
				// flush before replying so a caller acting on the result
				// observes the discovery updates it caused
				s.flush()
				if msg.Reply != nil {
					msg.Reply <- res
				}

			case GetView:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      s.eng.View(),
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) apply(cmd Command) Result {
	switch cmd.Type {
	case CmdSetPhase:
		s.eng.SetPhase(cmd.Phase)
		return Result{OK: true}
	case CmdLock:
		s.eng.Lock()
		return Result{OK: true}
	case CmdUnlock:
		s.eng.Unlock()
		return Result{OK: true}
	case CmdJoin:
		rec, dec := s.eng.ProcessJoinInProgress(cmd.CandidateID, cmd.DisplayName, cmd.IsBackfill, cmd.BackfillRequestID)
		res := Result{OK: dec.Allowed, Decision: dec}
		if dec.Allowed {
			r := rec
			res.Record = &r
		}
		return res
	case CmdLeave:
		s.eng.PlayerLeft(cmd.CandidateID, cmd.Team)
		return Result{OK: true}
	case CmdRequestBackfill:
		return requestResult(s.eng.RequestBackfill(cmd.Slots, cmd.PreferredTeam))
	case CmdBackfillAllSlots:
		return requestResult(s.eng.RequestBackfillForAllSlots())
	case CmdCancelBackfill:
		return requestResult(s.eng.CancelBackfill())
	case CmdSetTeamCounts:
		s.eng.SetTeamCounts(cmd.Counts)
		return Result{OK: true}
	case CmdSetOccupancy:
		s.eng.SetOccupancy(cmd.Value)
		return Result{OK: true}
	case CmdSetCapacity:
		s.eng.SetCapacity(cmd.Value)
		return Result{OK: true}
	case CmdSetTimeRemaining:
		s.eng.SetTimeRemaining(time.Duration(cmd.Value) * time.Second)
		return Result{OK: true}
	case CmdReset:
		s.eng.Reset()
		return Result{OK: true}
	default:
		return Result{}
	}
}

// requestResult copies the request so it can safely cross goroutines.
func requestResult(req *engine.BackfillRequest) Result {
	if req == nil {
		return Result{}
	}
	cp := *req
	return Result{OK: true, Request: &cp}
}

// flush drains the engine's signal queue, forwards discovery attribute
// updates and broadcasts a snapshot. No signals, no broadcast.
func (s *Session) flush() {
	view := s.eng.View()
	signals := s.eng.DrainSignals()
	if len(signals) == 0 {
		return
	}
	for _, sig := range signals {
		switch sig.Type {
		case engine.SigJoinableChanged:
			s.deps.Discovery.SetJoinable(s.ctx, s.code, sig.Joinable)
		case engine.SigBackfillSlotsChanged:
			s.deps.Discovery.SetBackfill(s.ctx, s.code, sig.NeedsBackfill, sig.Slots)
		}
	}
	s.version++
	s.broadcast(Snapshot{Version: s.version, State: view, Signals: signals})
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		select {
		case ch <- snap:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(s.clients, id)
		}
	}
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	s.cancel()
}
