package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/matchforge/jip-backend/internal/engine"
	"github.com/matchforge/jip-backend/internal/session"
)

type HubMsg interface{ isHubMsg() }

type CreateMatch struct {
	Code  string
	Cfg   engine.Config
	Reply chan *session.Session
}

type GetMatch struct {
	Code  string
	Reply chan *session.Session
}

type EnsureMatch struct {
	Code  string
	Cfg   engine.Config // only used if creation happens
	Reply chan *session.Session
}

type RemoveMatch struct {
	Code string
}

type ShutdownHub struct{}

func (CreateMatch) isHubMsg() {}
func (GetMatch) isHubMsg()    {}
func (EnsureMatch) isHubMsg() {}
func (RemoveMatch) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

// Hub owns every live match session, keyed by code. One goroutine serializes
// creation, lookup and removal so two requests can never race a code.
type Hub struct {
	inbox   chan HubMsg
	matches map[string]*session.Session
	deps    session.Deps
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, deps session.Deps) *Hub {
	ctx, cancel := context.WithCancel(parent)
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		matches: make(map[string]*session.Session),
		deps:    deps,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateMatch:
				msg.Reply <- h.create(msg.Code, msg.Cfg)

			case GetMatch:
				msg.Reply <- h.matches[msg.Code] // may be nil

			case EnsureMatch:
				if s := h.matches[msg.Code]; s != nil {
					msg.Reply <- s
					break
				}
				msg.Reply <- h.create(msg.Code, msg.Cfg)

			case RemoveMatch:
				if s := h.matches[msg.Code]; s != nil {
					s.Inbox() <- session.Shutdown{}
					delete(h.matches, msg.Code)
					if h.deps.Discovery != nil {
						h.deps.Discovery.Remove(h.ctx, msg.Code)
					}
					h.log.Info("match removed", zap.String("code", msg.Code))
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) create(code string, cfg engine.Config) *session.Session {
	if s := h.matches[code]; s != nil {
		return s
	}
	s := session.NewSession(h.ctx, code, cfg, h.deps)
	h.matches[code] = s
	if h.deps.Discovery != nil {
		h.deps.Discovery.Announce(h.ctx, code, cfg.GameMode, cfg.Region, cfg.MaxPlayers)
	}
	h.log.Info("match created",
		zap.String("code", code),
		zap.String("game_mode", cfg.GameMode),
		zap.Int("max_players", cfg.MaxPlayers))
	return s
}

func (h *Hub) shutdown() {
	for _, s := range h.matches {
		s.Inbox() <- session.Shutdown{}
	}
	clear(h.matches)
	h.cancel()
}
