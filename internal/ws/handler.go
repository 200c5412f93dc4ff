package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/matchforge/jip-backend/internal/engine"
	"github.com/matchforge/jip-backend/internal/hub"
	"github.com/matchforge/jip-backend/internal/session"
	"github.com/matchforge/jip-backend/internal/types"
)

// Handler upgrades to a websocket tied to one match. Every subscriber gets
// snapshot broadcasts (the authority -> replica sync stream); inbound
// messages are authority commands fed into the session inbox.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.GetMatch{Code: code, Reply: reply}
		s := <-reply
		if s == nil {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan session.Snapshot, 8)
		clientID := randID(6)

		s.Inbox() <- session.Subscribe{ClientID: clientID, Outbox: out}
		defer func() { s.Inbox() <- session.Unsubscribe{ClientID: clientID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				st := snap.State
				msg := types.ServerMessage{Type: "StateSnapshot", Version: snap.Version, State: &st, Signals: snap.Signals}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop. Listen-only replicas stay connected for the full
		// deadline between inbound messages.
		for {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (Unsubscribe in defer).
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"bad json"}`))
				continue
			}

			cmd, ok := toCommand(cm)
			if !ok {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"unknown type"}`))
				continue
			}

			s.Inbox() <- cmd
		}
	}
}

func toCommand(m types.ClientMessage) (session.Command, bool) {
	switch m.Type {
	case "SetPhase":
		return session.Command{Type: session.CmdSetPhase, Phase: engine.GamePhase(m.Phase)}, true
	case "Lock":
		return session.Command{Type: session.CmdLock}, true
	case "Unlock":
		return session.Command{Type: session.CmdUnlock}, true
	case "Join":
		return session.Command{
			Type:              session.CmdJoin,
			CandidateID:       m.CandidateID,
			DisplayName:       m.DisplayName,
			IsBackfill:        m.IsBackfill,
			BackfillRequestID: m.BackfillRequestID,
		}, true
	case "Leave":
		return session.Command{Type: session.CmdLeave, CandidateID: m.CandidateID, Team: m.Team}, true
	case "RequestBackfill":
		return session.Command{Type: session.CmdRequestBackfill, Slots: m.Slots, PreferredTeam: m.PreferredTeam}, true
	case "RequestBackfillForAllSlots":
		return session.Command{Type: session.CmdBackfillAllSlots}, true
	case "CancelBackfill":
		return session.Command{Type: session.CmdCancelBackfill}, true
	case "SetTeamCounts":
		return session.Command{Type: session.CmdSetTeamCounts, Counts: m.Counts}, true
	case "SetTimeRemaining":
		return session.Command{Type: session.CmdSetTimeRemaining, Value: m.Value}, true
	default:
		return session.Command{}, false
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
