package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matchforge/jip-backend/internal/engine"
	"github.com/matchforge/jip-backend/internal/hub"
	"github.com/matchforge/jip-backend/internal/session"
)

type API struct {
	hub      *hub.Hub
	defaults engine.Config
	log      *zap.Logger
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createMatchRequest struct {
	MaxPlayers int    `json:"max_players,omitempty"`
	GameMode   string `json:"game_mode,omitempty"`
	Region     string `json:"region,omitempty"`
}

func (a *API) CreateMatch(w http.ResponseWriter, r *http.Request) {
	cfg := a.defaults
	var body createMatchRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body) // empty body is fine
	}
	if body.MaxPlayers > 0 {
		cfg.MaxPlayers = body.MaxPlayers
	}
	if body.GameMode != "" {
		cfg.GameMode = body.GameMode
	}
	if body.Region != "" {
		cfg.Region = body.Region
	}

	var code string
	for {
		c, err := GenerateCode()
		if err != nil {
			http.Error(w, "failed to generate code", http.StatusInternalServerError)
			return
		}
		reply := make(chan *session.Session, 1)
		a.hub.Inbox() <- hub.GetMatch{Code: c, Reply: reply}
		if <-reply == nil {
			code = c
			break
		}
		a.log.Debug("collision on code, regenerating", zap.String("code", c))
	}

	reply := make(chan *session.Session, 1)
	a.hub.Inbox() <- hub.EnsureMatch{Code: code, Cfg: cfg, Reply: reply}
	if <-reply == nil {
		http.Error(w, "failed to create match", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Code string `json:"code"`
	}{Code: code})
}

func (a *API) GetMatchState(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	if s == nil {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}
	reply := make(chan session.View, 1)
	s.Inbox() <- session.GetView{Reply: reply}
	view := <-reply
	writeJSON(w, http.StatusOK, struct {
		Version    int              `json:"version"`
		NumClients int              `json:"num_clients"`
		State      engine.StateView `json:"state"`
	}{view.Version, view.NumClients, view.State})
}

type joinRequest struct {
	CandidateID       string `json:"candidate_id"`
	DisplayName       string `json:"display_name"`
	IsBackfill        bool   `json:"is_backfill,omitempty"`
	BackfillRequestID string `json:"backfill_request_id,omitempty"`
}

// Join resolves one join attempt. A denial is a normal outcome, not an HTTP
// error: the decision comes back in the body either way.
func (a *API) Join(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	if s == nil {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}
	var body joinRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CandidateID == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res := a.command(s, session.Command{
		Type:              session.CmdJoin,
		CandidateID:       body.CandidateID,
		DisplayName:       body.DisplayName,
		IsBackfill:        body.IsBackfill,
		BackfillRequestID: body.BackfillRequestID,
	})
	writeJSON(w, http.StatusOK, res)
}

type leaveRequest struct {
	CandidateID string `json:"candidate_id"`
	Team        *int   `json:"team,omitempty"`
}

func (a *API) Leave(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	if s == nil {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}
	var body leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CandidateID == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res := a.command(s, session.Command{Type: session.CmdLeave, CandidateID: body.CandidateID, Team: body.Team})
	writeJSON(w, http.StatusOK, res)
}

type phaseRequest struct {
	Phase string `json:"phase"`
}

func (a *API) SetPhase(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	if s == nil {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}
	var body phaseRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Phase == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res := a.command(s, session.Command{Type: session.CmdSetPhase, Phase: engine.GamePhase(body.Phase)})
	writeJSON(w, http.StatusOK, res)
}

func (a *API) Lock(w http.ResponseWriter, r *http.Request) {
	a.simple(w, r, session.CmdLock)
}

func (a *API) Unlock(w http.ResponseWriter, r *http.Request) {
	a.simple(w, r, session.CmdUnlock)
}

func (a *API) Reset(w http.ResponseWriter, r *http.Request) {
	a.simple(w, r, session.CmdReset)
}

type backfillRequest struct {
	Slots         int  `json:"slots"`
	AllSlots      bool `json:"all_slots,omitempty"`
	PreferredTeam *int `json:"preferred_team,omitempty"`
}

func (a *API) RequestBackfill(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	if s == nil {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}
	var body backfillRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	cmd := session.Command{Type: session.CmdRequestBackfill, Slots: body.Slots, PreferredTeam: body.PreferredTeam}
	if body.AllSlots {
		cmd = session.Command{Type: session.CmdBackfillAllSlots}
	}
	writeJSON(w, http.StatusOK, a.command(s, cmd))
}

func (a *API) CancelBackfill(w http.ResponseWriter, r *http.Request) {
	a.simple(w, r, session.CmdCancelBackfill)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (a *API) simple(w http.ResponseWriter, r *http.Request, ct session.CommandType) {
	s := a.session(r)
	if s == nil {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a.command(s, session.Command{Type: ct}))
}

func (a *API) session(r *http.Request) *session.Session {
	code := chi.URLParam(r, "code")
	reply := make(chan *session.Session, 1)
	a.hub.Inbox() <- hub.GetMatch{Code: code, Reply: reply}
	return <-reply
}

func (a *API) command(s *session.Session, cmd session.Command) session.Result {
	reply := make(chan session.Result, 1)
	cmd.Reply = reply
	s.Inbox() <- cmd
	return <-reply
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
