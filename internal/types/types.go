package types

import "github.com/matchforge/jip-backend/internal/engine"

// ClientMessage is what an authority client sends over the websocket.
type ClientMessage struct {
	Type              string      `json:"type"`
	Phase             string      `json:"phase,omitempty"`
	CandidateID       string      `json:"candidate_id,omitempty"`
	DisplayName       string      `json:"display_name,omitempty"`
	IsBackfill        bool        `json:"is_backfill,omitempty"`
	BackfillRequestID string      `json:"backfill_request_id,omitempty"`
	Team              *int        `json:"team,omitempty"`
	Slots             int         `json:"slots,omitempty"`
	PreferredTeam     *int        `json:"preferred_team,omitempty"`
	Counts            map[int]int `json:"counts,omitempty"`
	Value             int         `json:"value,omitempty"`
}

// ServerMessage is pushed to every subscriber. Replicas mirror State without
// re-running admission; Signals carry the per-change notifications.
type ServerMessage struct {
	Type    string            `json:"type"` // "StateSnapshot" | "Error"
	Version int               `json:"version,omitempty"`
	State   *engine.StateView `json:"state,omitempty"`
	Signals []engine.Signal   `json:"signals,omitempty"`
	Error   string            `json:"error,omitempty"`
}
