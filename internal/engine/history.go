package engine

import "time"

// JoinRecord is an immutable entry describing one resolved join.
type JoinRecord struct {
	CandidateID       string    `json:"candidate_id"`
	DisplayName       string    `json:"display_name"`
	Team              int       `json:"team"`
	SpawnHint         string    `json:"spawn_hint"`
	Phase             GamePhase `json:"phase"`
	JoinedAt          time.Time `json:"joined_at"`
	BackfillRequestID string    `json:"backfill_request_id,omitempty"`
}

// JoinHistory keeps resolved joins for diagnostics. Bounded: once limit
// entries exist the oldest drop first. limit <= 0 means unbounded.
type JoinHistory struct {
	limit   int
	records []JoinRecord
}

func NewJoinHistory(limit int) *JoinHistory { return &JoinHistory{limit: limit} }

func (h *JoinHistory) Append(r JoinRecord) {
	h.records = append(h.records, r)
	if h.limit > 0 && len(h.records) > h.limit {
		h.records = h.records[len(h.records)-h.limit:]
	}
}

func (h *JoinHistory) Len() int { return len(h.records) }

// Records returns a copy so callers can't mutate history.
func (h *JoinHistory) Records() []JoinRecord {
	out := make([]JoinRecord, len(h.records))
	copy(out, h.records)
	return out
}

func (h *JoinHistory) Reset() { h.records = nil }
