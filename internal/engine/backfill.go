package engine

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

type BackfillStatus string

const (
	BackfillNone       BackfillStatus = "none"
	BackfillRequesting BackfillStatus = "requesting"
	BackfillComplete   BackfillStatus = "complete"
	BackfillCancelled  BackfillStatus = "cancelled"
	BackfillFailed     BackfillStatus = "failed"
)

// BackfillRequest is a request to recruit players into open slots. "Filling"
// is not a distinct status: a request with SlotsFilled > 0 is still
// Requesting until it reaches SlotsNeeded.
type BackfillRequest struct {
	ID            string            `json:"id"`
	SlotsNeeded   int               `json:"slots_needed"`
	SlotsFilled   int               `json:"slots_filled"`
	CreatedAt     time.Time         `json:"created_at"`
	Timeout       time.Duration     `json:"timeout"`
	PreferredTeam *int              `json:"preferred_team,omitempty"`
	GameMode      string            `json:"game_mode,omitempty"`
	Region        string            `json:"region,omitempty"`
	Requirements  map[string]string `json:"requirements,omitempty"`
	Status        BackfillStatus    `json:"status"`
}

// Ledger owns the single active backfill request. At most one request is ever
// Requesting; terminal transitions clear the active slot, so only JoinRecord
// entries retain the origin id afterward.
type Ledger struct {
	clock  clock.Clock
	active *BackfillRequest
}

func NewLedger(clk clock.Clock) *Ledger { return &Ledger{clock: clk} }

// Active returns the in-flight request, nil when none. Callers treat the
// result as read-only.
func (l *Ledger) Active() *BackfillRequest { return l.active }

func (l *Ledger) Requesting() bool {
	return l.active != nil && l.active.Status == BackfillRequesting
}

// Open creates a new Requesting request. The admission gate runs in the
// engine facade before this is called.
func (l *Ledger) Open(slots int, preferredTeam *int, cfg Config) *BackfillRequest {
	var reqs map[string]string
	if len(cfg.BackfillRequirements) > 0 {
		reqs = make(map[string]string, len(cfg.BackfillRequirements))
		for k, v := range cfg.BackfillRequirements {
			reqs[k] = v
		}
	}
	l.active = &BackfillRequest{
		ID:            uuid.NewString(),
		SlotsNeeded:   slots,
		CreatedAt:     l.clock.Now(),
		Timeout:       cfg.BackfillTimeout,
		PreferredTeam: preferredTeam,
		GameMode:      cfg.GameMode,
		Region:        cfg.Region,
		Requirements:  reqs,
		Status:        BackfillRequesting,
	}
	return l.active
}

// Fulfill counts one filled slot against the active request. A mismatched or
// stale id is a silent no-op returning nil. completed is true only on the
// transition that reached the target.
func (l *Ledger) Fulfill(requestID string) (req *BackfillRequest, completed bool) {
	if !l.Requesting() || l.active.ID != requestID {
		return nil, false
	}
	l.active.SlotsFilled++
	if l.active.SlotsFilled >= l.active.SlotsNeeded {
		req = l.active
		req.Status = BackfillComplete
		l.active = nil
		return req, true
	}
	return l.active, false
}

// Cancel moves the active request to Cancelled. Nil when none is active.
func (l *Ledger) Cancel() *BackfillRequest {
	if !l.Requesting() {
		return nil
	}
	req := l.active
	req.Status = BackfillCancelled
	l.active = nil
	return req
}

// ExpireIfDue fails the active request once it outlives its timeout and
// returns it; nil when nothing expired.
func (l *Ledger) ExpireIfDue() *BackfillRequest {
	if !l.Requesting() || l.active.Timeout <= 0 {
		return nil
	}
	if l.clock.Now().Sub(l.active.CreatedAt) <= l.active.Timeout {
		return nil
	}
	req := l.active
	req.Status = BackfillFailed
	l.active = nil
	return req
}

func (l *Ledger) Reset() { l.active = nil }
