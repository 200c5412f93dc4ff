package engine

import "time"

// Config is the flat option set governing admission and backfill for one
// match. It is read-only once the engine is constructed.
type Config struct {
	AllowJoinInProgress bool
	AllowedPhases       []GamePhase
	JoinTimeout         time.Duration // max elapsed since match start; 0 = unlimited
	MinTimeRemaining    time.Duration // 0 = don't check
	LockOnStart         bool
	MaxPlayers          int

	TeamBalancing bool

	AutoBackfill          bool
	AutoBackfillDelay     time.Duration
	MinPlayersForBackfill int
	BackfillTimeout       time.Duration
	BackfillRequirements  map[string]string

	GameMode string
	Region   string

	UseSpecialSpawns bool
	SpawnPoints      []string

	HistoryLimit int // join history cap; 0 = unbounded
}

func DefaultConfig() Config {
	return Config{
		AllowJoinInProgress:   true,
		AllowedPhases:         []GamePhase{PhaseLobby, PhaseWarmup, PhaseInProgress},
		JoinTimeout:           5 * time.Minute,
		MaxPlayers:            8,
		TeamBalancing:         true,
		AutoBackfill:          true,
		AutoBackfillDelay:     5 * time.Second,
		MinPlayersForBackfill: 2,
		BackfillTimeout:       2 * time.Minute,
		GameMode:              "default",
		HistoryLimit:          256,
	}
}

func (c Config) PhaseAllowed(p GamePhase) bool {
	for _, ap := range c.AllowedPhases {
		if ap == p {
			return true
		}
	}
	return false
}
