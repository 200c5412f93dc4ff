package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matchforge/jip-backend/internal/engine"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Match    MatchConfig    `yaml:"match"`
	Banned   []string       `yaml:"banned_ids"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr   string        `yaml:"listen_addr"`
	TickInterval time.Duration `yaml:"tick_interval"`
	LogLevel     string        `yaml:"log_level"`
}

// DatabaseConfig holds the discovery store settings. An empty DSN keeps
// listings in process memory.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// MatchConfig is the default per-match admission and backfill policy. Every
// field maps onto one engine option.
type MatchConfig struct {
	AllowJoinInProgress   bool     `yaml:"allow_join_in_progress"`
	AllowedPhases         []string `yaml:"allowed_phases"`
	JoinTimeoutSec        int      `yaml:"join_timeout_sec"`
	MinTimeRemainingSec   int      `yaml:"min_time_remaining_sec"`
	LockOnStart           bool     `yaml:"lock_on_start"`
	MaxPlayers            int      `yaml:"max_players"`
	TeamBalancing         bool     `yaml:"team_balancing"`
	AutoBackfill          bool     `yaml:"auto_backfill"`
	AutoBackfillDelaySec  int      `yaml:"auto_backfill_delay_sec"`
	MinPlayersForBackfill int      `yaml:"min_players_for_backfill"`
	BackfillTimeoutSec    int      `yaml:"backfill_timeout_sec"`
	GameMode              string   `yaml:"game_mode"`
	Region                string   `yaml:"region"`
	UseSpecialSpawns      bool     `yaml:"use_special_spawns"`
	SpawnPoints           []string `yaml:"spawn_points"`
	HistoryLimit          int      `yaml:"history_limit"`

	Requirements map[string]string `yaml:"requirements"`
}

// Load reads configuration from a YAML file, after letting a local .env
// (if present) seed the process environment. JIP_LISTEN_ADDR, JIP_DB_DSN and
// JIP_LOG_LEVEL override the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if v := os.Getenv("JIP_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("JIP_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("JIP_LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}

	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.TickInterval == 0 {
		cfg.Server.TickInterval = time.Second
	}
	if cfg.Match.MaxPlayers == 0 {
		cfg.Match.MaxPlayers = 8
	}
	return cfg, nil
}

func defaults() *Config {
	def := engine.DefaultConfig()
	phases := make([]string, len(def.AllowedPhases))
	for i, p := range def.AllowedPhases {
		phases[i] = string(p)
	}
	return &Config{
		Server: ServerConfig{ListenAddr: ":8080", TickInterval: time.Second, LogLevel: "info"},
		Match: MatchConfig{
			AllowJoinInProgress:   def.AllowJoinInProgress,
			AllowedPhases:         phases,
			JoinTimeoutSec:        int(def.JoinTimeout / time.Second),
			LockOnStart:           def.LockOnStart,
			MaxPlayers:            def.MaxPlayers,
			TeamBalancing:         def.TeamBalancing,
			AutoBackfill:          def.AutoBackfill,
			AutoBackfillDelaySec:  int(def.AutoBackfillDelay / time.Second),
			MinPlayersForBackfill: def.MinPlayersForBackfill,
			BackfillTimeoutSec:    int(def.BackfillTimeout / time.Second),
			GameMode:              def.GameMode,
			HistoryLimit:          def.HistoryLimit,
		},
	}
}

// EngineConfig converts the yaml shape into the engine's option set.
func (m MatchConfig) EngineConfig() engine.Config {
	phases := make([]engine.GamePhase, len(m.AllowedPhases))
	for i, p := range m.AllowedPhases {
		phases[i] = engine.GamePhase(p)
	}
	return engine.Config{
		AllowJoinInProgress:   m.AllowJoinInProgress,
		AllowedPhases:         phases,
		JoinTimeout:           time.Duration(m.JoinTimeoutSec) * time.Second,
		MinTimeRemaining:      time.Duration(m.MinTimeRemainingSec) * time.Second,
		LockOnStart:           m.LockOnStart,
		MaxPlayers:            m.MaxPlayers,
		TeamBalancing:         m.TeamBalancing,
		AutoBackfill:          m.AutoBackfill,
		AutoBackfillDelay:     time.Duration(m.AutoBackfillDelaySec) * time.Second,
		MinPlayersForBackfill: m.MinPlayersForBackfill,
		BackfillTimeout:       time.Duration(m.BackfillTimeoutSec) * time.Second,
		BackfillRequirements:  m.Requirements,
		GameMode:              m.GameMode,
		Region:                m.Region,
		UseSpecialSpawns:      m.UseSpecialSpawns,
		SpawnPoints:           m.SpawnPoints,
		HistoryLimit:          m.HistoryLimit,
	}
}
