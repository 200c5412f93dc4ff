package discovery

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchListing is the discovery record other players browse.
type MatchListing struct {
	Code          string `gorm:"primaryKey;size:12"`
	GameMode      string `gorm:"size:64"`
	Region        string `gorm:"size:32"`
	Capacity      int
	Joinable      bool
	NeedsBackfill bool
	OpenSlots     int
	UpdatedAt     time.Time
}

// Store publishes listings to postgres.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func Open(dsn string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MatchListing{}); err != nil {
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Announce(ctx context.Context, code, gameMode, region string, capacity int) {
	listing := MatchListing{
		Code:     code,
		GameMode: gameMode,
		Region:   region,
		Capacity: capacity,
		Joinable: true,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&listing).Error
	if err != nil {
		s.log.Warn("discovery announce failed", zap.String("code", code), zap.Error(err))
	}
}

func (s *Store) SetJoinable(ctx context.Context, code string, joinable bool) {
	s.update(ctx, code, map[string]any{"joinable": joinable})
}

func (s *Store) SetBackfill(ctx context.Context, code string, needed bool, slots int) {
	s.update(ctx, code, map[string]any{"needs_backfill": needed, "open_slots": slots})
}

func (s *Store) Remove(ctx context.Context, code string) {
	err := s.db.WithContext(ctx).Delete(&MatchListing{Code: code}).Error
	if err != nil {
		s.log.Warn("discovery remove failed", zap.String("code", code), zap.Error(err))
	}
}

func (s *Store) update(ctx context.Context, code string, attrs map[string]any) {
	err := s.db.WithContext(ctx).
		Model(&MatchListing{}).
		Where("code = ?", code).
		Updates(attrs).Error
	if err != nil {
		s.log.Warn("discovery update failed", zap.String("code", code), zap.Error(err))
	}
}
