package results

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type matchRecord struct {
	ID         uint              `gorm:"primaryKey"`
	Code       string            `gorm:"size:8;index"`
	FinishedAt time.Time         `gorm:"index"`
	Placements []placementRecord `gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE"`
}

func (matchRecord) TableName() string { return "matches" }

type placementRecord struct {
	ID      uint `gorm:"primaryKey"`
	MatchID uint `gorm:"index"`
	Rank    int
	Name    string
}

func (placementRecord) TableName() string { return "placements" }

type GormStore struct {
	db *gorm.DB
}

// OpenPostgres connects to dsn and migrates the results tables.
func OpenPostgres(ctx context.Context, dsn string, log *zap.Logger) (*GormStore, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	sqlDB := stdlib.OpenDB(*cfg)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := NewGormStore(db)
	if err := store.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("results store ready",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
	)
	return store, nil
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&matchRecord{}, &placementRecord{}); err != nil {
		return fmt.Errorf("migrate results: %w", err)
	}
	return nil
}

func (s *GormStore) Record(ctx context.Context, m Match) error {
	rec := toRecord(m)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("record match %s: %w", m.Code, err)
	}
	return nil
}

func (s *GormStore) Recent(ctx context.Context, limit int) ([]Match, error) {
	var recs []matchRecord
	err := s.db.WithContext(ctx).
		Preload("Placements", func(db *gorm.DB) *gorm.DB { return db.Order("rank") }).
		Order("finished_at desc").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("load recent matches: %w", err)
	}

	out := make([]Match, 0, len(recs))
	for _, r := range recs {
		out = append(out, fromRecord(r))
	}
	return out, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecord(m Match) matchRecord {
	rec := matchRecord{
		Code:       m.Code,
		FinishedAt: m.FinishedAt,
		Placements: make([]placementRecord, 0, len(m.Ranking)),
	}
	for i, name := range m.Ranking {
		rec.Placements = append(rec.Placements, placementRecord{Rank: i + 1, Name: name})
	}
	return rec
}

func fromRecord(r matchRecord) Match {
	m := Match{
		Code:       r.Code,
		FinishedAt: r.FinishedAt,
		Ranking:    make([]string, len(r.Placements)),
	}
	for _, p := range r.Placements {
		if p.Rank >= 1 && p.Rank <= len(m.Ranking) {
			m.Ranking[p.Rank-1] = p.Name
		}
	}
	return m
}
