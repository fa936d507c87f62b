package cloudsync

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type snapshotRecord struct {
	UserKey  string    `gorm:"column:user_key;primaryKey"`
	Payload  string    `gorm:"column:payload;type:jsonb;not null"`
	PushedAt time.Time `gorm:"column:pushed_at;not null"`
}

func (snapshotRecord) TableName() string { return "streakcity_snapshots" }

// PostgresRemote stores one JSONB snapshot row per user.
type PostgresRemote struct {
	gorm *gorm.DB
	sql  *sql.DB
}

// OpenPostgres connects to dsn and ensures the snapshot table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRemote, error) {
	if dsn == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres handle: %w", err)
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(2)
	if err := sdb.PingContext(ctx); err != nil {
		_ = sdb.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := gdb.WithContext(ctx).AutoMigrate(&snapshotRecord{}); err != nil {
		_ = sdb.Close()
		return nil, fmt.Errorf("migrate snapshots: %w", err)
	}
	return &PostgresRemote{gorm: gdb, sql: sdb}, nil
}

func (r *PostgresRemote) Close() error { return r.sql.Close() }

func (r *PostgresRemote) Fetch(ctx context.Context, user string) (*Snapshot, error) {
	var rec snapshotRecord
	err := r.gorm.WithContext(ctx).Where("user_key = ?", user).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	values := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(rec.Payload), &values); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &Snapshot{User: rec.UserKey, Values: values, UpdatedAt: rec.PushedAt}, nil
}

func (r *PostgresRemote) Push(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap.Values)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	rec := snapshotRecord{UserKey: snap.User, Payload: string(payload), PushedAt: snap.UpdatedAt.UTC()}
	err = r.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "pushed_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("push snapshot: %w", err)
	}
	return nil
}
