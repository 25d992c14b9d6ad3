// Package gormdb implements the recorder backend on a GORM database,
// covering both SQLite and PostgreSQL.
package gormdb

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stabrig/rigview/internal/model"
)

// ErrNoSession is returned when recording is attempted before StartSession.
var ErrNoSession = errors.New("no active session")

// Backend records sessions through a GORM connection.
type Backend struct {
	db        *gorm.DB
	sessionID uint
}

// NewSqlite opens a SQLite-backed recorder. Path ":memory:" gives an
// ephemeral database.
func NewSqlite(path string) (*Backend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	return &Backend{db: db}, nil
}

// NewPostgres opens a PostgreSQL-backed recorder.
func NewPostgres(dsn string) (*Backend, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &Backend{db: db}, nil
}

// Init migrates the recording schema.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StartSession inserts the session row and remembers its key for
// subsequent records.
func (b *Backend) StartSession(s *model.Session) error {
	if err := b.db.Create(s).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	b.sessionID = s.ID
	return nil
}

// EndSession stamps the active session's end time.
func (b *Backend) EndSession(endedAt time.Time) error {
	if b.sessionID == 0 {
		return ErrNoSession
	}
	return b.db.Model(&model.Session{}).
		Where("id = ?", b.sessionID).
		Update("ended_at", endedAt).Error
}

// RecordBatch inserts one batch record.
func (b *Backend) RecordBatch(rec *model.BatchRecord) error {
	if b.sessionID == 0 {
		return ErrNoSession
	}
	rec.SessionID = b.sessionID
	return b.db.Create(rec).Error
}

// RecordDOFSample inserts one motion sample.
func (b *Backend) RecordDOFSample(s *model.DOFSample) error {
	if b.sessionID == 0 {
		return ErrNoSession
	}
	s.SessionID = b.sessionID
	return b.db.Create(s).Error
}

// RecordFrameTrace inserts one trace segment.
func (b *Backend) RecordFrameTrace(t *model.FrameTrace) error {
	if b.sessionID == 0 {
		return ErrNoSession
	}
	t.SessionID = b.sessionID
	return b.db.Create(t).Error
}
