// Package model defines the database structures for session recording.
package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels lists every struct that represents a table in the recording
// schema, in migration order.
var DatabaseModels = []interface{}{
	&Session{},
	&BatchRecord{},
	&DOFSample{},
	&FrameTrace{},
}

// Session is one recorded rigview run.
type Session struct {
	gorm.Model
	SessionID string         `json:"sessionId" gorm:"size:36;uniqueIndex"`
	StartedAt time.Time      `json:"startedAt" gorm:"index"`
	EndedAt   sql.NullTime   `json:"endedAt"`
	Config    datatypes.JSON `json:"config"` // effective configuration at start
}

func (*Session) TableName() string {
	return "sessions"
}

// BatchRecord is one acknowledged inbound batch: the raw payload plus the
// summary that was returned to the producer.
type BatchRecord struct {
	gorm.Model
	SessionID uint           `json:"sessionId" gorm:"index:idx_batchrecord_session_id"`
	Session   Session        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	Timestamp time.Time      `json:"timestamp" gorm:"index:idx_batchrecord_time"`
	Payload   datatypes.JSON `json:"payload"`
	Applied   datatypes.JSON `json:"applied"`
	Failed    datatypes.JSON `json:"failed"`
	Unknown   datatypes.JSON `json:"unknown"`
}

func (*BatchRecord) TableName() string {
	return "batch_records"
}

// DOFSample is a periodic capture of the published motion snapshot.
type DOFSample struct {
	gorm.Model
	SessionID uint      `json:"sessionId" gorm:"index:idx_dofsample_session_id"`
	Session   Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	Time      time.Time `json:"time" gorm:"index:idx_dofsample_time"`

	LeverFL float64 `json:"leverFl"`
	LeverFR float64 `json:"leverFr"`
	LeverRL float64 `json:"leverRl"`
	LeverRR float64 `json:"leverRr"`

	PistonFL float64 `json:"pistonFl"`
	PistonFR float64 `json:"pistonFr"`
	PistonRL float64 `json:"pistonRl"`
	PistonRR float64 `json:"pistonRr"`

	Heave float64 `json:"heave"`
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`

	Running        bool `json:"running"`
	FallbackActive bool `json:"fallbackActive"`
}

func (*DOFSample) TableName() string {
	return "dof_samples"
}

// FrameTrace is a phase-space trace segment in well-known binary. Stored as
// raw bytes so SQLite can carry it without a geometry type.
type FrameTrace struct {
	gorm.Model
	SessionID uint      `json:"sessionId" gorm:"index:idx_frametrace_session_id"`
	Session   Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
	Samples   int       `json:"samples"`
	Geometry  []byte    `json:"geometry"` // XYZM LineString WKB
}

func (*FrameTrace) TableName() string {
	return "frame_traces"
}
