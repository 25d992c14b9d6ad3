// Package monitor periodically writes a status file describing the running
// service: published motion, queue depths, and write health. Operators tail
// the file; nothing in the hot path reads it.
package monitor

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/stabrig/rigview/internal/engine"
	"github.com/stabrig/rigview/internal/worker"
)

// Dependencies holds the collaborators the monitor observes.
type Dependencies struct {
	Engine     *engine.Engine
	Worker     *worker.Manager
	SessionID  string
	StatusPath string
	Interval   time.Duration
}

// Status is the file's JSON shape.
type Status struct {
	Time           time.Time        `json:"time"`
	Session        string           `json:"session"`
	Running        bool             `json:"running"`
	FallbackActive bool             `json:"fallbackActive"`
	Frame          engine.FramePose `json:"frame"`
	PendingBatches int              `json:"pendingBatches"`
	WriteQueue     int              `json:"writeQueue"`
	LastWriteMs    float64          `json:"lastWriteMs"`
}

// Service manages status monitoring.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service.
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// CurrentStatus assembles a status snapshot.
func (s *Service) CurrentStatus() Status {
	snap := s.deps.Engine.Snapshot()
	st := Status{
		Time:           time.Now(),
		Session:        s.deps.SessionID,
		Running:        snap.Running,
		FallbackActive: snap.FallbackActive,
		Frame:          snap.Frame,
		PendingBatches: s.deps.Engine.Pending(),
	}
	if s.deps.Worker != nil {
		st.WriteQueue = s.deps.Worker.QueueDepth()
		st.LastWriteMs = float64(s.deps.Worker.LastWriteDuration().Microseconds()) / 1000
	}
	return st
}

// Start starts the status monitor goroutine.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	statusFile, err := os.Create(s.deps.StatusPath)
	if err != nil {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}

	go func() {
		defer statusFile.Close()
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				body, err := json.MarshalIndent(s.CurrentStatus(), "", "  ")
				if err != nil {
					continue
				}
				statusFile.Truncate(0)
				statusFile.Seek(0, 0)
				statusFile.Write(append(body, '\n'))
			}
		}
	}()

	return nil
}

// Stop stops the status monitor.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
