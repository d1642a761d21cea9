package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cyborstrike/combatcore/internal/cache"
	"github.com/cyborstrike/combatcore/internal/dispatcher"
	"github.com/cyborstrike/combatcore/internal/mission"
	"github.com/cyborstrike/combatcore/internal/storage"
	"github.com/cyborstrike/combatcore/pkg/core"
)

// ErrBadPayload is returned when an event carries a payload of the wrong type
var ErrBadPayload = errors.New("unexpected event payload")

// Uploader sends an exported report to a report server.
type Uploader interface {
	Upload(ctx context.Context, filePath string, meta core.UploadMetadata) error
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Logger         *slog.Logger
	MissionContext *mission.Context
	// Uploader is optional; reports are uploaded only when the backend
	// implements storage.Uploadable.
	Uploader Uploader
}

// Manager forwards dispatched telemetry events to a storage backend
type Manager struct {
	deps    Dependencies
	backend storage.Backend

	handled  cache.SafeCounter
	failed   cache.SafeCounter
	uploaded cache.SafeCounter
	uploads  sync.WaitGroup
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MissionContext == nil {
		deps.MissionContext = mission.NewContext()
	}
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

// DBWriteDurationProvider is an optional interface that backends can implement
// to expose their last DB write duration for monitoring.
type DBWriteDurationProvider interface {
	GetLastDBWriteDuration() time.Duration
}

// GetLastDBWriteDuration returns the duration of the last DB write cycle.
// Returns 0 if the backend doesn't support this metric.
func (m *Manager) GetLastDBWriteDuration() time.Duration {
	if p, ok := m.backend.(DBWriteDurationProvider); ok {
		return p.GetLastDBWriteDuration()
	}
	return 0
}

// Handled is the number of events the backend accepted.
func (m *Manager) Handled() int { return m.handled.Value() }

// Failed is the number of events the backend or payload check rejected.
func (m *Manager) Failed() int { return m.failed.Value() }

// Uploaded is the number of reports the uploader accepted.
func (m *Manager) Uploaded() int { return m.uploaded.Value() }

// Wait blocks until pending report uploads finish.
func (m *Manager) Wait() { m.uploads.Wait() }

// upload sends the backend's last report in the background.
func (m *Manager) upload() {
	if m.deps.Uploader == nil {
		return
	}
	u, ok := m.backend.(storage.Uploadable)
	if !ok {
		return
	}
	path := u.GetExportedFilePath()
	if path == "" {
		return
	}
	meta := u.GetExportMetadata()

	m.uploads.Add(1)
	go func() {
		defer m.uploads.Done()
		if err := m.deps.Uploader.Upload(context.Background(), path, meta); err != nil {
			m.deps.Logger.Warn("Failed to upload report", "file", path, "error", err)
			return
		}
		m.uploaded.Inc()
		m.deps.Logger.Info("Report uploaded", "file", path)
	}()
}

// payload extracts a T from an event, accepting both values and pointers.
func payload[T any](e dispatcher.Event) (*T, error) {
	switch v := e.Payload.(type) {
	case *T:
		if v == nil {
			break
		}
		return v, nil
	case T:
		return &v, nil
	}
	var zero T
	return nil, fmt.Errorf("%w: %s wants %T, got %T", ErrBadPayload, e.Command, zero, e.Payload)
}
