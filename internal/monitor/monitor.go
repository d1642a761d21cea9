package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cyborstrike/combatcore/internal/encounter"
	"github.com/cyborstrike/combatcore/internal/mission"
	"github.com/cyborstrike/combatcore/internal/model"
	"github.com/cyborstrike/combatcore/internal/storage"
	"github.com/cyborstrike/combatcore/internal/worker"

	"gorm.io/gorm"
)

// StatusFileName is written into the status directory on every cycle.
const StatusFileName = "status.txt"

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	DB             *gorm.DB // optional, receives performance rows
	Logger         *slog.Logger
	MissionContext *mission.Context
	WorkerManager  *worker.Manager
	Queues         storage.Monitorable // optional
	StatusDir      string
	Interval       time.Duration
}

// Service manages status monitoring
type Service struct {
	deps Dependencies

	mu        sync.RWMutex
	isRunning bool
	stopChan  chan struct{}
	done      chan struct{}

	status   encounter.Status
	tickTime time.Duration
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MissionContext == nil {
		deps.MissionContext = mission.NewContext()
	}
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Update stores the latest HUD status and tick duration. The simulation
// goroutine calls it; the monitor loop only reads the copy.
func (s *Service) Update(status encounter.Status, tick time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.tickTime = tick
}

// GetProgramStatus returns the current program status
func (s *Service) GetProgramStatus(
	writeQueues bool,
	lastWrite bool,
) (output []string, perfModel model.RecorderPerformance) {
	s.mu.RLock()
	status, tick := s.status, s.tickTime
	s.mu.RUnlock()

	var writeQueuesObj model.WriteQueueLengths
	if s.deps.Queues != nil {
		writeQueuesObj = s.deps.Queues.WriteQueueLengths()
	}

	var lastWriteDuration time.Duration
	if s.deps.WorkerManager != nil {
		lastWriteDuration = s.deps.WorkerManager.GetLastDBWriteDuration()
	}

	current, _ := s.deps.MissionContext.GetMission()
	perf := model.RecorderPerformance{
		Time:                time.Now(),
		MissionID:           current.ID,
		WriteQueueLengths:   writeQueuesObj,
		LastWriteDurationMs: float32(lastWriteDuration) / float32(time.Millisecond),
		TickDurationMs:      float32(tick) / float32(time.Millisecond),
	}

	output = append(output, strings.TrimRight(status.String(), "\n"))
	if s.deps.WorkerManager != nil {
		output = append(output, fmt.Sprintf("Events: %d handled, %d failed",
			s.deps.WorkerManager.Handled(), s.deps.WorkerManager.Failed()))
	}
	if writeQueues {
		writeQueuesStr, err := json.MarshalIndent(writeQueuesObj, "", "  ")
		if err != nil {
			writeQueuesStr = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
		}
		output = append(output, string(writeQueuesStr))
	}
	if lastWrite {
		lastWriteStr, err := json.MarshalIndent(perf.LastWriteDurationMs, "", "  ")
		if err != nil {
			lastWriteStr = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
		}
		output = append(output, string(lastWriteStr))
	}

	return output, perf
}

// ValidateHypertables converts the given tables into TimescaleDB hypertables
// segmented by the listed columns. Only meaningful on PostgreSQL with the
// timescaledb extension.
func (s *Service) ValidateHypertables(tables map[string][]string) error {
	log := s.deps.Logger.With("function", "validateHypertables")

	for table, segmentBy := range tables {
		var count int64
		s.deps.DB.Raw(`SELECT count(*) FROM timescaledb_information.hypertables WHERE hypertable_name = ?`, table).Scan(&count)
		if count > 0 {
			log.Info("Table is already configured", "table", table)
			continue
		}

		queryCreateHypertable := fmt.Sprintf(`
				SELECT create_hypertable('%s', 'time', chunk_time_interval => interval '1 day', if_not_exists => true, migrate_data => true);
			`, table)
		if err := s.deps.DB.Exec(queryCreateHypertable).Error; err != nil {
			log.Error("Failed to create hypertable", "table", table, "error", err)
			return err
		}
		log.Info("Created hypertable", "table", table)

		queryCompressHypertable := fmt.Sprintf(`
				ALTER TABLE %s SET (
					timescaledb.compress,
					timescaledb.compress_segmentby = ?);
			`, table)
		if err := s.deps.DB.Exec(queryCompressHypertable, strings.Join(segmentBy, ",")).Error; err != nil {
			log.Error("Failed to enable compression", "table", table, "error", err)
			return err
		}

		queryCompressAfterHypertable := fmt.Sprintf(`
				SELECT add_compression_policy(
					'%s',
					compress_after => interval '14 day');
			`, table)
		if err := s.deps.DB.Exec(queryCompressAfterHypertable).Error; err != nil {
			log.Error("Failed to set compress_after", "table", table, "error", err)
			return err
		}
		log.Info("Enabled hypertable compression", "table", table)
	}
	return nil
}

// Hypertables lists the time-series tables and their segment columns.
var Hypertables = map[string][]string{
	"recorder_performances": {"mission_id"},
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}

	statusFile, err := os.Create(filepath.Join(s.deps.StatusDir, StatusFileName))
	if err != nil {
		return fmt.Errorf("error creating status file: %w", err)
	}

	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(statusFile, s.stopChan, s.done)
	return nil
}

func (s *Service) loop(statusFile *os.File, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer statusFile.Close()

	logger := s.deps.Logger
	logger.Debug("Starting status monitor goroutine", "interval", s.deps.Interval)

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		statusStr, perfModel := s.GetProgramStatus(true, true)

		if err := statusFile.Truncate(0); err != nil {
			logger.Error("Error truncating status file", "error", err)
		}
		if _, err := statusFile.Seek(0, 0); err != nil {
			logger.Error("Error seeking status file", "error", err)
		}
		for _, line := range statusStr {
			statusFile.WriteString(line + "\n")
		}

		if s.deps.DB == nil || perfModel.MissionID == 0 {
			continue
		}
		if err := s.deps.DB.Omit("Mission").Create(&perfModel).Error; err != nil {
			logger.Error("Error writing perf model", "error", err)
		}
	}
}

// Stop stops the status monitor and waits for the last cycle to finish
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
