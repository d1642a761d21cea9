// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	v1 "github.com/cyborstrike/combatcore/internal/storage/memory/export/v1"
	"github.com/cyborstrike/combatcore/pkg/core"
)

// exportJSON writes the attempt to a (optionally gzipped) JSON file
func (b *Backend) exportJSON(result *core.MatchResult) error {
	export := v1.Build(&v1.MissionData{
		Mission:      b.mission,
		Result:       result,
		Entities:     b.entities,
		HitEvents:    b.hitEvents,
		KillEvents:   b.killEvents,
		StateChanges: b.stateChanges,
	})

	outputPath := filepath.Join(b.cfg.OutputDir, reportFilename(b.mission, b.cfg.Compress))

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.Compress {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	b.lastExportMeta = core.UploadMetadata{
		SessionID: b.mission.SessionID,
		MapName:   b.mission.MapName,
		Objective: b.mission.Objective,
	}
	if result != nil {
		b.lastExportMeta.Outcome = result.Outcome.String()
		b.lastExportMeta.Duration = result.Duration
		b.lastExportMeta.Score = result.Score
	}
	return nil
}

// reportFilename is <map>_m<mission>a<attempt>_<start>.json[.gz]
func reportFilename(m *core.Mission, compress bool) string {
	mapName := strings.ReplaceAll(m.MapName, " ", "_")
	mapName = strings.ReplaceAll(mapName, ":", "_")
	if mapName == "" {
		mapName = "mission"
	}
	timestamp := m.StartTime.UTC().Format("20060102_150405")

	name := fmt.Sprintf("%s_m%da%d_%s.json", mapName, m.Index+1, m.Attempt, timestamp)
	if compress {
		name += ".gz"
	}
	return name
}

func writeJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return encodeJSON(f, data, false)
}

func writeGzipJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return encodeJSON(f, data, true)
}

// encodeJSON writes data to w and closes it. A failed close is reported
// because it can mean the file was left truncated.
func encodeJSON(w io.WriteCloser, data v1.Export, compress bool) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	if !compress {
		return json.NewEncoder(w).Encode(data)
	}

	gzWriter := gzip.NewWriter(w)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		return errors.Join(err, gzWriter.Close())
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}
