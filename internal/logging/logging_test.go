package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		app     string
		start   time.Time
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "cyborlogs",
			app:     "cyborsim",
			start:   sessionStart,
			want:    filepath.Join("cyborlogs", "cyborsim.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./cyborlogs",
			app:     "cyborsim",
			start:   sessionStart,
			want:    filepath.Join(".", "cyborlogs", "cyborsim.20260212_213836.log"),
		},
		{
			name:    "non-UTC start is normalized",
			logsDir: filepath.Join("/var", "log", "cybor"),
			app:     "cyborsim",
			start:   sessionStart.In(time.FixedZone("CET", 3600)),
			want:    filepath.Join("/var", "log", "cybor", "cyborsim.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LogFilePath(tt.logsDir, tt.app, tt.start))
		})
	}
}
