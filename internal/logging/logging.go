package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

// LogFilePath names the log file of one run, e.g.
// cyborlogs/cyborsim.20260212_213836.log.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.UTC().Format("20060102_150405")),
	)
}
