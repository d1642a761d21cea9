package influx

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cyborstrike/combatcore/internal/config"
	"github.com/cyborstrike/combatcore/pkg/core"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var end = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func victory() core.MatchResult {
	return core.MatchResult{
		SessionID:    "s-1",
		MissionIndex: 1,
		Attempt:      2,
		MapName:      "cybor_outpost",
		Outcome:      core.OutcomeVictory,
		Winner:       core.TeamCounterTerrorist,
		Duration:     41.5,
		Score:        1300,
		Kills:        3,
		EndTime:      end,
	}
}

func TestConnectDisabled(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{Enabled: false})
	assert.ErrorIs(t, m.Connect(context.Background()), ErrDisabled)
	assert.False(t, m.IsValid)
}

func TestWritePointWithoutBackup(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{})
	err := m.WritePoint(BucketMatches, MatchPoint(victory()))
	assert.Error(t, err)
}

func TestConnectFallsBackToBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "influx_backup.lp.gz")
	m := NewManager(zerolog.Nop(), config.InfluxConfig{
		Enabled:    true,
		Host:       "127.0.0.1",
		Port:       "1",
		Protocol:   "http",
		Org:        "cyborstrike",
		BackupPath: path,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.IsValid)
	require.NotNil(t, m.BackupWriter)

	require.NoError(t, m.WritePoint(BucketMatches, MatchPoint(victory())))
	require.NoError(t, m.WritePoint(BucketPerformance, TickPoint(TickStats{SessionID: "s-1", Mission: 2, Tick: 90}, end)))
	require.NoError(t, m.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "match,")
	assert.Contains(t, content, "outcome=victory")
	assert.Contains(t, content, "tick,")
}

func TestMatchPoint(t *testing.T) {
	line := influxdb2_write.PointToLineProtocol(MatchPoint(victory()), time.Nanosecond)

	assert.Contains(t, line, "map=cybor_outpost")
	assert.Contains(t, line, "winner=counter_terrorist")
	assert.Contains(t, line, "mission=2i")
	assert.Contains(t, line, "attempt=2i")
	assert.Contains(t, line, "score=1300i")
}

func TestTickPoint(t *testing.T) {
	p := TickPoint(TickStats{
		SessionID: "s-1",
		Mission:   1,
		Tick:      600,
		Duration:  1500 * time.Microsecond,
		BotsAlive: 3,
		Shots:     2,
	}, end)
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)

	assert.Equal(t, "tick", p.Name())
	assert.Contains(t, line, "session=s-1")
	assert.Contains(t, line, "bots_alive=3i")
	assert.Contains(t, line, "duration_ms=1.5")
	assert.Contains(t, line, "tick=600i")
}
