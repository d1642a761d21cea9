package otel

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/cyborstrike/combatcore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), config.OTelConfig{Enabled: false}, nil)
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.Equal(t, noop.Meter{}, p.Meter("x"))
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_NoExporter(t *testing.T) {
	_, err := New(context.Background(), config.OTelConfig{Enabled: true, ServiceName: "cyborsim"}, nil)
	assert.ErrorIs(t, err, ErrNoExporter)
}

func TestNew_WritesLogs(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(context.Background(), config.OTelConfig{
		Enabled:      true,
		ServiceName:  "cyborsim",
		BatchTimeout: time.Second,
	}, &buf)
	require.NoError(t, err)
	require.NotNil(t, p.LoggerProvider())
	assert.NotNil(t, p.Meter("cyborsim"))

	log := slog.New(otelslog.NewHandler("cyborsim", otelslog.WithLoggerProvider(p.LoggerProvider())))
	log.Info("mission ended", "outcome", "victory")

	require.NoError(t, p.Flush(context.Background()))
	assert.Contains(t, buf.String(), "mission ended")
	assert.Contains(t, buf.String(), "cyborsim")

	require.NoError(t, p.Shutdown(context.Background()))
}
