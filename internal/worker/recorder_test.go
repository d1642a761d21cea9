package worker

import (
	"testing"
	"time"

	"github.com/cyborstrike/combatcore/internal/encounter"
	"github.com/cyborstrike/combatcore/internal/storage"
	"github.com/cyborstrike/combatcore/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderForwardsCampaign(t *testing.T) {
	backend := &mockBackend{}
	d, m := newTestDispatcher(t, backend)
	rec := NewRecorder(d, discardLogger())

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c, err := encounter.New(encounter.DefaultConfig(),
		encounter.WithSeed(3),
		encounter.WithRecorder(rec),
		encounter.WithSessionID("s-1"),
		encounter.WithClock(func() time.Time { return start }),
	)
	require.NoError(t, err)

	c.StartCampaign()
	require.Len(t, backend.missions, 1)
	assert.Equal(t, "s-1", backend.missions[0].SessionID)
	assert.Equal(t, uint(1), backend.missions[0].ID)

	// player plus every bot
	assert.Len(t, backend.entities, len(c.Bots())+1)

	hostiles := 0
	for _, b := range c.Bots() {
		if b.Team().Opposes(c.Player().Team()) {
			hostiles++
			_, err := c.ApplyDamage(b.ID(), 1000, core.PlayerID)
			require.NoError(t, err)
		}
	}
	require.Positive(t, hostiles)
	c.Tick(1.0 / 60)

	assert.Len(t, backend.killEvents, hostiles)
	require.Len(t, backend.results, 1)
	assert.Equal(t, core.OutcomeVictory, backend.results[0].Outcome)

	// the next mission opens straight away
	require.Len(t, backend.missions, 2)
	assert.Equal(t, 1, backend.missions[1].Index)
	assert.Equal(t, uint(2), backend.missions[1].ID)
	assert.Zero(t, m.Failed())
}

func TestRecorderSwallowsErrors(t *testing.T) {
	d, m := newTestDispatcher(t, &mockBackend{failWith: storage.ErrNoMission})
	rec := NewRecorder(d, discardLogger())

	assert.NotPanics(t, func() {
		rec.EntityHit(core.HitEvent{VictimID: 1})
	})
	assert.Equal(t, 1, m.Failed())
}
