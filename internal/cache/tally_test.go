package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKillTally_NewKillTally(t *testing.T) {
	tally := NewKillTally()

	require.NotNil(t, tally)
	assert.NotNil(t, tally.kills)
	assert.Empty(t, tally.Snapshot())
}

func TestKillTally_IncAndGet(t *testing.T) {
	tally := NewKillTally()

	tally.Inc("Player")
	tally.Inc("Player")
	tally.Inc("Cybor-2")

	assert.Equal(t, 2, tally.Get("Player"))
	assert.Equal(t, 1, tally.Get("Cybor-2"))
	assert.Equal(t, 0, tally.Get("nobody"))
}

func TestKillTally_SnapshotIsCopy(t *testing.T) {
	tally := NewKillTally()
	tally.Inc("Player")

	snap := tally.Snapshot()
	snap["Player"] = 99

	assert.Equal(t, 1, tally.Get("Player"))
}

func TestKillTally_Reset(t *testing.T) {
	tally := NewKillTally()
	tally.Inc("Player")

	tally.Reset()

	assert.Equal(t, 0, tally.Get("Player"))
	assert.Empty(t, tally.Snapshot())
}

func TestKillTally_Concurrent(t *testing.T) {
	tally := NewKillTally()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tally.Inc("Player")
		}()
		go func() {
			defer wg.Done()
			tally.Get("Player")
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, tally.Get("Player"))
}
