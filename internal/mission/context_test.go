package mission

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cyborstrike/combatcore/pkg/core"
)

func TestContext_Defaults(t *testing.T) {
	ctx := NewContext()

	m, ok := ctx.GetMission()
	assert.False(t, ok)
	assert.Equal(t, "No mission loaded", m.MapName)
	assert.Nil(t, ctx.Attrs())
}

func TestContext_SetAndClear(t *testing.T) {
	ctx := NewContext()
	ctx.SetMission(core.Mission{SessionID: "s1", Index: 2, Attempt: 3, MapName: "cybor_industrial_complex"})
	ctx.SetID(42)

	m, ok := ctx.GetMission()
	assert.True(t, ok)
	assert.Equal(t, uint(42), m.ID)
	assert.Equal(t, "cybor_industrial_complex", m.MapName)

	attrs := ctx.Attrs()
	assert.Len(t, attrs, 4)
	assert.Equal(t, "session", attrs[0].Key)
	assert.Equal(t, int64(3), attrs[1].Value.Int64())

	ctx.Clear()
	_, ok = ctx.GetMission()
	assert.False(t, ok)
}

func TestContext_ThreadSafe(t *testing.T) {
	ctx := NewContext()
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ctx.SetMission(core.Mission{Index: i, MapName: "cybor_compound"})
		}()
		go func() {
			defer wg.Done()
			_ = ctx.Attrs()
		}()
	}
	wg.Wait()

	m, ok := ctx.GetMission()
	assert.True(t, ok)
	assert.Equal(t, "cybor_compound", m.MapName)
}
