// internal/storage/storage_test.go
package storage_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cyborstrike/combatcore/internal/storage"
	"github.com/stretchr/testify/assert"
)

func TestErrNoMissionWraps(t *testing.T) {
	err := fmt.Errorf("record hit: %w", storage.ErrNoMission)
	assert.True(t, errors.Is(err, storage.ErrNoMission))
	assert.Equal(t, "record hit: no mission in progress", err.Error())
}
