package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"RecorderPerformance", &RecorderPerformance{}, "recorder_performances"},
		{"Mission", &Mission{}, "missions"},
		{"Entity", &Entity{}, "entities"},
		{"EntityState", &EntityState{}, "entity_states"},
		{"FiredEvent", &FiredEvent{}, "fired_events"},
		{"HitEvent", &HitEvent{}, "hit_events"},
		{"KillEvent", &KillEvent{}, "kill_events"},
		{"StateChange", &StateChange{}, "state_changes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModelsHaveTableNames(t *testing.T) {
	for _, m := range DatabaseModels {
		_, ok := m.(interface{ TableName() string })
		assert.True(t, ok, "%T has no TableName", m)
	}
}
