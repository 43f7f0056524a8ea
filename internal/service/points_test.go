package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clubpulse/clubpulse/internal/config"
	"github.com/clubpulse/clubpulse/internal/service"
)

func TestLevel(t *testing.T) {
	step := config.DefaultLevelStep

	tests := []struct {
		name   string
		points int
		want   int
	}{
		{"zero points is level 1", 0, 1},
		{"below one step", 50, 1},
		{"just below step boundary", 199, 1},
		{"exactly one step", 200, 2},
		{"above one step", 210, 2},
		{"two steps", 400, 3},
		{"negative clamps to level 1", -30, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.Level(tt.points, step))
		})
	}
}

func TestLevel_Monotonic(t *testing.T) {
	step := config.DefaultLevelStep

	prev := service.Level(0, step)
	for points := 1; points <= 1000; points++ {
		level := service.Level(points, step)
		assert.GreaterOrEqual(t, level, prev, "level must never decrease as points grow")
		prev = level
	}
}

func TestApplyDelta(t *testing.T) {
	tests := []struct {
		name    string
		balance int
		delta   int
		want    int
	}{
		{"positive award", 100, 50, 150},
		{"partial deduction", 100, -40, 60},
		{"deduction to zero", 100, -100, 0},
		{"deduction past zero clamps", 30, -80, 0},
		{"zero delta", 75, 0, 75},
		{"award from zero", 0, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.ApplyDelta(tt.balance, tt.delta))
		})
	}
}

// TestAttendanceScenario walks the default configuration: one attendance is
// 50 points and stays on level 1, five attendances cross into level 2.
func TestAttendanceScenario(t *testing.T) {
	cfg := config.DefaultPoints()

	balance := 0
	for i := 0; i < 4; i++ {
		balance = service.ApplyDelta(balance, cfg.AttendancePoints)
	}
	assert.Equal(t, 200, balance)
	assert.Equal(t, 2, service.Level(balance, cfg.LevelStep))

	assert.Equal(t, 1, service.Level(cfg.AttendancePoints, cfg.LevelStep))
}
