package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		want     int64
	}{
		{"hours and minutes", "PT1H30M", 5400},
		{"seconds only", "PT45S", 45},
		{"full", "PT2H3M4S", 7384},
		{"minutes and seconds", "PT10M30S", 630},
		{"zero seconds", "PT0S", 0},
		{"live placeholder", "P0D", 0},
		{"empty", "", 0},
		{"garbage", "not-a-duration", 0},
		{"unsupported day component", "P1DT2H", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.duration))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    string
	}{
		{"hours", 5400, "1:30:00"},
		{"under a minute", 45, "0:45"},
		{"zero", 0, "0:00"},
		{"exact hour", 3600, "1:00:00"},
		{"minutes", 630, "10:30"},
		{"negative clamps to zero", -5, "0:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.seconds))
		})
	}
}
