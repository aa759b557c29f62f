package turnclock

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "00:00:00"},
		{"hour minute second", 3661, "01:01:01"},
		{"negative clamps", -5, "00:00:00"},
		{"fraction floors", 59.999, "00:00:59"},
		{"minute boundary", 60, "00:01:00"},
		{"no hour wraparound", 100*3600 + 5, "100:00:05"},
		{"nan", math.NaN(), "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTime(tt.seconds))
		})
	}
}
