package turnclock

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as HH:MM:SS. Fractions are floored, negative
// values render as zero and hours do not wrap.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}

	total := int64(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
