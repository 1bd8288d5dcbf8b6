package normalize

import (
	"strconv"
	"strings"
)

// ParseDurationMinutes converts "H:MM" or "HH:MM" to total minutes. Anything
// after a second colon (seconds) is ignored.
func ParseDurationMinutes(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "," {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, false
	}
	return float64(h*60 + m), true
}
