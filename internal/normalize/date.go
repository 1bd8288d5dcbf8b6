package normalize

import (
	"strings"
	"time"
)

var dateLayouts = []string{"02.01.2006", "2006-01-02", "20060102"}

// ParseDate accepts the date layouts found in planning extracts. A trailing
// time part ("02.01.2006 13:45:00") is ignored.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
