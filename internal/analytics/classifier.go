package analytics

import "strings"

// DefaultElectricMarkers match German and English transport type names.
var DefaultElectricMarkers = []string{"elektro", "electric"}

// Classifier decides whether a transport type is electric. It is the only
// place that rule lives.
type Classifier struct {
	markers []string
}

// NewClassifier matches names containing any marker, case-insensitively.
func NewClassifier(markers []string) Classifier {
	if len(markers) == 0 {
		markers = DefaultElectricMarkers
	}
	c := Classifier{markers: make([]string, 0, len(markers))}
	for _, m := range markers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			c.markers = append(c.markers, m)
		}
	}
	return c
}

func (c Classifier) IsElectric(transportType string) bool {
	name := strings.ToLower(transportType)
	for _, m := range c.markers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
