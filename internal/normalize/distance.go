package normalize

// Plausible inter-city road distance window used to pick the unit of a raw
// distance token. Historical data was loaded with exactly these bounds.
const (
	MinPlausibleKm = 5.0
	MaxPlausibleKm = 5000.0
)

// DistanceCandidates returns the interpretations tried for a raw distance, in
// order: as-is, divided by 1e3, divided by 1e6.
func DistanceCandidates(raw float64) [3]float64 {
	return [3]float64{raw, raw / 1_000.0, raw / 1_000_000.0}
}

// ParseDistanceKm parses a distance token whose unit differs between extracts
// (km, m, or mm-like counts). The first candidate inside
// [MinPlausibleKm, MaxPlausibleKm] wins; when none qualifies the most-divided
// candidate is returned.
func ParseDistanceKm(raw string) (float64, bool) {
	v, ok := ParseNumber(raw)
	if !ok {
		return 0, false
	}
	return DisambiguateKm(v), true
}

// DisambiguateKm applies the unit heuristic to an already parsed value.
func DisambiguateKm(v float64) float64 {
	candidates := DistanceCandidates(v)
	for _, c := range candidates {
		if c >= MinPlausibleKm && c <= MaxPlausibleKm {
			return c
		}
	}
	return candidates[len(candidates)-1]
}
