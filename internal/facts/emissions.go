package facts

// LoadRatio is shipped weight over rated capacity. It is 0 when the
// capacity is not positive and may exceed 1 for overloaded vehicles.
func LoadRatio(weightKg, capacityKg float64) float64 {
	if capacityKg <= 0 {
		return 0
	}
	return weightKg / capacityKg
}

// Co2Kg interpolates linearly between the empty and full-load emission
// factors (kg CO₂ per km) by load ratio and scales by distance. Ratios above
// 1 extrapolate beyond the full-load factor.
func Co2Kg(distanceKm, co2Empty, co2Loaded, loadRatio float64) float64 {
	return distanceKm * (co2Empty + loadRatio*(co2Loaded-co2Empty))
}
