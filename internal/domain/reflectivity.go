package domain

// HeavyRainThreshold is the lowest reflectivity (dBZ) reported as heavy rain.
const HeavyRainThreshold = 45.0

// ReflectivityTable maps a radar image palette index to its reflectivity in dBZ.
type ReflectivityTable map[uint8]float64

// DefaultReflectivityTable returns the color scale of the IMD Chennai
// reflectivity product (CAZ). Each call returns a fresh copy.
func DefaultReflectivityTable() ReflectivityTable {
	return ReflectivityTable{
		73:  60.0,
		109: 57.5,
		108: 55.0,
		144: 52.5,
		186: 50.0,
		192: 47.5,
		204: 45.0,
		210: 42.5,
		214: 40.0,
		215: 37.5,
		143: 35.0,
		101: 32.5,
		23:  30.0,
		17:  27.5,
		11:  25.0,
		4:   22.5,
		3:   20.0,
	}
}

// Reflectivity returns the dBZ value for a palette index. ok is false for
// indexes that are not part of the color scale (background, map overlay).
func (t ReflectivityTable) Reflectivity(code uint8) (value float64, ok bool) {
	value, ok = t[code]
	return value, ok
}

// Min returns the lowest reflectivity in the table, or 0 for an empty table.
func (t ReflectivityTable) Min() float64 {
	first := true
	var lowest float64
	for _, v := range t {
		if first || v < lowest {
			lowest = v
			first = false
		}
	}
	return lowest
}
