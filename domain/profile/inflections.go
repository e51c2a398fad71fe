package profile

import "math"

// FindInflections locates the turnaround points of a depth series: the sample
// indices where the glider switches between descending and ascending. NaN
// depths are skipped when establishing the trend. Only interior extrema are
// returned; the series endpoints are never inflections.
func FindInflections(depth []float64) []int {
	var out []int

	prevIdx := -1
	trend := 0 // +1 descending (depth increasing), -1 ascending
	for i, d := range depth {
		if math.IsNaN(d) {
			continue
		}
		if prevIdx >= 0 && d != depth[prevIdx] {
			dir := 1
			if d < depth[prevIdx] {
				dir = -1
			}
			if trend != 0 && dir != trend {
				out = append(out, prevIdx)
			}
			trend = dir
		}
		prevIdx = i
	}
	return out
}
