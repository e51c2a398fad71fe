package thermal

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"glidercal/domain/core"
	"glidercal/domain/series"
	"glidercal/ports"
)

// penaltyCost steers the simplex away from unphysical (negative) parameters
// without handing the optimizer a non-finite value.
const penaltyCost = 1e12

// depthCurve indexes a profile's samples by strictly increasing depth so a
// value array can be refitted cheaply on every cost evaluation. Duplicate
// depths keep their first sample.
type depthCurve struct {
	depths []float64
	src    []int
}

func newDepthCurve(depth []float64) (depthCurve, error) {
	order := make([]int, len(depth))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return depth[order[a]] < depth[order[b]] })

	var c depthCurve
	for _, i := range order {
		if n := len(c.depths); n > 0 && depth[i] <= c.depths[n-1] {
			continue
		}
		c.depths = append(c.depths, depth[i])
		c.src = append(c.src, i)
	}
	if len(c.depths) < 2 {
		return depthCurve{}, core.ErrInsufficientDepthLevels
	}
	return c, nil
}

// resample fits a monotone cubic (Fritsch-Butland) through (depth, values)
// and evaluates it on the grid.
func (c depthCurve) resample(values, grid []float64) ([]float64, error) {
	ys := make([]float64, len(c.src))
	for j, i := range c.src {
		ys[j] = values[i]
	}
	var fb interp.FritschButland
	if err := fb.Fit(c.depths, ys); err != nil {
		return nil, err
	}
	out := make([]float64, len(grid))
	for i, z := range grid {
		out[i] = fb.Predict(z)
	}
	return out, nil
}

// commonGrid spans the depth range both curves cover.
func commonGrid(a, b depthCurve, levels int) ([]float64, error) {
	lo := math.Max(a.depths[0], b.depths[0])
	hi := math.Min(a.depths[len(a.depths)-1], b.depths[len(b.depths)-1])
	if hi <= lo {
		return nil, core.ErrNoDepthOverlap
	}
	if levels < 2 {
		levels = 2
	}
	return floats.Span(make([]float64, levels), lo, hi), nil
}

// meanSquaredDiff ignores non-finite grid points; a curve pair with no
// finite overlap at all costs the full penalty.
func meanSquaredDiff(a, b []float64) float64 {
	sum, n := 0.0, 0
	for i := range a {
		d := a[i] - b[i]
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		sum += d * d
		n++
	}
	if n == 0 {
		return penaltyCost
	}
	return sum / float64(n)
}

// NewThermalLagCost builds the objective for the four-parameter thermal lag
// model: the mean squared mismatch between the two profiles' corrected
// salinity curves resampled onto a shared depth grid. The returned function
// is safe to call from a single goroutine at a time.
func NewThermalLagCost(first, second series.Bundle, gridLevels int) (ports.ObjectiveFunc, error) {
	c1, err := newDepthCurve(first.Depth)
	if err != nil {
		return nil, err
	}
	c2, err := newDepthCurve(second.Depth)
	if err != nil {
		return nil, err
	}
	grid, err := commonGrid(c1, c2, gridLevels)
	if err != nil {
		return nil, err
	}

	return func(params []float64) float64 {
		for _, v := range params {
			if v < 0 {
				return penaltyCost * (1 - v)
			}
		}
		p := ParamsFromVector(params)

		temp1 := CorrectThermalLag(first.Time, first.Depth, first.Temperature, first.Pitch, p)
		temp2 := CorrectThermalLag(second.Time, second.Depth, second.Temperature, second.Pitch, p)
		salt1, err := c1.resample(salinitySeries(first.Conductivity, temp1, first.Depth), grid)
		if err != nil {
			return penaltyCost
		}
		salt2, err := c2.resample(salinitySeries(second.Conductivity, temp2, second.Depth), grid)
		if err != nil {
			return penaltyCost
		}
		return meanSquaredDiff(salt1, salt2)
	}, nil
}

// NewSensorLagCost builds the single-parameter objective: the mismatch
// between the two profiles' lag-advanced temperature curves against depth.
func NewSensorLagCost(first, second series.Bundle, gridLevels int) (ports.ObjectiveFunc, error) {
	c1, err := newDepthCurve(first.Depth)
	if err != nil {
		return nil, err
	}
	c2, err := newDepthCurve(second.Depth)
	if err != nil {
		return nil, err
	}
	grid, err := commonGrid(c1, c2, gridLevels)
	if err != nil {
		return nil, err
	}

	return func(params []float64) float64 {
		tau := params[0]
		if tau < 0 {
			return penaltyCost * (1 - tau)
		}
		v1, err := c1.resample(CorrectSensorLag(first.Time, first.Temperature, tau), grid)
		if err != nil {
			return penaltyCost
		}
		v2, err := c2.resample(CorrectSensorLag(second.Time, second.Temperature, tau), grid)
		if err != nil {
			return penaltyCost
		}
		return meanSquaredDiff(v1, v2)
	}, nil
}
