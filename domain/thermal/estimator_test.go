package thermal

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "glidercal/adapters/optimize"
	"glidercal/domain/core"
	"glidercal/domain/series"
)

// columnProfile samples a static water column T(z), C(z) on a descent or
// ascent between 1 m and the given bottom depth, one sample per two seconds.
func columnProfile(bottom float64, up bool, t0 float64) series.Bundle {
	n := int(bottom)
	b := series.Bundle{
		Time:         make([]float64, n),
		Depth:        make([]float64, n),
		Temperature:  make([]float64, n),
		Conductivity: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		z := float64(i + 1)
		if up {
			z = bottom - float64(i)
		}
		b.Time[i] = t0 + 2*float64(i)
		b.Depth[i] = z
		b.Temperature[i] = 18 - 0.2*z
		b.Conductivity[i] = 4.2 - 0.008*z
	}
	return b
}

func TestThermalLagCostZeroAtNoLagForMatchingProfiles(t *testing.T) {
	down := columnProfile(20, false, 0)
	u := columnProfile(20, true, 40)

	cost, err := NewThermalLagCost(down, u, 50)
	require.NoError(t, err)

	noCorrection := cost([]float64{0, 0, 0, 0})
	assert.Less(t, noCorrection, 1e-10, "profiles of the same column need no correction")

	// A sizable spurious correction must cost more: the two profiles see
	// opposite temporal gradients, so it drives their curves apart.
	spurious := cost([]float64{0.2, 0, 20, 0})
	assert.Greater(t, spurious, noCorrection)
	assert.Greater(t, spurious, 1e-10)
}

func TestThermalLagCostPenalizesNegativeParams(t *testing.T) {
	down := columnProfile(20, false, 0)
	u := columnProfile(20, true, 40)

	cost, err := NewThermalLagCost(down, u, 50)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost([]float64{-0.1, 0, 5, 0}), penaltyCost)
}

func TestThermalLagCostDegenerateInputs(t *testing.T) {
	ok := columnProfile(20, false, 0)

	oneLevel := series.Bundle{
		Time:         []float64{0, 1},
		Depth:        []float64{5, 5},
		Temperature:  []float64{17, 17},
		Conductivity: []float64{4, 4},
	}
	_, err := NewThermalLagCost(ok, oneLevel, 50)
	assert.ErrorIs(t, err, core.ErrInsufficientDepthLevels)

	disjoint := series.Bundle{
		Time:         []float64{0, 1, 2},
		Depth:        []float64{100, 110, 120},
		Temperature:  []float64{5, 4.8, 4.6},
		Conductivity: []float64{3.4, 3.4, 3.4},
	}
	_, err = NewThermalLagCost(ok, disjoint, 50)
	assert.ErrorIs(t, err, core.ErrNoDepthOverlap)
}

func TestEstimateThermalLagIdenticalProfiles(t *testing.T) {
	// Two identical profiles already match at every depth, so the fit must
	// converge with a near-zero achieved cost.
	down := columnProfile(25, false, 0)

	est := NewEstimator(adapter.NewNelderMeadMinimizer(), EstimatorOptions{})
	res, err := est.EstimateThermalLag(context.Background(), down, down)
	require.NoError(t, err)
	require.Len(t, res.Params, 4)
	assert.Less(t, res.Cost, 1e-10)
	assert.Greater(t, res.Evaluations, 0)
}

func TestEstimateThermalLagInsufficientDepthIsDataQuality(t *testing.T) {
	down := columnProfile(25, false, 0)
	degenerate := series.Bundle{
		Time:         []float64{0},
		Depth:        []float64{5},
		Temperature:  []float64{17},
		Conductivity: []float64{4},
	}

	est := NewEstimator(adapter.NewNelderMeadMinimizer(), EstimatorOptions{})
	_, err := est.EstimateThermalLag(context.Background(), down, degenerate)
	require.Error(t, err)
	assert.True(t, core.IsDataQualityError(err), "got %v", err)
	assert.True(t, errors.Is(err, core.ErrInsufficientDepthLevels))
}

func TestSensorLagCostMinimumNearTrueTau(t *testing.T) {
	// Simulate a sensor with a first-order lag of tau=4 s traversing the
	// column down and up. The discretized response lags slightly less than
	// tau itself, so assert the cost ordering rather than an exact
	// minimum: correcting with the true constant must beat both no
	// correction and a gross overcorrection.
	const tau = 4.0
	simulate := func(b series.Bundle) series.Bundle {
		lagged := make([]float64, len(b.Temperature))
		lagged[0] = b.Temperature[0]
		for i := 1; i < len(lagged); i++ {
			dt := b.Time[i] - b.Time[i-1]
			decay := math.Exp(-dt / tau)
			lagged[i] = b.Temperature[i] + (lagged[i-1]-b.Temperature[i])*decay
		}
		b.Temperature = lagged
		return b
	}

	down := simulate(columnProfile(30, false, 0))
	u := simulate(columnProfile(30, true, 60))

	cost, err := NewSensorLagCost(down, u, 50)
	require.NoError(t, err)

	atTrue := cost([]float64{tau})
	assert.Less(t, atTrue, cost([]float64{0}), "uncorrected curves should disagree more")
	assert.Less(t, atTrue, cost([]float64{3 * tau}))
}

func TestEstimateSensorLagConverges(t *testing.T) {
	down := columnProfile(30, false, 0)
	u := columnProfile(30, true, 60)

	est := NewEstimator(adapter.NewNelderMeadMinimizer(), EstimatorOptions{})
	res, err := est.EstimateSensorLag(context.Background(), down, u)
	require.NoError(t, err)
	require.Len(t, res.Params, 1)
	assert.GreaterOrEqual(t, res.Params[0], 0.0)
}
