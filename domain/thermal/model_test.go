package thermal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectThermalLagZeroParamsIsIdentity(t *testing.T) {
	time := []float64{0, 2, 4, 6, 8}
	depth := []float64{2, 6, 10, 14, 18}
	temp := []float64{20, 19.2, 18.5, 17.9, 17.4}

	out := CorrectThermalLag(time, depth, temp, nil, Params{})
	for i := range temp {
		assert.Equal(t, temp[i], out[i])
	}
}

func TestCorrectThermalLagShiftsAgainstGradient(t *testing.T) {
	// Descending through a cooling column the cell lags behind the water:
	// the reconstructed in-cell temperature must sit above the measured
	// ambient one once the filter has spun up.
	time := make([]float64, 40)
	depth := make([]float64, 40)
	temp := make([]float64, 40)
	for i := range time {
		time[i] = float64(i) * 2
		depth[i] = float64(i)
		temp[i] = 20 - 0.2*float64(i)
	}

	out := CorrectThermalLag(time, depth, temp, nil, DefaultFirstGuess)
	require.Len(t, out, len(temp))
	above := 0
	for i := 5; i < len(out); i++ {
		require.False(t, math.IsNaN(out[i]), "corrected sample %d is NaN", i)
		if out[i] > temp[i] {
			above++
		}
	}
	assert.Greater(t, above, 25, "in-cell temperature should lag above the ambient reading on descent")
}

func TestCorrectThermalLagShortInput(t *testing.T) {
	out := CorrectThermalLag([]float64{0}, []float64{5}, []float64{18}, nil, DefaultFirstGuess)
	assert.Equal(t, []float64{18}, out)
}

func TestCorrectSensorLagZeroTauIsIdentity(t *testing.T) {
	time := []float64{0, 1, 2, 3}
	raw := []float64{5, 6, 7, 8}
	assert.Equal(t, raw, CorrectSensorLag(time, raw, 0))
}

func TestCorrectSensorLagLinearRamp(t *testing.T) {
	// Centered differences are exact on a linear ramp, so the correction
	// advances the signal by exactly tau times its slope.
	n := 10
	time := make([]float64, n)
	raw := make([]float64, n)
	for i := 0; i < n; i++ {
		time[i] = float64(i)
		raw[i] = 3 + 0.5*float64(i)
	}

	out := CorrectSensorLag(time, raw, 2)
	for i := range out {
		assert.InDelta(t, raw[i]+2*0.5, out[i], 1e-12, "sample %d", i)
	}
}

func TestFlowSpeedsFloorsAndPitch(t *testing.T) {
	time := []float64{0, 1, 2}
	depth := []float64{0, 0, 10}
	pitch := []float64{0.001, 0.001, 0.5}

	flow := flowSpeeds(time, depth, pitch)
	require.Len(t, flow, 2)
	// Stalled interval with near-flat pitch still yields the floor speed.
	assert.GreaterOrEqual(t, flow[0], minFlowSpeed)
	// The fast, steeply pitched interval must come out well above it.
	assert.Greater(t, flow[1], flow[0])
}
