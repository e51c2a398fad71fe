// Package thermal implements the conductivity-cell thermal inertia model and
// the lag-parameter estimators fitted against paired dive/climb profiles.
package thermal

import "math"

// Params is the four-parameter thermal lag model. The error magnitude alpha
// and its time constant tau both depend on the flow speed through the cell
// via an offset+slope relation:
//
//	alpha = AlphaOffset + AlphaSlope / flow
//	tau   = TauOffset + TauSlope / sqrt(flow)
type Params struct {
	AlphaOffset float64
	AlphaSlope  float64
	TauOffset   float64
	TauSlope    float64
}

// DefaultFirstGuess seeds the nonlinear search with the parameters found for
// a pumped Seabird CTD on a Slocum glider; any physically plausible starting
// point works, this one keeps the simplex near the usual minimum.
var DefaultFirstGuess = Params{
	AlphaOffset: 0.0135,
	AlphaSlope:  0.0264,
	TauOffset:   7.1499,
	TauSlope:    2.7858,
}

// Vector flattens the parameters in estimation order.
func (p Params) Vector() []float64 {
	return []float64{p.AlphaOffset, p.AlphaSlope, p.TauOffset, p.TauSlope}
}

// ParamsFromVector is the inverse of Vector.
func ParamsFromVector(v []float64) Params {
	return Params{AlphaOffset: v[0], AlphaSlope: v[1], TauOffset: v[2], TauSlope: v[3]}
}

const (
	// defaultPitch substitutes a typical Slocum glide angle when the
	// deployment carries no pitch sensor data.
	defaultPitch = 26 * math.Pi / 180

	minSinPitch  = 0.08716 // sin(5 degrees); caps flow estimates near stalls
	minFlowSpeed = 1e-3    // m/s
	minTimeStep  = 1e-3    // s
)

// flowSpeeds estimates the water speed through the conductivity cell on each
// sample interval from the vertical velocity and the glide angle. Returns
// len(time)-1 values.
func flowSpeeds(time, depth, pitch []float64) []float64 {
	n := len(time)
	if n < 2 {
		return nil
	}
	flow := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		dt := time[i+1] - time[i]
		if dt < minTimeStep {
			dt = minTimeStep
		}
		vertical := math.Abs(depth[i+1]-depth[i]) / dt

		p := defaultPitch
		if pitch != nil {
			p = (pitch[i] + pitch[i+1]) / 2
		}
		sin := math.Abs(math.Sin(p))
		if sin < minSinPitch {
			sin = minSinPitch
		}

		f := vertical / sin
		if f < minFlowSpeed {
			f = minFlowSpeed
		}
		flow[i] = f
	}
	return flow
}

// CorrectThermalLag reconstructs the temperature inside the conductivity
// cell from the externally measured temperature, using the recursive
// thermal-inertia filter of Lueck & Picklo (1990) with flow-dependent
// coefficients. pitch may be nil, in which case a constant glide angle is
// assumed. Fewer than two samples come back unchanged.
func CorrectThermalLag(time, depth, temp, pitch []float64, p Params) []float64 {
	n := len(time)
	out := make([]float64, n)
	copy(out, temp)
	if n < 2 {
		return out
	}

	flow := flowSpeeds(time, depth, pitch)
	corr := 0.0
	for i := 0; i < n-1; i++ {
		dt := time[i+1] - time[i]
		if dt < minTimeStep {
			dt = minTimeStep
		}
		alpha := p.AlphaOffset + p.AlphaSlope/flow[i]
		tau := p.TauOffset + p.TauSlope/math.Sqrt(flow[i])
		if tau < minTimeStep {
			tau = minTimeStep
		}

		// Discrete form of the first-order error response; fn is the
		// Nyquist frequency of the (possibly uneven) sample interval.
		var coefA, coefB float64
		if alpha != 0 {
			fn := 1 / (2 * dt)
			coefA = 4 * fn * alpha * tau / (1 + 4*fn*tau)
			coefB = 1 - 2*coefA/alpha
		}

		corr = -coefB*corr + coefA*(temp[i+1]-temp[i])
		out[i+1] = temp[i+1] - corr
	}
	return out
}

// CorrectSensorLag advances a measurement series by a first-order sensor
// time constant tau (seconds): x_corrected = x + tau * dx/dt, with the time
// derivative taken by centered differences in the interior and one-sided
// differences at the ends.
func CorrectSensorLag(time, raw []float64, tau float64) []float64 {
	n := len(time)
	out := make([]float64, n)
	copy(out, raw)
	if n < 2 || tau == 0 {
		return out
	}

	for i := 0; i < n; i++ {
		lo, hi := i-1, i+1
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		dt := time[hi] - time[lo]
		if dt < minTimeStep {
			dt = minTimeStep
		}
		out[i] = raw[i] + tau*(raw[hi]-raw[lo])/dt
	}
	return out
}
