package thermal

import "math"

// condC3515 is the conductivity of standard seawater (S=35, T=15, P=0) in
// mS/cm, the PSS-78 reference value.
const condC3515 = 42.914

// Salinity computes practical salinity (PSS-78) from conductivity (S/m),
// temperature (degrees Celsius) and pressure (dbar). Glider depth in meters
// is used directly as pressure, the usual shallow-water approximation.
func Salinity(cond, temp, pres float64) float64 {
	if cond <= 0 {
		return math.NaN()
	}
	r := cond * 10 / condC3515

	// Temperature dependence of standard seawater conductivity.
	rt := 0.6766097 + temp*(2.00564e-2+temp*(1.104259e-4+temp*(-6.9698e-7+temp*1.0031e-9)))

	// Pressure correction.
	rp := 1 + pres*(2.070e-5+pres*(-6.370e-10+pres*3.989e-15))/
		(1+temp*(3.426e-2+temp*4.464e-4)+r*(4.215e-1+temp*-3.107e-3))

	rtRatio := r / (rp * rt)
	if rtRatio < 0 {
		return math.NaN()
	}
	sq := math.Sqrt(rtRatio)

	s := 0.0080 + sq*(-0.1692+sq*(25.3851+sq*(14.0941+sq*(-7.0261+sq*2.7081))))
	ds := 0.0005 + sq*(-0.0056+sq*(-0.0066+sq*(-0.0375+sq*(0.0636+sq*-0.0144))))
	s += ds * (temp - 15) / (1 + 0.0162*(temp-15))
	return s
}

// salinitySeries evaluates Salinity sample-wise over parallel arrays.
func salinitySeries(cond, temp, depth []float64) []float64 {
	out := make([]float64, len(cond))
	for i := range cond {
		out[i] = Salinity(cond[i], temp[i], depth[i])
	}
	return out
}
