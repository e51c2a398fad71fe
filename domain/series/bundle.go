// Package series holds the in-memory representation of a glider deployment:
// parallel numeric arrays sampled at the same instants. Index i refers to the
// same physical instant across every array in a Bundle.
package series

import (
	"math"

	"glidercal/domain/core"
)

// Var identifies a measurement array inside a Bundle.
type Var string

const (
	VarTemperature  Var = "temperature"
	VarConductivity Var = "conductivity"
	VarPitch        Var = "pitch"
)

// Bundle is a set of synchronized sample arrays for one deployment or one
// profile. Time and Depth are required; measurement arrays may be nil when a
// sensor was absent. All non-nil arrays must have identical length.
type Bundle struct {
	Time         []float64 // seconds, monotonic within a profile
	Depth        []float64 // meters, positive down
	Temperature  []float64 // degrees Celsius
	Conductivity []float64 // S/m
	Pitch        []float64 // radians, positive nose-up; optional
}

// Len returns the number of samples in the bundle.
func (b Bundle) Len() int {
	return len(b.Time)
}

// Validate checks the structural contract: time and depth present, and every
// non-nil array the same length. Violations are caller errors, not
// data-quality conditions.
func (b Bundle) Validate() error {
	if b.Time == nil {
		return core.NewMissingFieldError("time")
	}
	if b.Depth == nil {
		return core.NewMissingFieldError("depth")
	}
	n := len(b.Time)
	if len(b.Depth) != n {
		return core.NewLengthMismatchError("depth", len(b.Depth), n)
	}
	if b.Temperature != nil && len(b.Temperature) != n {
		return core.NewLengthMismatchError("temperature", len(b.Temperature), n)
	}
	if b.Conductivity != nil && len(b.Conductivity) != n {
		return core.NewLengthMismatchError("conductivity", len(b.Conductivity), n)
	}
	if b.Pitch != nil && len(b.Pitch) != n {
		return core.NewLengthMismatchError("pitch", len(b.Pitch), n)
	}
	return nil
}

// Require checks that the named measurement arrays are present.
func (b Bundle) Require(vars ...Var) error {
	for _, v := range vars {
		if b.measurement(v) == nil {
			return core.NewMissingFieldError(string(v))
		}
	}
	return nil
}

func (b Bundle) measurement(v Var) []float64 {
	switch v {
	case VarTemperature:
		return b.Temperature
	case VarConductivity:
		return b.Conductivity
	case VarPitch:
		return b.Pitch
	}
	return nil
}

// Slice returns the half-open sample range [lo, hi) as a new bundle sharing
// the underlying arrays.
func (b Bundle) Slice(lo, hi int) Bundle {
	out := Bundle{
		Time:  b.Time[lo:hi],
		Depth: b.Depth[lo:hi],
	}
	if b.Temperature != nil {
		out.Temperature = b.Temperature[lo:hi]
	}
	if b.Conductivity != nil {
		out.Conductivity = b.Conductivity[lo:hi]
	}
	if b.Pitch != nil {
		out.Pitch = b.Pitch[lo:hi]
	}
	return out
}

// SelectLabel returns a new bundle holding the samples whose profile label
// equals k. The labels slice must be parallel to the bundle.
func (b Bundle) SelectLabel(labels []int, k int) Bundle {
	keep := make([]int, 0, len(labels))
	for i, l := range labels {
		if l == k {
			keep = append(keep, i)
		}
	}
	return b.take(keep)
}

// Clean removes samples where time, depth, or any of the listed measurement
// arrays is NaN, returning the cleaned bundle and the surviving original
// indices. An input with no finite rows yields an empty bundle; downstream
// code treats that as insufficient data, not as an error.
func (b Bundle) Clean(vars ...Var) (Bundle, []int) {
	keep := make([]int, 0, b.Len())
	for i := 0; i < b.Len(); i++ {
		if math.IsNaN(b.Time[i]) || math.IsNaN(b.Depth[i]) {
			continue
		}
		ok := true
		for _, v := range vars {
			m := b.measurement(v)
			if m == nil || math.IsNaN(m[i]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return b.take(keep), keep
}

func (b Bundle) take(idx []int) Bundle {
	pick := func(src []float64) []float64 {
		if src == nil {
			return nil
		}
		dst := make([]float64, len(idx))
		for j, i := range idx {
			dst[j] = src[i]
		}
		return dst
	}
	return Bundle{
		Time:         pick(b.Time),
		Depth:        pick(b.Depth),
		Temperature:  pick(b.Temperature),
		Conductivity: pick(b.Conductivity),
		Pitch:        pick(b.Pitch),
	}
}

// Direction classifies a profile as descending or ascending.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionDown
	DirectionUp
)

func (d Direction) String() string {
	switch d {
	case DirectionDown:
		return "down"
	case DirectionUp:
		return "up"
	}
	return "unknown"
}

// Direction reports whether the bundle's depth samples describe a dive or a
// climb, comparing the last depth against the first. Callers are expected to
// have cleaned the bundle first; an empty bundle yields DirectionUnknown.
func (b Bundle) Direction() Direction {
	if b.Len() == 0 {
		return DirectionUnknown
	}
	if b.Depth[b.Len()-1] > b.Depth[0] {
		return DirectionDown
	}
	return DirectionUp
}
