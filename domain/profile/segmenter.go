// Package profile splits a continuous depth time series into discrete dive and
// climb profiles and selects adjacent opposite-direction pairs for lag
// calibration.
package profile

import (
	"math"

	"glidercal/domain/core"
)

// SegmentOptions controls profile acceptance thresholds.
type SegmentOptions struct {
	// MinDepthRange is the minimum depth span (meters) a candidate must
	// cover to count as a profile.
	MinDepthRange float64
	// MaxGapRatio is the largest tolerated ratio between the biggest
	// single-step depth jump and the candidate's total depth span.
	MaxGapRatio float64
}

// DefaultSegmentOptions returns the thresholds used by the standard
// segmentation routine. Some calibration call sites tighten MaxGapRatio
// to 0.5 for sparser sensors.
func DefaultSegmentOptions() SegmentOptions {
	return SegmentOptions{
		MinDepthRange: 10,
		MaxGapRatio:   0.8,
	}
}

// SegmentResult labels every sample of a deployment with the profile it
// belongs to. Label 0 means unassigned: samples outside any valid profile,
// including everything before the first and after the last inflection.
type SegmentResult struct {
	Labels   []int
	Found    int
	Rejected int
}

// Segment converts a depth series plus an ordered list of inflection-point
// sample indices into 1-based profile labels. Each candidate spans the
// inclusive range between two successive inflections; the shared turnaround
// sample belongs to the later accepted profile. A candidate is accepted iff
// its depth span exceeds opts.MinDepthRange and its gap ratio stays below
// opts.MaxGapRatio, both computed over non-NaN depths.
func Segment(depth []float64, inflections []int, opts SegmentOptions) (SegmentResult, error) {
	res := SegmentResult{Labels: make([]int, len(depth))}

	for i, idx := range inflections {
		if idx < 0 || idx >= len(depth) {
			return SegmentResult{}, core.ErrBadInflections
		}
		if i > 0 && idx <= inflections[i-1] {
			return SegmentResult{}, core.ErrBadInflections
		}
	}

	for i := 0; i+1 < len(inflections); i++ {
		lo, hi := inflections[i], inflections[i+1]
		depthRange, maxGap := depthSpan(depth[lo : hi+1])
		if depthRange > opts.MinDepthRange && maxGap/depthRange < opts.MaxGapRatio {
			res.Found++
			for j := lo; j <= hi; j++ {
				res.Labels[j] = res.Found
			}
		} else {
			res.Rejected++
		}
	}
	return res, nil
}

// depthSpan computes the total depth range and the largest consecutive-sample
// depth jump over the non-NaN depths of a candidate range. NaN samples are
// skipped, so a gap straddling missing samples counts as one jump.
func depthSpan(depth []float64) (depthRange, maxGap float64) {
	minD, maxD := math.Inf(1), math.Inf(-1)
	prev := math.NaN()
	for _, d := range depth {
		if math.IsNaN(d) {
			continue
		}
		minD = math.Min(minD, d)
		maxD = math.Max(maxD, d)
		if !math.IsNaN(prev) {
			if gap := math.Abs(d - prev); gap > maxGap {
				maxGap = gap
			}
		}
		prev = d
	}
	if math.IsInf(minD, 1) {
		return 0, 0
	}
	return maxD - minD, maxGap
}
