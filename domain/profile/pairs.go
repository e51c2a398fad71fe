package profile

import (
	"glidercal/domain/series"
)

// DismissReason explains why a candidate profile pair was not forwarded to
// the estimator.
type DismissReason string

const (
	DismissNone             DismissReason = ""
	DismissInsufficientData DismissReason = "insufficient_data"
	DismissSameDirection    DismissReason = "same_direction"
)

// Pair is an accepted adjacent pair of opposite-direction profiles, cleaned
// and ready for lag estimation.
type Pair struct {
	First  series.Bundle
	Second series.Bundle

	FirstDirection  series.Direction
	SecondDirection series.Direction
}

// Candidate records the outcome of considering profiles (Label, Label+1) as a
// calibration pair. Pair is nil when the candidate was dismissed.
type Candidate struct {
	Label  int // index of the first profile in the pair
	Pair   *Pair
	Reason DismissReason
}

// PairStats counts pair-selection outcomes for diagnostic reporting.
type PairStats struct {
	Considered       int
	Accepted         int
	SameDirection    int
	InsufficientData int
}

// SelectPairs walks consecutive profile labels (k, k+1) over a labeled
// deployment, cleaning both profiles down to the measurement arrays the
// estimator needs. Pairs with an empty cleaned side or with matching
// directions are dismissed with a reason; nothing here is an error.
// Iteration is stateless over the precomputed labels, so a caller may rerun
// it at will.
func SelectPairs(b series.Bundle, labels []int, required ...series.Var) ([]Candidate, PairStats) {
	maxLabel := 0
	for _, l := range labels {
		if l > maxLabel {
			maxLabel = l
		}
	}

	var stats PairStats
	candidates := make([]Candidate, 0, maxLabel)
	for k := 1; k < maxLabel; k++ {
		stats.Considered++
		cand := Candidate{Label: k}

		first, _ := b.SelectLabel(labels, k).Clean(required...)
		second, _ := b.SelectLabel(labels, k+1).Clean(required...)
		switch {
		case first.Len() == 0 || second.Len() == 0:
			cand.Reason = DismissInsufficientData
			stats.InsufficientData++
		case first.Direction() == second.Direction():
			cand.Reason = DismissSameDirection
			stats.SameDirection++
		default:
			cand.Pair = &Pair{
				First:           first,
				Second:          second,
				FirstDirection:  first.Direction(),
				SecondDirection: second.Direction(),
			}
			stats.Accepted++
		}
		candidates = append(candidates, cand)
	}
	return candidates, stats
}
