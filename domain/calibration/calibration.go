// Package calibration holds the deployment-wide calibration result model:
// per-pair parameter estimates, dismissal bookkeeping, and the robust
// aggregation into a single best-guess parameter vector.
package calibration

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"glidercal/domain/core"
)

// Mode selects which lag model a run estimates.
type Mode string

const (
	// ModeThermalLag fits the four-parameter conductivity-cell thermal
	// inertia model [alphaOffset, alphaSlope, tauOffset, tauSlope].
	ModeThermalLag Mode = "thermal"
	// ModeSensorLag fits a single first-order sensor time constant.
	ModeSensorLag Mode = "sensor"
)

// ParamDim returns the parameter vector length for the mode.
func (m Mode) ParamDim() int {
	if m == ModeSensorLag {
		return 1
	}
	return 4
}

// Reason codes for per-pair outcomes.
type Reason string

const (
	ReasonAccepted          Reason = "accepted"
	ReasonSameDirection     Reason = "same_direction"
	ReasonInsufficientData  Reason = "insufficient_data"
	ReasonInsufficientDepth Reason = "insufficient_depth_levels"
	ReasonNoConvergence     Reason = "no_convergence"
)

// PairOutcome records what happened to one candidate profile pair. Params is
// nil unless Reason is ReasonAccepted.
type PairOutcome struct {
	PairIndex int       `json:"pair_index"` // label of the first profile in the pair
	Params    []float64 `json:"params,omitempty"`
	Cost      float64   `json:"cost"`
	Reason    Reason    `json:"reason"`
}

// Diagnostics aggregates deployment-wide counters. These are explicit return
// values rather than printed side effects so callers can assert on them.
type Diagnostics struct {
	ProfilesFound    int `json:"profiles_found"`
	ProfilesRejected int `json:"profiles_rejected"`

	PairsConsidered           int `json:"pairs_considered"`
	PairsAccepted             int `json:"pairs_accepted"`
	DismissedSameDirection    int `json:"dismissed_same_direction"`
	DismissedInsufficientData int `json:"dismissed_insufficient_data"`
	DismissedEstimation       int `json:"dismissed_estimation"`
}

// Run is a persisted calibration run.
type Run struct {
	ID          core.RunID
	Deployment  string
	Mode        Mode
	CreatedAt   time.Time
	Diagnostics Diagnostics
	BestGuess   []float64
	Outcomes    []PairOutcome
}

// RunSummary is the listing view of a persisted run.
type RunSummary struct {
	ID            core.RunID
	Deployment    string
	Mode          Mode
	CreatedAt     time.Time
	PairsAccepted int
}

// Aggregate reduces the accepted per-pair parameter vectors to a single
// best-guess vector via the coordinate-wise median. With zero accepted pairs
// it returns the NaN sentinel vector of length dim; that is an explicit
// failure state for the caller to inspect, never an error.
func Aggregate(outcomes []PairOutcome, dim int) []float64 {
	var accepted [][]float64
	for _, o := range outcomes {
		if o.Reason == ReasonAccepted && len(o.Params) == dim {
			accepted = append(accepted, o.Params)
		}
	}

	best := make([]float64, dim)
	if len(accepted) == 0 {
		for i := range best {
			best[i] = math.NaN()
		}
		return best
	}

	column := make([]float64, len(accepted))
	for i := 0; i < dim; i++ {
		for j, v := range accepted {
			column[j] = v[i]
		}
		best[i] = median(column)
	}
	return best
}

func median(xs []float64) float64 {
	m, err := stats.Median(xs)
	if err != nil {
		return math.NaN()
	}
	return m
}
