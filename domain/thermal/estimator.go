package thermal

import (
	"context"

	"glidercal/domain/core"
	"glidercal/domain/series"
	"glidercal/ports"
)

// Estimate is a successful per-pair parameter fit.
type Estimate struct {
	Params      []float64
	Cost        float64
	Evaluations int
}

// EstimatorOptions tune the per-pair fit.
type EstimatorOptions struct {
	// GridLevels is the number of depth levels the mismatch cost is
	// evaluated on. Zero means the default of 50.
	GridLevels int
	// FirstGuess overrides the initial parameter vector; its length must
	// match the model being fitted.
	FirstGuess []float64
}

// Estimator fits lag-correction parameters to one cleaned, opposite-direction
// profile pair at a time. It owns no mutable state across calls, so a single
// Estimator may serve concurrent pairs.
type Estimator struct {
	minimizer ports.MinimizerPort
	opts      EstimatorOptions
}

// NewEstimator wraps a derivative-free minimizer backend.
func NewEstimator(minimizer ports.MinimizerPort, opts EstimatorOptions) *Estimator {
	if opts.GridLevels <= 0 {
		opts.GridLevels = 50
	}
	return &Estimator{minimizer: minimizer, opts: opts}
}

// EstimateThermalLag fits the four-parameter thermal lag model to a profile
// pair. Degenerate inputs and non-convergence surface as data-quality errors
// (see core.IsDataQualityError); they reject the pair, never the run.
func (e *Estimator) EstimateThermalLag(ctx context.Context, first, second series.Bundle) (Estimate, error) {
	cost, err := NewThermalLagCost(first, second, e.opts.GridLevels)
	if err != nil {
		return Estimate{}, err
	}
	guess := e.opts.FirstGuess
	if guess == nil {
		guess = DefaultFirstGuess.Vector()
	}
	return e.minimize(ctx, cost, guess)
}

// EstimateSensorLag fits the single sensor time constant variant.
func (e *Estimator) EstimateSensorLag(ctx context.Context, first, second series.Bundle) (Estimate, error) {
	cost, err := NewSensorLagCost(first, second, e.opts.GridLevels)
	if err != nil {
		return Estimate{}, err
	}
	guess := e.opts.FirstGuess
	if guess == nil {
		guess = []float64{0.5}
	}
	return e.minimize(ctx, cost, guess)
}

func (e *Estimator) minimize(ctx context.Context, cost ports.ObjectiveFunc, guess []float64) (Estimate, error) {
	res, err := e.minimizer.Minimize(ctx, cost, guess)
	if err != nil {
		return Estimate{}, err
	}
	if !res.Converged {
		return Estimate{}, core.ErrNoConvergence
	}
	return Estimate{Params: res.Params, Cost: res.Cost, Evaluations: res.Evaluations}, nil
}
