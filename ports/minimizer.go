package ports

import "context"

// ObjectiveFunc evaluates the cost of a candidate parameter vector.
type ObjectiveFunc func(params []float64) float64

// MinimizeResult is the outcome of a derivative-free minimization.
type MinimizeResult struct {
	Params      []float64
	Cost        float64
	Converged   bool
	Evaluations int
}

// MinimizerPort hides the nonlinear optimizer backend behind a small
// interface so the estimator logic stays independent of the search method.
// Implementations must treat failure to converge within their budget as a
// normal result (Converged=false), not an error.
type MinimizerPort interface {
	Minimize(ctx context.Context, fn ObjectiveFunc, initial []float64) (MinimizeResult, error)
}
