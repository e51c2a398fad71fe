// Package optimize adapts gonum's derivative-free optimizers to the
// MinimizerPort used by the lag estimators.
package optimize

import (
	"context"
	"errors"

	gopt "gonum.org/v1/gonum/optimize"

	"glidercal/ports"
)

// NelderMeadMinimizer runs a bounded Nelder-Mead simplex search. The zero
// value is not usable; construct with NewNelderMeadMinimizer.
type NelderMeadMinimizer struct {
	maxIterations  int
	maxEvaluations int
	tolerance      float64
}

// Option configures the minimizer.
type Option func(*NelderMeadMinimizer)

// WithBudget caps major iterations and function evaluations.
func WithBudget(iterations, evaluations int) Option {
	return func(m *NelderMeadMinimizer) {
		m.maxIterations = iterations
		m.maxEvaluations = evaluations
	}
}

// WithTolerance sets the absolute function-convergence tolerance.
func WithTolerance(tol float64) Option {
	return func(m *NelderMeadMinimizer) {
		m.tolerance = tol
	}
}

// NewNelderMeadMinimizer returns a minimizer with a budget suited to
// per-pair lag fits (the cost surface is cheap but the deployment loop calls
// this hundreds of times).
func NewNelderMeadMinimizer(opts ...Option) *NelderMeadMinimizer {
	m := &NelderMeadMinimizer{
		maxIterations:  500,
		maxEvaluations: 4000,
		tolerance:      1e-10,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Minimize implements ports.MinimizerPort. Failure of the simplex to settle
// within the budget is a normal Converged=false result; only caller misuse
// returns an error.
func (m *NelderMeadMinimizer) Minimize(ctx context.Context, fn ports.ObjectiveFunc, initial []float64) (ports.MinimizeResult, error) {
	if len(initial) == 0 {
		return ports.MinimizeResult{}, errors.New("minimize: empty initial guess")
	}
	if err := ctx.Err(); err != nil {
		return ports.MinimizeResult{}, err
	}

	problem := gopt.Problem{Func: fn}
	settings := &gopt.Settings{
		MajorIterations: m.maxIterations,
		FuncEvaluations: m.maxEvaluations,
		Converger: &gopt.FunctionConverge{
			Absolute:   m.tolerance,
			Iterations: 100,
		},
	}

	x0 := make([]float64, len(initial))
	copy(x0, initial)

	result, err := gopt.Minimize(problem, x0, settings, &gopt.NelderMead{})
	if err != nil || result == nil {
		// The simplex wandered off or stalled; report as non-convergence
		// so the pair is dismissed rather than the run aborted.
		return ports.MinimizeResult{Converged: false}, nil
	}

	converged := result.Status == gopt.FunctionConvergence ||
		result.Status == gopt.StepConvergence ||
		result.Status == gopt.Success
	return ports.MinimizeResult{
		Params:      result.X,
		Cost:        result.F,
		Converged:   converged,
		Evaluations: result.Stats.FuncEvaluations,
	}, nil
}
