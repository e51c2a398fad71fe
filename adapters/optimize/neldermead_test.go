package optimize

import (
	"context"
	"math"
	"testing"
)

func TestMinimizeQuadratic(t *testing.T) {
	m := NewNelderMeadMinimizer()

	bowl := func(x []float64) float64 {
		return (x[0]-3)*(x[0]-3) + (x[1]+1)*(x[1]+1)
	}

	res, err := m.Minimize(context.Background(), bowl, []float64{0, 0})
	if err != nil {
		t.Fatalf("Minimize() error = %v", err)
	}
	if !res.Converged {
		t.Fatal("quadratic bowl should converge")
	}
	if math.Abs(res.Params[0]-3) > 1e-3 || math.Abs(res.Params[1]+1) > 1e-3 {
		t.Fatalf("minimum at %v, want (3, -1)", res.Params)
	}
	if res.Cost > 1e-6 {
		t.Fatalf("achieved cost %v, want near zero", res.Cost)
	}
	if res.Evaluations <= 0 {
		t.Fatal("evaluation count should be reported")
	}
}

func TestMinimizeEmptyGuess(t *testing.T) {
	m := NewNelderMeadMinimizer()
	if _, err := m.Minimize(context.Background(), func([]float64) float64 { return 0 }, nil); err == nil {
		t.Fatal("empty initial guess should error")
	}
}

func TestMinimizeCancelledContext(t *testing.T) {
	m := NewNelderMeadMinimizer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Minimize(ctx, func([]float64) float64 { return 0 }, []float64{1}); err == nil {
		t.Fatal("cancelled context should error")
	}
}
