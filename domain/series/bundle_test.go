package series

import (
	"errors"
	"math"
	"testing"

	"glidercal/domain/core"
)

var nan = math.NaN()

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		bundle  Bundle
		wantErr error
	}{
		{
			name:   "well formed",
			bundle: Bundle{Time: []float64{0, 1}, Depth: []float64{0, 5}},
		},
		{
			name:    "missing time",
			bundle:  Bundle{Depth: []float64{0, 5}},
			wantErr: core.ErrMissingField,
		},
		{
			name:    "missing depth",
			bundle:  Bundle{Time: []float64{0, 1}},
			wantErr: core.ErrMissingField,
		},
		{
			name: "temperature length mismatch",
			bundle: Bundle{
				Time:        []float64{0, 1},
				Depth:       []float64{0, 5},
				Temperature: []float64{20},
			},
			wantErr: core.ErrLengthMismatch,
		},
		{
			name: "pitch length mismatch",
			bundle: Bundle{
				Time:  []float64{0, 1},
				Depth: []float64{0, 5},
				Pitch: []float64{0.4, 0.4, 0.4},
			},
			wantErr: core.ErrLengthMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bundle.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClean(t *testing.T) {
	b := Bundle{
		Time:         []float64{0, 1, 2, 3, 4},
		Depth:        []float64{0, nan, 10, 15, 20},
		Temperature:  []float64{20, 19, nan, 17, 16},
		Conductivity: []float64{4.0, 4.0, 4.0, nan, 4.0},
	}

	cleaned, idx := b.Clean(VarTemperature)
	if got, want := cleaned.Len(), 3; got != want {
		t.Fatalf("cleaned length = %d, want %d", got, want)
	}
	wantIdx := []int{0, 3, 4}
	for i, w := range wantIdx {
		if idx[i] != w {
			t.Errorf("surviving index %d = %d, want %d", i, idx[i], w)
		}
	}
	// Conductivity rides along even when not required.
	if !math.IsNaN(cleaned.Conductivity[1]) {
		t.Errorf("conductivity at surviving row 1 = %v, want NaN carried through", cleaned.Conductivity[1])
	}

	cleaned, _ = b.Clean(VarTemperature, VarConductivity)
	if got, want := cleaned.Len(), 2; got != want {
		t.Fatalf("cleaned length requiring both = %d, want %d", got, want)
	}
}

func TestCleanAllNaN(t *testing.T) {
	b := Bundle{
		Time:        []float64{0, 1, 2},
		Depth:       []float64{0, 5, 10},
		Temperature: []float64{nan, nan, nan},
	}
	cleaned, idx := b.Clean(VarTemperature)
	if cleaned.Len() != 0 || len(idx) != 0 {
		t.Fatalf("all-NaN measurement should clean to empty, got %d samples", cleaned.Len())
	}
}

func TestDirectionAntisymmetric(t *testing.T) {
	down := Bundle{
		Time:  []float64{0, 1, 2, 3},
		Depth: []float64{2, 8, 15, 22},
	}
	if down.Direction() != DirectionDown {
		t.Fatalf("descending bundle classified as %v", down.Direction())
	}

	// Reversing the sample order must flip the classification.
	n := down.Len()
	rev := Bundle{Time: make([]float64, n), Depth: make([]float64, n)}
	for i := 0; i < n; i++ {
		rev.Time[i] = down.Time[n-1-i]
		rev.Depth[i] = down.Depth[n-1-i]
	}
	if rev.Direction() != DirectionUp {
		t.Fatalf("reversed bundle classified as %v, want up", rev.Direction())
	}

	if (Bundle{}).Direction() != DirectionUnknown {
		t.Fatal("empty bundle should classify as unknown")
	}
}

func TestSelectLabel(t *testing.T) {
	b := Bundle{
		Time:  []float64{0, 1, 2, 3, 4},
		Depth: []float64{0, 5, 10, 5, 0},
	}
	labels := []int{0, 1, 1, 2, 2}

	p1 := b.SelectLabel(labels, 1)
	if p1.Len() != 2 || p1.Depth[0] != 5 || p1.Depth[1] != 10 {
		t.Fatalf("label 1 selection wrong: %+v", p1)
	}
	if b.SelectLabel(labels, 9).Len() != 0 {
		t.Fatal("missing label should select nothing")
	}
}
