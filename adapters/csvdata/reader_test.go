package csvdata

import (
	"math"
	"strings"
	"testing"
)

func TestReadDeployment(t *testing.T) {
	input := `time,depth,temperature,conductivity,pitch
0,0.5,19.8,4.19,0.45
2,2.1,19.5,4.18,0.45
4,,19.1,NaN,0.44
6,6.0,18.8,4.16,
`
	b, err := ReadDeployment(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDeployment() error = %v", err)
	}
	if b.Len() != 4 {
		t.Fatalf("parsed %d samples, want 4", b.Len())
	}
	if b.Depth[1] != 2.1 || b.Temperature[0] != 19.8 {
		t.Fatalf("parsed values wrong: %+v", b)
	}
	if !math.IsNaN(b.Depth[2]) {
		t.Error("empty depth cell should parse as NaN")
	}
	if !math.IsNaN(b.Conductivity[2]) {
		t.Error("literal NaN should parse as NaN")
	}
	if !math.IsNaN(b.Pitch[3]) {
		t.Error("trailing empty pitch cell should parse as NaN")
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("parsed bundle should validate: %v", err)
	}
}

func TestReadDeploymentWithoutPitch(t *testing.T) {
	input := "time,depth,temperature,conductivity\n0,1,19,4.2\n2,3,18.8,4.19\n"
	b, err := ReadDeployment(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDeployment() error = %v", err)
	}
	if b.Pitch != nil {
		t.Error("pitch should stay nil when the column is absent")
	}
}

func TestReadDeploymentMissingColumn(t *testing.T) {
	input := "time,depth,temperature\n0,1,19\n"
	if _, err := ReadDeployment(strings.NewReader(input)); err == nil {
		t.Fatal("missing conductivity column should error")
	}
}
