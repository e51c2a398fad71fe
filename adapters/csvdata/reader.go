// Package csvdata reads deployment time series from CSV files produced by
// the upstream format-conversion tooling. Proprietary glider binary formats
// are out of scope; by the time data reaches this reader it is plain columns.
package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"glidercal/domain/series"
)

// Column names recognized in the header, case-insensitive. time, depth,
// temperature and conductivity are required; pitch is optional.
var columns = []string{"time", "depth", "temperature", "conductivity", "pitch"}

// ReadDeployment parses a CSV stream into a sample bundle. Empty cells and
// the literal strings "nan"/"NaN" become NaN samples, which the calibration
// pipeline treats as missing data.
func ReadDeployment(r io.Reader) (series.Bundle, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return series.Bundle{}, fmt.Errorf("reading CSV header: %w", err)
	}

	index := map[string]int{}
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range columns[:4] {
		if _, ok := index[name]; !ok {
			return series.Bundle{}, fmt.Errorf("CSV header missing required column %q", name)
		}
	}
	_, hasPitch := index["pitch"]

	var b series.Bundle
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return series.Bundle{}, fmt.Errorf("reading CSV line %d: %w", line+1, err)
		}
		line++

		b.Time = append(b.Time, cell(record, index["time"]))
		b.Depth = append(b.Depth, cell(record, index["depth"]))
		b.Temperature = append(b.Temperature, cell(record, index["temperature"]))
		b.Conductivity = append(b.Conductivity, cell(record, index["conductivity"]))
		if hasPitch {
			b.Pitch = append(b.Pitch, cell(record, index["pitch"]))
		}
	}
	return b, nil
}

// ReadDeploymentFile opens and parses a deployment CSV.
func ReadDeploymentFile(path string) (series.Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return series.Bundle{}, fmt.Errorf("opening deployment file: %w", err)
	}
	defer f.Close()
	return ReadDeployment(f)
}

func cell(record []string, i int) float64 {
	if i >= len(record) {
		return math.NaN()
	}
	s := strings.TrimSpace(record[i])
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
