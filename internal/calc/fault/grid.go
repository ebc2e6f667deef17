package fault

import (
	"fmt"
	"math"
)

const (
	DefaultTimeEnd  = 3.0
	DefaultTimeStep = 0.01

	// MaxSamples bounds a single grid; every series is held in memory.
	MaxSamples = 1_000_000
)

// TimeGrid is an evenly spaced, inclusive range of sample instants.
type TimeGrid struct {
	Start float64 `json:"start_s"`
	Stop  float64 `json:"stop_s"`
	Step  float64 `json:"step_s"`
}

// DefaultTimeGrid covers 0..3 s at 10 ms, 301 points.
func DefaultTimeGrid() TimeGrid {
	return TimeGrid{Start: 0, Stop: DefaultTimeEnd, Step: DefaultTimeStep}
}

func NewTimeGrid(start, stop, step float64) (TimeGrid, error) {
	g := TimeGrid{Start: start, Stop: stop, Step: step}
	if err := g.Validate(); err != nil {
		return TimeGrid{}, err
	}
	return g, nil
}

func (g TimeGrid) Validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{{"t-start", g.Start}, {"t-end", g.Stop}, {"t-step", g.Step}} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return &ValidationError{Field: v.name, Reason: "must be finite"}
		}
	}
	if g.Step <= 0 {
		return &ValidationError{Field: "t-step", Reason: "must be positive"}
	}
	if g.Stop < g.Start {
		return &ValidationError{Field: "t-end", Reason: "must not precede the start time"}
	}
	if n := math.Floor((g.Stop-g.Start)/g.Step+1e-9) + 1; n > MaxSamples || math.IsInf(n, 0) || math.IsNaN(n) {
		return &ValidationError{Field: "t-step", Reason: fmt.Sprintf("grid exceeds %d samples", MaxSamples)}
	}
	return nil
}

// Len is the number of instants, both ends included. The small epsilon keeps
// 3/0.01 from rounding down to 299.
func (g TimeGrid) Len() int {
	if g.Validate() != nil {
		return 0
	}
	return int(math.Floor((g.Stop-g.Start)/g.Step+1e-9)) + 1
}

func (g TimeGrid) At(i int) float64 { return g.Start + float64(i)*g.Step }

func (g TimeGrid) Points() []float64 {
	pts := make([]float64, g.Len())
	for i := range pts {
		pts[i] = g.At(i)
	}
	return pts
}
