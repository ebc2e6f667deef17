package fault

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
)

// Input is the request body shared by every endpoint that evaluates a
// single machine.
type Input struct {
	MachineParameters
	TEnd   float64 `json:"t_end_s"`
	TStep  float64 `json:"t_step_s"`
	Strict bool    `json:"strict"`
}

type Result struct {
	RunID      string            `json:"run_id"`
	Parameters MachineParameters `json:"parameters"`
	Grid       TimeGrid          `json:"grid"`
	Series     Series            `json:"series"`
	Summary    Summary           `json:"summary"`
	Notes      string            `json:"notes"`
}

// Grid returns the requested time grid, falling back to the defaults for
// zero fields.
func (in Input) Grid() (TimeGrid, error) {
	g := DefaultTimeGrid()
	if in.TEnd != 0 {
		g.Stop = in.TEnd
	}
	if in.TStep != 0 {
		g.Step = in.TStep
	}
	return NewTimeGrid(g.Start, g.Stop, g.Step)
}

// Evaluate runs the whole boundary for a request body: grid defaults,
// validation, optional ordering check, computation.
func Evaluate(in Input) (Result, error) {
	grid, err := in.Grid()
	if err != nil {
		return Result{}, err
	}
	return EvaluateOn(in.MachineParameters, grid, in.Strict)
}

// EvaluateOn is Evaluate with an explicit grid.
func EvaluateOn(p MachineParameters, grid TimeGrid, strict bool) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if strict {
		if err := p.CheckOrdering(); err != nil {
			return Result{}, err
		}
	}
	if err := grid.Validate(); err != nil {
		return Result{}, err
	}
	s, err := Calculate(p, grid)
	if err != nil {
		return Result{}, err
	}
	return Result{
		RunID:      uuid.NewString(),
		Parameters: p,
		Grid:       grid,
		Series:     s,
		Summary:    Summarize(p, s),
		Notes:      "Bolted three-phase fault, d-axis model, maximum dc offset.",
	}, nil
}

// StatusClientClosedRequest is reported when the caller went away before
// the work finished.
const StatusClientClosedRequest = 499

// StatusFor maps evaluation errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrDivisionByZero), errors.Is(err, ErrDomain):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type Handler struct{}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Evaluate(input)
	if err != nil {
		log.Printf("fault calc: %v", err)
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
