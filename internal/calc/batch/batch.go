package batch

import (
	"context"
	"fmt"
	"runtime"

	"Shortcircuit/internal/calc/fault"

	"golang.org/x/sync/errgroup"
)

// MaxItems bounds one request; each item may hold up to fault.MaxSamples.
const MaxItems = 100

type BatchInput struct {
	Items []fault.Input `json:"items"`
}

type ItemResult struct {
	Index   int           `json:"index"`
	Summary fault.Summary `json:"summary"`
}

type BatchResult struct {
	Results []ItemResult `json:"results"`
}

// ItemError reports which machine of the batch failed.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string { return fmt.Sprintf("item %d: %v", e.Index, e.Err) }
func (e *ItemError) Unwrap() error { return e.Err }

// Calculate evaluates every item with at most workers machines in flight.
// Each goroutine writes only its own slot of the result slice. The first
// failure cancels the rest.
func Calculate(ctx context.Context, in BatchInput, workers int) (BatchResult, error) {
	if len(in.Items) == 0 {
		return BatchResult{}, fmt.Errorf("no items: %w", fault.ErrInvalidInput)
	}
	if len(in.Items) > MaxItems {
		return BatchResult{}, fmt.Errorf("%d items, at most %d allowed: %w", len(in.Items), MaxItems, fault.ErrInvalidInput)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := BatchResult{Results: make([]ItemResult, len(in.Items))}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range in.Items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := fault.Evaluate(item)
			if err != nil {
				return &ItemError{Index: i, Err: err}
			}
			out.Results[i] = ItemResult{Index: i, Summary: res.Summary}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}
	return out, nil
}
