package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one item in a stage run.
type Outcome struct {
	ID   string
	Name string
	Err  error
}

// OK reports whether the item went through.
func (o Outcome) OK() bool { return o.Err == nil }

// Report collects the outcomes of a stage run in input order.
type Report struct {
	Stage    Stage
	Outcomes []Outcome
}

// Succeeded returns the ids that went through.
func (r Report) Succeeded() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.OK() {
			out = append(out, o.ID)
		}
	}
	return out
}

// Failed returns the outcomes that carry an error.
func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Err joins every per-item error, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		key := o.ID
		if key == "" {
			key = o.Name
		}
		errs = append(errs, fmt.Errorf("%s: %w", key, o.Err))
	}
	return errors.Join(errs...)
}

// Progress is reported after each finished item.
type Progress struct {
	Stage Stage
	Done  int
	Total int
}

// Percent is Done as a whole percentage of Total.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 100
	}
	return p.Done * 100 / p.Total
}

// ProgressFunc receives progress updates. Calls are serialized.
type ProgressFunc func(Progress)

// Runner applies a function to a list of items, one at a time or with
// bounded parallelism. A failing item never stops its siblings; a
// cancelled context marks the remaining items as failed.
type Runner struct {
	Concurrency int
}

// Each runs fn for indices 0..n-1 and returns outcomes in index order.
func (r Runner) Each(ctx context.Context, stage Stage, n int, fn func(ctx context.Context, i int) Outcome, progress ProgressFunc) Report {
	rep := Report{Stage: stage, Outcomes: make([]Outcome, n)}

	var mu sync.Mutex
	done := 0
	finish := func(i int, o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		rep.Outcomes[i] = o
		done++
		if progress != nil {
			progress(Progress{Stage: stage, Done: done, Total: n})
		}
	}

	if r.Concurrency <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				finish(i, Outcome{Err: err})
				continue
			}
			finish(i, fn(ctx, i))
		}
		return rep
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				finish(i, Outcome{Err: err})
				return nil
			}
			finish(i, fn(gctx, i))
			return nil
		})
	}
	_ = g.Wait()
	return rep
}

// Run applies fn to each id.
func (r Runner) Run(ctx context.Context, stage Stage, ids []string, fn func(ctx context.Context, id string) error, progress ProgressFunc) Report {
	rep := r.Each(ctx, stage, len(ids), func(ctx context.Context, i int) Outcome {
		return Outcome{ID: ids[i], Err: fn(ctx, ids[i])}
	}, progress)
	for i := range rep.Outcomes {
		rep.Outcomes[i].ID = ids[i]
	}
	return rep
}
