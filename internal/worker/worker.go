// Package worker provides a harness that exercises the one promise a
// compiled program owes the runtime (spec.md §5): once handed to the
// optimizer, a program's constants and instructions are read-only, and
// each worker evaluating a candidate placement owns a private slot array
// sized Base.ReqMemorySize. Grounded on the teacher's internal/concurrency
// worker-pool shape, replacing its generic Job/Result queue with a fixed
// fan-out over per-worker private memory and golang.org/x/sync/errgroup in
// place of the teacher's hand-rolled WaitGroup/channel bookkeeping.
//
// This package does not implement the optimizer or a bytecode interpreter
// (both remain out of scope per spec.md §1); it only exercises the
// memory-ownership contract the core promises.
package worker

import (
	"context"

	"golang.org/x/sync/errgroup"

	"geoaid/internal/bytecode"
)

// RunWorkers spawns n goroutines against the shared, read-only prog. Each
// copies prog.Base.Constants into its own private []bytecode.Value slot
// array sized prog.Base.ReqMemorySize, then calls seed to perturb that
// worker's adjustable prefix (typically writing a candidate placement into
// slots [0, AdjCount)). It returns every worker's private memory, indexed
// by worker number, for the caller (or a test) to inspect.
func RunWorkers(ctx context.Context, prog *bytecode.EvaluateProgram, n int, seed func(worker int, mem []bytecode.Value)) ([][]bytecode.Value, error) {
	results := make([][]bytecode.Value, n)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			mem := make([]bytecode.Value, prog.Base.ReqMemorySize)
			copy(mem, prog.Base.Constants)
			seed(i, mem)
			results[i] = mem
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
