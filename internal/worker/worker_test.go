package worker

import (
	"context"
	"errors"
	"testing"

	"geoaid/internal/bytecode"
)

func sampleProgram() *bytecode.EvaluateProgram {
	return &bytecode.EvaluateProgram{
		Base: bytecode.Program{
			ReqMemorySize: 5,
			Constants: []bytecode.Value{
				bytecode.Real{V: 0},
				bytecode.Real{V: 0},
				bytecode.Real{V: 1.5}, // a Const slot, e.g.
			},
		},
		AdjCount: 2,
	}
}

func TestRunWorkersPrivateMemoryIsolation(t *testing.T) {
	prog := sampleProgram()

	results, err := RunWorkers(context.Background(), prog, 4, func(worker int, mem []bytecode.Value) {
		mem[0] = bytecode.Real{V: float64(worker)}
	})
	if err != nil {
		t.Fatalf("RunWorkers returned error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	for i, mem := range results {
		if len(mem) != int(prog.Base.ReqMemorySize) {
			t.Errorf("worker %d memory size = %d, want %d", i, len(mem), prog.Base.ReqMemorySize)
		}
		got, ok := mem[0].(bytecode.Real)
		if !ok || got.V != float64(i) {
			t.Errorf("worker %d slot 0 = %#v, want Real{%d}", i, mem[0], i)
		}
		// Unmutated constant slot must still carry the original value,
		// proving each worker copied rather than shared the base program.
		tail, ok := mem[2].(bytecode.Real)
		if !ok || tail.V != 1.5 {
			t.Errorf("worker %d slot 2 = %#v, want the untouched constant 1.5", i, mem[2])
		}
	}
}

func TestRunWorkersMutationsDoNotCrossTalk(t *testing.T) {
	prog := sampleProgram()

	results, err := RunWorkers(context.Background(), prog, 3, func(worker int, mem []bytecode.Value) {
		mem[1] = bytecode.Real{V: float64(worker) * 10}
	})
	if err != nil {
		t.Fatalf("RunWorkers returned error: %v", err)
	}

	seen := make(map[float64]bool)
	for _, mem := range results {
		v := mem[1].(bytecode.Real).V
		if seen[v] {
			t.Errorf("value %v written by more than one worker, memory is not private", v)
		}
		seen[v] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 distinct private values, got %d", len(seen))
	}
}

func TestRunWorkersRespectsCanceledContext(t *testing.T) {
	prog := sampleProgram()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunWorkers(ctx, prog, 2, func(worker int, mem []bytecode.Value) {})
	if err == nil {
		t.Fatal("expected an error from a pre-canceled context, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunWorkersZeroWorkers(t *testing.T) {
	prog := sampleProgram()
	results, err := RunWorkers(context.Background(), prog, 0, func(worker int, mem []bytecode.Value) {
		t.Fatal("seed should never be called with n=0")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}
