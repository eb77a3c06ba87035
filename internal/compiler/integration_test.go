package compiler

import (
	"testing"

	"geoaid/internal/bytecode"
	"geoaid/internal/expand"
	"geoaid/internal/expr"
	"geoaid/internal/number"
	"geoaid/internal/unrolled"
)

// TestSharedPointOnLineAcrossViews is the integration scenario a maintainer
// flagged: a PointOnLine entity referenced from both the adjusted rules and
// the figure variables must dedupe to a single EntityId, and the resulting
// Record must compile cleanly through both program views, since
// PointOnLine/PointOnCircle's embedded VarIndex is only ever valid against
// the table it was created in.
func TestSharedPointOnLineAcrossViews(t *testing.T) {
	p, q := &unrolled.PointNode{Kind: unrolled.PointFree{}}, &unrolled.PointNode{Kind: unrolled.PointFree{}}
	line := &unrolled.LineNode{Kind: unrolled.LineFromPoints{P: p, Q: q}}
	onLine := &unrolled.PointNode{Kind: unrolled.PointOnLine{Line: line}}
	other := &unrolled.PointNode{Kind: unrolled.PointFree{}}

	prog := &unrolled.Program{
		Adjusted: unrolled.AdjustedData{
			Rules: []unrolled.Rule{
				{Kind: unrolled.RulePointEq{A: onLine, B: other}},
			},
		},
		Figure: unrolled.FigureData{
			// The same onLine node, reused for display: the defect case.
			Variables: []unrolled.FigureVariable{{Point: onLine}, {Point: p}, {Point: q}},
		},
	}

	result := expand.Expand(prog)

	// p, q, other, and onLine must each produce exactly one entity: 4 total,
	// never more (duplication would inflate this count).
	if result.Entities.Len() != 4 {
		t.Fatalf("expected 4 entities (p, q, other, onLine), got %d", result.Entities.Len())
	}

	ev, fig := CompileProgram(result.Record, result.FigureRoots, result.Entities)

	if len(ev.Adjustables) != 4 {
		t.Fatalf("expected 4 adjustables, got %d", len(ev.Adjustables))
	}

	// onLine's entity must be PointOnLine-shaped and must have compiled to
	// an OnLine instruction whose Line operand is within the evaluate
	// program's own memory bounds (not a stray index into some other
	// table).
	foundOnLine := false
	for _, instr := range ev.Base.Instructions {
		if onLineInstr, ok := instr.(bytecode.OnLine); ok {
			foundOnLine = true
			if onLineInstr.Line >= ev.Base.ReqMemorySize {
				t.Errorf("OnLine.Line %d is out of bounds for evaluate memory size %d", onLineInstr.Line, ev.Base.ReqMemorySize)
			}
		}
	}
	if !foundOnLine {
		t.Fatalf("expected an OnLine instruction in the evaluate program, got %#v", ev.Base.Instructions)
	}

	// The figure program must also compile without panicking and must
	// reference valid Locs: its entity list must resolve the same
	// PointOnLine entity against the SAME line, not a figure-local one.
	if len(fig.Entities) != 4 {
		t.Fatalf("expected 4 figure entity slots, got %d", len(fig.Entities))
	}
	for i, instr := range fig.Base.Instructions {
		if instr.Target() >= fig.Base.ReqMemorySize {
			t.Errorf("figure instruction %d target %d exceeds ReqMemorySize %d", i, instr.Target(), fig.Base.ReqMemorySize)
		}
	}
	if len(fig.Variables) != 3 {
		t.Fatalf("expected 3 figure variables (onLine, p, q), got %d", len(fig.Variables))
	}
}

// TestSharedPointOnCircleAcrossViews mirrors the above for PointOnCircle.
func TestSharedPointOnCircleAcrossViews(t *testing.T) {
	center := &unrolled.PointNode{Kind: unrolled.PointFree{}}
	radius := &unrolled.ScalarNode{Kind: unrolled.ScalarConst{Value: number.FromInt64(1)}}
	circle := &unrolled.CircleNode{Kind: unrolled.CircleConstruct{Center: center, Radius: radius}}
	onCircle := &unrolled.PointNode{Kind: unrolled.PointOnCircle{Circle: circle}}
	other := &unrolled.PointNode{Kind: unrolled.PointFree{}}

	prog := &unrolled.Program{
		Adjusted: unrolled.AdjustedData{
			Rules: []unrolled.Rule{
				{Kind: unrolled.RulePointEq{A: onCircle, B: other}},
			},
		},
		Figure: unrolled.FigureData{
			Variables: []unrolled.FigureVariable{{Point: onCircle}},
		},
	}

	result := expand.Expand(prog)

	// center, onCircle, other: 3 entities (radius is a Const, not an entity).
	if result.Entities.Len() != 3 {
		t.Fatalf("expected 3 entities, got %d", result.Entities.Len())
	}

	ev, fig := CompileProgram(result.Record, result.FigureRoots, result.Entities)

	foundOnCircle := false
	for _, instr := range ev.Base.Instructions {
		if onCircleInstr, ok := instr.(bytecode.OnCircle); ok {
			foundOnCircle = true
			if onCircleInstr.Circle >= ev.Base.ReqMemorySize {
				t.Errorf("OnCircle.Circle %d is out of bounds for evaluate memory size %d", onCircleInstr.Circle, ev.Base.ReqMemorySize)
			}
		}
	}
	if !foundOnCircle {
		t.Fatalf("expected an OnCircle instruction in the evaluate program, got %#v", ev.Base.Instructions)
	}

	for i, instr := range fig.Base.Instructions {
		if instr.Target() >= fig.Base.ReqMemorySize {
			t.Errorf("figure instruction %d target %d exceeds ReqMemorySize %d", i, instr.Target(), fig.Base.ReqMemorySize)
		}
	}
}
