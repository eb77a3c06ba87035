package compiler

import (
	"testing"

	"geoaid/internal/bytecode"
	"geoaid/internal/expr"
	"geoaid/internal/number"
)

// S1: PointEq(FreePoint A, FreePoint B) -> 2 Point adjustables, 1 rule,
// weights = [0.5, 0.5], exactly one EqualComplex(0, 1, target=2).
func TestScenarioS1PointEqTwoFreePoints(t *testing.T) {
	entities := &expr.EntityTable{}
	entities.Add(expr.FreePoint{})
	entities.Add(expr.FreePoint{})

	record := expr.Record{
		Variables: []expr.ExprKind{expr.Entity{ID: 0}, expr.Entity{ID: 1}},
		Rules: []expr.Rule{
			{Kind: expr.PointEq{A: 0, B: 1}, Entities: map[expr.EntityId]struct{}{0: {}, 1: {}}},
		},
	}

	ev := compileEvaluateProgram(record, entities)

	if len(ev.Adjustables) != 2 {
		t.Fatalf("expected 2 adjustables, got %d", len(ev.Adjustables))
	}
	for i, adj := range ev.Adjustables {
		if _, ok := adj.(bytecode.TemplatePoint); !ok {
			t.Errorf("adjustable %d should be TemplatePoint, got %T", i, adj)
		}
	}
	if ev.RuleCount != 1 {
		t.Errorf("RuleCount = %d, want 1", ev.RuleCount)
	}
	if len(ev.Weights) != 2 || ev.Weights[0] != 0.5 || ev.Weights[1] != 0.5 {
		t.Errorf("weights = %v, want [0.5 0.5]", ev.Weights)
	}
	if len(ev.Base.Instructions) != 1 {
		t.Fatalf("expected exactly 1 instruction, got %d", len(ev.Base.Instructions))
	}
	eq, ok := ev.Base.Instructions[0].(bytecode.EqualComplex)
	if !ok {
		t.Fatalf("expected EqualComplex, got %T", ev.Base.Instructions[0])
	}
	if eq.A != 0 || eq.B != 1 || eq.To != 2 {
		t.Errorf("EqualComplex = %+v, want A=0 B=1 To=2", eq)
	}
}

// S4: Sum{plus:[a], minus:[b,c]} -> exactly three instructions: Sum([b,c]
// -> t), Negation(t -> t), Sum([t, a] -> t), all sharing target t.
func TestScenarioS4SumSequence(t *testing.T) {
	entities := &expr.EntityTable{}
	entities.Add(expr.FreeReal{}) // a
	entities.Add(expr.FreeReal{}) // b
	entities.Add(expr.FreeReal{}) // c

	record := expr.Record{
		Variables: []expr.ExprKind{
			expr.Entity{ID: 0}, // VarIndex 0 = a
			expr.Entity{ID: 1}, // VarIndex 1 = b
			expr.Entity{ID: 2}, // VarIndex 2 = c
			expr.Sum{Plus: []expr.VarIndex{0}, Minus: []expr.VarIndex{1, 2}},
		},
	}

	c := newCompiler(record, entities, false, 0)
	for id := 0; id < entities.Len(); id++ {
		c.compileEntity(expr.EntityId(id))
	}
	loc := c.compileVarIndex(3)

	if len(c.instructions) != 3 {
		t.Fatalf("expected exactly 3 instructions for the Sum sequence, got %d: %#v", len(c.instructions), c.instructions)
	}

	sum1, ok := c.instructions[0].(bytecode.Sum)
	if !ok {
		t.Fatalf("instruction 0 should be Sum, got %T", c.instructions[0])
	}
	if len(sum1.Items) != 2 || sum1.Items[0] != 1 || sum1.Items[1] != 2 {
		t.Errorf("first Sum should be over minus=[b,c]=[1,2], got %v", sum1.Items)
	}

	neg, ok := c.instructions[1].(bytecode.Negation)
	if !ok {
		t.Fatalf("instruction 1 should be Negation, got %T", c.instructions[1])
	}
	if neg.To != sum1.To {
		t.Errorf("Negation should target the same slot as the first Sum: %d vs %d", neg.To, sum1.To)
	}

	sum2, ok := c.instructions[2].(bytecode.Sum)
	if !ok {
		t.Fatalf("instruction 2 should be Sum, got %T", c.instructions[2])
	}
	if sum2.To != sum1.To {
		t.Errorf("final Sum should reuse target %d, got %d", sum1.To, sum2.To)
	}
	if len(sum2.Items) != 2 || sum2.Items[0] != sum1.To || sum2.Items[1] != 0 {
		t.Errorf("final Sum should be over [t, a]=[%d, 0], got %v", sum1.To, sum2.Items)
	}
	if loc != sum1.To {
		t.Errorf("compileVarIndex should return the shared target %d, got %d", sum1.To, loc)
	}
}

// S5: Alternative([Lt(x,y), Gt(x,y)]) -> one MaxReal; the two child
// quality outputs live in main-cursor slots, not the rule block.
func TestScenarioS5AlternativeAltMode(t *testing.T) {
	entities := &expr.EntityTable{}
	entities.Add(expr.FreeReal{}) // x
	entities.Add(expr.FreeReal{}) // y

	record := expr.Record{
		Variables: []expr.ExprKind{expr.Entity{ID: 0}, expr.Entity{ID: 1}},
		Rules: []expr.Rule{
			{
				Kind: expr.Alternative{Items: []expr.Rule{
					{Kind: expr.Lt{A: 0, B: 1}},
					{Kind: expr.Gt{A: 0, B: 1}},
				}},
				Entities: map[expr.EntityId]struct{}{0: {}, 1: {}},
			},
		},
	}

	ev := compileEvaluateProgram(record, entities)

	if len(ev.Base.Instructions) != 3 {
		t.Fatalf("expected 3 instructions (Less, Greater, MaxReal), got %d", len(ev.Base.Instructions))
	}

	less, ok := ev.Base.Instructions[0].(bytecode.Less)
	if !ok {
		t.Fatalf("instruction 0 should be Less, got %T", ev.Base.Instructions[0])
	}
	greater, ok := ev.Base.Instructions[1].(bytecode.Greater)
	if !ok {
		t.Fatalf("instruction 1 should be Greater, got %T", ev.Base.Instructions[1])
	}
	max, ok := ev.Base.Instructions[2].(bytecode.MaxReal)
	if !ok {
		t.Fatalf("instruction 2 should be MaxReal, got %T", ev.Base.Instructions[2])
	}

	// rule block is [adjCount+constCount, adjCount+constCount+ruleCount);
	// here adjCount=2, constCount=0, ruleCount=1, so the rule block is {2}
	// and everything else (>=3) is main-cursor.
	ruleBlockStart := bytecode.Loc(2)
	ruleBlockEnd := ruleBlockStart + 1
	if less.To >= ruleBlockStart && less.To < ruleBlockEnd {
		t.Errorf("Lt child output %d must not live in the rule block [%d,%d)", less.To, ruleBlockStart, ruleBlockEnd)
	}
	if greater.To >= ruleBlockStart && greater.To < ruleBlockEnd {
		t.Errorf("Gt child output %d must not live in the rule block [%d,%d)", greater.To, ruleBlockStart, ruleBlockEnd)
	}
	if !(max.To >= ruleBlockStart && max.To < ruleBlockEnd) {
		t.Errorf("MaxReal target %d must live in the rule block [%d,%d)", max.To, ruleBlockStart, ruleBlockEnd)
	}
	if len(max.Items) != 2 || max.Items[0] != less.To || max.Items[1] != greater.To {
		t.Errorf("MaxReal items = %v, want [%d %d]", max.Items, less.To, greater.To)
	}
}

// S6: two structurally equal rule sides sharing node identity compile to
// the same Loc, so the Equal* instruction has A == B.
func TestScenarioS6SharedSideIdentity(t *testing.T) {
	entities := &expr.EntityTable{}
	entities.Add(expr.FreeReal{})

	record := expr.Record{
		Variables: []expr.ExprKind{expr.Entity{ID: 0}},
		Rules: []expr.Rule{
			{Kind: expr.NumberEq{A: 0, B: 0}, Entities: map[expr.EntityId]struct{}{0: {}}},
		},
	}

	ev := compileEvaluateProgram(record, entities)
	eq := ev.Base.Instructions[0].(bytecode.EqualReal)
	if eq.A != eq.B {
		t.Errorf("shared VarIndex sides should compile to equal Locs: A=%d B=%d", eq.A, eq.B)
	}
}

// Invariant 7: Σ weights in a rule's row = 1 when E != ∅, else 0.
func TestWeightRowSumsToOne(t *testing.T) {
	entities := &expr.EntityTable{}
	entities.Add(expr.FreeReal{})
	entities.Add(expr.FreeReal{})
	entities.Add(expr.FreeReal{})

	record := expr.Record{
		Variables: []expr.ExprKind{expr.Entity{ID: 0}, expr.Entity{ID: 1}, expr.Entity{ID: 2}},
		Rules: []expr.Rule{
			{Kind: expr.NumberEq{A: 0, B: 1}, Entities: map[expr.EntityId]struct{}{0: {}, 1: {}}},
			{Kind: expr.Bias{}, Entities: map[expr.EntityId]struct{}{}},
		},
	}

	ev := compileEvaluateProgram(record, entities)
	row0 := ev.Row(0)
	var sum0 float64
	for _, w := range row0 {
		sum0 += w
	}
	if sum0 != 1.0 {
		t.Errorf("rule 0 weight row sums to %v, want 1.0", sum0)
	}

	row1 := ev.Row(1)
	for _, w := range row1 {
		if w != 0 {
			t.Errorf("bias rule (zero entities) should have an all-zero weight row, got %v", row1)
		}
	}
	if len(ev.Biases) != 1 {
		t.Errorf("expected 1 bias slot recorded, got %d", len(ev.Biases))
	}
}

// Memory bounds: every instruction target lies below ReqMemorySize, and
// ReqMemorySize covers the constant pool plus the rule-quality block.
func TestMemoryInvariants(t *testing.T) {
	entities := &expr.EntityTable{}
	entities.Add(expr.FreePoint{})
	entities.Add(expr.FreePoint{})

	record := expr.Record{
		Variables: []expr.ExprKind{
			expr.Entity{ID: 0},
			expr.Entity{ID: 1},
			expr.Const{Value: number.FromInt64(1)},
			expr.PointPointDistance{P: 0, Q: 1},
		},
		Rules: []expr.Rule{
			{Kind: expr.NumberEq{A: 3, B: 2}, Entities: map[expr.EntityId]struct{}{0: {}, 1: {}}},
		},
	}

	ev := compileEvaluateProgram(record, entities)

	for i, instr := range ev.Base.Instructions {
		if instr.Target() >= ev.Base.ReqMemorySize {
			t.Errorf("instruction %d target %d exceeds ReqMemorySize %d", i, instr.Target(), ev.Base.ReqMemorySize)
		}
	}

	if ev.Base.ReqMemorySize < bytecode.Loc(len(ev.Base.Constants))+bytecode.Loc(ev.RuleCount) {
		t.Errorf("ReqMemorySize %d should be >= constants(%d) + ruleCount(%d)", ev.Base.ReqMemorySize, len(ev.Base.Constants), ev.RuleCount)
	}
}

// Boundary case: zero entities, zero rules.
func TestZeroEntitiesZeroRules(t *testing.T) {
	entities := &expr.EntityTable{}
	record := expr.Record{
		Variables: []expr.ExprKind{expr.Const{Value: number.FromInt64(5)}},
	}

	ev := compileEvaluateProgram(record, entities)
	if ev.RuleCount != 0 {
		t.Errorf("RuleCount = %d, want 0", ev.RuleCount)
	}
	if len(ev.Weights) != 0 {
		t.Errorf("expected empty weights, got %v", ev.Weights)
	}
	if len(ev.Base.Constants) != 1 {
		t.Errorf("expected exactly 1 constant slot (adjCount=0), got %d", len(ev.Base.Constants))
	}
}

// Boundary case: one rule, one entity -> weight 1.0 at (0,0).
func TestOneRuleOneEntity(t *testing.T) {
	entities := &expr.EntityTable{}
	entities.Add(expr.FreeReal{})
	record := expr.Record{
		Variables: []expr.ExprKind{expr.Entity{ID: 0}, expr.Const{Value: number.FromInt64(1)}},
		Rules: []expr.Rule{
			{Kind: expr.NumberEq{A: 0, B: 1}, Entities: map[expr.EntityId]struct{}{0: {}}},
		},
	}

	ev := compileEvaluateProgram(record, entities)
	if len(ev.Weights) != 1 || ev.Weights[0] != 1.0 {
		t.Errorf("weights = %v, want [1.0]", ev.Weights)
	}
}

// PointX(p) aliases its point with no extra instruction (testable property
// 5). The CircleCenter alias is checked at the Expand layer, in
// internal/expand's TestCircleCenterAlias.
func TestAliasesEmitNoInstruction(t *testing.T) {
	entities := &expr.EntityTable{}
	entities.Add(expr.FreePoint{})

	record := expr.Record{
		Variables: []expr.ExprKind{
			expr.Entity{ID: 0},     // VarIndex 0: the point
			expr.PointX{Point: 0}, // VarIndex 1: alias of 0
		},
	}
	c := newCompiler(record, entities, false, 0)
	c.compileEntity(0)
	pointLoc := c.compileVarIndex(0)
	xLoc := c.compileVarIndex(1)

	if xLoc != pointLoc {
		t.Errorf("PointX should alias to the same Loc as its point, got %d vs %d", xLoc, pointLoc)
	}
	if len(c.instructions) != 0 {
		t.Errorf("aliasing expressions must emit no instructions, got %d", len(c.instructions))
	}
}
