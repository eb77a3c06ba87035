// Package compiler lowers a canonical expr.Record into the register-style
// bytecode.EvaluateProgram and bytecode.FigureProgram (spec.md §4.2-§4.3).
// Structured the way the teacher's internal/compiler.Compiler wraps a
// single bytecode.Chunk and drives emission with small per-node methods;
// here the "chunk" is a Cursor-addressed Program under construction and
// there is one dispatch method per expr.ExprKind instead of one per
// parser.Expr, since there is exactly one producer (Expand) and one
// consumer (this package) — no visitor interface is needed.
package compiler

import (
	"geoaid/internal/bytecode"
	geoerrors "geoaid/internal/errors"
	"geoaid/internal/expr"
)

// Cursor mints monotonically-increasing Locs (spec.md invariant 2). A
// compilation uses two: the main cursor for everything but rule-quality
// outputs, and a rule cursor for the contiguous rule-quality block.
type Cursor struct{ next bytecode.Loc }

func newCursor(start bytecode.Loc) *Cursor { return &Cursor{next: start} }

// Next returns the current value and advances the cursor.
func (c *Cursor) Next() bytecode.Loc {
	v := c.next
	c.next++
	return v
}

// Peek returns the current value without advancing.
func (c *Cursor) Peek() bytecode.Loc { return c.next }

// Compiler holds the working state of one program-view lowering: the
// cursors, the constant pool and its value->Loc index, the memoized
// VarIndex/EntityId -> Loc maps, and the growing instruction list. One
// Compiler instance lowers exactly one view (adjusted or figure); §4.3
// resets this state between the two views rather than reusing a Compiler.
type Compiler struct {
	record   expr.Record
	entities *expr.EntityTable

	cursor     *Cursor
	ruleCursor *Cursor // nil for the figure view
	altMode    bool

	constants    []bytecode.Value
	constantLocs map[string]bytecode.Loc // number.Exact.Key() -> Loc
	instructions []bytecode.Instruction
	varLocs      map[expr.VarIndex]bytecode.Loc
	entityLocs   map[expr.EntityId]bytecode.Loc
}

// adjCount is the number of entities in the shared entity table: by
// invariant 4, EntityId(i) always resolves to Loc(i), so this is also the
// width of the constant-pool adjustable prefix for both views.
func adjCount(entities *expr.EntityTable) int { return entities.Len() }

// prepareConstants allocates the constant-pool prefix (spec.md §4.2.1):
// slots [0, adjCount) reserved for adjustables, then one slot per distinct
// Const{value} encountered while walking record.Variables in order.
func prepareConstants(record expr.Record, entities *expr.EntityTable) ([]bytecode.Value, map[string]bytecode.Loc) {
	n := adjCount(entities)
	constants := make([]bytecode.Value, n, n+len(record.Variables))
	for i := range constants {
		// Placeholder; overwritten by the optimizer before evaluation
		// (invariant 3). The concrete zero value never matters.
		constants[i] = bytecode.Real{V: 0}
	}

	locs := make(map[string]bytecode.Loc)
	for _, v := range record.Variables {
		c, ok := v.(expr.Const)
		if !ok {
			continue
		}
		key := c.Value.Key()
		if _, seen := locs[key]; seen {
			continue
		}
		loc := bytecode.Loc(len(constants))
		constants = append(constants, bytecode.ExactToValue(c.Value))
		locs[key] = loc
	}
	return constants, locs
}

func newCompiler(record expr.Record, entities *expr.EntityTable, isEvaluate bool, ruleCount int) *Compiler {
	constants, constantLocs := prepareConstants(record, entities)

	c := &Compiler{
		record:       record,
		entities:     entities,
		constants:    constants,
		constantLocs: constantLocs,
		varLocs:      make(map[expr.VarIndex]bytecode.Loc),
		entityLocs:   make(map[expr.EntityId]bytecode.Loc),
	}

	if isEvaluate {
		// spec.md §4.2.2: rule_cursor starts right after the constant
		// pool; the main cursor starts after the rule-quality block.
		c.ruleCursor = newCursor(bytecode.Loc(len(constants)))
		c.cursor = newCursor(bytecode.Loc(len(constants) + ruleCount))
	} else {
		c.cursor = newCursor(bytecode.Loc(len(constants)))
	}
	return c
}

func (c *Compiler) emit(i bytecode.Instruction) bytecode.Loc {
	c.instructions = append(c.instructions, i)
	return i.Target()
}

// locateConst returns the pool Loc of a previously-interned constant
// value. Fatal if called with a value that was not discovered during
// prepareConstants — every Const node is walked up front, so this can only
// happen on an internal bug.
func (c *Compiler) locateConst(v expr.Const) bytecode.Loc {
	loc, ok := c.constantLocs[v.Value.Key()]
	if !ok {
		geoerrors.Fatalf("compiler.locateConst", "constant %s missing from pool", v.Value.String())
	}
	return loc
}

// CompileProgram runs the full pipeline (spec.md §4.2-§4.3): lowers the
// shared record into an EvaluateProgram, then independently lowers it into
// a FigureProgram with its own fresh Compiler state (step 2 of §4.3:
// "resets the interning state"). Both views read expressions and entities
// out of the SAME record and entity table produced by a single expand.Expand
// call — only each view's Loc-memoization caches (varLocs, entityLocs) and
// cursors are fresh, never the underlying expression arena, so a
// PointOnLine/PointOnCircle entity's embedded VarIndex always resolves
// against the table it was created in.
func CompileProgram(record expr.Record, figureRoots []expr.VarIndex, entities *expr.EntityTable) (bytecode.EvaluateProgram, bytecode.FigureProgram) {
	ev := compileEvaluateProgram(record, entities)
	fig := compileFigureProgram(record, figureRoots, entities)
	return ev, fig
}

func compileEvaluateProgram(record expr.Record, entities *expr.EntityTable) bytecode.EvaluateProgram {
	ruleCount := len(record.Rules)
	c := newCompiler(record, entities, true, ruleCount)

	// Force-compile every entity, in EntityId order, before compiling any
	// rule body. This guarantees EntityId(i) -> Loc(i) (invariant 4) is
	// established deterministically regardless of which rule happens to
	// reference which entity first (DESIGN.md Open Question #3).
	for id := 0; id < entities.Len(); id++ {
		c.compileEntity(expr.EntityId(id))
	}

	biases := make([]bytecode.Loc, 0)
	nAdj := adjCount(entities)
	weights := make([]float64, ruleCount*nAdj)
	for i, rule := range record.Rules {
		target := c.compileRule(rule)
		if _, isBias := rule.Kind.(expr.Bias); isBias {
			biases = append(biases, target)
		}
		applyWeightRow(weights, i, nAdj, rule.Entities)
	}

	adjustables := make([]bytecode.AdjustableTemplate, entities.Len())
	for id, kind := range entities.Kinds {
		adjustables[id] = c.adjustableTemplate(kind)
	}

	return bytecode.EvaluateProgram{
		Base: bytecode.Program{
			ReqMemorySize: c.cursor.Peek(),
			Constants:     c.constants,
			Instructions:  c.instructions,
		},
		Adjustables: adjustables,
		RuleCount:   uint64(ruleCount),
		Biases:      biases,
		Weights:     weights,
		AdjCount:    nAdj,
	}
}

func (c *Compiler) adjustableTemplate(kind expr.EntityKind) bytecode.AdjustableTemplate {
	switch k := kind.(type) {
	case expr.FreePoint:
		return bytecode.TemplatePoint{}
	case expr.FreeReal:
		return bytecode.TemplateReal{}
	case expr.PointOnLine:
		return bytecode.TemplateOnLine{LineLoc: c.compileVarIndex(k.Line)}
	case expr.PointOnCircle:
		return bytecode.TemplateOnCircle{CircleLoc: c.compileVarIndex(k.Circle)}
	default:
		geoerrors.Fatalf("compiler.adjustableTemplate", "unrecognized entity kind %T", k)
		panic("unreachable")
	}
}

// applyWeightRow fills weights[rule*adjCount : rule*adjCount+adjCount]
// per spec.md §4.2.6: each of the |E| participating entities gets 1/|E|,
// everything else stays zero.
func applyWeightRow(weights []float64, rule, adjCount int, entities map[expr.EntityId]struct{}) {
	if len(entities) == 0 {
		return
	}
	w := 1.0 / float64(len(entities))
	base := rule * adjCount
	for id := range entities {
		weights[base+int(id)] = w
	}
}

func compileFigureProgram(record expr.Record, roots []expr.VarIndex, entities *expr.EntityTable) bytecode.FigureProgram {
	c := newCompiler(record, entities, false, 0)

	// Entities are force-compiled here too, for the same determinism
	// reason as the evaluate view. FigureProgram.entities pairs every
	// entity in the shared table with its ValueType and Loc.
	for id := 0; id < entities.Len(); id++ {
		c.compileEntity(expr.EntityId(id))
	}

	variables := make([]bytecode.FigureVariable, len(roots))
	for i, root := range roots {
		loc := c.compileVarIndex(root)
		kind := record.Variables[root]
		typ := valueType(kind)
		if ent, ok := kind.(expr.Entity); ok {
			typ = entityValueType(entities.Kinds[ent.ID])
		}
		variables[i] = bytecode.FigureVariable{Type: typ, Loc: loc}
	}

	entityVars := make([]bytecode.FigureVariable, entities.Len())
	for id, kind := range entities.Kinds {
		entityVars[id] = bytecode.FigureVariable{
			Type: entityValueType(kind),
			Loc:  c.entityLocs[expr.EntityId(id)],
		}
	}

	return bytecode.FigureProgram{
		Base: bytecode.Program{
			ReqMemorySize: c.cursor.Peek(),
			Constants:     c.constants,
			Instructions:  c.instructions,
		},
		Variables: variables,
		Entities:  entityVars,
	}
}

// valueType derives a figure variable's storage kind from its ExprKind
// (spec.md §4.3 step 1): points/lines/circles are Complex, scalars Real.
// An Entity node's storage kind depends on its entity kind, which this
// function cannot see; compileFigureProgram resolves those through
// entityValueType instead.
func valueType(kind expr.ExprKind) bytecode.ValueType {
	switch kind.(type) {
	case expr.Sum, expr.Product, expr.Const, expr.Power,
		expr.PointPointDistance, expr.PointLineDistance,
		expr.ThreePointAngle, expr.ThreePointAngleDir, expr.TwoLineAngle,
		expr.PointX, expr.PointY:
		return bytecode.ValueReal
	default:
		return bytecode.ValueComplex
	}
}

func entityValueType(kind expr.EntityKind) bytecode.ValueType {
	switch kind.(type) {
	case expr.FreeReal:
		return bytecode.ValueReal
	default:
		return bytecode.ValueComplex
	}
}
