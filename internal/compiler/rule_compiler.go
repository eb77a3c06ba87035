package compiler

import (
	"geoaid/internal/bytecode"
	geoerrors "geoaid/internal/errors"
	"geoaid/internal/expr"
)

// nextRuleTarget is spec.md §4.2.5's next_rule(): in normal mode a rule's
// quality output lands in the contiguous rule-quality block (the rule
// cursor); inside an Alternative, nested quality outputs must not inflate
// rule_count, so they're drawn from the main cursor instead (the glossary's
// "alt mode").
func (c *Compiler) nextRuleTarget() bytecode.Loc {
	if c.altMode {
		return c.cursor.Next()
	}
	return c.ruleCursor.Next()
}

// compileRule lowers one top-level or nested rule, returning the Loc of
// its quality output (spec.md §4.2.5).
func (c *Compiler) compileRule(r expr.Rule) bytecode.Loc {
	return c.compileRuleKind(r.Kind)
}

func (c *Compiler) compileRuleKind(kind expr.RuleKind) bytecode.Loc {
	switch k := kind.(type) {
	case expr.PointEq:
		a := c.compileVarIndex(k.A)
		b := c.compileVarIndex(k.B)
		target := c.nextRuleTarget()
		return c.emit(bytecode.EqualComplex{A: a, B: b, To: target})

	case expr.NumberEq:
		a := c.compileVarIndex(k.A)
		b := c.compileVarIndex(k.B)
		target := c.nextRuleTarget()
		return c.emit(bytecode.EqualReal{A: a, B: b, To: target})

	case expr.Lt:
		a := c.compileVarIndex(k.A)
		b := c.compileVarIndex(k.B)
		target := c.nextRuleTarget()
		return c.emit(bytecode.Less{A: a, B: b, To: target})

	case expr.Gt:
		a := c.compileVarIndex(k.A)
		b := c.compileVarIndex(k.B)
		target := c.nextRuleTarget()
		return c.emit(bytecode.Greater{A: a, B: b, To: target})

	case expr.Alternative:
		return c.compileAlternative(k)

	case expr.Invert:
		q := c.compileRule(k.Inner)
		return c.emit(bytecode.InvertQuality{Q: q})

	case expr.Bias:
		// No instruction; the optimizer interprets this slot specially
		// (spec.md §4.2.5). The caller (compileEvaluateProgram) records
		// this target in EvaluateProgram.Biases.
		return c.nextRuleTarget()

	default:
		geoerrors.Fatalf("compiler.compileRuleKind", "unrecognized rule kind %T", k)
		panic("unreachable")
	}
}

// compileAlternative implements spec.md §4.2.5's Alternative lowering and
// scenario S5: enter alt mode (if not already in it), compile every child
// so their quality outputs land in main-cursor slots, restore alt mode to
// whatever it was on entry, then take this rule's own target in that
// restored context before emitting MaxReal.
func (c *Compiler) compileAlternative(k expr.Alternative) bytecode.Loc {
	wasAlt := c.altMode
	c.altMode = true

	items := make([]bytecode.Loc, len(k.Items))
	for i, item := range k.Items {
		items[i] = c.compileRule(item)
	}

	c.altMode = wasAlt
	target := c.nextRuleTarget()
	return c.emit(bytecode.MaxReal{Items: items, To: target})
}
