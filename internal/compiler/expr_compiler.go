package compiler

import (
	"geoaid/internal/bytecode"
	geoerrors "geoaid/internal/errors"
	"geoaid/internal/expr"
)

// compileVarIndex returns idx's Loc, compiling it on first visit and
// returning the cached value on every subsequent visit (spec.md §4.2.3).
// Memoization here is what keeps shared subexpressions from being
// recomputed in the instruction stream.
func (c *Compiler) compileVarIndex(idx expr.VarIndex) bytecode.Loc {
	if loc, ok := c.varLocs[idx]; ok {
		return loc
	}
	loc := c.compileExpr(c.record.Variables[idx])
	c.varLocs[idx] = loc
	return loc
}

func (c *Compiler) compileVarIndices(idxs []expr.VarIndex) []bytecode.Loc {
	out := make([]bytecode.Loc, len(idxs))
	for i, idx := range idxs {
		out[i] = c.compileVarIndex(idx)
	}
	return out
}

// compileExpr dispatches one ExprKind to its emission recipe (spec.md
// §4.2.3's table). Operands are compiled left-to-right, as listed in each
// variant, before the instruction (if any) is emitted.
func (c *Compiler) compileExpr(kind expr.ExprKind) bytecode.Loc {
	switch k := kind.(type) {
	case expr.LineLineIntersection:
		kk := c.compileVarIndex(k.K)
		ll := c.compileVarIndex(k.L)
		return c.emit(bytecode.LineLineIntersection{K: kk, L: ll, To: c.cursor.Next()})

	case expr.AveragePoint:
		items := c.compileVarIndices(k.Items)
		return c.emit(bytecode.Average{Items: items, To: c.cursor.Next()})

	case expr.CircleCenter:
		// Alias: no instruction (spec.md §4.2.3, invariant/testable
		// property 4). In practice internal/expand already elides this
		// node entirely at load time; this arm only exists to keep
		// compileExpr total over expr.ExprKind.
		return c.compileVarIndex(k.Circle)

	case expr.Entity:
		return c.compileEntity(k.ID)

	case expr.PointPoint:
		p := c.compileVarIndex(k.P)
		q := c.compileVarIndex(k.Q)
		return c.emit(bytecode.LineFromPoints{P: p, Q: q, To: c.cursor.Next()})

	case expr.AngleBisector:
		p := c.compileVarIndex(k.P)
		q := c.compileVarIndex(k.Q)
		r := c.compileVarIndex(k.R)
		return c.emit(bytecode.AngleBisector{P: p, Q: q, R: r, To: c.cursor.Next()})

	case expr.ParallelThrough:
		point := c.compileVarIndex(k.Point)
		line := c.compileVarIndex(k.Line)
		return c.emit(bytecode.ParallelThrough{Point: point, Line: line, To: c.cursor.Next()})

	case expr.PerpendicularThrough:
		point := c.compileVarIndex(k.Point)
		line := c.compileVarIndex(k.Line)
		return c.emit(bytecode.PerpendicularThrough{Point: point, Line: line, To: c.cursor.Next()})

	case expr.Sum:
		return c.compileSum(k)

	case expr.Product:
		return c.compileProduct(k)

	case expr.Const:
		return c.locateConst(k)

	case expr.Power:
		v := c.compileVarIndex(k.Value)
		return c.emit(bytecode.Pow{From: v, Exponent: k.Exponent.Float64(), To: c.cursor.Next()})

	case expr.PointPointDistance:
		p := c.compileVarIndex(k.P)
		q := c.compileVarIndex(k.Q)
		return c.emit(bytecode.PointPointDistance{P: p, Q: q, To: c.cursor.Next()})

	case expr.PointLineDistance:
		point := c.compileVarIndex(k.Point)
		line := c.compileVarIndex(k.Line)
		return c.emit(bytecode.PointLineDistance{Point: point, Line: line, To: c.cursor.Next()})

	case expr.ThreePointAngle:
		p := c.compileVarIndex(k.P)
		q := c.compileVarIndex(k.Q)
		r := c.compileVarIndex(k.R)
		return c.emit(bytecode.AnglePoint{P: p, Q: q, R: r, To: c.cursor.Next()})

	case expr.ThreePointAngleDir:
		p := c.compileVarIndex(k.P)
		q := c.compileVarIndex(k.Q)
		r := c.compileVarIndex(k.R)
		return c.emit(bytecode.AnglePointDir{P: p, Q: q, R: r, To: c.cursor.Next()})

	case expr.TwoLineAngle:
		kk := c.compileVarIndex(k.K)
		ll := c.compileVarIndex(k.L)
		return c.emit(bytecode.AngleLine{K: kk, L: ll, To: c.cursor.Next()})

	case expr.PointX:
		// Alias: no instruction (testable property 5).
		return c.compileVarIndex(k.Point)

	case expr.PointY:
		point := c.compileVarIndex(k.Point)
		return c.emit(bytecode.SwapParts{From: point, To: c.cursor.Next()})

	case expr.ConstructCircle:
		center := c.compileVarIndex(k.Center)
		radius := c.compileVarIndex(k.Radius)
		return c.emit(bytecode.CircleConstruct{Center: center, Radius: radius, To: c.cursor.Next()})

	default:
		geoerrors.Fatalf("compiler.compileExpr", "unrecognized expr kind %T", k)
		panic("unreachable")
	}
}

// compileSum emits the three-instruction Sum{plus,minus} sequence (spec.md
// §4.2.3, testable property / scenario S4): Sum(minus -> t), Negation(t ->
// t), Sum([t, ...plus] -> t). All three instructions share target t.
func (c *Compiler) compileSum(k expr.Sum) bytecode.Loc {
	plus := c.compileVarIndices(k.Plus)
	minus := c.compileVarIndices(k.Minus)

	t := c.emit(bytecode.Sum{Items: minus, To: c.cursor.Next()})
	c.emit(bytecode.Negation{To: t})

	items := append([]bytecode.Loc{t}, plus...)
	c.emit(bytecode.Sum{Items: items, To: t})
	return t
}

// compileProduct emits the three-instruction Product{times,by} sequence
// (spec.md §4.2.3): PartialProduct(by -> t), Pow(t, -1 -> t),
// PartialProduct([t, ...times] -> t).
func (c *Compiler) compileProduct(k expr.Product) bytecode.Loc {
	times := c.compileVarIndices(k.Times)
	by := c.compileVarIndices(k.By)

	t := c.emit(bytecode.PartialProduct{Items: by, To: c.cursor.Next()})
	c.emit(bytecode.Pow{From: t, Exponent: -1.0, To: t})

	items := append([]bytecode.Loc{t}, times...)
	c.emit(bytecode.PartialProduct{Items: items, To: t})
	return t
}

// compileEntity resolves an EntityId to its Loc (spec.md §4.2.4).
func (c *Compiler) compileEntity(id expr.EntityId) bytecode.Loc {
	if loc, ok := c.entityLocs[id]; ok {
		return loc
	}

	var loc bytecode.Loc
	switch k := c.entities.Kinds[id].(type) {
	case expr.FreeReal:
		loc = bytecode.Loc(id)
	case expr.FreePoint:
		loc = bytecode.Loc(id)
	case expr.PointOnLine:
		line := c.compileVarIndex(k.Line)
		loc = c.emit(bytecode.OnLine{Line: line, Clip: bytecode.Loc(id), To: c.cursor.Next()})
	case expr.PointOnCircle:
		circle := c.compileVarIndex(k.Circle)
		loc = c.emit(bytecode.OnCircle{Circle: circle, Clip: bytecode.Loc(id), To: c.cursor.Next()})
	case expr.Bind:
		geoerrors.Fatalf("compiler.compileEntity", "Bind reached the compiler for entity %d", id)
	default:
		geoerrors.Fatalf("compiler.compileEntity", "unrecognized entity kind %T", k)
	}

	c.entityLocs[id] = loc
	return loc
}
