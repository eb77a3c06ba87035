// Package unrolled is a concrete Go encoding of the typed, unrolled
// expression DAG the compilation core consumes (spec.md §6.1). It is
// produced upstream by the lexer/parser/unroll stages, which are out of
// scope for this module (spec.md §1) — this package exists so the core can
// be built and tested against hand-built or JSON-decoded fixtures instead
// of a live parser.
//
// Identity matters here: two *PointNode values that happen to describe the
// same construction are still distinct nodes unless they are literally the
// same pointer. internal/expand relies on this pointer identity to
// deduplicate shared subexpressions (spec.md invariant 1).
package unrolled

import "geoaid/internal/number"

// PointNode is one node of the Point sub-DAG.
type PointNode struct {
	Kind PointKind
}

// PointKind is the tagged variant of an unrolled point expression.
type PointKind interface{ isPointKind() }

type PointFree struct{}

func (PointFree) isPointKind() {}

type PointAverage struct{ Items []*PointNode }

func (PointAverage) isPointKind() {}

type PointLineLineIntersection struct{ K, L *LineNode }

func (PointLineLineIntersection) isPointKind() {}

type PointCircleCenter struct{ Circle *CircleNode }

func (PointCircleCenter) isPointKind() {}

// PointOnLine marks a free point constrained to lie on a line — the
// surface-language equivalent of `point P on line_expr`. Expand turns this
// directly into an EntityKind.PointOnLine (spec.md §4.1 step 4); by the time
// a Compiler sees it, it is already a resolved entity; Bind-style
// placeholders (spec.md's EntityKind.Bind) never reach this package.
type PointOnLine struct{ Line *LineNode }

func (PointOnLine) isPointKind() {}

// PointOnCircle marks a free point constrained to lie on a circle.
type PointOnCircle struct{ Circle *CircleNode }

func (PointOnCircle) isPointKind() {}

// LineNode is one node of the Line sub-DAG.
type LineNode struct {
	Kind LineKind
}

type LineKind interface{ isLineKind() }

type LineFromPoints struct{ P, Q *PointNode }

func (LineFromPoints) isLineKind() {}

type LineAngleBisector struct{ P, Q, R *PointNode }

func (LineAngleBisector) isLineKind() {}

type LineParallelThrough struct {
	Line  *LineNode
	Point *PointNode
}

func (LineParallelThrough) isLineKind() {}

type LinePerpendicularThrough struct {
	Line  *LineNode
	Point *PointNode
}

func (LinePerpendicularThrough) isLineKind() {}

// CircleNode is one node of the Circle sub-DAG.
type CircleNode struct {
	Kind CircleKind
}

type CircleKind interface{ isCircleKind() }

type CircleConstruct struct {
	Center *PointNode
	Radius *ScalarNode
}

func (CircleConstruct) isCircleKind() {}

// ScalarNode is one node of the Scalar sub-DAG. Its sub-kinds mirror the
// ExprKind variants of spec.md §3 that are scalar-valued.
type ScalarNode struct {
	Kind ScalarKind
}

type ScalarKind interface{ isScalarKind() }

type ScalarFreeReal struct{}

func (ScalarFreeReal) isScalarKind() {}

type ScalarConst struct{ Value number.Exact }

func (ScalarConst) isScalarKind() {}

type ScalarSum struct{ Plus, Minus []*ScalarNode }

func (ScalarSum) isScalarKind() {}

type ScalarProduct struct{ Times, By []*ScalarNode }

func (ScalarProduct) isScalarKind() {}

type ScalarPower struct {
	Value    *ScalarNode
	Exponent number.Exact
}

func (ScalarPower) isScalarKind() {}

type ScalarPointPointDistance struct{ P, Q *PointNode }

func (ScalarPointPointDistance) isScalarKind() {}

type ScalarPointLineDistance struct {
	Point *PointNode
	Line  *LineNode
}

func (ScalarPointLineDistance) isScalarKind() {}

type ScalarThreePointAngle struct{ P, Q, R *PointNode }

func (ScalarThreePointAngle) isScalarKind() {}

type ScalarThreePointAngleDir struct{ P, Q, R *PointNode }

func (ScalarThreePointAngleDir) isScalarKind() {}

type ScalarTwoLineAngle struct{ K, L *LineNode }

func (ScalarTwoLineAngle) isScalarKind() {}

type ScalarPointX struct{ Point *PointNode }

func (ScalarPointX) isScalarKind() {}

type ScalarPointY struct{ Point *PointNode }

func (ScalarPointY) isScalarKind() {}

// RuleKind is the tagged variant of an unrolled rule, mirroring
// spec.md's Rule.kind domain before entity-closure computation.
type RuleKind interface{ isRuleKind() }

type RulePointEq struct{ A, B *PointNode }

func (RulePointEq) isRuleKind() {}

type RuleNumberEq struct{ A, B *ScalarNode }

func (RuleNumberEq) isRuleKind() {}

type RuleLt struct{ A, B *ScalarNode }

func (RuleLt) isRuleKind() {}

type RuleGt struct{ A, B *ScalarNode }

func (RuleGt) isRuleKind() {}

type RuleAlternative struct{ Items []RuleKind }

func (RuleAlternative) isRuleKind() {}

type RuleBias struct{}

func (RuleBias) isRuleKind() {}

// Rule is one unrolled rule: a kind plus the inversion flag and weight the
// upstream script attached to it.
type Rule struct {
	Kind     RuleKind
	Inverted bool
	Weight   number.Exact
}

// FigureData holds the rendered-object half of the unrolled program.
type FigureData struct {
	Variables []FigureVariable
}

// FigureVariable names a top-level figure output together with its display
// kind, so the compiler can derive a ValueType for it without re-deriving
// type information the unroll stage already computed.
type FigureVariable struct {
	Point  *PointNode
	Line   *LineNode
	Circle *CircleNode
	Scalar *ScalarNode
}

// AdjustedData holds the optimized-object half of the unrolled program:
// the rule set the evaluate program must satisfy.
type AdjustedData struct {
	Rules []Rule
}

// Program is the full unrolled input the compilation core consumes
// (spec.md §6.1's Intermediate analog, pre-compilation).
type Program struct {
	Figure   FigureData
	Adjusted AdjustedData
	Flags    Flags
}
