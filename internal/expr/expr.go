// Package expr defines the canonical, integer-indexed expression and
// entity model the Expand phase produces and the Compiler consumes
// (spec.md §3). It is the Go encoding of the upstream `script::math`
// module's `Number<M>`/`Line<M>`/`Circle<M>`/`Any<M>` enums, flattened into
// one tagged-interface `ExprKind` with a marker method per variant, minus a
// double-dispatch visitor — a single type switch in internal/compiler is
// enough since there is exactly one consumer.
package expr

import "geoaid/internal/number"

// VarIndex is a handle into the shared expression table (spec.md's
// `VarIndex`). Indices start at 0: VarIndex(0) is the first entry of the
// table.
type VarIndex int

// ExprKind is the tagged variant of a canonical, deduplicated expression
// (spec.md §3's `ExprKind`). Children are VarIndex handles, never pointers,
// so the table can be a flat, append-only slice.
type ExprKind interface{ isExprKind() }

type LineLineIntersection struct{ K, L VarIndex }

func (LineLineIntersection) isExprKind() {}

type AveragePoint struct{ Items []VarIndex }

func (AveragePoint) isExprKind() {}

type CircleCenter struct{ Circle VarIndex }

func (CircleCenter) isExprKind() {}

// Entity refers into the entity table (spec.md's ExprKind::Entity{id}).
type Entity struct{ ID EntityId }

func (Entity) isExprKind() {}

type PointPoint struct{ P, Q VarIndex }

func (PointPoint) isExprKind() {}

type AngleBisector struct{ P, Q, R VarIndex }

func (AngleBisector) isExprKind() {}

type ParallelThrough struct{ Point, Line VarIndex }

func (ParallelThrough) isExprKind() {}

type PerpendicularThrough struct{ Point, Line VarIndex }

func (PerpendicularThrough) isExprKind() {}

type Sum struct{ Plus, Minus []VarIndex }

func (Sum) isExprKind() {}

type Product struct{ Times, By []VarIndex }

func (Product) isExprKind() {}

type Const struct{ Value number.Exact }

func (Const) isExprKind() {}

type Power struct {
	Value    VarIndex
	Exponent number.Exact
}

func (Power) isExprKind() {}

type PointPointDistance struct{ P, Q VarIndex }

func (PointPointDistance) isExprKind() {}

type PointLineDistance struct {
	Point VarIndex
	Line  VarIndex
}

func (PointLineDistance) isExprKind() {}

type ThreePointAngle struct{ P, Q, R VarIndex }

func (ThreePointAngle) isExprKind() {}

type ThreePointAngleDir struct{ P, Q, R VarIndex }

func (ThreePointAngleDir) isExprKind() {}

type TwoLineAngle struct{ K, L VarIndex }

func (TwoLineAngle) isExprKind() {}

type PointX struct{ Point VarIndex }

func (PointX) isExprKind() {}

type PointY struct{ Point VarIndex }

func (PointY) isExprKind() {}

type ConstructCircle struct{ Center, Radius VarIndex }

func (ConstructCircle) isExprKind() {}

// EntityId is a handle into the entity table (spec.md's `EntityId`).
// Invariant 4: EntityId(i) always resolves to Loc(i) in a compiled
// program's constant-pool prefix.
type EntityId int

// EntityKind is the tagged variant of an adjustable's backing entity
// (spec.md §3's `EntityKind`).
type EntityKind interface{ isEntityKind() }

type FreeReal struct{}

func (FreeReal) isEntityKind() {}

type FreePoint struct{}

func (FreePoint) isEntityKind() {}

type PointOnLine struct{ Line VarIndex }

func (PointOnLine) isEntityKind() {}

type PointOnCircle struct{ Circle VarIndex }

func (PointOnCircle) isEntityKind() {}

// Bind is a pre-resolution placeholder that must never reach the
// compiler (spec.md §3, §4.2.4). This implementation's Expand phase folds
// entity binding into expansion itself (DESIGN.md Open Question #2/#3), so
// no Bind value is ever constructed by internal/expand; the type exists
// only so EntityKind's Go encoding matches spec.md's data model in full.
type Bind struct{ Expr VarIndex }

func (Bind) isEntityKind() {}

// EntityTable is the (shared, see DESIGN.md) entity table backing both
// program views.
type EntityTable struct {
	Kinds []EntityKind
}

// Add appends a new entity and returns its id.
func (t *EntityTable) Add(kind EntityKind) EntityId {
	t.Kinds = append(t.Kinds, kind)
	return EntityId(len(t.Kinds) - 1)
}

// Len returns the number of entities recorded so far.
func (t *EntityTable) Len() int { return len(t.Kinds) }

// RuleKind is the tagged variant of a rule body (spec.md §3's Rule.kind).
type RuleKind interface{ isRuleKind() }

type PointEq struct{ A, B VarIndex }

func (PointEq) isRuleKind() {}

type NumberEq struct{ A, B VarIndex }

func (NumberEq) isRuleKind() {}

type Lt struct{ A, B VarIndex }

func (Lt) isRuleKind() {}

type Gt struct{ A, B VarIndex }

func (Gt) isRuleKind() {}

type Alternative struct{ Items []Rule }

func (Alternative) isRuleKind() {}

type Invert struct{ Inner Rule }

func (Invert) isRuleKind() {}

type Bias struct{}

func (Bias) isRuleKind() {}

// Rule is one compiled-ready rule: its kind, the transitive closure of
// entities its expressions reach, and the weight the script attached to
// it (spec.md §3's `Rule`).
type Rule struct {
	Kind     RuleKind
	Entities map[EntityId]struct{}
	Weight   number.Exact
}

// Record is the canonical, integer-indexed form produced by Expand
// (spec.md §2 step 2's output): one flat expression table shared by the
// adjusted and figure views, plus the adjusted view's rules defined over
// it. The figure view's top-level outputs are listed separately, as
// indices into Variables (expand.Result.FigureRoots).
type Record struct {
	Variables []ExprKind
	Rules     []Rule // the adjusted view's rules
}
