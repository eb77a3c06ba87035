// Package expand implements the Expand/Intern phase (spec.md §4.1): it
// walks the pointer-identified unrolled DAG, deduplicates by identity,
// applies a fixed set of local rewrites, and produces the canonical,
// integer-indexed expression and entity tables the Compiler consumes.
//
// Grounded on the upstream `script::math::Expand::load` address-keyed
// memoizing walk. Go pointers are already stable, comparable identities,
// so the Rust `Rc`-address-to-usize trick this package's upstream needs is
// unnecessary here: unrolled node pointers are used directly as map keys.
package expand

import (
	geoerrors "geoaid/internal/errors"
	"geoaid/internal/expr"
	"geoaid/internal/unrolled"
)

type entitySet = map[expr.EntityId]struct{}

func unionSets(sets ...entitySet) entitySet {
	out := make(entitySet)
	for _, s := range sets {
		for id := range s {
			out[id] = struct{}{}
		}
	}
	return out
}

func singleton(id expr.EntityId) entitySet {
	return entitySet{id: {}}
}

// expander walks the unrolled DAG (the adjusted view's rule sides and the
// figure's variables alike) and builds the canonical expression table and
// entity table. Expand runs a single expander over both views, so an
// EntityId means the same adjustable in every view (DESIGN.md Open
// Question #2).
type expander struct {
	entities *expr.EntityTable
	record   []expr.ExprKind
	reach    []entitySet
	uses     []int
	cache    map[any]expr.VarIndex
}

func newExpander(entities *expr.EntityTable) *expander {
	return &expander{
		entities: entities,
		cache:    make(map[any]expr.VarIndex),
	}
}

// push appends a freshly-built node to the record, caches it under key so
// a future load of the same upstream node hits the cache (invariant 1),
// and returns its VarIndex.
func (e *expander) push(key any, kind expr.ExprKind, reach entitySet) expr.VarIndex {
	e.record = append(e.record, kind)
	e.reach = append(e.reach, reach)
	e.uses = append(e.uses, 1)
	idx := expr.VarIndex(len(e.record) - 1)
	if key != nil {
		e.cache[key] = idx
	}
	return idx
}

// alias caches key as resolving to an already-existing VarIndex, for the
// "no new node" rewrites (CircleCenter(Circle{center,_}) -> load(center)).
func (e *expander) alias(key any, existing expr.VarIndex) expr.VarIndex {
	if key != nil {
		e.cache[key] = existing
	}
	e.uses[existing]++
	return existing
}

func (e *expander) reachOf(v expr.VarIndex) entitySet { return e.reach[v] }

// loadPoint resolves an unrolled point node to a VarIndex, deduplicating
// by identity and applying the CircleCenter alias rewrite.
func (e *expander) loadPoint(n *unrolled.PointNode) expr.VarIndex {
	if v, ok := e.cache[n]; ok {
		e.uses[v]++
		return v
	}

	switch k := n.Kind.(type) {
	case unrolled.PointFree:
		id := e.entities.Add(expr.FreePoint{})
		return e.push(n, expr.Entity{ID: id}, singleton(id))

	case unrolled.PointAverage:
		items := make([]expr.VarIndex, len(k.Items))
		for i, item := range k.Items {
			items[i] = e.loadPoint(item)
		}
		sets := make([]entitySet, len(items))
		for i, v := range items {
			sets[i] = e.reachOf(v)
		}
		return e.push(n, expr.AveragePoint{Items: items}, unionSets(sets...))

	case unrolled.PointLineLineIntersection:
		kk := e.loadLine(k.K)
		ll := e.loadLine(k.L)
		return e.push(n, expr.LineLineIntersection{K: kk, L: ll}, unionSets(e.reachOf(kk), e.reachOf(ll)))

	case unrolled.PointCircleCenter:
		// CircleCenter(Circle{center, _}) -> load(center); no new node.
		construct, ok := k.Circle.Kind.(unrolled.CircleConstruct)
		if !ok {
			geoerrors.Fatalf("expand.loadPoint", "circle center of unrecognized circle kind %T", k.Circle.Kind)
		}
		center := e.loadPoint(construct.Center)
		return e.alias(n, center)

	case unrolled.PointOnLine:
		line := e.loadLine(k.Line)
		id := e.entities.Add(expr.PointOnLine{Line: line})
		return e.push(n, expr.Entity{ID: id}, unionSets(singleton(id), e.reachOf(line)))

	case unrolled.PointOnCircle:
		circle := e.loadCircle(k.Circle)
		id := e.entities.Add(expr.PointOnCircle{Circle: circle})
		return e.push(n, expr.Entity{ID: id}, unionSets(singleton(id), e.reachOf(circle)))

	default:
		geoerrors.Fatalf("expand.loadPoint", "unrecognized point kind %T", k)
		panic("unreachable")
	}
}

// loadLine resolves an unrolled line node, applying the four
// perpendicular/parallel-of-perpendicular/parallel rewrites (spec.md §4.1
// step 3). AngleBisector's three operands are always loaded distinctly —
// the upstream `p`/`q`/`r` self-reference is a known bug (spec.md §9) this
// implementation does not reproduce.
func (e *expander) loadLine(n *unrolled.LineNode) expr.VarIndex {
	if v, ok := e.cache[n]; ok {
		e.uses[v]++
		return v
	}

	switch k := n.Kind.(type) {
	case unrolled.LineFromPoints:
		p := e.loadPoint(k.P)
		q := e.loadPoint(k.Q)
		return e.push(n, expr.PointPoint{P: p, Q: q}, unionSets(e.reachOf(p), e.reachOf(q)))

	case unrolled.LineAngleBisector:
		p := e.loadPoint(k.P)
		q := e.loadPoint(k.Q)
		r := e.loadPoint(k.R)
		return e.push(n, expr.AngleBisector{P: p, Q: q, R: r}, unionSets(e.reachOf(p), e.reachOf(q), e.reachOf(r)))

	case unrolled.LineParallelThrough:
		point := e.loadPoint(k.Point)
		switch inner := k.Line.Kind.(type) {
		case unrolled.LinePerpendicularThrough:
			// Parallel(Perpendicular(l,_), p) -> Perpendicular(l,p)
			line := e.loadLine(inner.Line)
			return e.push(n, expr.PerpendicularThrough{Point: point, Line: line}, unionSets(e.reachOf(point), e.reachOf(line)))
		case unrolled.LineParallelThrough:
			// Parallel(Parallel(l,_), p) -> Parallel(l,p)
			line := e.loadLine(inner.Line)
			return e.push(n, expr.ParallelThrough{Point: point, Line: line}, unionSets(e.reachOf(point), e.reachOf(line)))
		default:
			line := e.loadLine(k.Line)
			return e.push(n, expr.ParallelThrough{Point: point, Line: line}, unionSets(e.reachOf(point), e.reachOf(line)))
		}

	case unrolled.LinePerpendicularThrough:
		point := e.loadPoint(k.Point)
		switch inner := k.Line.Kind.(type) {
		case unrolled.LinePerpendicularThrough:
			// Perpendicular(Perpendicular(l,_), p) -> Parallel(l,p)
			line := e.loadLine(inner.Line)
			return e.push(n, expr.ParallelThrough{Point: point, Line: line}, unionSets(e.reachOf(point), e.reachOf(line)))
		case unrolled.LineParallelThrough:
			// Perpendicular(Parallel(l,_), p) -> Perpendicular(l,p)
			line := e.loadLine(inner.Line)
			return e.push(n, expr.PerpendicularThrough{Point: point, Line: line}, unionSets(e.reachOf(point), e.reachOf(line)))
		default:
			line := e.loadLine(k.Line)
			return e.push(n, expr.PerpendicularThrough{Point: point, Line: line}, unionSets(e.reachOf(point), e.reachOf(line)))
		}

	default:
		geoerrors.Fatalf("expand.loadLine", "unrecognized line kind %T", k)
		panic("unreachable")
	}
}

func (e *expander) loadCircle(n *unrolled.CircleNode) expr.VarIndex {
	if v, ok := e.cache[n]; ok {
		e.uses[v]++
		return v
	}

	switch k := n.Kind.(type) {
	case unrolled.CircleConstruct:
		center := e.loadPoint(k.Center)
		radius := e.loadScalar(k.Radius)
		return e.push(n, expr.ConstructCircle{Center: center, Radius: radius}, unionSets(e.reachOf(center), e.reachOf(radius)))
	default:
		geoerrors.Fatalf("expand.loadCircle", "unrecognized circle kind %T", k)
		panic("unreachable")
	}
}

func (e *expander) loadScalar(n *unrolled.ScalarNode) expr.VarIndex {
	if v, ok := e.cache[n]; ok {
		e.uses[v]++
		return v
	}

	switch k := n.Kind.(type) {
	case unrolled.ScalarFreeReal:
		id := e.entities.Add(expr.FreeReal{})
		return e.push(n, expr.Entity{ID: id}, singleton(id))

	case unrolled.ScalarConst:
		return e.push(n, expr.Const{Value: k.Value}, entitySet{})

	case unrolled.ScalarSum:
		plus := e.loadScalars(k.Plus)
		minus := e.loadScalars(k.Minus)
		return e.push(n, expr.Sum{Plus: plus, Minus: minus}, e.reachAll(append(append([]expr.VarIndex{}, plus...), minus...)))

	case unrolled.ScalarProduct:
		times := e.loadScalars(k.Times)
		by := e.loadScalars(k.By)
		return e.push(n, expr.Product{Times: times, By: by}, e.reachAll(append(append([]expr.VarIndex{}, times...), by...)))

	case unrolled.ScalarPower:
		v := e.loadScalar(k.Value)
		return e.push(n, expr.Power{Value: v, Exponent: k.Exponent}, e.reachOf(v))

	case unrolled.ScalarPointPointDistance:
		p := e.loadPoint(k.P)
		q := e.loadPoint(k.Q)
		return e.push(n, expr.PointPointDistance{P: p, Q: q}, unionSets(e.reachOf(p), e.reachOf(q)))

	case unrolled.ScalarPointLineDistance:
		point := e.loadPoint(k.Point)
		line := e.loadLine(k.Line)
		return e.push(n, expr.PointLineDistance{Point: point, Line: line}, unionSets(e.reachOf(point), e.reachOf(line)))

	case unrolled.ScalarThreePointAngle:
		p := e.loadPoint(k.P)
		q := e.loadPoint(k.Q)
		r := e.loadPoint(k.R)
		return e.push(n, expr.ThreePointAngle{P: p, Q: q, R: r}, unionSets(e.reachOf(p), e.reachOf(q), e.reachOf(r)))

	case unrolled.ScalarThreePointAngleDir:
		p := e.loadPoint(k.P)
		q := e.loadPoint(k.Q)
		r := e.loadPoint(k.R)
		return e.push(n, expr.ThreePointAngleDir{P: p, Q: q, R: r}, unionSets(e.reachOf(p), e.reachOf(q), e.reachOf(r)))

	case unrolled.ScalarTwoLineAngle:
		kk := e.loadLine(k.K)
		ll := e.loadLine(k.L)
		return e.push(n, expr.TwoLineAngle{K: kk, L: ll}, unionSets(e.reachOf(kk), e.reachOf(ll)))

	case unrolled.ScalarPointX:
		point := e.loadPoint(k.Point)
		return e.push(n, expr.PointX{Point: point}, e.reachOf(point))

	case unrolled.ScalarPointY:
		point := e.loadPoint(k.Point)
		return e.push(n, expr.PointY{Point: point}, e.reachOf(point))

	default:
		geoerrors.Fatalf("expand.loadScalar", "unrecognized scalar kind %T", k)
		panic("unreachable")
	}
}

func (e *expander) loadScalars(ns []*unrolled.ScalarNode) []expr.VarIndex {
	out := make([]expr.VarIndex, len(ns))
	for i, n := range ns {
		out[i] = e.loadScalar(n)
	}
	return out
}

func (e *expander) reachAll(vs []expr.VarIndex) entitySet {
	sets := make([]entitySet, len(vs))
	for i, v := range vs {
		sets[i] = e.reachOf(v)
	}
	return unionSets(sets...)
}

// loadRuleKind converts one unrolled rule body into its canonical form,
// along with the transitive entity closure of its operands.
func (e *expander) loadRuleKind(rk unrolled.RuleKind) (expr.RuleKind, entitySet) {
	switch k := rk.(type) {
	case unrolled.RulePointEq:
		a := e.loadPoint(k.A)
		b := e.loadPoint(k.B)
		return expr.PointEq{A: a, B: b}, unionSets(e.reachOf(a), e.reachOf(b))

	case unrolled.RuleNumberEq:
		a := e.loadScalar(k.A)
		b := e.loadScalar(k.B)
		return expr.NumberEq{A: a, B: b}, unionSets(e.reachOf(a), e.reachOf(b))

	case unrolled.RuleLt:
		a := e.loadScalar(k.A)
		b := e.loadScalar(k.B)
		return expr.Lt{A: a, B: b}, unionSets(e.reachOf(a), e.reachOf(b))

	case unrolled.RuleGt:
		a := e.loadScalar(k.A)
		b := e.loadScalar(k.B)
		return expr.Gt{A: a, B: b}, unionSets(e.reachOf(a), e.reachOf(b))

	case unrolled.RuleAlternative:
		items := make([]expr.Rule, len(k.Items))
		sets := make([]entitySet, len(k.Items))
		for i, item := range k.Items {
			kind, reach := e.loadRuleKind(item)
			items[i] = expr.Rule{Kind: kind, Entities: reach}
			sets[i] = reach
		}
		return expr.Alternative{Items: items}, unionSets(sets...)

	case unrolled.RuleBias:
		return expr.Bias{}, entitySet{}

	default:
		geoerrors.Fatalf("expand.loadRuleKind", "unrecognized rule kind %T", k)
		panic("unreachable")
	}
}

func (e *expander) loadRule(r unrolled.Rule) expr.Rule {
	kind, reach := e.loadRuleKind(r.Kind)
	if r.Inverted {
		kind = expr.Invert{Inner: expr.Rule{Kind: kind, Entities: reach, Weight: r.Weight}}
	}
	return expr.Rule{Kind: kind, Entities: reach, Weight: r.Weight}
}

func (e *expander) loadFigureVariable(v unrolled.FigureVariable) expr.VarIndex {
	switch {
	case v.Point != nil:
		return e.loadPoint(v.Point)
	case v.Line != nil:
		return e.loadLine(v.Line)
	case v.Circle != nil:
		return e.loadCircle(v.Circle)
	case v.Scalar != nil:
		return e.loadScalar(v.Scalar)
	default:
		geoerrors.Fatalf("expand.loadFigureVariable", "figure variable with no payload")
		panic("unreachable")
	}
}

// Result is the canonical output of Expand: one shared, compiled-ready
// Record (its Variables table holds every interned node from both the
// adjusted rules and the figure variables, shared substructure included;
// its Rules are the adjusted view's rules), the entity table backing it
// (DESIGN.md Open Question #2), and the figure view's root index per
// source figure variable. FigureRoots records which VarIndex is the
// top-level value of each of the program's declared figure outputs, so
// the Compiler can memoize across them the same way it does for rules.
type Result struct {
	Record      expr.Record
	FigureRoots []expr.VarIndex
	Entities    *expr.EntityTable
}

// Expand runs the Expand/Intern phase over an unrolled program (spec.md
// §4.1). It is infallible in the sense spec.md §4.1 describes: semantic
// errors are assumed to have been caught upstream during unroll, and the
// only failure mode here is a fatal internal-invariant panic (spec.md §7),
// recoverable via geoaid/internal/errors.Recover.
//
// A single expander (one cache, one entity table, one record) walks both
// the adjusted rules and the figure variables, matching the upstream
// compiler's single shared expression arena (_examples/original_source's
// engine/rage/compiler.rs): an unrolled node reachable from both views —
// the normal case for a point that is both constrained and drawn — is
// loaded once and gets one VarIndex and, if it is a free node, one
// EntityId, regardless of which view reaches it first. Using two
// independent expanders here would double-count such nodes as distinct
// entities and leave every PointOnLine/PointOnCircle entity's embedded
// VarIndex valid against only one view's table.
func Expand(prog *unrolled.Program) Result {
	e := newExpander(&expr.EntityTable{})

	rules := make([]expr.Rule, len(prog.Adjusted.Rules))
	for i, r := range prog.Adjusted.Rules {
		rules[i] = e.loadRule(r)
	}

	roots := make([]expr.VarIndex, len(prog.Figure.Variables))
	for i, v := range prog.Figure.Variables {
		roots[i] = e.loadFigureVariable(v)
	}

	return Result{
		Record:      expr.Record{Variables: e.record, Rules: rules},
		FigureRoots: roots,
		Entities:    e.entities,
	}
}
