// Package bytecode defines the register-style program the Compiler emits
// (spec.md §3, §4.4) and the VM (external to this module) executes. Where
// the teacher's internal/bytecode models a byte-addressed opcode stream
// with an operand-stack VM, this core's target machine is flat-register:
// every instruction carries its operand Locs and target Loc by value, so
// Instruction is a tagged variant (the expr.ExprKind idiom) rather than a
// byte/constant-index pair.
package bytecode

import "geoaid/internal/number"

// Loc is an address into a program's flat slot memory (spec.md's `Loc`).
type Loc uint64

// ValueType distinguishes how a slot's bits should be interpreted
// (spec.md §4.3 step 1).
type ValueType int

const (
	ValueComplex ValueType = iota
	ValueReal
)

func (t ValueType) String() string {
	switch t {
	case ValueComplex:
		return "complex"
	case ValueReal:
		return "real"
	default:
		return "unknown"
	}
}

// Value is the VM's slot union (spec.md §4.4: "a complex number pair or a
// small discriminated union"). The constant pool stores Values; at runtime
// every slot holds one of these variants.
type Value interface{ isValue() }

// Complex represents a point, a line (origin, direction) or a circle
// (center, radius) — anything the VM's complex-pair representation can
// hold. The discriminant is carried by which constructor producing
// instruction wrote the slot, not by this type; Complex is deliberately a
// raw pair so PointX/PointY's SwapParts trick (spec.md §4.4) is just a
// swap of A/B with no format conversion.
type Complex struct{ A, B float64 }

func (Complex) isValue() {}

// Real is a plain scalar slot (used for quality outputs, angles,
// distances, exponent results).
type Real struct{ V float64 }

func (Real) isValue() {}

func NewComplex(a, b float64) Complex { return Complex{A: a, B: b} }
func NewReal(v float64) Real          { return Real{V: v} }

// Instruction is one VM operation: it reads its operand Locs, performs a
// fixed computation, and writes its target Loc (spec.md §3's `Instruction`,
// §4.4).
type Instruction interface{ Target() Loc }

type LineLineIntersection struct{ K, L, To Loc }

func (i LineLineIntersection) Target() Loc { return i.To }

type Average struct {
	Items []Loc
	To    Loc
}

func (i Average) Target() Loc { return i.To }

type LineFromPoints struct{ P, Q, To Loc }

func (i LineFromPoints) Target() Loc { return i.To }

type AngleBisector struct{ P, Q, R, To Loc }

func (i AngleBisector) Target() Loc { return i.To }

type ParallelThrough struct{ Point, Line, To Loc }

func (i ParallelThrough) Target() Loc { return i.To }

type PerpendicularThrough struct{ Point, Line, To Loc }

func (i PerpendicularThrough) Target() Loc { return i.To }

// Sum adds its Items, writing To. Used both directly (Sum{plus,minus}'s
// first and third instructions) and with a single negated operand
// (Negation below handles the middle step).
type Sum struct {
	Items []Loc
	To    Loc
}

func (i Sum) Target() Loc { return i.To }

// Negation negates the value already at To, in place (spec.md §9's
// three-address exception for the Sum/Product/Invert sequences).
type Negation struct{ To Loc }

func (i Negation) Target() Loc { return i.To }

// PartialProduct multiplies its Items, writing To. Mirrors Sum's role in
// the Product{times,by} lowering sequence.
type PartialProduct struct {
	Items []Loc
	To    Loc
}

func (i PartialProduct) Target() Loc { return i.To }

// Pow raises the value at From to Exponent, writing To. Product's
// reciprocal step uses From == To with Exponent == -1; a genuine
// Power{value,exponent} expression writes a fresh To.
type Pow struct {
	From     Loc
	Exponent float64
	To       Loc
}

func (i Pow) Target() Loc { return i.To }

type PointPointDistance struct{ P, Q, To Loc }

func (i PointPointDistance) Target() Loc { return i.To }

type PointLineDistance struct{ Point, Line, To Loc }

func (i PointLineDistance) Target() Loc { return i.To }

type AnglePoint struct{ P, Q, R, To Loc }

func (i AnglePoint) Target() Loc { return i.To }

type AnglePointDir struct{ P, Q, R, To Loc }

func (i AnglePointDir) Target() Loc { return i.To }

type AngleLine struct{ K, L, To Loc }

func (i AngleLine) Target() Loc { return i.To }

// SwapParts exchanges the two components of the complex value at From,
// writing To. Implements PointY by reinterpreting PointX's storage
// (spec.md §4.4).
type SwapParts struct{ From, To Loc }

func (i SwapParts) Target() Loc { return i.To }

type CircleConstruct struct{ Center, Radius, To Loc }

func (i CircleConstruct) Target() Loc { return i.To }

// OnLine clips an adjustable to a line (spec.md §4.2.4). Clip names the
// adjustable's own slot in the constant-pool prefix; the clipped point is
// written to To.
type OnLine struct {
	Line Loc
	Clip Loc
	To   Loc
}

func (i OnLine) Target() Loc { return i.To }

type OnCircle struct {
	Circle Loc
	Clip   Loc
	To     Loc
}

func (i OnCircle) Target() Loc { return i.To }

// EqualComplex, EqualReal, Less, Greater, MaxReal and InvertQuality all
// produce quality scalars in [0,1] (spec.md §4.4), not booleans.
type EqualComplex struct{ A, B, To Loc }

func (i EqualComplex) Target() Loc { return i.To }

type EqualReal struct{ A, B, To Loc }

func (i EqualReal) Target() Loc { return i.To }

type Less struct{ A, B, To Loc }

func (i Less) Target() Loc { return i.To }

type Greater struct{ A, B, To Loc }

func (i Greater) Target() Loc { return i.To }

// MaxReal is a pointwise maximum over Items, representing logical OR in
// the quality metric (spec.md §4.4); used for Alternative rules.
type MaxReal struct {
	Items []Loc
	To    Loc
}

func (i MaxReal) Target() Loc { return i.To }

// InvertQuality computes 1 - q in place: Q is both operand and target
// (spec.md §4.2.5's Invert lowering).
type InvertQuality struct{ Q Loc }

func (i InvertQuality) Target() Loc { return i.Q }

// Program is the container shared by both EvaluateProgram and
// FigureProgram (spec.md §3's `Program`).
type Program struct {
	ReqMemorySize Loc
	Constants     []Value
	Instructions  []Instruction
}

// AdjustableTemplate tells the optimizer how to mutate one adjustable
// during search (spec.md §3).
type AdjustableTemplate interface{ isAdjustableTemplate() }

type TemplatePoint struct{}

func (TemplatePoint) isAdjustableTemplate() {}

type TemplateReal struct{}

func (TemplateReal) isAdjustableTemplate() {}

type TemplateOnLine struct{ LineLoc Loc }

func (TemplateOnLine) isAdjustableTemplate() {}

type TemplateOnCircle struct{ CircleLoc Loc }

func (TemplateOnCircle) isAdjustableTemplate() {}

// EvaluateProgram is the program the optimizer scores candidates with
// (spec.md §3, §6.2).
type EvaluateProgram struct {
	Base        Program
	Adjustables []AdjustableTemplate
	RuleCount   uint64
	Biases      []Loc
	// Weights is row-major: Weights[rule*adjCount+adj] (spec.md §4.2.6).
	Weights []float64
	AdjCount int
}

// Row returns rule i's weight row as a slice view (no copy).
func (p *EvaluateProgram) Row(rule int) []float64 {
	start := rule * p.AdjCount
	return p.Weights[start : start+p.AdjCount]
}

// FigureVariable pairs a rendered figure output with its storage kind and
// location (spec.md §3's `FigureProgram.variables`/`entities` element).
type FigureVariable struct {
	Type ValueType
	Loc  Loc
}

// FigureProgram is the program the projector evaluates to produce
// renderable primitives (spec.md §3, §6.2).
type FigureProgram struct {
	Base      Program
	Variables []FigureVariable
	Entities  []FigureVariable
}

// ExactToValue converts an exact constant into the VM's runtime Value
// representation for the constant pool. Scalars are stored as Real; the
// constant-pool representation has no notion of a complex literal (no
// ExprKind variant produces one), so this is the only conversion needed.
func ExactToValue(v number.Exact) Value {
	return Real{V: v.Float64()}
}
