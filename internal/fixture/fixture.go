// Package fixture decodes a JSON encoding of an unrolled.Program (spec.md
// §6.1's input model). This is not part of the specified interface
// (spec.md §6.2: "no CLI, environment, or persisted state in the core") —
// it exists purely as a developer convenience so cmd/geoaid and tests can
// exercise the pipeline without a real lexer/parser/unroll stage, the way
// the teacher's internal/parser builds ASTs by hand in parser_test.go
// instead of depending on a running parser for unit tests.
//
// Node arrays are decoded in two passes so that a later array entry may be
// referenced by an earlier one (and so every reference to index i within
// one node array resolves to one shared *unrolled.PointNode pointer,
// preserving the identity internal/expand depends on).
package fixture

import (
	"encoding/json"
	"fmt"

	"geoaid/internal/number"
	"geoaid/internal/unrolled"
)

type wirePoint struct {
	Kind  string `json:"kind"`
	Items []int  `json:"items,omitempty"`
	K     int    `json:"k,omitempty"`
	L     int    `json:"l,omitempty"`
	P     int    `json:"p,omitempty"`
	Q     int    `json:"q,omitempty"`
	Circle int   `json:"circle,omitempty"`
	Line   int   `json:"line,omitempty"`
}

type wireLine struct {
	Kind  string `json:"kind"`
	P     int    `json:"p,omitempty"`
	Q     int    `json:"q,omitempty"`
	R     int    `json:"r,omitempty"`
	Line  int    `json:"line,omitempty"`
	Point int    `json:"point,omitempty"`
}

type wireCircle struct {
	Kind   string `json:"kind"`
	Center int    `json:"center,omitempty"`
	Radius int    `json:"radius,omitempty"`
}

type wireScalar struct {
	Kind     string `json:"kind"`
	Value    string `json:"value,omitempty"`
	Plus     []int  `json:"plus,omitempty"`
	Minus    []int  `json:"minus,omitempty"`
	Times    []int  `json:"times,omitempty"`
	By       []int  `json:"by,omitempty"`
	Operand  int    `json:"operand,omitempty"` // scalar index; power's value
	Exponent string `json:"exponent,omitempty"`
	P        int    `json:"p,omitempty"`
	Q        int    `json:"q,omitempty"`
	R        int    `json:"r,omitempty"`
	K        int    `json:"k,omitempty"`
	L        int    `json:"l,omitempty"`
	Point    int    `json:"point,omitempty"` // point-node index
	Line     int    `json:"line,omitempty"`
}

type wireFigureVariable struct {
	Point  *int `json:"point,omitempty"`
	Line   *int `json:"line,omitempty"`
	Circle *int `json:"circle,omitempty"`
	Scalar *int `json:"scalar,omitempty"`
}

type wireRule struct {
	Kind     string     `json:"kind"`
	A        int        `json:"a,omitempty"`
	B        int        `json:"b,omitempty"`
	Items    []wireRule `json:"items,omitempty"`
	Inverted bool       `json:"inverted,omitempty"`
	Weight   string     `json:"weight,omitempty"`
}

type wireFlags struct {
	DistanceLiterals            string `json:"distance_literals"`
	OptimizationsIdenticalExprs bool   `json:"optimizations_identical_exprs"`
	PointBounds                 bool   `json:"point_bounds"`
	HasDistanceLiterals         bool   `json:"has_distance_literals"`
}

type wireProgram struct {
	Points  []wirePoint  `json:"points"`
	Lines   []wireLine   `json:"lines"`
	Circles []wireCircle `json:"circles"`
	Scalars []wireScalar `json:"scalars"`

	Figure struct {
		Variables []wireFigureVariable `json:"variables"`
	} `json:"figure"`
	Adjusted struct {
		Rules []wireRule `json:"rules"`
	} `json:"adjusted"`
	Flags wireFlags `json:"flags"`
}

type decoder struct {
	wire    wireProgram
	points  []*unrolled.PointNode
	lines   []*unrolled.LineNode
	circles []*unrolled.CircleNode
	scalars []*unrolled.ScalarNode
}

// Decode parses a JSON-encoded unrolled.Program fixture.
func Decode(data []byte) (*unrolled.Program, error) {
	var w wireProgram
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}

	d := &decoder{
		wire:    w,
		points:  make([]*unrolled.PointNode, len(w.Points)),
		lines:   make([]*unrolled.LineNode, len(w.Lines)),
		circles: make([]*unrolled.CircleNode, len(w.Circles)),
		scalars: make([]*unrolled.ScalarNode, len(w.Scalars)),
	}
	for i := range d.points {
		d.points[i] = &unrolled.PointNode{}
	}
	for i := range d.lines {
		d.lines[i] = &unrolled.LineNode{}
	}
	for i := range d.circles {
		d.circles[i] = &unrolled.CircleNode{}
	}
	for i := range d.scalars {
		d.scalars[i] = &unrolled.ScalarNode{}
	}

	for i, wp := range w.Points {
		kind, err := d.pointKind(wp)
		if err != nil {
			return nil, fmt.Errorf("fixture: point[%d]: %w", i, err)
		}
		d.points[i].Kind = kind
	}
	for i, wl := range w.Lines {
		kind, err := d.lineKind(wl)
		if err != nil {
			return nil, fmt.Errorf("fixture: line[%d]: %w", i, err)
		}
		d.lines[i].Kind = kind
	}
	for i, wc := range w.Circles {
		kind, err := d.circleKind(wc)
		if err != nil {
			return nil, fmt.Errorf("fixture: circle[%d]: %w", i, err)
		}
		d.circles[i].Kind = kind
	}
	for i, ws := range w.Scalars {
		kind, err := d.scalarKind(ws)
		if err != nil {
			return nil, fmt.Errorf("fixture: scalar[%d]: %w", i, err)
		}
		d.scalars[i].Kind = kind
	}

	figVars := make([]unrolled.FigureVariable, len(w.Figure.Variables))
	for i, fv := range w.Figure.Variables {
		v, err := d.figureVariable(fv)
		if err != nil {
			return nil, fmt.Errorf("fixture: figure.variables[%d]: %w", i, err)
		}
		figVars[i] = v
	}

	rules := make([]unrolled.Rule, len(w.Adjusted.Rules))
	for i, wr := range w.Adjusted.Rules {
		r, err := d.rule(wr)
		if err != nil {
			return nil, fmt.Errorf("fixture: adjusted.rules[%d]: %w", i, err)
		}
		rules[i] = r
	}

	flags := unrolled.Flags{
		OptimizationsIdenticalExprs: w.Flags.OptimizationsIdenticalExprs,
		PointBounds:                 w.Flags.PointBounds,
		HasDistanceLiterals:         w.Flags.HasDistanceLiterals,
	}
	if w.Flags.DistanceLiterals != "" {
		flags.SetDistanceLiterals(unrolled.DistanceLiterals(w.Flags.DistanceLiterals))
	}

	return &unrolled.Program{
		Figure:   unrolled.FigureData{Variables: figVars},
		Adjusted: unrolled.AdjustedData{Rules: rules},
		Flags:    flags,
	}, nil
}

func (d *decoder) pointKind(w wirePoint) (unrolled.PointKind, error) {
	switch w.Kind {
	case "free":
		return unrolled.PointFree{}, nil
	case "average":
		items := make([]*unrolled.PointNode, len(w.Items))
		for i, idx := range w.Items {
			items[i] = d.points[idx]
		}
		return unrolled.PointAverage{Items: items}, nil
	case "line_line_intersection":
		return unrolled.PointLineLineIntersection{K: d.lines[w.K], L: d.lines[w.L]}, nil
	case "circle_center":
		return unrolled.PointCircleCenter{Circle: d.circles[w.Circle]}, nil
	case "on_line":
		return unrolled.PointOnLine{Line: d.lines[w.Line]}, nil
	case "on_circle":
		return unrolled.PointOnCircle{Circle: d.circles[w.Circle]}, nil
	default:
		return nil, fmt.Errorf("unrecognized point kind %q", w.Kind)
	}
}

func (d *decoder) lineKind(w wireLine) (unrolled.LineKind, error) {
	switch w.Kind {
	case "from_points":
		return unrolled.LineFromPoints{P: d.points[w.P], Q: d.points[w.Q]}, nil
	case "angle_bisector":
		return unrolled.LineAngleBisector{P: d.points[w.P], Q: d.points[w.Q], R: d.points[w.R]}, nil
	case "parallel_through":
		return unrolled.LineParallelThrough{Line: d.lines[w.Line], Point: d.points[w.Point]}, nil
	case "perpendicular_through":
		return unrolled.LinePerpendicularThrough{Line: d.lines[w.Line], Point: d.points[w.Point]}, nil
	default:
		return nil, fmt.Errorf("unrecognized line kind %q", w.Kind)
	}
}

func (d *decoder) circleKind(w wireCircle) (unrolled.CircleKind, error) {
	switch w.Kind {
	case "construct":
		return unrolled.CircleConstruct{Center: d.points[w.Center], Radius: d.scalars[w.Radius]}, nil
	default:
		return nil, fmt.Errorf("unrecognized circle kind %q", w.Kind)
	}
}

func (d *decoder) scalarKind(w wireScalar) (unrolled.ScalarKind, error) {
	switch w.Kind {
	case "free_real":
		return unrolled.ScalarFreeReal{}, nil
	case "const":
		v, err := number.ParseExact(w.Value)
		if err != nil {
			return nil, err
		}
		return unrolled.ScalarConst{Value: v}, nil
	case "sum":
		return unrolled.ScalarSum{Plus: d.scalarList(w.Plus), Minus: d.scalarList(w.Minus)}, nil
	case "product":
		return unrolled.ScalarProduct{Times: d.scalarList(w.Times), By: d.scalarList(w.By)}, nil
	case "power":
		exp, err := number.ParseExact(w.Exponent)
		if err != nil {
			return nil, err
		}
		return unrolled.ScalarPower{Value: d.scalars[w.Operand], Exponent: exp}, nil
	case "point_point_distance":
		return unrolled.ScalarPointPointDistance{P: d.points[w.P], Q: d.points[w.Q]}, nil
	case "point_line_distance":
		return unrolled.ScalarPointLineDistance{Point: d.points[w.Point], Line: d.lines[w.Line]}, nil
	case "three_point_angle":
		return unrolled.ScalarThreePointAngle{P: d.points[w.P], Q: d.points[w.Q], R: d.points[w.R]}, nil
	case "three_point_angle_dir":
		return unrolled.ScalarThreePointAngleDir{P: d.points[w.P], Q: d.points[w.Q], R: d.points[w.R]}, nil
	case "two_line_angle":
		return unrolled.ScalarTwoLineAngle{K: d.lines[w.K], L: d.lines[w.L]}, nil
	case "point_x":
		return unrolled.ScalarPointX{Point: d.points[w.Point]}, nil
	case "point_y":
		return unrolled.ScalarPointY{Point: d.points[w.Point]}, nil
	default:
		return nil, fmt.Errorf("unrecognized scalar kind %q", w.Kind)
	}
}

func (d *decoder) scalarList(idxs []int) []*unrolled.ScalarNode {
	out := make([]*unrolled.ScalarNode, len(idxs))
	for i, idx := range idxs {
		out[i] = d.scalars[idx]
	}
	return out
}

func (d *decoder) figureVariable(w wireFigureVariable) (unrolled.FigureVariable, error) {
	var v unrolled.FigureVariable
	switch {
	case w.Point != nil:
		v.Point = d.points[*w.Point]
	case w.Line != nil:
		v.Line = d.lines[*w.Line]
	case w.Circle != nil:
		v.Circle = d.circles[*w.Circle]
	case w.Scalar != nil:
		v.Scalar = d.scalars[*w.Scalar]
	default:
		return v, fmt.Errorf("figure variable has no payload")
	}
	return v, nil
}

func (d *decoder) rule(w wireRule) (unrolled.Rule, error) {
	kind, err := d.ruleKind(w)
	if err != nil {
		return unrolled.Rule{}, err
	}
	weight := number.Zero()
	if w.Weight != "" {
		weight, err = number.ParseExact(w.Weight)
		if err != nil {
			return unrolled.Rule{}, err
		}
	}
	return unrolled.Rule{Kind: kind, Inverted: w.Inverted, Weight: weight}, nil
}

func (d *decoder) ruleKind(w wireRule) (unrolled.RuleKind, error) {
	switch w.Kind {
	case "point_eq":
		return unrolled.RulePointEq{A: d.points[w.A], B: d.points[w.B]}, nil
	case "number_eq":
		return unrolled.RuleNumberEq{A: d.scalars[w.A], B: d.scalars[w.B]}, nil
	case "lt":
		return unrolled.RuleLt{A: d.scalars[w.A], B: d.scalars[w.B]}, nil
	case "gt":
		return unrolled.RuleGt{A: d.scalars[w.A], B: d.scalars[w.B]}, nil
	case "alternative":
		items := make([]unrolled.RuleKind, len(w.Items))
		for i, item := range w.Items {
			k, err := d.ruleKind(item)
			if err != nil {
				return nil, err
			}
			items[i] = k
		}
		return unrolled.RuleAlternative{Items: items}, nil
	case "bias":
		return unrolled.RuleBias{}, nil
	default:
		return nil, fmt.Errorf("unrecognized rule kind %q", w.Kind)
	}
}
