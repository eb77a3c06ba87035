package unrolled

// DistanceLiterals selects how bare numeric distance literals in the
// source script are handled (spec.md §6.1).
type DistanceLiterals string

const (
	DistanceLiteralsNone   DistanceLiterals = "none"
	DistanceLiteralsAdjust DistanceLiterals = "adjust"
	DistanceLiteralsSolve  DistanceLiterals = "solve"
)

// Flags holds the recognized compile-time options (spec.md §6.1).
type Flags struct {
	DistanceLiterals             DistanceLiterals
	OptimizationsIdenticalExprs  bool
	PointBounds                  bool
	distanceLiteralsSet          bool
	// HasDistanceLiterals records whether the program actually contains any
	// bare distance literal; used by Validate to raise RequiredFlagNotSet.
	HasDistanceLiterals bool
}

// SetDistanceLiterals records an explicit choice for the DistanceLiterals
// flag, distinguishing "left at the zero value" from "explicitly set to
// none" for RequiredFlagNotSet purposes.
func (f *Flags) SetDistanceLiterals(v DistanceLiterals) {
	f.DistanceLiterals = v
	f.distanceLiteralsSet = true
}

// WasDistanceLiteralsSet reports whether SetDistanceLiterals was ever
// called, as opposed to DistanceLiterals merely holding its zero value.
func (f Flags) WasDistanceLiteralsSet() bool {
	return f.distanceLiteralsSet
}
