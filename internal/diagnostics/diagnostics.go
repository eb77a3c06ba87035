// Package diagnostics renders a human-readable summary of a compiled
// program pair, for CLI output and test failure messages. Grounded on the
// teacher's internal/reporting (a SecurityReport builder keyed by a
// generated report ID with a findings/metrics shape); this package keeps
// the same "assign an ID, summarize counts, render" structure but reports
// compiler statistics instead of security findings.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/kr/pretty"

	"geoaid/internal/bytecode"
)

// CompileReport summarizes one compile_programs() run (spec.md §4). Both
// views compile from one shared expression table (internal/expand's single
// arena), so ExprCount is the arena's total size, not a per-view count.
type CompileReport struct {
	ID string

	EntityCount   int
	ExprCount     int
	FigureOutputs int
	RuleCount     int
	BiasCount     int

	EvaluateMemory uint64
	EvaluateInstrs int
	FigureMemory   uint64
	FigureInstrs   int
}

// NewCompileReport builds a report, assigning it a fresh ID so repeated
// compiles of the same input in a test run or a batch build can be told
// apart in logs even though their contents are byte-identical
// (determinism, spec.md invariant 8 - the report ID is metadata, not part
// of the program).
func NewCompileReport(entityCount, exprCount, figureOutputs int, ev bytecode.EvaluateProgram, fig bytecode.FigureProgram) CompileReport {
	return CompileReport{
		ID:             uuid.NewString(),
		EntityCount:    entityCount,
		ExprCount:      exprCount,
		FigureOutputs:  figureOutputs,
		RuleCount:      int(ev.RuleCount),
		BiasCount:      len(ev.Biases),
		EvaluateMemory: uint64(ev.Base.ReqMemorySize),
		EvaluateInstrs: len(ev.Base.Instructions),
		FigureMemory:   uint64(fig.Base.ReqMemorySize),
		FigureInstrs:   len(fig.Base.Instructions),
	}
}

// String renders a one-paragraph human-readable summary.
func (r CompileReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "compile report %s\n", r.ID)
	fmt.Fprintf(&b, "  entities:  %s\n", humanize.Comma(int64(r.EntityCount)))
	fmt.Fprintf(&b, "  shared:    %s expressions, %s rules (%s biases), %s figure outputs\n",
		humanize.Comma(int64(r.ExprCount)), humanize.Comma(int64(r.RuleCount)),
		humanize.Comma(int64(r.BiasCount)), humanize.Comma(int64(r.FigureOutputs)))
	fmt.Fprintf(&b, "  evaluate:  %s memory slots, %s instructions\n",
		humanize.Comma(int64(r.EvaluateMemory)), humanize.Comma(int64(r.EvaluateInstrs)))
	fmt.Fprintf(&b, "  figure:    %s memory slots, %s instructions\n",
		humanize.Comma(int64(r.FigureMemory)), humanize.Comma(int64(r.FigureInstrs)))
	return b.String()
}

// Dump pretty-prints the full instruction stream of prog for debugging a
// failing compile, using kr/pretty's %#v-style formatter (teacher's
// internal/reporting leans on the same library for its own debug dumps).
func Dump(label string, prog bytecode.Program) string {
	return fmt.Sprintf("%s:\n%s", label, pretty.Sprint(prog.Instructions))
}
