// cmd/geoaid/commands/build.go
package commands

import (
	"fmt"
	"log"
	"os"

	geoerrors "geoaid/internal/errors"
	"geoaid/internal/compiler"
	"geoaid/internal/diagnostics"
	"geoaid/internal/expand"
	"geoaid/internal/fixture"
	"geoaid/internal/flags"
)

// CompileCommand reads a JSON unrolled-program fixture from args[0],
// compiles it, and logs a diagnostics.CompileReport. The CLI is glue, not
// a feature: every error it can produce was already named by the core
// (geoaid/internal/errors, geoaid/internal/flags) or by Go's encoding/json.
func CompileCommand(logger *log.Logger, args []string) (err error) {
	if len(args) == 0 {
		return fmt.Errorf("usage: geoaid compile <fixture.json>")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading fixture: %w", err)
	}

	prog, err := fixture.Decode(data)
	if err != nil {
		return err
	}

	if verr := flags.Validate(prog.Flags); verr != nil {
		return verr
	}

	// Internal-invariant violations during Expand/Compile are fatal
	// panics (spec.md §7); this is the recover boundary that turns them
	// back into a regular error for the CLI to report.
	defer geoerrors.Recover(&err)

	result := expand.Expand(prog)
	ev, fig := compiler.CompileProgram(result.Record, result.FigureRoots, result.Entities)

	report := diagnostics.NewCompileReport(
		result.Entities.Len(),
		len(result.Record.Variables),
		len(result.FigureRoots),
		ev, fig,
	)
	logger.Print(report.String())
	return nil
}
