// Package flags validates the compile-time options a script may set
// (spec.md §6.1, §7). This is the one error surface the compilation core
// owns outside of fatal internal-invariant panics.
package flags

import (
	"fmt"

	geoerrors "geoaid/internal/errors"
	"geoaid/internal/unrolled"
)

// Validate checks f against the rules spec.md §7 names:
//
//   - FlagEnumInvalidValue when DistanceLiterals is not one of
//     none/adjust/solve.
//   - FeatureNotSupported when DistanceLiterals = solve (reserved, not
//     implemented).
//   - RequiredFlagNotSet when the script contains a distance literal but
//     no DistanceLiterals choice was ever set.
func Validate(f unrolled.Flags) error {
	if f.HasDistanceLiterals && !f.WasDistanceLiteralsSet() {
		return geoerrors.NewFlagError(geoerrors.RequiredFlagNotSet,
			"distance_literals",
			"the script uses bare distance literals but no distance_literals flag was set")
	}

	switch f.DistanceLiterals {
	case unrolled.DistanceLiteralsNone, "":
		// fine; "" only reachable when HasDistanceLiterals is false.
	case unrolled.DistanceLiteralsAdjust:
		// fine
	case unrolled.DistanceLiteralsSolve:
		return geoerrors.NewFlagError(geoerrors.FeatureNotSupported,
			"distance_literals",
			"distance_literals = solve is reserved and not implemented")
	default:
		return geoerrors.NewFlagError(geoerrors.FlagEnumInvalidValue,
			"distance_literals",
			fmt.Sprintf("unrecognized value %q", f.DistanceLiterals))
	}

	return nil
}
