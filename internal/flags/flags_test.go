package flags

import (
	"errors"
	"testing"

	geoerrors "geoaid/internal/errors"
	"geoaid/internal/unrolled"
)

func kindOf(t *testing.T, err error) geoerrors.ErrorKind {
	t.Helper()
	var ge *geoerrors.GeoAidError
	if !errors.As(err, &ge) {
		t.Fatalf("expected a *geoerrors.GeoAidError, got %T: %v", err, err)
	}
	return ge.Kind
}

func TestValidateOK(t *testing.T) {
	var f unrolled.Flags
	f.SetDistanceLiterals(unrolled.DistanceLiteralsNone)
	if err := Validate(f); err != nil {
		t.Errorf("Validate(none, no bare literals) = %v, want nil", err)
	}

	var f2 unrolled.Flags
	f2.SetDistanceLiterals(unrolled.DistanceLiteralsAdjust)
	f2.HasDistanceLiterals = true
	if err := Validate(f2); err != nil {
		t.Errorf("Validate(adjust, has bare literals) = %v, want nil", err)
	}
}

func TestValidateRequiredFlagNotSet(t *testing.T) {
	var f unrolled.Flags
	f.HasDistanceLiterals = true
	// DistanceLiterals never set.
	err := Validate(f)
	if err == nil {
		t.Fatal("expected RequiredFlagNotSet, got nil")
	}
	if got := kindOf(t, err); got != geoerrors.RequiredFlagNotSet {
		t.Errorf("kind = %v, want RequiredFlagNotSet", got)
	}
}

func TestValidateFeatureNotSupported(t *testing.T) {
	var f unrolled.Flags
	f.SetDistanceLiterals(unrolled.DistanceLiteralsSolve)
	err := Validate(f)
	if err == nil {
		t.Fatal("expected FeatureNotSupported, got nil")
	}
	if got := kindOf(t, err); got != geoerrors.FeatureNotSupported {
		t.Errorf("kind = %v, want FeatureNotSupported", got)
	}
}

func TestValidateEnumInvalidValue(t *testing.T) {
	var f unrolled.Flags
	f.SetDistanceLiterals(unrolled.DistanceLiterals("bogus"))
	err := Validate(f)
	if err == nil {
		t.Fatal("expected FlagEnumInvalidValue, got nil")
	}
	if got := kindOf(t, err); got != geoerrors.FlagEnumInvalidValue {
		t.Errorf("kind = %v, want FlagEnumInvalidValue", got)
	}
}
