// Package number provides the exact constant type used as a key into the
// compiler's constant pool.
package number

import (
	"fmt"
	"math/big"

	"golang.org/x/exp/constraints"
)

// Exact is an exact rational constant (geo-aid's ProcNum). It supports
// total ordering and value equality so it can key the constant-pool
// interning map: two literals with the same exact value must land in the
// same constant-pool slot.
type Exact struct {
	r *big.Rat
}

// FromInt64 builds an exact constant from an integer.
func FromInt64(v int64) Exact {
	return Exact{r: new(big.Rat).SetInt64(v)}
}

// FromFloat64 builds an exact constant from a float64, at the precision
// float64 itself carries (exact in the sense that no further rounding is
// introduced beyond what the literal already lost).
func FromFloat64(v float64) Exact {
	r := new(big.Rat)
	if r.SetFloat64(v) == nil {
		// v was NaN or +/-Inf; r is left at its zero value (0/1) - fall
		// back to that rather than panic, since geometry literals are
		// never non-finite.
		return Exact{r: new(big.Rat)}
	}
	return Exact{r: r}
}

// ParseExact parses a decimal or rational literal ("1", "1.5", "1/2",
// "-3/4") into an exact constant. Used by the JSON fixture decoder
// (internal/fixture) so test/demo scripts can spell constants the way a script
// author would rather than as raw float64 bit patterns.
func ParseExact(s string) (Exact, error) {
	r := new(big.Rat)
	if _, ok := r.SetString(s); !ok {
		return Exact{}, fmt.Errorf("not a valid exact literal: %q", s)
	}
	return Exact{r: r}, nil
}

// Zero is the exact constant 0.
func Zero() Exact { return FromInt64(0) }

// One is the exact constant 1.
func One() Exact { return FromInt64(1) }

// Float64 converts the exact constant to the nearest float64, e.g. for
// Power.Exponent or for building the VM's ValueEnum.
func (e Exact) Float64() float64 {
	f, _ := e.r.Float64()
	return f
}

// Cmp gives a total order over exact constants (required for determinism
// of iteration order wherever constants end up in a sorted structure).
func (e Exact) Cmp(other Exact) int {
	return e.r.Cmp(other.r)
}

// Equal reports whether two exact constants hold the same rational value.
func (e Exact) Equal(other Exact) bool {
	return e.Cmp(other) == 0
}

// Key returns a comparable Go value suitable for use as a map key, since
// *big.Rat itself is not comparable with ==.
func (e Exact) Key() string {
	return e.r.RatString()
}

func (e Exact) String() string {
	return fmt.Sprintf("%v", e.r.RatString())
}

// Clamp restricts v to [lo, hi], e.g. a quality value to [0, 1] (spec.md
// glossary: "Quality").
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
