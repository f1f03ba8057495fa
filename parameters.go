package poseidon5

import (
	"math/big"

	"github.com/vocdoni/poseidon5/internal/params"
)

// Parameters is the immutable configuration of a hasher: modulus, round
// counts, flattened round constants and the 3x3 mixing matrix.
type Parameters = params.Parameters

// ParameterOption tweaks how a parameter file is interpreted.
type ParameterOption = params.Option

// AllowShortConstants zero-extends a short round constant sequence. Off by
// default: a short sequence is rejected with ErrMalformedParameters.
func AllowShortConstants() ParameterOption { return params.AllowShortConstants() }

// InsecureDefaults substitutes the identity matrix when none is supplied.
func InsecureDefaults() ParameterOption { return params.InsecureDefaults() }

// LoadParameters reads a parameter file (p, rf, rp, round_constants_flat, mds).
func LoadParameters(path string, opts ...ParameterOption) (*Parameters, error) {
	return params.Load(path, opts...)
}

// ParseParameters parses a parameter document held in memory.
func ParseParameters(data []byte, opts ...ParameterOption) (*Parameters, error) {
	return params.Parse(data, opts...)
}

// IdentityMDS returns the identity mixing matrix, for test fixtures only.
func IdentityMDS() [params.Width][params.Width]*big.Int { return params.Identity() }
