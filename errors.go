package poseidon5

import (
	"errors"

	"github.com/vocdoni/poseidon5/internal/field"
	"github.com/vocdoni/poseidon5/internal/params"
	"github.com/vocdoni/poseidon5/witness"
)

var (
	// ErrInvalidInputCount is returned when a hash is not given exactly two inputs.
	ErrInvalidInputCount = errors.New("poseidon5: invalid input count")
	// ErrMalformedParameters is returned for missing or structurally invalid parameters.
	ErrMalformedParameters = params.ErrMalformedParameters
	// ErrInvalidModulus is returned when p cannot define a prime field.
	ErrInvalidModulus = field.ErrInvalidModulus
	// ErrDigestMismatch is returned when a stored digest differs from a fresh one.
	ErrDigestMismatch = witness.ErrDigestMismatch
)
