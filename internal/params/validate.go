package params

import (
	"errors"
	"fmt"

	"github.com/vocdoni/poseidon5/internal/field"
)

// ErrMalformedParameters is returned for parameter sets with missing or
// structurally invalid fields.
var ErrMalformedParameters = errors.New("poseidon5: malformed parameters")

// Validate checks basic shape and sizes of the parameter set, and that every
// constant is a canonical element of the field.
func Validate(p *Parameters) error {
	if p == nil {
		return fmt.Errorf("%w: nil parameter set", ErrMalformedParameters)
	}
	f, err := field.New(p.Modulus)
	if err != nil {
		return err
	}
	if p.FullRounds < 0 || p.PartialRounds < 0 {
		return fmt.Errorf("%w: negative round count (rf=%d, rp=%d)", ErrMalformedParameters, p.FullRounds, p.PartialRounds)
	}
	if p.FullRounds%2 != 0 {
		return fmt.Errorf("%w: full rounds must be even, got %d", ErrMalformedParameters, p.FullRounds)
	}
	if len(p.RoundConstants) != p.ExpectedConstants() {
		return fmt.Errorf("%w: round constants length mismatch (expected %d, got %d)",
			ErrMalformedParameters, p.ExpectedConstants(), len(p.RoundConstants))
	}
	for i, c := range p.RoundConstants {
		if !f.IsCanonical(c) {
			return fmt.Errorf("%w: round constant %d is not a field element", ErrMalformedParameters, i)
		}
	}
	for i := range Width {
		for j := range Width {
			if !f.IsCanonical(p.MDS[i][j]) {
				return fmt.Errorf("%w: mds[%d][%d] is not a field element", ErrMalformedParameters, i, j)
			}
		}
	}
	return nil
}
