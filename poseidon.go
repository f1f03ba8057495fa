package poseidon5

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/poseidon5/internal/field"
	"github.com/vocdoni/poseidon5/internal/params"
)

// Rate is the number of inputs absorbed by one compression.
const Rate = params.Width - 1

// state is the permutation state: slot 0 is the capacity/output slot, slots 1
// and 2 carry the two inputs.
type state [params.Width]*big.Int

// permutation implements the width-3, x^5 Poseidon permutation over the field
// described by a parameter set.
type permutation struct {
	params *params.Parameters
	field  *field.Field
}

func newPermutation(p *params.Parameters) (*permutation, error) {
	if err := params.Validate(p); err != nil {
		return nil, err
	}
	f, err := field.New(p.Modulus)
	if err != nil {
		return nil, err
	}
	return &permutation{params: p, field: f}, nil
}

// initialState builds [0, in0 mod p, in1 mod p]. The zero capacity value
// separates this fixed-arity construction from other uses of the permutation.
func (p *permutation) initialState(in0, in1 *big.Int) state {
	return state{new(big.Int), p.field.Reduce(in0), p.field.Reduce(in1)}
}

// permute runs the schedule RF/2 full rounds, RP partial rounds, RF/2 full
// rounds. Round constants are consumed once, in order, Width per round.
func (p *permutation) permute(s state) state {
	rF := p.params.FullRounds / 2
	arc := p.params.RoundConstants
	round := 0

	// First half of full rounds.
	for r := 0; r < rF; r++ {
		s = p.addArcRow(s, arc, round)
		s = p.fullSBox(s)
		s = p.mixLayerMDS(s)
		round++
	}

	// Partial rounds.
	for r := 0; r < p.params.PartialRounds; r++ {
		s = p.addArcRow(s, arc, round)
		s = p.partialSBox(s)
		s = p.mixLayerMDS(s)
		round++
	}

	// Second half of full rounds.
	for r := 0; r < rF; r++ {
		s = p.addArcRow(s, arc, round)
		s = p.fullSBox(s)
		s = p.mixLayerMDS(s)
		round++
	}

	return s
}

// mixLayerMDS returns M·s. The input state is left untouched.
func (p *permutation) mixLayerMDS(s state) state {
	var out state
	for i := range params.Width {
		sum := new(big.Int)
		for j := range params.Width {
			sum = p.field.Add(sum, p.field.Mul(p.params.MDS[i][j], s[j]))
		}
		out[i] = sum
	}
	return out
}

func (p *permutation) addArcRow(s state, arc []*big.Int, row int) state {
	offset := row * params.Width
	var out state
	for i := range params.Width {
		out[i] = p.field.Add(s[i], arc[offset+i])
	}
	return out
}

func (p *permutation) partialSBox(s state) state {
	s[0] = p.field.PowFive(s[0])
	return s
}

func (p *permutation) fullSBox(s state) state {
	for i := range s {
		s[i] = p.field.PowFive(s[i])
	}
	return s
}

// hash compresses two already validated inputs.
func (p *permutation) hash(in0, in1 *big.Int) *big.Int {
	s := p.permute(p.initialState(in0, in1))
	return s[0]
}

func checkInputs(inputs []*big.Int) error {
	if len(inputs) != Rate {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidInputCount, Rate, len(inputs))
	}
	for i, in := range inputs {
		if in == nil {
			return fmt.Errorf("%w: input %d is nil", ErrInvalidInputCount, i)
		}
	}
	return nil
}
