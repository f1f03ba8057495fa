package params

import "math/big"

// Width is the permutation state size: one capacity slot and two rate slots.
const Width = 3

// Parameters bundles all constants needed by the permutation. A parameter set
// is built once and must not be mutated after it has been handed to a hasher.
type Parameters struct {
	Modulus       *big.Int
	FullRounds    int
	PartialRounds int

	// RoundConstants is flattened round by round, Width entries per round.
	RoundConstants []*big.Int
	MDS            [Width][Width]*big.Int
}

// Rounds returns the total number of rounds, full and partial.
func (p *Parameters) Rounds() int {
	return p.FullRounds + p.PartialRounds
}

// ExpectedConstants returns the number of round constants the schedule consumes.
func (p *Parameters) ExpectedConstants() int {
	return p.Rounds() * Width
}

// Identity returns the 3x3 identity matrix. It is only meant for fixtures.
func Identity() [Width][Width]*big.Int {
	var m [Width][Width]*big.Int
	for i := range Width {
		for j := range Width {
			if i == j {
				m[i][j] = big.NewInt(1)
			} else {
				m[i][j] = big.NewInt(0)
			}
		}
	}
	return m
}
