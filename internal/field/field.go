package field

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrInvalidModulus is returned when a modulus cannot define a prime field.
var ErrInvalidModulus = errors.New("poseidon5: invalid modulus")

// primalityRounds is the number of Miller-Rabin rounds used to accept a modulus.
const primalityRounds = 20

// Field performs arithmetic modulo a prime p. Every value returned by its
// methods is canonical, i.e. in [0, p-1], and freshly allocated.
type Field struct {
	p *big.Int
}

// New returns a field for the prime modulus p. The modulus is copied.
func New(p *big.Int) (*Field, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: missing", ErrInvalidModulus)
	}
	if p.Cmp(big.NewInt(2)) < 0 {
		return nil, fmt.Errorf("%w: %s is not greater than 1", ErrInvalidModulus, p.String())
	}
	if !p.ProbablyPrime(primalityRounds) {
		return nil, fmt.Errorf("%w: %s is not prime", ErrInvalidModulus, p.String())
	}
	return &Field{p: new(big.Int).Set(p)}, nil
}

// Modulus returns a copy of p.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.p)
}

// Reduce maps any integer, negative or far outside the field, into [0, p-1].
func (f *Field) Reduce(x *big.Int) *big.Int {
	// big.Int.Mod is Euclidean: the result is non-negative for p > 0.
	return new(big.Int).Mod(x, f.p)
}

// Add returns a+b mod p.
func (f *Field) Add(a, b *big.Int) *big.Int {
	sum := new(big.Int).Add(a, b)
	return sum.Mod(sum, f.p)
}

// Mul returns a*b mod p.
func (f *Field) Mul(a, b *big.Int) *big.Int {
	prod := new(big.Int).Mul(a, b)
	return prod.Mod(prod, f.p)
}

// PowFive returns x^5 mod p through the chain x^2, x^4, x^5.
func (f *Field) PowFive(x *big.Int) *big.Int {
	x2 := f.Mul(x, x)
	x4 := f.Mul(x2, x2)
	return f.Mul(x4, x)
}

// Parse reads a base-10, optionally signed, integer and reduces it.
func (f *Field) Parse(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("poseidon5: %q is not a decimal integer", s)
	}
	return f.Reduce(v), nil
}

// IsCanonical reports whether 0 <= x < p.
func (f *Field) IsCanonical(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(f.p) < 0
}
