package poseidon5

import (
	"context"
	"fmt"
	"math/big"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Hasher computes the 2-to-1 compression for one parameter set. It holds no
// mutable state and may be shared freely between goroutines.
type Hasher struct {
	perm *permutation
}

// NewHasher validates the parameter set and returns a hasher bound to it. The
// parameter set must not be modified afterwards.
func NewHasher(p *Parameters) (*Hasher, error) {
	perm, err := newPermutation(p)
	if err != nil {
		return nil, err
	}
	return &Hasher{perm: perm}, nil
}

// Params returns the parameter set the hasher was built with. Callers must
// treat it as read-only.
func (h *Hasher) Params() *Parameters {
	return h.perm.params
}

// Modulus returns a copy of the field modulus.
func (h *Hasher) Modulus() *big.Int {
	return h.perm.field.Modulus()
}

// Hash compresses exactly two inputs into one field element. Inputs may be
// negative or larger than the modulus; they are reduced first.
func (h *Hasher) Hash(inputs ...*big.Int) (*big.Int, error) {
	if err := checkInputs(inputs); err != nil {
		return nil, err
	}
	return h.perm.hash(inputs[0], inputs[1]), nil
}

// Hash2 is Hash(a, b).
func (h *Hasher) Hash2(a, b *big.Int) (*big.Int, error) {
	return h.Hash(a, b)
}

// HashDecimal is Hash over base-10 string inputs.
func (h *Hasher) HashDecimal(inputs ...string) (*big.Int, error) {
	if len(inputs) != Rate {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidInputCount, Rate, len(inputs))
	}
	values := make([]*big.Int, len(inputs))
	for i, s := range inputs {
		v, err := h.perm.field.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("poseidon5: input %d: %w", i, err)
		}
		values[i] = v
	}
	return h.Hash(values...)
}

// HashBatch hashes every pair concurrently. Results keep the order of pairs.
// Scheduling stops as soon as ctx is done.
func (h *Hasher) HashBatch(ctx context.Context, pairs [][Rate]*big.Int) ([]*big.Int, error) {
	out := make([]*big.Int, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range pairs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := h.Hash(pairs[i][0], pairs[i][1])
			if err != nil {
				return fmt.Errorf("poseidon5: pair %d: %w", i, err)
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
