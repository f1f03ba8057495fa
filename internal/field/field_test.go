package field

import (
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func mustField(t *testing.T, p int64) *Field {
	t.Helper()
	f, err := New(big.NewInt(p))
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	return f
}

func TestNewRejectsBadModulus(t *testing.T) {
	cases := []struct {
		name string
		p    *big.Int
	}{
		{"nil", nil},
		{"zero", big.NewInt(0)},
		{"negative", big.NewInt(-101)},
		{"one", big.NewInt(1)},
		{"composite", big.NewInt(100)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.p); !errors.Is(err, ErrInvalidModulus) {
				t.Fatalf("expected ErrInvalidModulus, got %v", err)
			}
		})
	}
}

func TestModulusIsCopied(t *testing.T) {
	p := big.NewInt(101)
	f, err := New(p)
	if err != nil {
		t.Fatal(err)
	}
	p.SetInt64(103)
	if f.Modulus().Int64() != 101 {
		t.Fatalf("field modulus changed with caller's value")
	}
	f.Modulus().SetInt64(7)
	if f.Modulus().Int64() != 101 {
		t.Fatalf("Modulus leaked internal state")
	}
}

func TestReduce(t *testing.T) {
	f := mustField(t, 101)
	cases := []struct {
		in   *big.Int
		want int64
	}{
		{big.NewInt(0), 0},
		{big.NewInt(100), 100},
		{big.NewInt(101), 0},
		{big.NewInt(123), 22},
		{big.NewInt(456), 52},
		{big.NewInt(-1), 100},
		{big.NewInt(-5), 96},
		{big.NewInt(-202), 0},
		{new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil), 1},
	}
	for _, tc := range cases {
		in := new(big.Int).Set(tc.in)
		got := f.Reduce(in)
		if got.Int64() != tc.want {
			t.Fatalf("reduce(%s): expected %d, got %s", tc.in, tc.want, got)
		}
		if in.Cmp(tc.in) != 0 {
			t.Fatalf("reduce mutated its argument")
		}
	}
}

func TestPowFiveSmallField(t *testing.T) {
	f := mustField(t, 101)
	if got := f.PowFive(big.NewInt(22)); got.Int64() != 6 {
		t.Fatalf("22^5 mod 101: expected 6, got %s", got)
	}
	if got := f.PowFive(big.NewInt(52)); got.Int64() != 36 {
		t.Fatalf("52^5 mod 101: expected 36, got %s", got)
	}
	if got := f.PowFive(big.NewInt(0)); got.Sign() != 0 {
		t.Fatalf("0^5: expected 0, got %s", got)
	}
}

func TestParse(t *testing.T) {
	f := mustField(t, 101)
	got, err := f.Parse(" 456 ")
	if err != nil {
		t.Fatal(err)
	}
	if got.Int64() != 52 {
		t.Fatalf("expected 52, got %s", got)
	}
	got, err = f.Parse("-5")
	if err != nil {
		t.Fatal(err)
	}
	if got.Int64() != 96 {
		t.Fatalf("expected 96, got %s", got)
	}
	for _, bad := range []string{"", "0x10", "12a", "1.5"} {
		if _, err := f.Parse(bad); err == nil {
			t.Fatalf("expected error parsing %q", bad)
		}
	}
}

func TestArithmeticProperties(t *testing.T) {
	f, err := New(ecc.BN254.ScalarField())
	if err != nil {
		t.Fatal(err)
	}
	p := f.Modulus()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genBig := gen.SliceOfN(5, gen.Int64()).Map(func(limbs []int64) *big.Int {
		// Build values well beyond p, including negative ones.
		acc := new(big.Int)
		for _, l := range limbs {
			acc.Lsh(acc, 63)
			acc.Add(acc, big.NewInt(l))
		}
		return acc
	})

	properties.Property("reduce is canonical and congruent", prop.ForAll(
		func(x *big.Int) bool {
			r := f.Reduce(x)
			diff := new(big.Int).Sub(x, r)
			return f.IsCanonical(r) && new(big.Int).Mod(diff, p).Sign() == 0
		},
		genBig,
	))

	properties.Property("pow five matches big.Int.Exp", prop.ForAll(
		func(x *big.Int) bool {
			want := new(big.Int).Exp(f.Reduce(x), big.NewInt(5), p)
			return f.PowFive(f.Reduce(x)).Cmp(want) == 0
		},
		genBig,
	))

	properties.Property("add and mul stay canonical", prop.ForAll(
		func(a, b *big.Int) bool {
			a, b = f.Reduce(a), f.Reduce(b)
			return f.IsCanonical(f.Add(a, b)) && f.IsCanonical(f.Mul(a, b))
		},
		genBig, genBig,
	))

	properties.Property("decimal round trip", prop.ForAll(
		func(x *big.Int) bool {
			r := f.Reduce(x)
			back, err := f.Parse(r.String())
			return err == nil && back.Cmp(r) == 0
		},
		genBig,
	))

	properties.TestingRun(t)
}
