package params

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/tidwall/gjson"

	"github.com/vocdoni/poseidon5/internal/field"
)

// MaxRounds bounds rf+rp so a hostile parameter file cannot force huge allocations.
const MaxRounds = 1 << 16

// JSON keys of the parameter file.
const (
	keyModulus        = "p"
	keyFullRounds     = "rf"
	keyPartialRounds  = "rp"
	keyRoundConstants = "round_constants_flat"
	keyMDS            = "mds"
)

type options struct {
	allowShortConstants bool
	insecureDefaults    bool
}

// Option tweaks how a parameter file is interpreted.
type Option func(*options)

// AllowShortConstants zero-extends a round constant sequence shorter than
// (rf+rp)*3 instead of rejecting it. A digest computed this way will not match
// a circuit that expects the full constant set.
func AllowShortConstants() Option {
	return func(o *options) { o.allowShortConstants = true }
}

// InsecureDefaults substitutes the identity matrix when the file carries no
// mixing matrix. Never use it for values meant to match a production circuit.
func InsecureDefaults() Option {
	return func(o *options) { o.insecureDefaults = true }
}

// Load reads and parses the parameter file at path.
func Load(path string, opts ...Option) (*Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("poseidon5: read parameters: %w", err)
	}
	return Parse(data, opts...)
}

// Parse builds a validated parameter set from the JSON document
//
//	{"p": "...", "rf": 8, "rp": 57, "round_constants_flat": ["..."], "mds": [["..."]]}
//
// p is a decimal string or the name of a curve whose scalar field is used
// (for instance "bn254"). rf and rp may be numbers or decimal strings.
func Parse(data []byte, opts ...Option) (*Parameters, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not a JSON document", ErrMalformedParameters)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedParameters)
	}

	modulus, err := parseModulus(doc.Get(keyModulus))
	if err != nil {
		return nil, err
	}
	f, err := field.New(modulus)
	if err != nil {
		return nil, err
	}
	rf, err := parseRounds(doc.Get(keyFullRounds), keyFullRounds)
	if err != nil {
		return nil, err
	}
	rp, err := parseRounds(doc.Get(keyPartialRounds), keyPartialRounds)
	if err != nil {
		return nil, err
	}
	if rf+rp > MaxRounds {
		return nil, fmt.Errorf("%w: too many rounds (%d > %d)", ErrMalformedParameters, rf+rp, MaxRounds)
	}

	p := &Parameters{
		Modulus:       f.Modulus(),
		FullRounds:    rf,
		PartialRounds: rp,
	}
	if p.RoundConstants, err = parseRoundConstants(f, doc.Get(keyRoundConstants), p.ExpectedConstants(), o.allowShortConstants); err != nil {
		return nil, err
	}
	if p.MDS, err = parseMDS(f, doc.Get(keyMDS), o.insecureDefaults); err != nil {
		return nil, err
	}

	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func parseModulus(r gjson.Result) (*big.Int, error) {
	if !present(r) {
		return nil, fmt.Errorf("%w: %q is missing", ErrMalformedParameters, keyModulus)
	}
	if r.Type != gjson.String && r.Type != gjson.Number {
		return nil, fmt.Errorf("%w: %q must be a decimal string", ErrMalformedParameters, keyModulus)
	}
	text := strings.TrimSpace(r.String())
	if v, ok := new(big.Int).SetString(text, 10); ok {
		return v, nil
	}
	if r.Type == gjson.String {
		if id, err := ecc.IDFromString(strings.ToLower(text)); err == nil {
			return id.ScalarField(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q is neither a decimal integer nor a known curve: %q", ErrMalformedParameters, keyModulus, text)
}

func parseRounds(r gjson.Result, key string) (int, error) {
	if !present(r) {
		return 0, fmt.Errorf("%w: %q is missing", ErrMalformedParameters, key)
	}
	if r.Type != gjson.String && r.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %q must be an integer", ErrMalformedParameters, key)
	}
	n, err := strconv.Atoi(strings.TrimSpace(r.String()))
	if err != nil {
		return 0, fmt.Errorf("%w: %q must be an integer: %v", ErrMalformedParameters, key, err)
	}
	if n < 0 || n > MaxRounds {
		return 0, fmt.Errorf("%w: %q out of range: %d", ErrMalformedParameters, key, n)
	}
	return n, nil
}

func parseElement(f *field.Field, r gjson.Result, what string) (*big.Int, error) {
	if r.Type != gjson.String && r.Type != gjson.Number {
		return nil, fmt.Errorf("%w: %s must be a decimal string", ErrMalformedParameters, what)
	}
	v, err := f.Parse(r.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedParameters, what, err)
	}
	return v, nil
}

func parseRoundConstants(f *field.Field, r gjson.Result, expected int, allowShort bool) ([]*big.Int, error) {
	var raw []gjson.Result
	if present(r) {
		if !r.IsArray() {
			return nil, fmt.Errorf("%w: %q must be an array", ErrMalformedParameters, keyRoundConstants)
		}
		raw = r.Array()
	}
	switch {
	case len(raw) > expected:
		return nil, fmt.Errorf("%w: %d round constants supplied, schedule consumes %d", ErrMalformedParameters, len(raw), expected)
	case len(raw) < expected && !allowShort:
		return nil, fmt.Errorf("%w: %d round constants supplied, schedule needs %d", ErrMalformedParameters, len(raw), expected)
	}

	out := make([]*big.Int, expected)
	for i := range out {
		if i >= len(raw) {
			out[i] = new(big.Int)
			continue
		}
		v, err := parseElement(f, raw[i], fmt.Sprintf("round constant %d", i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseMDS(f *field.Field, r gjson.Result, insecureDefaults bool) ([Width][Width]*big.Int, error) {
	var m [Width][Width]*big.Int
	if !present(r) {
		if insecureDefaults {
			return Identity(), nil
		}
		return m, fmt.Errorf("%w: %q is missing", ErrMalformedParameters, keyMDS)
	}
	rows := r.Array()
	if !r.IsArray() || len(rows) != Width {
		return m, fmt.Errorf("%w: %q must be a %dx%d array", ErrMalformedParameters, keyMDS, Width, Width)
	}
	for i, row := range rows {
		cols := row.Array()
		if !row.IsArray() || len(cols) != Width {
			return m, fmt.Errorf("%w: %q row %d must have %d entries", ErrMalformedParameters, keyMDS, i, Width)
		}
		for j, c := range cols {
			v, err := parseElement(f, c, fmt.Sprintf("mds[%d][%d]", i, j))
			if err != nil {
				return m, err
			}
			m[i][j] = v
		}
	}
	return m, nil
}
