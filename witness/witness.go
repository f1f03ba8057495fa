// Package witness reads and writes the preimage/digest record consumed by the
// circuit proving pipeline: {"in0": "...", "in1": "...", "pubHash": "..."}.
package witness

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ErrDigestMismatch is returned when the stored pubHash differs from the
// freshly computed digest.
var ErrDigestMismatch = errors.New("poseidon5: digest mismatch")

const (
	keyIn0     = "in0"
	keyIn1     = "in1"
	keyPubHash = "pubHash"
)

// Witness is the record handed to the circuit. All values are decimal strings.
type Witness struct {
	In0     string
	In1     string
	PubHash string
}

// Status describes the outcome of Check.
type Status int

const (
	// StatusCreated means the record was written because none was stored.
	StatusCreated Status = iota
	// StatusMatch means the stored pubHash equals the computed digest.
	StatusMatch
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusMatch:
		return "match"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MismatchError carries both digests of a failed comparison. It matches
// ErrDigestMismatch with errors.Is.
type MismatchError struct {
	Path     string
	Stored   string
	Computed string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v in %s: stored %s, computed %s", ErrDigestMismatch, e.Path, e.Stored, e.Computed)
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrDigestMismatch
}

// Read loads the record at path. Values may be JSON strings or numbers; a
// missing pubHash yields an empty PubHash.
func Read(path string) (*Witness, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("poseidon5: %s is not valid JSON", path)
	}
	res := gjson.GetManyBytes(data, keyIn0, keyIn1, keyPubHash)
	return &Witness{
		In0:     res[0].String(),
		In1:     res[1].String(),
		PubHash: res[2].String(),
	}, nil
}

// Write stores w at path. When the file already holds a JSON object, the
// three fields are updated in place and any other key is preserved.
func Write(path string, w *Witness) error {
	doc := []byte("{}")
	if data, err := os.ReadFile(path); err == nil && gjson.ValidBytes(data) && gjson.ParseBytes(data).IsObject() {
		doc = data
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	var err error
	for _, kv := range [...][2]string{{keyIn0, w.In0}, {keyIn1, w.In1}, {keyPubHash, w.PubHash}} {
		if doc, err = sjson.SetBytes(doc, kv[0], kv[1]); err != nil {
			return fmt.Errorf("poseidon5: set %s: %w", kv[0], err)
		}
	}
	doc = pretty.PrettyOptions(doc, &pretty.Options{Indent: "  ", Width: 80})
	return os.WriteFile(path, doc, 0o644)
}

// Check compares w.PubHash with the record stored at path. If no record or
// no stored pubHash exists, w is written and StatusCreated returned. A
// different stored pubHash yields a *MismatchError and leaves the file as is.
func Check(path string, w *Witness) (Status, error) {
	stored, err := Read(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return StatusCreated, Write(path, w)
	case err != nil:
		return 0, err
	case stored.PubHash == "":
		return StatusCreated, Write(path, w)
	case stored.PubHash == w.PubHash:
		return StatusMatch, nil
	default:
		return 0, &MismatchError{Path: path, Stored: stored.PubHash, Computed: w.PubHash}
	}
}
