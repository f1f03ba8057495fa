// Package verifier drives an external Groth16 verifier (snarkjs) over the
// artifacts produced for the compression circuit. It never verifies proofs
// itself.
package verifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

var (
	// ErrNotFound is returned when no snarkjs command can be started.
	ErrNotFound = errors.New("poseidon5: snarkjs not found")
	// ErrVerifyFailed is returned when snarkjs rejects the proof.
	ErrVerifyFailed = errors.New("poseidon5: proof verification failed")
	// ErrPublicInputMismatch is returned when the public inputs do not carry the digest.
	ErrPublicInputMismatch = errors.New("poseidon5: public input does not match digest")
)

// Candidates are tried in order by Resolve.
var Candidates = []string{"snarkjs", "npx -y snarkjs", "npx snarkjs"}

// Artifact file names inside the artifacts directory.
const (
	VerificationKeyFile = "verification_key_groth16.json"
	PublicInputsFile    = "public_inputs.json"
	ProofFile           = "proof_groth16.json"
)

// Some snarkjs releases print usage and exit non-zero on a version probe.
var banner = regexp.MustCompile(`(?i)snarkjs|usage:`)

// Artifacts locates the verification key, public inputs and proof.
type Artifacts struct {
	VerificationKey string
	PublicInputs    string
	Proof           string
}

// ArtifactsIn returns the artifact paths under dir.
func ArtifactsIn(dir string) Artifacts {
	return Artifacts{
		VerificationKey: filepath.Join(dir, VerificationKeyFile),
		PublicInputs:    filepath.Join(dir, PublicInputsFile),
		Proof:           filepath.Join(dir, ProofFile),
	}
}

// Present reports whether all three artifact files exist.
func (a Artifacts) Present() bool {
	for _, p := range []string{a.VerificationKey, a.PublicInputs, a.Proof} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// Verifier runs snarkjs commands.
type Verifier struct {
	// Command is the resolved snarkjs invocation, split on spaces.
	Command []string
	Log     zerolog.Logger
}

// Resolve probes Candidates and returns a verifier for the first that runs.
func Resolve(ctx context.Context, log zerolog.Logger) (*Verifier, error) {
	for _, c := range Candidates {
		cmd := strings.Fields(c)
		if _, err := exec.LookPath(cmd[0]); err != nil {
			log.Debug().Str("candidate", c).Msg("not on PATH")
			continue
		}
		out, err := run(ctx, cmd, "-v")
		if err == nil || banner.Match(out) {
			log.Debug().Str("candidate", c).Msg("using snarkjs")
			return &Verifier{Command: cmd, Log: log}, nil
		}
		log.Debug().Str("candidate", c).Err(err).Msg("version probe failed")
	}
	return nil, ErrNotFound
}

// Verify runs `groth16 verify` over the artifacts.
func (v *Verifier) Verify(ctx context.Context, a Artifacts) error {
	out, err := run(ctx, v.Command, "groth16", "verify", a.VerificationKey, a.PublicInputs, a.Proof)
	v.Log.Debug().Str("output", strings.TrimSpace(string(out))).Msg("snarkjs groth16 verify")
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrVerifyFailed, err)
	}
	return nil
}

func run(ctx context.Context, command []string, args ...string) ([]byte, error) {
	argv := append(append([]string{}, command[1:]...), args...)
	cmd := exec.CommandContext(ctx, command[0], argv...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.Bytes(), err
}

// CheckPublicInput fails unless the public inputs file, a JSON array of
// decimal strings, contains digest.
func CheckPublicInput(path, digest string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc := gjson.ParseBytes(data)
	if !gjson.ValidBytes(data) || !doc.IsArray() {
		return fmt.Errorf("poseidon5: %s is not a JSON array", path)
	}
	for _, v := range doc.Array() {
		if v.String() == digest {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not in %s", ErrPublicInputMismatch, digest, path)
}
