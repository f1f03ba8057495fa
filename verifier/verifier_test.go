package verifier

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const fakeSnarkjs = `#!/bin/sh
if [ "$1" = "-v" ]; then
  echo "snarkjs@0.7.4"
  exit 0
fi
if [ "$1" = "groth16" ] && [ "$2" = "verify" ]; then
  read line < "$5"
  [ "$line" = "valid" ] && exit 0
  echo "[ERROR] snarkJS: Invalid proof"
  exit 1
fi
exit 99
`

func writeArtifacts(t *testing.T, dir, proof string) Artifacts {
	t.Helper()
	a := ArtifactsIn(dir)
	require.NoError(t, os.WriteFile(a.VerificationKey, []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(a.PublicInputs, []byte(`["42"]`), 0o644))
	require.NoError(t, os.WriteFile(a.Proof, []byte(proof+"\n"), 0o644))
	return a
}

func TestArtifactsPresent(t *testing.T) {
	dir := t.TempDir()
	a := ArtifactsIn(dir)
	require.False(t, a.Present())
	writeArtifacts(t, dir, "valid")
	require.True(t, a.Present())
	require.Equal(t, filepath.Join(dir, ProofFile), a.Proof)
}

func TestResolveAndVerify(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub")
	}
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "snarkjs"), []byte(fakeSnarkjs), 0o755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	ctx := context.Background()
	v, err := Resolve(ctx, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, []string{"snarkjs"}, v.Command)

	good := writeArtifacts(t, t.TempDir(), "valid")
	require.NoError(t, v.Verify(ctx, good))

	bad := writeArtifacts(t, t.TempDir(), "tampered")
	require.ErrorIs(t, v.Verify(ctx, bad), ErrVerifyFailed)
}

func TestResolveNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := Resolve(context.Background(), zerolog.Nop())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCheckPublicInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), PublicInputsFile)
	require.NoError(t, os.WriteFile(path, []byte(`["7", 42]`), 0o644))

	require.NoError(t, CheckPublicInput(path, "42"))
	require.NoError(t, CheckPublicInput(path, "7"))
	require.ErrorIs(t, CheckPublicInput(path, "43"), ErrPublicInputMismatch)

	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0o644))
	require.Error(t, CheckPublicInput(path, "1"))
}
