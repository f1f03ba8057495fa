// Command poseidon5 computes the 2-to-1 Poseidon compression of two decimal
// inputs, records it in the witness file used by the proving pipeline and,
// optionally, checks a Groth16 proof over the same public input with snarkjs.
//
// Exit codes: 0 on success, 1 on computation or configuration failure, 2 when
// the digest disagrees with a previously stored value.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/vocdoni/poseidon5"
	"github.com/vocdoni/poseidon5/verifier"
	"github.com/vocdoni/poseidon5/witness"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitMismatch = 2

	defaultIn0 = "123"
	defaultIn1 = "456"
)

type options struct {
	ParamsFile          string `short:"p" long:"params" description:"Path to the parameter file (p, rf, rp, round_constants_flat, mds)" default:"params/params.json"`
	WitnessFile         string `short:"w" long:"witness" description:"Path to the witness record (in0, in1, pubHash)" default:"input.json"`
	Write               bool   `long:"write" description:"Always overwrite the witness record instead of checking the stored pubHash"`
	AllowShortConstants bool   `long:"allow-short-constants" description:"Zero-extend a short round constant list. Digests will not match a circuit expecting the full set."`
	InsecureDefaults    bool   `long:"insecure-defaults" description:"Use the identity matrix when the parameter file has no mds. Test fixtures only."`
	Verify              bool   `long:"verify" description:"Verify the Groth16 proof in the artifacts directory with snarkjs"`
	ArtifactsDir        string `long:"artifacts" description:"Directory holding verification_key_groth16.json, public_inputs.json and proof_groth16.json" default:"set_result"`
	BatchFile           string `long:"batch" description:"Hash every {in0, in1} object of a JSON array concurrently and print one witness record per line"`
	LogLevel            string `short:"l" long:"loglevel" description:"Set the logging level [debug, info, warn, error]" default:"info"`

	Args struct {
		In0 string `positional-arg-name:"in0" description:"First preimage, decimal (default 123)"`
		In1 string `positional-arg-name:"in1" description:"Second preimage, decimal (default 456)"`
	} `positional-args:"yes"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger(), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	log, err := newLogger(stderr, opts.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "invalid log level %q: %v\n", opts.LogLevel, err)
		return exitFailure
	}

	var popts []poseidon5.ParameterOption
	if opts.AllowShortConstants {
		log.Warn().Msg("short round constant lists will be zero-extended")
		popts = append(popts, poseidon5.AllowShortConstants())
	}
	if opts.InsecureDefaults {
		log.Warn().Msg("insecure defaults enabled, a missing mds becomes the identity matrix")
		popts = append(popts, poseidon5.InsecureDefaults())
	}
	params, err := poseidon5.LoadParameters(opts.ParamsFile, popts...)
	if err != nil {
		log.Error().Err(err).Str("file", opts.ParamsFile).Msg("cannot load parameters")
		return exitFailure
	}
	h, err := poseidon5.NewHasher(params)
	if err != nil {
		log.Error().Err(err).Msg("invalid parameter set")
		return exitFailure
	}
	log.Debug().
		Int("rf", params.FullRounds).
		Int("rp", params.PartialRounds).
		Int("modulusBits", params.Modulus.BitLen()).
		Msg("parameters loaded")

	if opts.BatchFile != "" {
		return runBatch(ctx, h, opts.BatchFile, stdout, log)
	}

	in0, in1 := opts.Args.In0, opts.Args.In1
	if in0 == "" {
		in0 = defaultIn0
	}
	if in1 == "" {
		in1 = defaultIn1
	}
	digest, err := h.HashDecimal(in0, in1)
	if err != nil {
		log.Error().Err(err).Msg("cannot compute digest")
		return exitFailure
	}
	pubHash := digest.String()
	log.Info().Str("in0", in0).Str("in1", in1).Str("pubHash", pubHash).Msg("digest computed")
	fmt.Fprintln(stdout, pubHash)

	w := &witness.Witness{In0: in0, In1: in1, PubHash: pubHash}
	if opts.Write {
		if err := witness.Write(opts.WitnessFile, w); err != nil {
			log.Error().Err(err).Str("file", opts.WitnessFile).Msg("cannot write witness")
			return exitFailure
		}
		log.Info().Str("file", opts.WitnessFile).Msg("witness written")
	} else {
		status, err := witness.Check(opts.WitnessFile, w)
		switch {
		case errors.Is(err, poseidon5.ErrDigestMismatch):
			log.Error().Err(err).Msg("stored pubHash disagrees with the computed digest")
			return exitMismatch
		case err != nil:
			log.Error().Err(err).Str("file", opts.WitnessFile).Msg("cannot check witness")
			return exitFailure
		}
		log.Info().Str("file", opts.WitnessFile).Stringer("status", status).Msg("witness checked")
	}

	if opts.Verify {
		return runVerify(ctx, opts.ArtifactsDir, pubHash, log)
	}
	return exitOK
}

func runVerify(ctx context.Context, dir, pubHash string, log zerolog.Logger) int {
	artifacts := verifier.ArtifactsIn(dir)
	if !artifacts.Present() {
		log.Warn().Str("dir", dir).Msg("no proof artifacts found, skipping verification")
		return exitOK
	}
	if err := verifier.CheckPublicInput(artifacts.PublicInputs, pubHash); err != nil {
		if errors.Is(err, verifier.ErrPublicInputMismatch) {
			log.Error().Err(err).Msg("proof public input disagrees with the computed digest")
			return exitMismatch
		}
		log.Error().Err(err).Msg("cannot read public inputs")
		return exitFailure
	}
	v, err := verifier.Resolve(ctx, log)
	if err != nil {
		log.Warn().Err(err).Msg("install circom and snarkjs to verify proofs")
		return exitOK
	}
	if err := v.Verify(ctx, artifacts); err != nil {
		log.Error().Err(err).Msg("proof rejected")
		return exitFailure
	}
	log.Info().Str("dir", dir).Msg("proof verified")
	return exitOK
}

func runBatch(ctx context.Context, h *poseidon5.Hasher, path string, stdout io.Writer, log zerolog.Logger) int {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("cannot read batch")
		return exitFailure
	}
	doc := gjson.ParseBytes(data)
	if !gjson.ValidBytes(data) || !doc.IsArray() {
		log.Error().Str("file", path).Msg("batch must be a JSON array of {in0, in1} objects")
		return exitFailure
	}

	entries := doc.Array()
	raw := make([][2]string, len(entries))
	pairs := make([][poseidon5.Rate]*big.Int, len(entries))
	for i, e := range entries {
		raw[i] = [2]string{e.Get("in0").String(), e.Get("in1").String()}
		for j, s := range raw[i] {
			v, ok := new(big.Int).SetString(s, 10)
			if !ok {
				log.Error().Int("entry", i).Str("value", s).Msg("batch input is not a decimal integer")
				return exitFailure
			}
			pairs[i][j] = v
		}
	}

	start := time.Now()
	digests, err := h.HashBatch(ctx, pairs)
	if err != nil {
		log.Error().Err(err).Msg("batch failed")
		return exitFailure
	}
	for i, d := range digests {
		line, _ := sjson.Set("", "in0", raw[i][0])
		line, _ = sjson.Set(line, "in1", raw[i][1])
		line, _ = sjson.Set(line, "pubHash", d.String())
		fmt.Fprintln(stdout, line)
	}
	log.Info().Int("count", len(digests)).Dur("elapsed", time.Since(start)).Msg("batch hashed")
	return exitOK
}
