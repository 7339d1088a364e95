package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"math/big"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/takakv/pollard-rho/config"
	"github.com/takakv/pollard-rho/group"
	"github.com/takakv/pollard-rho/logger"
	"github.com/takakv/pollard-rho/rho"
	"github.com/takakv/pollard-rho/util"
)

const usage = `usage: pollard-rho [flags] p N g h r

Computes x with h = g^x mod p in the subgroup of order N generated by g.
r is the number of precomputed jumps of the adding walk.

`

// Params are the five positional arguments.
type Params struct {
	P, N, G, H *big.Int
	R          int
}

func parseParams(args []string) (*Params, error) {
	if len(args) != 5 {
		return nil, fmt.Errorf("expected 5 arguments, got %d", len(args))
	}
	var (
		pp  Params
		err error
	)
	if pp.P, err = util.ParseDecimal(args[0], "p"); err != nil {
		return nil, err
	}
	if pp.N, err = util.ParseDecimal(args[1], "N"); err != nil {
		return nil, err
	}
	if pp.G, err = util.ParseDecimal(args[2], "g"); err != nil {
		return nil, err
	}
	if pp.H, err = util.ParseDecimal(args[3], "h"); err != nil {
		return nil, err
	}
	if pp.H.Cmp(pp.P) >= 0 {
		return nil, fmt.Errorf("h = %s is not in [0, p)", pp.H)
	}
	if pp.R, err = util.ParseInt(args[4], "r"); err != nil {
		return nil, err
	}
	return &pp, nil
}

// Flag names mapped to config keys.
var flagKeys = map[string]string{
	"walk":       "walk",
	"hash":       "hash",
	"max-steps":  "maxsteps",
	"attempts":   "maxattempts",
	"candidates": "maxcandidates",
	"seed":       "seed",
	"entropy":    "entropy",
	"log-level":  "log.level",
	"log-file":   "log.filename",
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pollard-rho", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "YAML config file")
	stats := fs.Bool("stats", false, "print the step count next to sqrt(N)")
	fs.String("walk", "adding", "walk function: standard|adding")
	fs.String("hash", "xxhash", "bucket hash of the adding walk: xxhash|fnv1")
	fs.Uint64("max-steps", 0, "walk applications per attempt, 0 for no bound")
	fs.Int("attempts", 32, "walks to try before giving up")
	fs.Uint64("candidates", rho.DefaultMaxCandidates, "largest gcd(B-b, N) whose candidate logarithms are tested, 0 to restart instead")
	fs.Uint64("seed", 0, "fixed generator seed, 0 to read the entropy source")
	fs.String("entropy", "", "entropy file such as /dev/urandom (default crypto/rand)")
	fs.String("log-level", "warn", "debug|info|warn|error")
	fs.String("log-file", "", "log to a rotated file instead of stderr")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	pp, err := parseParams(fs.Args())
	if err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return 2
	}

	overrides := make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides[key] = f.Value.String()
		}
	})
	overrides["tablesize"] = pp.R

	cfg, err := config.LoadConfig(*configPath, overrides)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if err := logger.InitLogger(&cfg.Log, stderr); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer logger.Sync()

	solverCfg, err := cfg.SolverConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	G, err := group.NewModPGroup("Z_p", pp.P, pp.N, pp.G)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	h := G.NewElement(pp.H)

	solver, err := rho.NewSolver(G, h, solverCfg)
	if err != nil {
		logger.Error("solver setup failed", zap.Error(err))
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger.Info("solving",
		zap.Stringer("p", pp.P),
		zap.Stringer("N", pp.N),
		zap.String("walk", cfg.Walk),
		zap.Int("r", cfg.TableSize))

	res, err := solver.Solve(ctx)
	switch {
	case err == nil:
		fmt.Fprintln(stdout, res.Log)
	case errors.Is(err, rho.ErrDegenerateCollision):
		logger.Warn("no usable collision", zap.Error(err), zap.Int("attempts", res.Attempts))
		fmt.Fprintln(stdout, "degenerate collision")
	default:
		logger.Error("solve failed", zap.Error(err))
		fmt.Fprintln(stderr, err)
	}

	if *stats && res != nil {
		fmt.Fprintln(stdout, diagnostic(res.Steps, pp.N))
	}
	if err != nil {
		return 1
	}
	return 0
}

// diagnostic renders the step count against the expected O(sqrt(N)).
func diagnostic(steps uint64, n *big.Int) string {
	if n64, ok := util.FitsUint64(n); ok {
		return fmt.Sprintf("%d / sqrt(%d) = %.3f", steps, n64, float64(steps)/math.Sqrt(float64(n64)))
	}
	return fmt.Sprintf("%d / sqrt(%s)", steps, n)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
