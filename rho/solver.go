package rho

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/takakv/pollard-rho/group"
	"github.com/takakv/pollard-rho/logger"
	"github.com/takakv/pollard-rho/walk"
)

// ErrVerification is returned when an extracted logarithm does not map g to
// h, which happens when h is not in the subgroup generated by g.
var ErrVerification = errors.New("logarithm does not verify")

// WalkKind selects the walk function.
type WalkKind string

const (
	StandardWalk WalkKind = "standard"
	AddingWalk   WalkKind = "adding"
)

// ParseWalkKind accepts "standard" or "adding".
func ParseWalkKind(s string) (WalkKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "std":
		return StandardWalk, nil
	case "", "adding", "r-adding":
		return AddingWalk, nil
	default:
		return "", fmt.Errorf("unknown walk %q", s)
	}
}

// DefaultMaxCandidates is the default bound on gcd(B-b, N) below which a
// degenerate collision is resolved by testing each candidate logarithm.
const DefaultMaxCandidates = 1 << 10

// Config holds the solver parameters.
type Config struct {
	Walk      WalkKind
	TableSize int           // number of jumps of the adding walk
	Hash      walk.HashFunc // bucket hash of the adding walk
	MaxSteps  uint64        // per attempt; 0 means unbounded
	// MaxAttempts bounds the number of walks started when collisions are
	// degenerate or the step bound is hit.
	MaxAttempts int
	// MaxCandidates bounds gcd(B-b, N) for which the candidate logarithms of
	// a degenerate collision are tested instead of restarting. 0 disables it.
	MaxCandidates uint64
	// Rand overrides the generator seeded from Entropy.
	Rand    *rand.Rand
	Entropy io.Reader
}

// DefaultConfig returns an adding walk with the default table size and
// crypto/rand seeding.
func DefaultConfig() Config {
	return Config{
		Walk:          AddingWalk,
		TableSize:     walk.DefaultTableSize,
		Hash:          walk.XXHash,
		MaxSteps:      0,
		MaxAttempts:   32,
		MaxCandidates: DefaultMaxCandidates,
		Entropy:       crand.Reader,
	}
}

// Result describes a successful run.
type Result struct {
	Log        *big.Int
	Steps      uint64 // walk applications over all attempts
	Attempts   int
	Degenerate int // attempts that ended in an unresolved degenerate collision
	Candidates int // candidate logarithms tested for degenerate collisions
}

// Solver computes log_g h in G.
type Solver struct {
	G   group.Group
	H   group.Element
	cfg Config
	rng *rand.Rand
}

// NewSolver validates cfg and seeds the solver's generator. The generator is
// owned by the solver and used for adding walk tables and restart points.
func NewSolver(G group.Group, h group.Element, cfg Config) (*Solver, error) {
	if cfg.Walk == StandardWalk {
		if _, ok := G.(*group.ModPGroup); !ok {
			return nil, fmt.Errorf("standard walk needs a Z_p group, got %s", G.Name())
		}
	}
	if cfg.Walk == AddingWalk && cfg.TableSize <= 0 {
		return nil, fmt.Errorf("table size must be positive, got %d", cfg.TableSize)
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	rng := cfg.Rand
	if rng == nil {
		entropy := cfg.Entropy
		if entropy == nil {
			entropy = crand.Reader
		}
		var err error
		if rng, err = walk.NewRand(entropy); err != nil {
			return nil, err
		}
	}

	return &Solver{
		G:   G,
		H:   h,
		cfg: cfg,
		rng: rng,
	}, nil
}

func (s *Solver) newWalk() (walk.Walk, error) {
	switch s.cfg.Walk {
	case StandardWalk:
		return walk.NewStandardWalk(s.G.(*group.ModPGroup), s.H)
	case AddingWalk:
		return walk.NewAddingWalk(s.G, s.H, s.cfg.TableSize, s.rng, s.cfg.Hash)
	default:
		return nil, fmt.Errorf("unknown walk %q", s.cfg.Walk)
	}
}

// start returns the identity for the first attempt and a random point
// afterwards, since a walk from the same point always finds the same
// collision. A random start only helps when B = b (mod N); collisions sharing
// a factor with N are resolved by testing candidates instead.
func (s *Solver) start(attempt int) *walk.State {
	if attempt == 1 {
		return walk.Identity(s.G)
	}
	return walk.RandomState(s.G, s.H, s.rng)
}

// Solve runs walks until one yields a logarithm that verifies, or the attempt
// budget is used up. A degenerate collision with gcd(B-b, N) <= MaxCandidates
// is resolved by testing each of its candidate logarithms. In the latter case the error wraps the outcome of the
// last attempt (ErrDegenerateCollision or ErrNoCollision).
func (s *Solver) Solve(ctx context.Context) (*Result, error) {
	res := &Result{}
	n := s.G.N()
	log := logger.With(zap.String("group", s.G.Name()), zap.String("walk", string(s.cfg.Walk)))

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		res.Attempts = attempt

		w, err := s.newWalk()
		if err != nil {
			return res, err
		}
		d := &Detector{Group: s.G, Walk: w, MaxSteps: s.cfg.MaxSteps}

		c, err := d.Run(ctx, s.start(attempt))
		res.Steps += c.Steps
		if errors.Is(err, ErrNoCollision) {
			log.Warn("step bound reached", zap.Int("attempt", attempt), zap.Uint64("steps", c.Steps))
			lastErr = err
			continue
		}
		if err != nil {
			return res, err
		}

		x, err := Extract(c, n)
		if errors.Is(err, ErrDegenerateCollision) && s.cfg.MaxCandidates > 0 {
			x, err = s.resolve(c, n, res)
		}
		if errors.Is(err, ErrDegenerateCollision) {
			res.Degenerate++
			log.Info("degenerate collision",
				zap.Int("attempt", attempt),
				zap.Uint64("steps", c.Steps),
				zap.Stringer("b", c.Tortoise.B),
				zap.Stringer("B", c.Hare.B),
				zap.Error(err))
			lastErr = err
			if s.cfg.Walk == StandardWalk && sharesFactor(c, n) {
				// The standard walk keeps the factor structure of its exponents
				// from any start, so another attempt hits the same factor.
				return res, fmt.Errorf("standard walk cannot resolve collision: %w", err)
			}
			continue
		}
		if err != nil {
			return res, err
		}

		if !s.G.Element().BaseScale(x).IsEqual(s.H) {
			return res, fmt.Errorf("%w: g^%s != h", ErrVerification, x)
		}

		log.Debug("logarithm found", zap.Int("attempt", attempt), zap.Uint64("steps", res.Steps))
		res.Log = x
		return res, nil
	}

	return res, fmt.Errorf("no logarithm after %d attempts: %w", res.Attempts, lastErr)
}

// resolve tests the candidate logarithms of a degenerate collision and
// returns the one mapping g to h. If there are candidates but none verifies,
// h is outside the subgroup generated by g.
func (s *Solver) resolve(c *Collision, n *big.Int, res *Result) (*big.Int, error) {
	xs, err := Candidates(c, n, s.cfg.MaxCandidates)
	if err != nil {
		return nil, err
	}
	for _, x := range xs {
		res.Candidates++
		if s.G.Element().BaseScale(x).IsEqual(s.H) {
			return x, nil
		}
	}
	return nil, fmt.Errorf("%w: none of %d candidates maps g to h", ErrVerification, len(xs))
}

// sharesFactor reports whether B-b is a nonzero multiple of a proper factor
// of N.
func sharesFactor(c *Collision, n *big.Int) bool {
	d := new(big.Int).Sub(c.Hare.B, c.Tortoise.B)
	d.Mod(d, n)
	if d.Sign() == 0 {
		return false
	}
	return d.GCD(nil, nil, d, n).Cmp(big.NewInt(1)) != 0
}
