package rho

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takakv/pollard-rho/group"
	"github.com/takakv/pollard-rho/walk"
)

func modpGroup(t testing.TB, p, n, g int64) *group.ModPGroup {
	t.Helper()
	G, err := group.NewModPGroup("test", big.NewInt(p), big.NewInt(n), big.NewInt(g))
	require.NoError(t, err)
	return G
}

var rfc3526Group1536, _ = group.NewSafePrimeGroup("RFC3526ModPGroup1536",
	`FFFFFFFF FFFFFFFF C90FDAA2 2168C234 C4C6628B 80DC1CD1
	29024E08 8A67CC74 020BBEA6 3B139B22 514A0879 8E3404DD
	EF9519B3 CD3A431B 302B0A6D F25F1437 4FE1356D 6D51C245
	E485B576 625E7EC6 F44C42E9 A637ED6B 0BFF5CB6 F406B7ED
	EE386BFB 5A899FA5 AE9F2411 7C4B1FE6 49286651 ECE45B3D
	C2007CB8 A163BF05 98DA4836 1C55D39A 69163FA8 FD24CF5F
	83655D23 DCA3AD96 1C62F356 208552BB 9ED52907 7096966D
	670C354E 4ABC9804 F1746C08 CA237327 FFFFFFFF FFFFFFFF`, "2")

func TestDetectorStandardWalk(t *testing.T) {
	G := modpGroup(t, 23, 11, 4)
	h := G.Element().BaseScale(big.NewInt(7))
	w, err := walk.NewStandardWalk(G, h)
	require.NoError(t, err)

	start := walk.Identity(G)
	d := &Detector{Group: G, Walk: w}
	c, err := d.Run(context.Background(), start)
	require.NoError(t, err)

	assert.Equal(t, uint64(12), c.Steps)
	assert.True(t, c.Tortoise.X.IsEqual(c.Hare.X))
	assert.True(t, c.Tortoise.X.IsIdentity())
	assert.Equal(t, int64(1), c.Tortoise.A.Int64())
	assert.Equal(t, int64(3), c.Tortoise.B.Int64())
	assert.Equal(t, int64(3), c.Hare.A.Int64())
	assert.Equal(t, int64(9), c.Hare.B.Int64())

	// the start state is left untouched
	assert.True(t, start.X.IsIdentity())
	assert.Zero(t, start.A.Sign())
	assert.Zero(t, start.B.Sign())

	x, err := Extract(c, G.N())
	require.NoError(t, err)
	assert.Equal(t, int64(7), x.Int64())
}

func TestDetectorCollision(t *testing.T) {
	G := modpGroup(t, 10007, 5003, 4)
	h := G.Element().BaseScale(big.NewInt(2024))

	for seed := uint64(0); seed < 8; seed++ {
		w, err := walk.NewAddingWalk(G, h, 20, walk.NewSeededRand(seed, seed+1), walk.XXHash)
		require.NoError(t, err)

		d := &Detector{Group: G, Walk: w}
		c, err := d.Run(context.Background(), walk.Identity(G))
		require.NoError(t, err)

		assert.True(t, c.Tortoise.X.IsEqual(c.Hare.X))
		assert.Zero(t, c.Steps%3)
		differ := c.Tortoise.A.Cmp(c.Hare.A) != 0 || c.Tortoise.B.Cmp(c.Hare.B) != 0
		assert.True(t, differ, "seed %d: exponents of the colliding states are equal", seed)
	}
}

func TestDetectorStepBound(t *testing.T) {
	G := rfc3526Group1536
	h := G.Element().BaseScale(big.NewInt(123456789))
	w, err := walk.NewAddingWalk(G, h, 4, walk.NewSeededRand(1, 2), walk.XXHash)
	require.NoError(t, err)

	d := &Detector{Group: G, Walk: w, MaxSteps: 300}
	c, err := d.Run(context.Background(), walk.Identity(G))
	require.ErrorIs(t, err, ErrNoCollision)
	assert.Equal(t, uint64(300), c.Steps)
	assert.Nil(t, c.Tortoise)
}

func TestDetectorCancel(t *testing.T) {
	G := rfc3526Group1536
	h := G.Element().BaseScale(big.NewInt(42))
	w, err := walk.NewStandardWalk(G, h)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &Detector{Group: G, Walk: w}
	_, err = d.Run(ctx, walk.Identity(G))
	assert.ErrorIs(t, err, context.Canceled)
}

func state(G group.Group, h group.Element, a, b int64) *walk.State {
	return walk.NewState(G, h, big.NewInt(a), big.NewInt(b))
}

func TestExtract(t *testing.T) {
	G := modpGroup(t, 1019, 1018, 2)
	h := G.Element().BaseScale(big.NewInt(100))

	tests := []struct {
		name       string
		a, b, A, B int64
		want       int64
		degenerate bool
	}{
		// a + 100b = A + 100B mod 1018
		{"odd difference", 100, 0, 0, 1, 100, false},
		{"negative difference", 0, 1, 100, 0, 100, false},
		{"wrapped", 5, 3, 723, 6, 100, false},
		{"even difference", 200, 0, 0, 2, 0, true},
		{"shared factor 509", 0, 0, 0, 509, 0, true},
		{"equal exponents", 7, 9, 7, 9, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Collision{Tortoise: state(G, h, tt.a, tt.b), Hare: state(G, h, tt.A, tt.B)}
			x, err := Extract(c, G.N())
			if tt.degenerate {
				require.ErrorIs(t, err, ErrDegenerateCollision)
				assert.Nil(t, x)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, x.Int64())
			assert.True(t, G.Element().BaseScale(x).IsEqual(h))
		})
	}

	_, err := Extract(&Collision{}, G.N())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDegenerateCollision)
}

func TestCandidates(t *testing.T) {
	G := modpGroup(t, 1019, 1018, 2)
	h := G.Element().BaseScale(big.NewInt(100))

	tests := []struct {
		name       string
		a, b, A, B int64
		maxD       uint64
		want       []int64
		degenerate bool
	}{
		{"even difference", 200, 0, 0, 2, 16, []int64{100, 609}, false},
		{"invertible difference", 100, 0, 0, 1, 16, []int64{100}, false},
		{"shared factor 509", 0, 0, 0, 509, 1024, nil, false},
		{"gcd above bound", 0, 0, 0, 509, 16, nil, true},
		{"equal exponents", 7, 9, 7, 9, 1024, nil, true},
		{"no solution", 1, 0, 0, 2, 16, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Collision{Tortoise: state(G, h, tt.a, tt.b), Hare: state(G, h, tt.A, tt.B)}
			xs, err := Candidates(c, G.N(), tt.maxD)
			if tt.degenerate {
				require.ErrorIs(t, err, ErrDegenerateCollision)
				assert.Empty(t, xs)
				return
			}
			require.NoError(t, err)
			if tt.want != nil {
				require.Len(t, xs, len(tt.want))
				for i, x := range xs {
					assert.Equal(t, tt.want[i], x.Int64())
				}
				return
			}

			// 509 * x = 0 mod 1018 holds for every even x.
			require.Len(t, xs, 509)
			found := 0
			for _, x := range xs {
				assert.Zero(t, x.Bit(0))
				if G.Element().BaseScale(x).IsEqual(h) {
					found++
				}
			}
			assert.Equal(t, 1, found)
		})
	}

	_, err := Candidates(&Collision{}, G.N(), 16)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDegenerateCollision)
}

func TestSolverStandardWalkEvenOrder(t *testing.T) {
	// The standard walk on the full group of Z_1019^* almost always meets
	// with an even B-b, so the logarithm comes from the candidates.
	G := modpGroup(t, 1019, 1018, 2)
	h := G.Element().BaseScale(big.NewInt(100))

	for seed := uint64(1); seed <= 5; seed++ {
		cfg := DefaultConfig()
		cfg.Walk = StandardWalk
		cfg.Rand = walk.NewSeededRand(seed, seed)
		s, err := NewSolver(G, h, cfg)
		require.NoError(t, err)

		res, err := s.Solve(context.Background())
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, int64(100), res.Log.Int64(), "seed %d", seed)
		assert.NotZero(t, res.Candidates, "seed %d", seed)
	}

	cfg := DefaultConfig()
	cfg.Walk = StandardWalk
	cfg.MaxCandidates = 0
	cfg.Rand = walk.NewSeededRand(1, 1)
	s, err := NewSolver(G, h, cfg)
	require.NoError(t, err)

	res, err := s.Solve(context.Background())
	require.ErrorIs(t, err, ErrDegenerateCollision)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, res.Degenerate)
	assert.Nil(t, res.Log)
}

func TestSolverStandardWalk(t *testing.T) {
	G := modpGroup(t, 23, 11, 4)
	h := G.Element().BaseScale(big.NewInt(7))

	cfg := DefaultConfig()
	cfg.Walk = StandardWalk
	cfg.Rand = walk.NewSeededRand(1, 1)
	s, err := NewSolver(G, h, cfg)
	require.NoError(t, err)

	res, err := s.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Log.Int64())
	assert.Equal(t, uint64(12), res.Steps)
	assert.Equal(t, 1, res.Attempts)
	assert.Zero(t, res.Degenerate)
}

func TestSolverRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		p, n, g int64
		x       int64
		kind    WalkKind
		r       int
		hash    walk.HashFunc
	}{
		{"p23 adding", 23, 11, 4, 7, AddingWalk, 4, nil},
		{"p1019 adding", 1019, 1018, 2, 100, AddingWalk, 8, nil},
		{"p1019 standard", 1019, 1018, 2, 100, StandardWalk, 0, nil},
		{"p1019 subgroup adding", 1019, 509, 4, 321, AddingWalk, 20, nil},
		{"p10007 standard", 10007, 5003, 4, 4999, StandardWalk, 0, nil},
		{"p10007 adding fnv", 10007, 5003, 4, 17, AddingWalk, 16, walk.FNV1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			G := modpGroup(t, tt.p, tt.n, tt.g)
			h := G.Element().BaseScale(big.NewInt(tt.x))

			cfg := DefaultConfig()
			cfg.Walk = tt.kind
			if tt.r > 0 {
				cfg.TableSize = tt.r
			}
			cfg.MaxAttempts = 64
			if tt.hash != nil {
				cfg.Hash = tt.hash
			}
			s, err := NewSolver(G, h, cfg)
			require.NoError(t, err)

			res, err := s.Solve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.x%tt.n, res.Log.Int64())
			assert.Equal(t, res.Degenerate, res.Attempts-1)
			assert.NotZero(t, res.Steps)
		})
	}
}

// A single walk either recovers the logarithm or reports a degenerate
// collision; it never returns a wrong value.
func TestSingleRunOutcome(t *testing.T) {
	G := modpGroup(t, 1019, 1018, 2)
	h := G.Element().BaseScale(big.NewInt(100))

	for seed := uint64(0); seed < 32; seed++ {
		w, err := walk.NewAddingWalk(G, h, 8, walk.NewSeededRand(seed, 0), walk.XXHash)
		require.NoError(t, err)

		d := &Detector{Group: G, Walk: w}
		c, err := d.Run(context.Background(), walk.Identity(G))
		require.NoError(t, err)

		x, err := Extract(c, G.N())
		if err != nil {
			require.ErrorIs(t, err, ErrDegenerateCollision)
			continue
		}
		assert.Equal(t, int64(100), x.Int64(), "seed %d", seed)
	}
}

func TestSolverVerification(t *testing.T) {
	// 5 is a quadratic non-residue mod 23, so it is outside <4>.
	G := modpGroup(t, 23, 11, 4)
	h := G.NewElement(big.NewInt(5))

	cfg := DefaultConfig()
	cfg.TableSize = 4
	cfg.MaxAttempts = 16
	cfg.Rand = walk.NewSeededRand(3, 3)
	s, err := NewSolver(G, h, cfg)
	require.NoError(t, err)

	_, err = s.Solve(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVerification) || errors.Is(err, ErrDegenerateCollision), err.Error())
}

func TestSolverAttemptsExhausted(t *testing.T) {
	G := rfc3526Group1536
	h := G.Element().BaseScale(big.NewInt(99))

	cfg := DefaultConfig()
	cfg.TableSize = 4
	cfg.MaxSteps = 30
	cfg.MaxAttempts = 2
	cfg.Rand = walk.NewSeededRand(8, 8)
	s, err := NewSolver(G, h, cfg)
	require.NoError(t, err)

	res, err := s.Solve(context.Background())
	require.ErrorIs(t, err, ErrNoCollision)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, uint64(60), res.Steps)
	assert.Nil(t, res.Log)
}

func TestNewSolverErrors(t *testing.T) {
	G := modpGroup(t, 23, 11, 4)
	h := G.Generator()

	cfg := DefaultConfig()
	cfg.Entropy = bytes.NewReader([]byte{1, 2, 3})
	_, err := NewSolver(G, h, cfg)
	assert.ErrorIs(t, err, walk.ErrEntropyRead)

	cfg = DefaultConfig()
	cfg.TableSize = 0
	_, err = NewSolver(G, h, cfg)
	assert.Error(t, err)

	r := group.Ristretto255()
	cfg = DefaultConfig()
	cfg.Walk = StandardWalk
	_, err = NewSolver(r, r.Generator(), cfg)
	assert.Error(t, err)
}

func TestParseWalkKind(t *testing.T) {
	for in, want := range map[string]WalkKind{"standard": StandardWalk, "STD": StandardWalk, "adding": AddingWalk, "": AddingWalk} {
		got, err := ParseWalkKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseWalkKind("kangaroo")
	assert.Error(t, err)
}
