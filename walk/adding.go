package walk

import (
	"fmt"
	"math/big"
	"math/rand/v2"

	"github.com/takakv/pollard-rho/group"
)

// DefaultTableSize is the number of precomputed jumps used when none is given.
const DefaultTableSize = 20

// Entry is one precomputed jump M = g^GExp h^HExp.
type Entry struct {
	M    group.Element
	GExp *big.Int
	HExp *big.Int
}

// AddingWalk is an r-adding walk: the hash of the current element selects
// one of r precomputed jumps, which is then applied with the group operation.
type AddingWalk struct {
	n     *big.Int
	table []Entry
	hash  HashFunc
}

// NewAddingWalk draws r jumps using rng. The generator is consumed during
// construction only; the walk itself is deterministic.
func NewAddingWalk(G group.Group, h group.Element, r int, rng *rand.Rand, hash HashFunc) (*AddingWalk, error) {
	if r <= 0 {
		return nil, fmt.Errorf("table size must be positive, got %d", r)
	}
	if rng == nil {
		return nil, fmt.Errorf("adding walk needs a random generator")
	}
	if hash == nil {
		hash = XXHash
	}

	n := G.N()
	table := make([]Entry, r)
	for i := range table {
		m := randBelow(rng, n)
		k := randBelow(rng, n)

		M := G.Element().BaseScale(m)
		M.Add(M, G.Element().Scale(h, k))
		table[i] = Entry{M: M, GExp: m, HExp: k}
	}

	return &AddingWalk{
		n:     new(big.Int).Set(n),
		table: table,
		hash:  hash,
	}, nil
}

// Table returns the precomputed jumps. The entries must not be modified.
func (w *AddingWalk) Table() []Entry {
	return w.table
}

// Bucket returns the table index selected by x.
func (w *AddingWalk) Bucket(x group.Element) int {
	b, err := x.MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("adding walk: encode element: %v", err))
	}
	return int(w.hash(b) % uint64(len(w.table)))
}

func (w *AddingWalk) Step(s *State) {
	e := w.table[w.Bucket(s.X)]
	s.X.Add(s.X, e.M)
	s.A.Add(s.A, e.GExp)
	s.A.Mod(s.A, w.n)
	s.B.Add(s.B, e.HExp)
	s.B.Mod(s.B, w.n)
}
