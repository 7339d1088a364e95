// Package walk implements the pseudo-random walk functions used by Pollard's
// rho method for discrete logarithms.
//
// A walk moves through a prime-order group while keeping track of the
// exponents of the current element with respect to the generator g and the
// target h, so that X = g^A h^B always holds.
package walk

import (
	"math/big"
	"math/rand/v2"

	"github.com/takakv/pollard-rho/group"
)

var one = big.NewInt(1)

// Walk is a deterministic map from one walk state to the next.
type Walk interface {
	// Step advances s by one application of the walk function.
	Step(s *State)
}

// State is a group element together with its exponents: X = g^A h^B.
type State struct {
	X group.Element
	A *big.Int
	B *big.Int
}

// NewState returns the state g^a h^b.
func NewState(G group.Group, h group.Element, a, b *big.Int) *State {
	a = new(big.Int).Mod(a, G.N())
	b = new(big.Int).Mod(b, G.N())
	x := G.Element().BaseScale(a)
	x.Add(x, G.Element().Scale(h, b))
	return &State{X: x, A: a, B: b}
}

// Identity returns the state (1, 0, 0).
func Identity(G group.Group) *State {
	return &State{
		X: G.Identity(),
		A: new(big.Int),
		B: new(big.Int),
	}
}

// RandomState returns g^a h^b for a, b drawn uniformly from [0, N).
func RandomState(G group.Group, h group.Element, rng *rand.Rand) *State {
	return NewState(G, h, randBelow(rng, G.N()), randBelow(rng, G.N()))
}

// Clone returns a deep copy of s whose element is allocated in G.
func (s *State) Clone(G group.Group) *State {
	return &State{
		X: G.Element().Set(s.X),
		A: new(big.Int).Set(s.A),
		B: new(big.Int).Set(s.B),
	}
}
