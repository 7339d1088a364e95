package walk

import (
	"errors"
	"math/big"

	"github.com/takakv/pollard-rho/group"
)

// Branch identifies which third of [0, p) an element falls into.
type Branch int

const (
	BranchMulH   Branch = iota // x < ceil(p/3): multiply by h
	BranchSquare               // x < 2*ceil(p/3): square
	BranchMulG                 // otherwise: multiply by g
)

func (b Branch) String() string {
	switch b {
	case BranchMulH:
		return "mul-h"
	case BranchSquare:
		return "square"
	case BranchMulG:
		return "mul-g"
	default:
		return "unknown"
	}
}

// StandardWalk is Pollard's original walk on a subgroup of Z_p^*. The
// interval [0, p) is cut into three parts of roughly equal size and each part
// selects one of three update rules.
type StandardWalk struct {
	G          *group.ModPGroup
	h          *group.ModPElement
	g          *group.ModPElement
	thirdP     *big.Int
	twoThirdsP *big.Int
}

// NewStandardWalk prepares the partition thresholds for G. h must be an
// element of G.
func NewStandardWalk(G *group.ModPGroup, h group.Element) (*StandardWalk, error) {
	hp, ok := h.(*group.ModPElement)
	if !ok {
		return nil, errors.New("target is not an element of a Z_p group")
	}

	// ceil(p/3)
	thirdP := new(big.Int).Add(G.P(), big.NewInt(2))
	thirdP.Div(thirdP, big.NewInt(3))

	return &StandardWalk{
		G:          G,
		h:          G.NewElement(hp.Int()),
		g:          G.Generator().(*group.ModPElement),
		thirdP:     thirdP,
		twoThirdsP: new(big.Int).Lsh(thirdP, 1),
	}, nil
}

// Thresholds returns ceil(p/3) and 2*ceil(p/3).
func (w *StandardWalk) Thresholds() (*big.Int, *big.Int) {
	return new(big.Int).Set(w.thirdP), new(big.Int).Set(w.twoThirdsP)
}

// Branch returns the update rule selected by the residue x.
func (w *StandardWalk) Branch(x *big.Int) Branch {
	if x.Cmp(w.thirdP) < 0 {
		return BranchMulH
	}
	if x.Cmp(w.twoThirdsP) < 0 {
		return BranchSquare
	}
	return BranchMulG
}

func (w *StandardWalk) Step(s *State) {
	x, ok := s.X.(*group.ModPElement)
	if !ok {
		panic("incompatible group element type")
	}
	n := w.G.N()

	switch w.Branch(x.Int()) {
	case BranchMulH:
		x.Add(w.h, x)
		s.B.Add(s.B, one)
		s.B.Mod(s.B, n)
	case BranchSquare:
		x.Add(x, x)
		s.A.Lsh(s.A, 1)
		s.A.Mod(s.A, n)
		s.B.Lsh(s.B, 1)
		s.B.Mod(s.B, n)
	default:
		x.Add(w.g, x)
		s.A.Add(s.A, one)
		s.A.Mod(s.A, n)
	}
}
