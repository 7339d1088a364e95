package group

import (
	"math/big"

	"github.com/cloudflare/circl/group"
)

type r255Group struct {
	curveOrder *big.Int
	name       string
}

type r255Point struct {
	curve *r255Group
	val   group.Element
}

func (g *r255Group) Name() string {
	return g.name
}

func (g *r255Group) N() *big.Int {
	return g.curveOrder
}

func (g *r255Group) Generator() Element {
	return &r255Point{
		curve: g,
		val:   group.Ristretto255.Generator(),
	}
}

func (g *r255Group) Identity() Element {
	return &r255Point{
		curve: g,
		val:   group.Ristretto255.Identity(),
	}
}

func (g *r255Group) Element() Element {
	return &r255Point{
		curve: g,
		val:   group.Ristretto255.NewElement(),
	}
}

func (e *r255Point) check(a Element) *r255Point {
	ey, ok := a.(*r255Point)
	if !ok {
		panic("incompatible group element type")
	}
	return ey
}

func (e *r255Point) Add(a Element, b Element) Element {
	ca := e.check(a)
	cb := e.check(b)
	e.val = group.Ristretto255.NewElement().Add(ca.val, cb.val)
	return e
}

func (e *r255Point) IsEqual(b Element) bool {
	cb := e.check(b)
	return e.val.IsEqual(cb.val)
}

func (e *r255Point) Set(x Element) Element {
	ca := e.check(x)
	e.val = group.Ristretto255.NewElement().Set(ca.val)
	return e
}

func (e *r255Point) scalar(s *big.Int) group.Scalar {
	return group.Ristretto255.NewScalar().SetBigInt(new(big.Int).Mod(s, e.curve.curveOrder))
}

func (e *r255Point) Scale(x Element, s *big.Int) Element {
	ex := e.check(x)
	e.val = group.Ristretto255.NewElement().Mul(ex.val, e.scalar(s))
	return e
}

func (e *r255Point) BaseScale(s *big.Int) Element {
	e.val = group.Ristretto255.NewElement().MulGen(e.scalar(s))
	return e
}

func (e *r255Point) String() string {
	tmp, _ := e.val.MarshalBinary()
	return new(big.Int).SetBytes(tmp).Text(16)
}

func (e *r255Point) IsIdentity() bool {
	return e.val.IsIdentity()
}

func (e *r255Point) MarshalBinary() ([]byte, error) {
	return e.val.MarshalBinary()
}

func (e *r255Point) UnmarshalBinary(data []byte) error {
	return e.val.UnmarshalBinary(data)
}

// Ristretto255 returns the prime-order ristretto255 group.
func Ristretto255() Group {
	n, _ := new(big.Int).SetString("1000000000000000000000000000000014def9dea2f79cd65812631a5cf5d3ed", 16)

	G := new(r255Group)
	G.curveOrder = n
	G.name = "ristretto255"
	return G
}
