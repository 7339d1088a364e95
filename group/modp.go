package group

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ModPElement is an element of a subgroup of Z_p^*.
type ModPElement struct {
	group *ModPGroup
	val   *big.Int
}

// ModPGroup is the cyclic subgroup of order N of Z_p^* generated by g.
// It is immutable once constructed and safe to share between walks.
type ModPGroup struct {
	gen        *big.Int
	fieldOrder *big.Int
	groupOrder *big.Int
	name       string
}

func (g *ModPGroup) Name() string {
	return g.name
}

func (g *ModPGroup) equals(h *ModPGroup) bool {
	if g == h {
		return true
	}
	return g.fieldOrder.Cmp(h.fieldOrder) == 0 &&
		g.groupOrder.Cmp(h.groupOrder) == 0 &&
		g.gen.Cmp(h.gen) == 0
}

// P returns the prime modulus.
func (g *ModPGroup) P() *big.Int {
	return g.fieldOrder
}

// N returns the order of the subgroup generated by g.
func (g *ModPGroup) N() *big.Int {
	return g.groupOrder
}

// G returns the generator as an integer.
func (g *ModPGroup) G() *big.Int {
	return g.gen
}

func (g *ModPGroup) Generator() Element {
	return &ModPElement{
		group: g,
		val:   new(big.Int).Set(g.gen),
	}
}

func (g *ModPGroup) Identity() Element {
	return &ModPElement{
		group: g,
		val:   big.NewInt(1),
	}
}

func (g *ModPGroup) Element() Element {
	e := new(ModPElement)
	e.group = g
	e.val = new(big.Int)
	return e
}

// NewElement returns the element with residue v mod p.
func (g *ModPGroup) NewElement(v *big.Int) *ModPElement {
	return &ModPElement{
		group: g,
		val:   new(big.Int).Mod(v, g.fieldOrder),
	}
}

// Mul returns x*y mod p.
func (g *ModPGroup) Mul(x, y *big.Int) *big.Int {
	return MulMod(x, y, g.fieldOrder)
}

// Square returns x^2 mod p.
func (g *ModPGroup) Square(x *big.Int) *big.Int {
	return MulMod(x, x, g.fieldOrder)
}

// Exp returns x^e mod p.
func (g *ModPGroup) Exp(x, e *big.Int) *big.Int {
	return new(big.Int).Exp(x, e, g.fieldOrder)
}

func (e *ModPElement) check(a Element) *ModPElement {
	ey, ok := a.(*ModPElement)
	if !ok {
		panic("incompatible group element type")
	}
	if !e.group.equals(ey.group) {
		panic("incompatible groups")
	}
	return ey
}

// Int returns a copy of the residue of the element in [0, p).
func (e *ModPElement) Int() *big.Int {
	return new(big.Int).Set(e.val)
}

func (e *ModPElement) Add(a Element, b Element) Element {
	ex := e.check(a)
	ey := e.check(b)
	e.val.Mul(ex.val, ey.val)
	e.val.Mod(e.val, e.group.fieldOrder)
	return e
}

func (e *ModPElement) IsEqual(b Element) bool {
	ey := e.check(b)
	return e.val.Cmp(ey.val) == 0
}

func (e *ModPElement) Set(a Element) Element {
	ex := e.check(a)
	e.val.Set(ex.val)
	return e
}

func (e *ModPElement) Scale(a Element, s *big.Int) Element {
	ex := e.check(a)
	e.val.Exp(ex.val, s, e.group.fieldOrder)
	return e
}

func (e *ModPElement) BaseScale(s *big.Int) Element {
	e.val.Exp(e.group.gen, s, e.group.fieldOrder)
	return e
}

func (e *ModPElement) String() string {
	return e.val.String()
}

func (e *ModPElement) IsIdentity() bool {
	return e.val.Cmp(one) == 0
}

// MarshalBinary returns the big-endian bytes of the residue.
func (e *ModPElement) MarshalBinary() ([]byte, error) {
	return e.val.Bytes(), nil
}

func (e *ModPElement) UnmarshalBinary(data []byte) error {
	v := new(big.Int).SetBytes(data)
	if v.Cmp(e.group.fieldOrder) >= 0 {
		return errors.New("element out of range")
	}
	e.val = v
	return nil
}

var five = big.NewInt(5)

// NewModPGroup describes the subgroup of order n of Z_p^* generated by gen.
// It does not check that gen actually has order n.
func NewModPGroup(name string, p, n, gen *big.Int) (*ModPGroup, error) {
	if p == nil || n == nil || gen == nil {
		return nil, errors.New("group parameters cannot be nil")
	}
	if p.Cmp(five) < 0 {
		return nil, fmt.Errorf("modulus %s is too small", p)
	}
	if n.Cmp(one) <= 0 {
		return nil, fmt.Errorf("subgroup order %s must be greater than 1", n)
	}
	if gen.Sign() <= 0 || gen.Cmp(p) >= 0 {
		return nil, fmt.Errorf("generator %s is not in [1, p)", gen)
	}

	G := new(ModPGroup)
	G.fieldOrder = new(big.Int).Set(p)
	G.groupOrder = new(big.Int).Set(n)
	G.gen = new(big.Int).Set(gen)
	G.name = name
	return G, nil
}

// NewSafePrimeGroup builds the subgroup of order (p-1)/2 from hex encoded
// parameters. Whitespace in fieldOrder is ignored.
func NewSafePrimeGroup(name string, fieldOrder, generator string) (*ModPGroup, error) {
	repr := strings.Join(strings.Fields(fieldOrder), "")

	ffOrder, ok := new(big.Int).SetString(repr, 16)
	if !ok {
		return nil, errors.New("invalid group definition")
	}

	gen, ok := new(big.Int).SetString(generator, 16)
	if !ok {
		return nil, errors.New("invalid generator")
	}

	genOrder := new(big.Int).Sub(ffOrder, one)
	genOrder.Rsh(genOrder, 1)

	return NewModPGroup(name, ffOrder, genOrder, gen)
}
