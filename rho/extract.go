package rho

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/takakv/pollard-rho/group"
)

// ErrDegenerateCollision is returned when B-b is not invertible mod N, so the
// collision does not determine the logarithm on its own. Its Candidates can be
// tested, otherwise the walk has to be restarted.
var ErrDegenerateCollision = errors.New("degenerate collision")

// Extract solves x(B-b) = a-A (mod N) for the collision
// g^a h^b = g^A h^B and returns x in [0, N).
func Extract(c *Collision, n *big.Int) (*big.Int, error) {
	if c == nil || c.Tortoise == nil || c.Hare == nil {
		return nil, errors.New("incomplete collision")
	}

	s := new(big.Int).Sub(c.Hare.B, c.Tortoise.B)
	inv, err := group.InverseMod(s, n)
	if errors.Is(err, group.ErrNoInverse) {
		return nil, fmt.Errorf("%w: B-b = %s has no inverse mod %s", ErrDegenerateCollision, s.Mod(s, n), n)
	}
	if err != nil {
		return nil, err
	}

	diff := new(big.Int).Sub(c.Tortoise.A, c.Hare.A)
	return group.MulMod(diff, inv, n), nil
}

// Candidates handles collisions where d = gcd(B-b, N) > 1. The congruence
// x(B-b) = a-A (mod N) then has either no solution or exactly d of them,
// x0 + k*N/d for k in [0, d). Candidates returns all of them when d <= maxD;
// callers must test each against g^x = h. Collisions with B = b (mod N), with
// d > maxD, or without a solution yield ErrDegenerateCollision.
func Candidates(c *Collision, n *big.Int, maxD uint64) ([]*big.Int, error) {
	if c == nil || c.Tortoise == nil || c.Hare == nil {
		return nil, errors.New("incomplete collision")
	}

	s := new(big.Int).Sub(c.Hare.B, c.Tortoise.B)
	s.Mod(s, n)
	if s.Sign() == 0 {
		return nil, fmt.Errorf("%w: B = b mod %s", ErrDegenerateCollision, n)
	}
	d := new(big.Int).GCD(nil, nil, s, n)
	if !d.IsUint64() || d.Uint64() > maxD {
		return nil, fmt.Errorf("%w: gcd(B-b, N) = %s exceeds %d", ErrDegenerateCollision, d, maxD)
	}

	t := new(big.Int).Sub(c.Tortoise.A, c.Hare.A)
	t.Mod(t, n)
	if new(big.Int).Mod(t, d).Sign() != 0 {
		return nil, fmt.Errorf("%w: gcd(B-b, N) = %s does not divide a-A", ErrDegenerateCollision, d)
	}

	step := new(big.Int).Div(n, d)
	inv, err := group.InverseMod(new(big.Int).Div(s, d), step)
	if err != nil {
		return nil, err
	}
	x := group.MulMod(new(big.Int).Div(t, d), inv, step)

	out := make([]*big.Int, 0, d.Uint64())
	for k := uint64(0); k < d.Uint64(); k++ {
		out = append(out, new(big.Int).Set(x))
		x.Add(x, step)
	}
	return out, nil
}
