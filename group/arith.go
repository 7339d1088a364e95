package group

import (
	"errors"
	"math/big"

	"github.com/ing-bank/zkrp/util/bn"
)

// ErrNoInverse is returned when an integer shares a nontrivial factor with
// the modulus it should be inverted over.
var ErrNoInverse = errors.New("no modular inverse")

var one = big.NewInt(1)

// InverseMod returns a^-1 mod m, or ErrNoInverse if gcd(a, m) != 1.
func InverseMod(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, errors.New("modulus must be positive")
	}
	r := bn.Mod(a, m)
	if new(big.Int).GCD(nil, nil, r, m).Cmp(one) != 0 {
		return nil, ErrNoInverse
	}
	inv := bn.ModInverse(r, m)
	if inv == nil {
		return nil, ErrNoInverse
	}
	return inv, nil
}

// MulMod returns a*b mod m in [0, m).
func MulMod(a, b, m *big.Int) *big.Int {
	return bn.Mod(bn.Multiply(a, b), m)
}
