package util

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ParseDecimal parses a non-negative base-10 integer argument.
func ParseDecimal(s, name string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer for %s: %q", name, s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("%s must not be negative: %s", name, n)
	}
	return n, nil
}

// ParseInt parses a positive machine-sized integer argument.
func ParseInt(s, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q", name, s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive: %d", name, n)
	}
	return n, nil
}

// FitsUint64 reports whether z is in [0, 2^64).
func FitsUint64(z *big.Int) (uint64, bool) {
	if z.Sign() < 0 || z.BitLen() > 64 {
		return 0, false
	}
	return z.Uint64(), true
}
