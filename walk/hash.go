package walk

import (
	"fmt"
	"hash/fnv"
	"math/big"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// HashFunc maps the binary encoding of a group element to 64 bits. It only
// needs to spread elements evenly across buckets.
type HashFunc func(b []byte) uint64

// XXHash is the default bucket hash.
func XXHash(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// FNV1 reads b as a big-endian integer and returns the 64-bit FNV-1 hash of
// its base-2 digits, so element 5 hashes the ASCII string "101".
func FNV1(b []byte) uint64 {
	h := fnv.New64()
	h.Write([]byte(new(big.Int).SetBytes(b).Text(2)))
	return h.Sum64()
}

// ParseHash returns the hash function registered under name.
func ParseHash(name string) (HashFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "xxhash", "xxh64":
		return XXHash, nil
	case "fnv", "fnv1":
		return FNV1, nil
	default:
		return nil, fmt.Errorf("unknown hash %q", name)
	}
}
