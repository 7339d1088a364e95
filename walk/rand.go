package walk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"math/rand/v2"
	"os"
)

// ErrEntropyRead is returned when the entropy source cannot supply a full seed.
var ErrEntropyRead = errors.New("entropy source could not supply seed")

const seedSize = 16

// NewRand seeds a PCG generator with exactly 16 bytes read from entropy.
// A short read is an error.
func NewRand(entropy io.Reader) (*rand.Rand, error) {
	var seed [seedSize]byte
	if _, err := io.ReadFull(entropy, seed[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropyRead, err)
	}
	return NewSeededRand(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:])), nil
}

// NewSeededRand returns a PCG generator with a fixed seed.
func NewSeededRand(seed1, seed2 uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed1, seed2))
}

// FileSource reads entropy from a file such as /dev/urandom. Every Read opens
// the file, fills the whole buffer and closes it again.
type FileSource string

func (f FileSource) Read(p []byte) (int, error) {
	fd, err := os.Open(string(f))
	if err != nil {
		return 0, err
	}
	n, err := io.ReadFull(fd, p)
	if err != nil {
		fd.Close()
		return n, err
	}
	if err := fd.Close(); err != nil {
		return n, err
	}
	return n, nil
}

// randBelow returns a uniform integer in [0, n).
func randBelow(rng *rand.Rand, n *big.Int) *big.Int {
	if n.IsUint64() {
		return new(big.Int).SetUint64(rng.Uint64N(n.Uint64()))
	}

	buf := make([]byte, (n.BitLen()+7)/8)
	mask := byte(0xff >> uint(len(buf)*8-n.BitLen()))
	v := new(big.Int)
	for {
		var w uint64
		for i := range buf {
			if i%8 == 0 {
				w = rng.Uint64()
			}
			buf[i] = byte(w)
			w >>= 8
		}
		buf[0] &= mask
		if v.SetBytes(buf).Cmp(n) < 0 {
			return v
		}
	}
}
