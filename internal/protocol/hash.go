package protocol

import (
	"golang.org/x/crypto/sha3"

	"github.com/lodecraft/lode-verify-go/internal/u256"
)

// SolutionHash computes the keccak-256 commitment of an encoded solution:
// the 32-byte big-endian serialization of each word, concatenated in order.
func SolutionHash(words []u256.Word) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, w := range words {
		b := w.Bytes32()
		h.Write(b[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
