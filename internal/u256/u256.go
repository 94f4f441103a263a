// Package u256 provides the 256-bit unsigned words that puzzle descriptors
// and encoded solutions are stored in, plus the LSD-first base-10 digit
// streaming used by the wire codecs.
package u256

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Word is a 256-bit unsigned integer in big-endian byte order. It is a plain
// value type so it can be copied, compared, and used as a map key.
type Word [32]byte

// Zero is the zero word.
var Zero Word

var maxWord = func() *big.Int {
	one := big.NewInt(1)
	return new(big.Int).Sub(new(big.Int).Lsh(one, 256), one)
}()

// FromUint64 builds a Word from a machine integer.
func FromUint64(v uint64) Word {
	var w Word
	for i := 0; i < 8; i++ {
		w[31-i] = byte(v >> (8 * i))
	}
	return w
}

// FromBig builds a Word from a big integer, reducing mod 2^256.
func FromBig(v *big.Int) Word {
	var w Word
	reduced := new(big.Int).And(v, maxWord)
	reduced.FillBytes(w[:])
	return w
}

// FromDecimal parses a base-10 string into a Word.
func FromDecimal(s string) (Word, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return Zero, fmt.Errorf("u256: invalid decimal %q", s)
	}
	if v.BitLen() > 256 {
		return Zero, fmt.Errorf("u256: decimal %q exceeds 256 bits", s)
	}
	return FromBig(v), nil
}

// FromHex parses a hex string (with or without 0x prefix) into a Word.
func FromHex(s string) (Word, error) {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok || v.Sign() < 0 {
		return Zero, fmt.Errorf("u256: invalid hex %q", s)
	}
	if v.BitLen() > 256 {
		return Zero, fmt.Errorf("u256: hex %q exceeds 256 bits", s)
	}
	return FromBig(v), nil
}

// Big returns the word as a fresh big integer.
func (w Word) Big() *big.Int {
	return new(big.Int).SetBytes(w[:])
}

// Bytes32 returns the big-endian 32-byte serialization.
func (w Word) Bytes32() [32]byte {
	return [32]byte(w)
}

// Uint64 returns the low 64 bits.
func (w Word) Uint64() uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(w[31-i]) << (8 * i)
	}
	return v
}

// IsZero reports whether the word is zero.
func (w Word) IsZero() bool {
	return w == Zero
}

// Cmp compares two words, returning -1, 0, or +1.
func (w Word) Cmp(o Word) int {
	for i := 0; i < 32; i++ {
		switch {
		case w[i] < o[i]:
			return -1
		case w[i] > o[i]:
			return 1
		}
	}
	return 0
}

// String renders the word in base 10.
func (w Word) String() string {
	return w.Big().String()
}

// MarshalJSON renders the word as a decimal string.
func (w Word) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

// UnmarshalJSON accepts a decimal string or a bare JSON number.
func (w *Word) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Bare numbers arrive without quotes.
		s = string(data)
	}
	parsed, err := FromDecimal(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
