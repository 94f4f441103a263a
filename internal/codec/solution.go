package codec

import (
	"errors"
	"fmt"

	"github.com/lodecraft/lode-verify-go/internal/u256"
)

// MaxMoves caps the decoded move count. The wire counter has three decimal
// digits but the game's move budget fits an 8-bit counter.
const MaxMoves = 255

// ErrEmptySolution is returned when the encoded solution carries no words.
var ErrEmptySolution = errors.New("codec: empty solution")

// Solution is a decoded move stream.
type Solution struct {
	Moves []Move
}

// DecodeSolution reads the wire form of a solution: the lowest three decimal
// digits of the first word are the move count (LSD first), and the digits
// after them stream (kind, direction) pairs, one digit each. Exactly the
// counted number of pairs is consumed; trailing digits are padding.
func DecodeSolution(words []u256.Word) (*Solution, error) {
	if len(words) == 0 {
		return nil, ErrEmptySolution
	}

	counter := u256.NewDigitStream(words, 0)
	numMoves := int(counter.Next()) + 10*int(counter.Next()) + 100*int(counter.Next())
	if numMoves > MaxMoves {
		return nil, fmt.Errorf("codec: move count %d exceeds maximum %d", numMoves, MaxMoves)
	}

	s := u256.NewDigitStream(words, 3)
	moves := make([]Move, numMoves)
	for i := range moves {
		moves[i].Kind = MoveKind(s.Next())
		moves[i].Dir = Direction(s.Next())
	}
	return &Solution{Moves: moves}, nil
}

// EncodeSolution packs a move stream into its wire form.
func EncodeSolution(moves []Move) ([]u256.Word, error) {
	if len(moves) > MaxMoves {
		return nil, fmt.Errorf("codec: move count %d exceeds maximum %d", len(moves), MaxMoves)
	}

	w := u256.NewDigitWriter()
	n := len(moves)
	w.Push(uint8(n % 10))
	w.Push(uint8(n / 10 % 10))
	w.Push(uint8(n / 100 % 10))
	for _, m := range moves {
		w.Push(uint8(m.Kind))
		w.Push(uint8(m.Dir))
	}
	return w.Words(1), nil
}
