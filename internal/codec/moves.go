// Package codec implements the wire formats of the puzzle game: the 4-word
// descriptor blob, the variable-length encoded solution, and the 16-bit
// competition setup value. All formats are LSD-first base-10 digit streams
// over 256-bit words (see the u256 package).
package codec

import "fmt"

// MoveKind selects the instruction performed by one move.
type MoveKind uint8

const (
	MoveKindMove        MoveKind = 0
	MoveKindMine        MoveKind = 1
	MoveKindPlaceBlock  MoveKind = 2
	MoveKindPlaceLadder MoveKind = 3
)

func (k MoveKind) String() string {
	switch k {
	case MoveKindMove:
		return "move"
	case MoveKindMine:
		return "mine"
	case MoveKindPlaceBlock:
		return "place_block"
	case MoveKindPlaceLadder:
		return "place_ladder"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Direction is the compass operand of a move. Wait is reserved: it appears in
// the vocabulary but no instruction moves the player with it.
type Direction uint8

const (
	DirRight     Direction = 1
	DirLeft      Direction = 2
	DirUp        Direction = 3
	DirDown      Direction = 4
	DirRightUp   Direction = 5
	DirRightDown Direction = 6
	DirLeftUp    Direction = 7
	DirLeftDown  Direction = 8
	DirWait      Direction = 9
)

func (d Direction) String() string {
	switch d {
	case DirRight:
		return "right"
	case DirLeft:
		return "left"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirRightUp:
		return "right_up"
	case DirRightDown:
		return "right_down"
	case DirLeftUp:
		return "left_up"
	case DirLeftDown:
		return "left_down"
	case DirWait:
		return "wait"
	default:
		return fmt.Sprintf("dir(%d)", uint8(d))
	}
}

// Diagonal reports whether the direction is one of the four diagonals.
func (d Direction) Diagonal() bool {
	return d >= DirRightUp && d <= DirLeftDown
}

// Move is one decoded instruction.
type Move struct {
	Kind MoveKind  `json:"kind"`
	Dir  Direction `json:"dir"`
}

func (m Move) String() string {
	return m.Kind.String() + " " + m.Dir.String()
}
