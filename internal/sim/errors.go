package sim

import (
	"fmt"

	"github.com/lodecraft/lode-verify-go/internal/board"
)

// Failure is a tagged simulation failure. Every failing run produces exactly
// one of the types below; the boolean entry point swallows them all.
type Failure interface {
	error
	failureTag() string
}

// Tag returns the failure's stable identifier, or "" when err is nil or not
// a simulation failure.
func Tag(err error) string {
	if f, ok := err.(Failure); ok {
		return f.failureTag()
	}
	return ""
}

// CannotMoveUp reports a Move-Up from a cell without a soft ladder.
type CannotMoveUp struct{ X, Y int }

func (e *CannotMoveUp) Error() string {
	return fmt.Sprintf("cannot move up at (%d,%d): no ladder", e.X, e.Y)
}
func (e *CannotMoveUp) failureTag() string { return "cannot_move_up" }

// NoPicks reports a Mine with an empty pick inventory.
type NoPicks struct{ X, Y int }

func (e *NoPicks) Error() string {
	return fmt.Sprintf("no picks at (%d,%d)", e.X, e.Y)
}
func (e *NoPicks) failureTag() string { return "no_picks" }

// NothingToMine reports a Mine whose target holds nothing mineable.
type NothingToMine struct{ X, Y int }

func (e *NothingToMine) Error() string {
	return fmt.Sprintf("nothing to mine at (%d,%d)", e.X, e.Y)
}
func (e *NothingToMine) failureTag() string { return "nothing_to_mine" }

// NoTileToPlace reports a Place with an empty inventory for that tile.
type NoTileToPlace struct {
	Tile board.Tile
	X, Y int
}

func (e *NoTileToPlace) Error() string {
	return fmt.Sprintf("no %s to place at (%d,%d)", e.Tile, e.X, e.Y)
}
func (e *NoTileToPlace) failureTag() string { return "no_tile_to_place" }

// CannotPlace reports a Place whose target cell is not empty.
type CannotPlace struct {
	Tile board.Tile
	X, Y int
}

func (e *CannotPlace) Error() string {
	return fmt.Sprintf("cannot place %s at (%d,%d)", e.Tile, e.X, e.Y)
}
func (e *CannotPlace) failureTag() string { return "cannot_place" }

// MovedIntoSolid reports a move that left the player inside a solid cell.
type MovedIntoSolid struct{ X, Y int }

func (e *MovedIntoSolid) Error() string {
	return fmt.Sprintf("moved into solid at (%d,%d)", e.X, e.Y)
}
func (e *MovedIntoSolid) failureTag() string { return "moved_into_solid" }

// MovedOutOfBounds reports a move that left the player off the grid.
type MovedOutOfBounds struct{ X, Y int }

func (e *MovedOutOfBounds) Error() string {
	return fmt.Sprintf("moved out of bounds to (%d,%d)", e.X, e.Y)
}
func (e *MovedOutOfBounds) failureTag() string { return "moved_out_of_bounds" }

// NotAtExit reports a finished move stream with the player away from the
// exit.
type NotAtExit struct{ X, Y int }

func (e *NotAtExit) Error() string {
	return fmt.Sprintf("not at exit, player at (%d,%d)", e.X, e.Y)
}
func (e *NotAtExit) failureTag() string { return "not_at_exit" }

// NotEnoughCrystals reports a finished move stream with too few crystals
// collected.
type NotEnoughCrystals struct{ Have, Need int }

func (e *NotEnoughCrystals) Error() string {
	return fmt.Sprintf("not enough crystals: have %d, need %d", e.Have, e.Need)
}
func (e *NotEnoughCrystals) failureTag() string { return "not_enough_crystals" }
