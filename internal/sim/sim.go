// Package sim executes decoded move streams against composed boards and
// decides in bounded time whether a solution wins. Each run owns its board
// and inventory; nothing is shared between evaluations, so results are a
// pure function of the inputs.
package sim

import (
	"github.com/lodecraft/lode-verify-go/internal/board"
	"github.com/lodecraft/lode-verify-go/internal/codec"
	"github.com/lodecraft/lode-verify-go/internal/u256"
)

// Inventory tracks what the player is carrying. Counters only rise through
// pickups and fall through spends, bounded by the board size.
type Inventory struct {
	Picks     int `json:"picks"`
	SoftTiles int `json:"soft_tiles"`
	Ladders   int `json:"ladders"`
	Crystals  int `json:"crystals"`
}

// Run executes the move stream against the board. It returns nil when the
// player finishes on the exit cell with enough crystals, otherwise exactly
// one tagged Failure. The board is mutated and must not be reused.
func Run(b *board.Board, moves []codec.Move) error {
	inv := Inventory{}
	fallAndPickup(b, &inv)

	for _, mv := range moves {
		if err := step(b, &inv, mv); err != nil {
			return err
		}
	}

	if b.Player != b.Exit {
		return &NotAtExit{X: b.Player.X, Y: b.Player.Y}
	}
	if inv.Crystals < b.TargetCrystals {
		return &NotEnoughCrystals{Have: inv.Crystals, Need: b.TargetCrystals}
	}
	return nil
}

// IsValid is the boolean entry point: it never propagates a failure.
func IsValid(b *board.Board, moves []codec.Move) bool {
	return Run(b, moves) == nil
}

// Verify composes the competition board, decodes the solution, and runs it,
// returning the first failure on any path. This is the strict end-to-end
// surface.
func Verify(fetch codec.DescriptorFetcher, ids [4]u256.Word, setupData uint16, solution []u256.Word) error {
	b, err := codec.ComposeBoard(fetch, ids, setupData)
	if err != nil {
		return err
	}
	sol, err := codec.DecodeSolution(solution)
	if err != nil {
		return err
	}
	return Run(b, sol.Moves)
}

// VerifyBool is the end-to-end boolean surface used by the challenge
// protocol.
func VerifyBool(fetch codec.DescriptorFetcher, ids [4]u256.Word, setupData uint16, solution []u256.Word) bool {
	return Verify(fetch, ids, setupData, solution) == nil
}

// step dispatches one move and then applies the post-move checks: the player
// cell must not be solid, and gravity runs to its fixed point.
func step(b *board.Board, inv *Inventory, mv codec.Move) error {
	switch mv.Kind {
	case codec.MoveKindMove:
		if err := applyMove(b, mv.Dir); err != nil {
			return err
		}
	case codec.MoveKindMine:
		if err := applyMine(b, inv, mv.Dir); err != nil {
			return err
		}
	case codec.MoveKindPlaceBlock:
		if err := applyPlace(b, inv, mv.Dir, board.TileSoftBlock); err != nil {
			return err
		}
	case codec.MoveKindPlaceLadder:
		if err := applyPlace(b, inv, mv.Dir, board.TileSoftLadder); err != nil {
			return err
		}
	default:
		// Unknown kinds leave the world untouched; the post-move checks
		// below still run.
	}

	if !b.InBounds(b.Player.X, b.Player.Y) {
		return &MovedOutOfBounds{X: b.Player.X, Y: b.Player.Y}
	}
	if b.At(b.Player.X, b.Player.Y).Solid() {
		return &MovedIntoSolid{X: b.Player.X, Y: b.Player.Y}
	}
	fallAndPickup(b, inv)
	return nil
}

// applyMove shifts the player. Only the four cardinal directions move the
// player; Up additionally requires a soft ladder underfoot. Wait and the
// diagonals are coordinate no-ops.
func applyMove(b *board.Board, dir codec.Direction) error {
	switch dir {
	case codec.DirRight:
		b.Player.X++
	case codec.DirLeft:
		b.Player.X--
	case codec.DirUp:
		if b.At(b.Player.X, b.Player.Y) != board.TileSoftLadder {
			return &CannotMoveUp{X: b.Player.X, Y: b.Player.Y}
		}
		b.Player.Y--
	case codec.DirDown:
		b.Player.Y++
	}
	return nil
}

// applyMine swings a pick at the adjacent target cell. Soft blocks and soft
// ladders are recovered into the inventory; everything else is unmineable.
func applyMine(b *board.Board, inv *Inventory, dir codec.Direction) error {
	if inv.Picks < 1 {
		return &NoPicks{X: b.Player.X, Y: b.Player.Y}
	}
	tx, ty := targetXY(b.Player.X, b.Player.Y, dir)
	if !b.InBounds(tx, ty) {
		return &NothingToMine{X: tx, Y: ty}
	}
	switch b.At(tx, ty) {
	case board.TileSoftBlock:
		inv.SoftTiles++
	case board.TileSoftLadder:
		inv.Ladders++
	default:
		return &NothingToMine{X: tx, Y: ty}
	}
	inv.Picks--
	b.Set(tx, ty, board.TileNone)
	return nil
}

// applyPlace spends one inventory tile into an empty adjacent cell.
func applyPlace(b *board.Board, inv *Inventory, dir codec.Direction, tile board.Tile) error {
	have := &inv.SoftTiles
	if tile == board.TileSoftLadder {
		have = &inv.Ladders
	}
	if *have < 1 {
		return &NoTileToPlace{Tile: tile, X: b.Player.X, Y: b.Player.Y}
	}
	tx, ty := targetXY(b.Player.X, b.Player.Y, dir)
	if !b.InBounds(tx, ty) || b.At(tx, ty) != board.TileNone {
		return &CannotPlace{Tile: tile, X: tx, Y: ty}
	}
	*have -= 1
	b.Set(tx, ty, tile)
	return nil
}

// targetXY resolves a direction to the addressed neighbor cell. All eight
// compass directions are supported for mining and placing; Wait addresses
// the player's own cell.
func targetXY(x, y int, dir codec.Direction) (int, int) {
	switch dir {
	case codec.DirRight:
		return x + 1, y
	case codec.DirLeft:
		return x - 1, y
	case codec.DirUp:
		return x, y - 1
	case codec.DirDown:
		return x, y + 1
	case codec.DirRightUp:
		return x + 1, y - 1
	case codec.DirRightDown:
		return x + 1, y + 1
	case codec.DirLeftUp:
		return x - 1, y - 1
	case codec.DirLeftDown:
		return x - 1, y + 1
	default:
		return x, y
	}
}

// fallAndPickup runs gravity to its fixed point. A soft ladder underfoot
// suspends the player immediately. Otherwise the current cell's pickup is
// collected, and the player falls until the cell below is standable or the
// floor is reached, collecting pickups from every cell fallen into.
func fallAndPickup(b *board.Board, inv *Inventory) {
	p := &b.Player
	if b.At(p.X, p.Y) == board.TileSoftLadder {
		return
	}
	collect(b, inv, p.X, p.Y)

	for p.Y < b.Height-1 {
		below := b.At(p.X, p.Y+1)
		if below.Standable() {
			return
		}
		collect(b, inv, p.X, p.Y+1)
		p.Y++
	}
}

// collect picks up a pick or crystal at (x, y), clearing the cell.
func collect(b *board.Board, inv *Inventory, x, y int) {
	switch b.At(x, y) {
	case board.TilePick:
		inv.Picks++
		b.Set(x, y, board.TileNone)
	case board.TileCrystal:
		inv.Crystals++
		b.Set(x, y, board.TileNone)
	}
}
