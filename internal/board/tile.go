// Package board holds the tile world: tile kinds, the playing grid, and the
// 2x2 composite layout that competition boards are assembled in.
package board

// Tile is one cell kind in the puzzle grid. Values 0-5 are storable in
// descriptor digits; TileCrystal is overlaid after decoding and never appears
// in the encoded grid.
type Tile uint8

const (
	TileNone       Tile = 0
	TileSoftBlock  Tile = 1
	TileHardBlock  Tile = 2
	TileSoftLadder Tile = 3
	TileHardLadder Tile = 4
	TilePick       Tile = 5
	TileCrystal    Tile = 10
)

// Solid reports whether the tile blocks horizontal or diagonal entry.
func (t Tile) Solid() bool {
	return t == TileSoftBlock || t == TileHardBlock
}

// Standable reports whether the tile halts a falling player.
func (t Tile) Standable() bool {
	return t == TileSoftBlock || t == TileSoftLadder
}

func (t Tile) String() string {
	switch t {
	case TileNone:
		return "none"
	case TileSoftBlock:
		return "soft_block"
	case TileHardBlock:
		return "hard_block"
	case TileSoftLadder:
		return "soft_ladder"
	case TileHardLadder:
		return "hard_ladder"
	case TilePick:
		return "pick"
	case TileCrystal:
		return "crystal"
	default:
		return "unknown"
	}
}
