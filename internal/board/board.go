package board

import "strings"

// Single descriptor and composite board dimensions.
const (
	SingleWidth     = 20
	SingleHeight    = 14
	CompositeWidth  = 40
	CompositeHeight = 28
)

// Point is a grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Board is an owned tile grid plus the player, exit, and crystal target for
// one simulation. A board is created per evaluation and never shared.
type Board struct {
	Width  int
	Height int
	Tiles  [][]Tile // indexed [y][x]

	Player         Point
	Exit           Point
	TargetCrystals int
}

// New allocates an empty board of the given size.
func New(width, height int) *Board {
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
	}
	return &Board{Width: width, Height: height, Tiles: tiles}
}

// NewComposite allocates an empty 40x28 competition board.
func NewComposite() *Board {
	return New(CompositeWidth, CompositeHeight)
}

// InBounds reports whether (x, y) lies on the grid.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// At returns the tile at (x, y). The caller must check bounds.
func (b *Board) At(x, y int) Tile {
	return b.Tiles[y][x]
}

// Set writes the tile at (x, y). The caller must check bounds.
func (b *Board) Set(x, y int, t Tile) {
	b.Tiles[y][x] = t
}

// Fill sets every cell to the given tile.
func (b *Board) Fill(t Tile) {
	for y := range b.Tiles {
		for x := range b.Tiles[y] {
			b.Tiles[y][x] = t
		}
	}
}

// Clone returns a deep copy. Batch verification clones a composed template
// board once per candidate so evaluations never share state.
func (b *Board) Clone() *Board {
	c := New(b.Width, b.Height)
	for y := range b.Tiles {
		copy(c.Tiles[y], b.Tiles[y])
	}
	c.Player = b.Player
	c.Exit = b.Exit
	c.TargetCrystals = b.TargetCrystals
	return c
}

// QuadrantOffset maps quadrant index k (0..3) to the top-left corner of its
// 20x14 subframe in the composite layout.
func QuadrantOffset(k int) (int, int) {
	return (k % 2) * SingleWidth, (k / 2) * SingleHeight
}

// String renders the grid for debug output, one row per line.
func (b *Board) String() string {
	glyphs := map[Tile]byte{
		TileNone:       '.',
		TileSoftBlock:  '#',
		TileHardBlock:  'H',
		TileSoftLadder: '=',
		TileHardLadder: '|',
		TilePick:       'p',
		TileCrystal:    '*',
	}
	var sb strings.Builder
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			g, ok := glyphs[b.Tiles[y][x]]
			if !ok {
				g = '?'
			}
			switch {
			case b.Player.X == x && b.Player.Y == y:
				sb.WriteByte('P')
			case b.Exit.X == x && b.Exit.Y == y && b.Tiles[y][x] == TileNone:
				sb.WriteByte('E')
			default:
				sb.WriteByte(g)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
