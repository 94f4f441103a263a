package codec

import (
	"github.com/lodecraft/lode-verify-go/internal/board"
	"github.com/lodecraft/lode-verify-go/internal/u256"
)

// DescriptorWords is the storage size of one puzzle descriptor.
const DescriptorWords = 4

// Window selects where a descriptor's digits land on a grid and which of its
// optional objects are live. Composition decodes each descriptor into its own
// quadrant window; a standalone 20x14 decode uses the full-extent window.
type Window struct {
	XStart, YStart int
	XEnd, YEnd     int
	UseStart       bool
	UseExit        bool
}

// SingleWindow is the full-extent window of a standalone descriptor.
func SingleWindow(useStart, useExit bool) Window {
	return Window{
		XEnd:     board.SingleWidth,
		YEnd:     board.SingleHeight,
		UseStart: useStart,
		UseExit:  useExit,
	}
}

// Objects carries the decoded object positions of one descriptor, in grid
// coordinates (window offsets already applied).
type Objects struct {
	Crystal board.Point
	Start   board.Point
	Exit    board.Point
}

// Descriptor is one decoded 20x14 puzzle: the tile grid digits plus object
// positions in local coordinates. Crystal is overlaid on the grid at decode
// time and never stored in the tile digits.
type Descriptor struct {
	Tiles   [board.SingleHeight][board.SingleWidth]board.Tile
	Crystal board.Point
	Start   board.Point
	Exit    board.Point
}

// decodeObject reads one 3-digit object: digits (quadrant, y, x) LSD first.
// Quadrants 3 and 4 carry the lower half (y >= 10), even quadrants the right
// half (x >= 10).
func decodeObject(s *u256.DigitStream) (int, int) {
	q := int(s.Next())
	y := int(s.Next())
	x := int(s.Next())
	if q > 2 && y < 4 {
		y += 10
	}
	if q%2 == 0 {
		x += 10
	}
	return x, y
}

// encodeObject writes the 3-digit object encoding of a local coordinate.
func encodeObject(w *u256.DigitWriter, x, y int) {
	q := 1
	if x >= 10 {
		x -= 10
		q++
	}
	if y >= 10 {
		y -= 10
		q += 2
	}
	w.Push(uint8(q))
	w.Push(uint8(y))
	w.Push(uint8(x))
}

// DecodeInto streams a descriptor's digits onto the grid region selected by
// win and returns the object positions in grid coordinates. Decoding is total
// on any 4-word input: out-of-range tile digits land on the grid unchanged
// and simply match no tile predicate.
func DecodeInto(b *board.Board, words [DescriptorWords]u256.Word, win Window) Objects {
	s := u256.NewDigitStream(words[:], 0)

	for y := win.YStart; y < win.YEnd; y++ {
		for x := win.XStart; x < win.XEnd; x++ {
			b.Set(x, y, board.Tile(s.Next()))
		}
	}

	var obj Objects
	cx, cy := decodeObject(s)
	obj.Crystal = board.Point{X: win.XStart + cx, Y: win.YStart + cy}
	b.Set(obj.Crystal.X, obj.Crystal.Y, board.TileCrystal)

	if win.UseStart {
		sx, sy := decodeObject(s)
		obj.Start = board.Point{X: win.XStart + sx, Y: win.YStart + sy}
	} else {
		s.Skip(3)
	}

	if win.UseExit {
		ex, ey := decodeObject(s)
		obj.Exit = board.Point{X: win.XStart + ex, Y: win.YStart + ey}
	} else {
		s.Skip(3)
	}

	return obj
}

// DecodeDescriptor decodes a standalone 20x14 descriptor with both optional
// objects live.
func DecodeDescriptor(words [DescriptorWords]u256.Word) *Descriptor {
	b := board.New(board.SingleWidth, board.SingleHeight)
	obj := DecodeInto(b, words, SingleWindow(true, true))

	var d Descriptor
	for y := 0; y < board.SingleHeight; y++ {
		for x := 0; x < board.SingleWidth; x++ {
			d.Tiles[y][x] = b.At(x, y)
		}
	}
	// The grid holds the crystal overlay; the descriptor record stores
	// TileNone at the crystal cell, so a tile digit under the crystal is
	// not kept.
	d.Tiles[obj.Crystal.Y][obj.Crystal.X] = board.TileNone
	d.Crystal = obj.Crystal
	d.Start = obj.Start
	d.Exit = obj.Exit
	return &d
}

// EncodeDescriptor packs a descriptor into its 4-word storage form: 280 tile
// digits row-major, then the crystal, start, and exit objects.
func EncodeDescriptor(d *Descriptor) [DescriptorWords]u256.Word {
	w := u256.NewDigitWriter()
	for y := 0; y < board.SingleHeight; y++ {
		for x := 0; x < board.SingleWidth; x++ {
			t := d.Tiles[y][x]
			if t == board.TileCrystal {
				// Crystals are carried by the object digits, never the grid.
				t = board.TileNone
			}
			w.Push(uint8(t))
		}
	}
	encodeObject(w, d.Crystal.X, d.Crystal.Y)
	encodeObject(w, d.Start.X, d.Start.Y)
	encodeObject(w, d.Exit.X, d.Exit.Y)

	words := w.Words(DescriptorWords)
	var out [DescriptorWords]u256.Word
	copy(out[:], words)
	return out
}
