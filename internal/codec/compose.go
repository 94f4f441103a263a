package codec

import (
	"fmt"

	"github.com/lodecraft/lode-verify-go/internal/board"
	"github.com/lodecraft/lode-verify-go/internal/u256"
)

// DescriptorFetcher is the read-only slice of the descriptor store that
// composition needs.
type DescriptorFetcher interface {
	GetPuzzle(id u256.Word) ([DescriptorWords]u256.Word, error)
}

// ComposeBoard assembles one 40x28 competition board from four stored
// descriptors. Each descriptor decodes into its 20x14 quadrant; the start and
// exit quadrants selected by setupData contribute the player and exit cells,
// and every quadrant contributes one crystal.
func ComposeBoard(fetch DescriptorFetcher, ids [4]u256.Word, setupData uint16) (*board.Board, error) {
	setup := ParseSetupData(setupData)
	b := board.NewComposite()

	for k := 0; k < 4; k++ {
		words, err := fetch.GetPuzzle(ids[k])
		if err != nil {
			return nil, fmt.Errorf("codec: fetch puzzle %s: %w", ids[k], err)
		}

		xs, ys := board.QuadrantOffset(k)
		win := Window{
			XStart:   xs,
			YStart:   ys,
			XEnd:     xs + board.SingleWidth,
			YEnd:     ys + board.SingleHeight,
			UseStart: k == setup.StartQuadrant,
			UseExit:  k == setup.ExitQuadrant,
		}
		obj := DecodeInto(b, words, win)
		if win.UseStart {
			b.Player = obj.Start
		}
		if win.UseExit {
			b.Exit = obj.Exit
		}
	}

	b.TargetCrystals = setup.TargetCrystals
	return b, nil
}
