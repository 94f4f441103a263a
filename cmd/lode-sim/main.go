// lode-sim is a debugging CLI: it decodes a composite puzzle, prints the
// board and the decoded move stream, and traces a solution step by step.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lodecraft/lode-verify-go/internal/codec"
	"github.com/lodecraft/lode-verify-go/internal/sim"
	"github.com/lodecraft/lode-verify-go/internal/u256"
)

func main() {
	var (
		words    = flag.String("words", "", "16 comma-separated descriptor words (4 per quadrant, decimal or 0x-hex)")
		setup    = flag.Uint("setup", 0, "16-bit competition setup value")
		solution = flag.String("solution", "", "comma-separated encoded solution words")
		trace    = flag.Bool("trace", false, "print the board after every move")
	)
	flag.Parse()

	wordList, err := parseWords(*words)
	if err != nil {
		fatalf("parse -words: %v", err)
	}
	if len(wordList) != 16 {
		fatalf("-words needs 16 words, got %d", len(wordList))
	}

	var descriptors [4][4]u256.Word
	for k := 0; k < 4; k++ {
		copy(descriptors[k][:], wordList[k*4:(k+1)*4])
	}
	fetch := memFetcher{descriptors: descriptors}
	ids := [4]u256.Word{u256.FromUint64(0), u256.FromUint64(1), u256.FromUint64(2), u256.FromUint64(3)}

	b, err := codec.ComposeBoard(fetch, ids, uint16(*setup))
	if err != nil {
		fatalf("compose board: %v", err)
	}
	fmt.Printf("setup: start=%v exit=%v crystals=%d\n", b.Player, b.Exit, b.TargetCrystals)
	fmt.Println(b.String())

	if *solution == "" {
		return
	}
	solWords, err := parseWords(*solution)
	if err != nil {
		fatalf("parse -solution: %v", err)
	}
	sol, err := codec.DecodeSolution(solWords)
	if err != nil {
		fatalf("decode solution: %v", err)
	}
	fmt.Printf("moves (%d):\n", len(sol.Moves))
	for i, m := range sol.Moves {
		fmt.Printf("  %3d  %s\n", i, m)
	}

	if *trace {
		for i := 1; i <= len(sol.Moves); i++ {
			step := b.Clone()
			err := sim.Run(step, sol.Moves[:i])
			fmt.Printf("after move %d (%s): player=%v\n", i-1, sol.Moves[i-1], step.Player)
			fmt.Println(step.String())
			if err != nil && i < len(sol.Moves) {
				if tag := sim.Tag(err); tag != "" && !isTerminalTag(tag) {
					fmt.Printf("failed: %v\n", err)
					os.Exit(1)
				}
			}
		}
	}

	final := b.Clone()
	if err := sim.Run(final, sol.Moves); err != nil {
		fmt.Printf("verdict: INVALID (%v)\n", err)
		os.Exit(1)
	}
	fmt.Println("verdict: VALID")
}

// isTerminalTag reports failures that only apply after the last move.
func isTerminalTag(tag string) bool {
	return tag == "not_at_exit" || tag == "not_enough_crystals"
}

type memFetcher struct {
	descriptors [4][4]u256.Word
}

func (m memFetcher) GetPuzzle(id u256.Word) ([4]u256.Word, error) {
	k := id.Uint64()
	if k > 3 {
		return [4]u256.Word{}, fmt.Errorf("unknown puzzle id %s", id)
	}
	return m.descriptors[k], nil
}

func parseWords(s string) ([]u256.Word, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]u256.Word, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		var (
			w   u256.Word
			err error
		)
		if strings.HasPrefix(p, "0x") || strings.HasPrefix(p, "0X") {
			w, err = u256.FromHex(p)
		} else {
			w, err = u256.FromDecimal(p)
		}
		if err != nil {
			return nil, fmt.Errorf("word %q: %w", p, err)
		}
		out = append(out, w)
	}
	return out, nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
