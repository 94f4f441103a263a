// Package scripting lets users author solution move streams in JavaScript.
// A sandboxed goja runtime exposes move-builder globals; the composed
// sequence is returned as decoded moves plus the wire encoding.
package scripting

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/lodecraft/lode-verify-go/internal/codec"
	"github.com/lodecraft/lode-verify-go/internal/u256"
)

// LogEntry is a single log message emitted by the script.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

const scriptTimeout = 2 * time.Second

// VM wraps a goja runtime with sandbox restrictions and the move-builder
// globals injected.
type VM struct {
	runtime *goja.Runtime
	mu      sync.Mutex

	moves []codec.Move

	logs    []LogEntry
	logsMu  sync.Mutex
	maxLogs int
}

// NewVM creates a sandboxed runtime.
func NewVM() *VM {
	vm := &VM{
		runtime: goja.New(),
		maxLogs: 500,
	}
	vm.injectGlobals()
	return vm
}

func (vm *VM) push(kind codec.MoveKind, dir codec.Direction) error {
	if len(vm.moves) >= codec.MaxMoves {
		return fmt.Errorf("scripting: move limit %d reached", codec.MaxMoves)
	}
	vm.moves = append(vm.moves, codec.Move{Kind: kind, Dir: dir})
	return nil
}

func dirArg(call goja.FunctionCall) codec.Direction {
	if len(call.Arguments) == 0 {
		return codec.DirWait
	}
	return codec.Direction(call.Arguments[0].ToInteger())
}

func (vm *VM) builder(kind codec.MoveKind) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if err := vm.push(kind, dirArg(call)); err != nil {
			panic(vm.runtime.ToValue(err.Error()))
		}
		return goja.Undefined()
	}
}

func (vm *VM) injectGlobals() {
	r := vm.runtime

	// move(dir), mine(dir), placeBlock(dir), placeLadder(dir)
	r.Set("move", vm.builder(codec.MoveKindMove))
	r.Set("mine", vm.builder(codec.MoveKindMine))
	r.Set("placeBlock", vm.builder(codec.MoveKindPlaceBlock))
	r.Set("placeLadder", vm.builder(codec.MoveKindPlaceLadder))
	r.Set("wait", func(call goja.FunctionCall) goja.Value {
		if err := vm.push(codec.MoveKindMove, codec.DirWait); err != nil {
			panic(r.ToValue(err.Error()))
		}
		return goja.Undefined()
	})
	r.Set("clear", func(call goja.FunctionCall) goja.Value {
		vm.moves = vm.moves[:0]
		return goja.Undefined()
	})

	// log(...args) with a console.log alias
	r.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		msg := strings.Join(parts, " ")

		vm.logsMu.Lock()
		if len(vm.logs) >= vm.maxLogs {
			vm.logs = vm.logs[1:]
		}
		vm.logs = append(vm.logs, LogEntry{Time: time.Now(), Message: msg})
		vm.logsMu.Unlock()

		return goja.Undefined()
	})
	console := r.NewObject()
	console.Set("log", r.Get("log"))
	r.Set("console", console)

	for name, v := range map[string]int64{
		"RIGHT":      int64(codec.DirRight),
		"RIGHT_UP":   int64(codec.DirRightUp),
		"UP":         int64(codec.DirUp),
		"LEFT_UP":    int64(codec.DirLeftUp),
		"LEFT":       int64(codec.DirLeft),
		"LEFT_DOWN":  int64(codec.DirLeftDown),
		"DOWN":       int64(codec.DirDown),
		"RIGHT_DOWN": int64(codec.DirRightDown),
		"WAIT":       int64(codec.DirWait),
	} {
		r.Set(name, v)
	}

	// Block dangerous globals.
	r.Set("require", goja.Undefined())
	r.Set("fetch", goja.Undefined())
	r.Set("XMLHttpRequest", goja.Undefined())
	r.Set("eval", goja.Undefined())
	r.Set("Function", goja.Undefined())
}

// Build runs a script and returns the composed move sequence.
func (vm *VM) Build(source string) ([]codec.Move, error) {
	err := vm.runWithTimeout(scriptTimeout, func() error {
		vm.mu.Lock()
		defer vm.mu.Unlock()
		vm.moves = vm.moves[:0]
		if _, err := vm.runtime.RunString(source); err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]codec.Move, len(vm.moves))
	copy(out, vm.moves)
	return out, nil
}

// EncodeWords builds the script and returns both the moves and their wire
// encoding.
func (vm *VM) EncodeWords(source string) ([]codec.Move, []u256.Word, error) {
	moves, err := vm.Build(source)
	if err != nil {
		return nil, nil, err
	}
	words, err := codec.EncodeSolution(moves)
	if err != nil {
		return nil, nil, err
	}
	return moves, words, nil
}

// Logs returns a copy of the log buffer.
func (vm *VM) Logs() []LogEntry {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	out := make([]LogEntry, len(vm.logs))
	copy(out, vm.logs)
	return out
}

// ClearLogs empties the log buffer.
func (vm *VM) ClearLogs() {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	vm.logs = vm.logs[:0]
}

func (vm *VM) runWithTimeout(timeout time.Duration, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		vm.runtime.Interrupt("script execution timeout")
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("scripting: timed out: %w", err)
			}
			return fmt.Errorf("scripting: timed out")
		case <-time.After(200 * time.Millisecond):
			return fmt.Errorf("scripting: timed out")
		}
	}
}
