// Package scan batch-verifies candidate solutions against one competition
// setup using a worker pool. It exists for off-chain tooling: sweeping a
// corpus of recorded attempts, or stress-testing a puzzle set before a
// competition opens.
package scan

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lodecraft/lode-verify-go/internal/codec"
	"github.com/lodecraft/lode-verify-go/internal/sim"
	"github.com/lodecraft/lode-verify-go/internal/u256"
)

// Request describes one batch verification run.
type Request struct {
	PuzzleIDs  [4]u256.Word  `json:"puzzle_ids"`
	SetupData  uint16        `json:"setup_data"`
	Candidates [][]u256.Word `json:"candidates"`
	Limit      int           `json:"limit,omitempty"`
	TimeoutMs  int           `json:"timeout_ms,omitempty"`
}

// Verdict is the outcome for a single candidate.
type Verdict struct {
	Index   int    `json:"index"`
	Valid   bool   `json:"valid"`
	Failure string `json:"failure,omitempty"`
	Moves   int    `json:"moves"`
}

// Summary aggregates a run.
type Summary struct {
	TotalEvaluated uint64 `json:"total_evaluated"`
	ValidFound     int    `json:"valid_found"`
	FirstValid     int    `json:"first_valid"` // -1 when none
	TimedOut       bool   `json:"timed_out,omitempty"`
}

// Result is the full output of a scan.
type Result struct {
	Verdicts []Verdict `json:"verdicts"`
	Summary  Summary   `json:"summary"`
}

type job struct {
	index    int
	solution []u256.Word
}

// Scanner runs candidate batches across a fixed worker count.
type Scanner struct {
	workerCount int
}

// NewScanner sizes the pool to the host.
func NewScanner() *Scanner {
	return &Scanner{workerCount: runtime.GOMAXPROCS(0)}
}

type worker struct {
	jobs      <-chan job
	out       chan<- Verdict
	fetch     codec.DescriptorFetcher
	ids       [4]u256.Word
	setupData uint16
	evaluated *uint64
}

func (w *worker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case j, ok := <-w.jobs:
			if !ok {
				return
			}
			v := Verdict{Index: j.index}
			if s, err := codec.DecodeSolution(j.solution); err == nil {
				v.Moves = len(s.Moves)
			}
			if err := sim.Verify(w.fetch, w.ids, w.setupData, j.solution); err != nil {
				v.Failure = failureTag(err)
			} else {
				v.Valid = true
			}
			atomic.AddUint64(w.evaluated, 1)
			select {
			case w.out <- v:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func failureTag(err error) string {
	if tag := sim.Tag(err); tag != "" {
		return tag
	}
	return err.Error()
}

// Scan verifies every candidate in the request and collects verdicts. The
// verdict slice is ordered by candidate index regardless of which worker
// finished first.
func (s *Scanner) Scan(ctx context.Context, fetch codec.DescriptorFetcher, req Request) (*Result, error) {
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	jobs := make(chan job, s.workerCount*2)
	out := make(chan Verdict, len(req.Candidates))

	var evaluated uint64
	var wg sync.WaitGroup
	for i := 0; i < s.workerCount; i++ {
		w := &worker{
			jobs:      jobs,
			out:       out,
			fetch:     fetch,
			ids:       req.PuzzleIDs,
			setupData: req.SetupData,
			evaluated: &evaluated,
		}
		wg.Add(1)
		go w.run(ctx, &wg)
	}

	go func() {
		defer close(jobs)
		for i, c := range req.Candidates {
			select {
			case jobs <- job{index: i, solution: c}:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	verdicts := make([]Verdict, 0, len(req.Candidates))
	timedOut := false
collect:
	for len(verdicts) < len(req.Candidates) {
		select {
		case v := <-out:
			verdicts = append(verdicts, v)
		case <-ctx.Done():
			timedOut = true
			break collect
		case <-done:
			// Drain whatever the workers managed before exiting.
			for {
				select {
				case v := <-out:
					verdicts = append(verdicts, v)
				default:
					break collect
				}
			}
		}
	}

	sortVerdicts(verdicts)

	sum := Summary{
		TotalEvaluated: atomic.LoadUint64(&evaluated),
		TimedOut:       timedOut,
		FirstValid:     -1,
	}
	for _, v := range verdicts {
		if v.Valid {
			sum.ValidFound++
			if sum.FirstValid < 0 {
				sum.FirstValid = v.Index
			}
		}
	}
	if req.Limit > 0 && len(verdicts) > req.Limit {
		verdicts = verdicts[:req.Limit]
	}
	return &Result{Verdicts: verdicts, Summary: sum}, nil
}

func sortVerdicts(vs []Verdict) {
	// Insertion sort: batches are small and mostly ordered already.
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0 && vs[j-1].Index > vs[j].Index; j-- {
			vs[j-1], vs[j] = vs[j], vs[j-1]
		}
	}
}
