// Package protocol implements the commit-reveal-challenge state machine that
// decides who claims a competition prize. Submitters commit a solution hash
// during the submission window and reveal the preimage; during the test
// window anyone may challenge by running the simulator, slashing the bond of
// an invalid submitter. After the windows an unchallenged reveal is awarded
// the prize without ever simulating on the happy path.
package protocol

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lodecraft/lode-verify-go/internal/codec"
	"github.com/lodecraft/lode-verify-go/internal/ledger"
	"github.com/lodecraft/lode-verify-go/internal/sim"
	"github.com/lodecraft/lode-verify-go/internal/store"
	"github.com/lodecraft/lode-verify-go/internal/u256"
)

// Default window durations.
const (
	DefaultCompDuration = time.Hour
	DefaultTestDuration = 15 * time.Minute
)

// Competition is the running competition singleton.
type Competition struct {
	ID        string
	PuzzleIDs [4]u256.Word
	SetupData uint16
	StartedAt time.Time
	Prize     decimal.Decimal
}

// CurrentSolution is the outstanding commitment, at most one at a time.
type CurrentSolution struct {
	Submitter string
	Hash      [32]byte
	Revealed  []u256.Word // nil until a matching reveal
}

// Config wires the protocol's collaborators.
type Config struct {
	Clock        Clock
	Ledger       ledger.Ledger
	Fetch        codec.DescriptorFetcher
	Log          store.CompetitionLog // optional
	Operator     string
	RequiredBond decimal.Decimal
	CompDuration time.Duration
	TestDuration time.Duration

	// Verify overrides the simulator invocation; tests use it to force
	// verdicts. Defaults to sim.VerifyBool over Fetch.
	Verify func(ids [4]u256.Word, setupData uint16, solution []u256.Word) bool
}

// Protocol owns the competition and solution singletons. All entry points
// are serialized by one mutex, and every ledger mutation happens only after
// all reverting checks have passed.
type Protocol struct {
	mu sync.Mutex

	clock        Clock
	ledger       ledger.Ledger
	log          store.CompetitionLog
	verify       func([4]u256.Word, uint16, []u256.Word) bool
	operator     string
	requiredBond decimal.Decimal
	compDur      time.Duration
	testDur      time.Duration

	comp       *Competition
	cur        *CurrentSolution
	lockedBond decimal.Decimal
}

// New builds a protocol instance from cfg, applying defaults.
func New(cfg Config) *Protocol {
	p := &Protocol{
		clock:        cfg.Clock,
		ledger:       cfg.Ledger,
		log:          cfg.Log,
		verify:       cfg.Verify,
		operator:     cfg.Operator,
		requiredBond: cfg.RequiredBond,
		compDur:      cfg.CompDuration,
		testDur:      cfg.TestDuration,
	}
	if p.clock == nil {
		p.clock = SystemClock{}
	}
	if p.compDur <= 0 {
		p.compDur = DefaultCompDuration
	}
	if p.testDur <= 0 {
		p.testDur = DefaultTestDuration
	}
	if p.verify == nil {
		fetch := cfg.Fetch
		p.verify = func(ids [4]u256.Word, setupData uint16, solution []u256.Word) bool {
			return sim.VerifyBool(fetch, ids, setupData, solution)
		}
	}
	return p
}

func (p *Protocol) submissionDeadline() time.Time {
	return p.comp.StartedAt.Add(p.compDur)
}

func (p *Protocol) testDeadline() time.Time {
	return p.comp.StartedAt.Add(p.compDur + p.testDur)
}

// finishedLocked reports whether no competition is in any window.
func (p *Protocol) finishedLocked(now time.Time) bool {
	return p.comp == nil || now.After(p.testDeadline())
}

// idleCheckLocked guards the administrative operations: nothing running,
// nothing outstanding.
func (p *Protocol) idleCheckLocked(caller string) error {
	if caller != p.operator {
		return ErrNotOperator
	}
	if !p.finishedLocked(p.clock.Now()) {
		return ErrCompetitionStillRunning
	}
	if p.cur != nil {
		return ErrUnclaimedPrize
	}
	return nil
}

// SetRequiredBond updates the bond requirement between competitions.
func (p *Protocol) SetRequiredBond(caller string, amount decimal.Decimal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.idleCheckLocked(caller); err != nil {
		return err
	}
	p.requiredBond = amount
	return nil
}

// SetDurations updates the window durations between competitions.
func (p *Protocol) SetDurations(caller string, comp, test time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.idleCheckLocked(caller); err != nil {
		return err
	}
	if comp > 0 {
		p.compDur = comp
	}
	if test > 0 {
		p.testDur = test
	}
	return nil
}

// StartCompetition opens a new competition over four minted puzzles.
func (p *Protocol) StartCompetition(caller string, ids [4]u256.Word, setupData uint16, prize decimal.Decimal) (*Competition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.idleCheckLocked(caller); err != nil {
		return nil, err
	}
	if err := p.ledger.AllocatePrize(prize); err != nil {
		return nil, err
	}
	p.comp = &Competition{
		ID:        uuid.New().String(),
		PuzzleIDs: ids,
		SetupData: setupData,
		StartedAt: p.clock.Now(),
		Prize:     prize,
	}
	return p.snapshotCompetition(), nil
}

// Commit binds the first submitter of the window to their solution hash and
// locks their bond.
func (p *Protocol) Commit(submitter string, hash [32]byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.comp == nil {
		return ErrNoCompetition
	}
	now := p.clock.Now()
	if now.After(p.submissionDeadline()) {
		return ErrCompetitionAlreadyFinished
	}
	if p.cur != nil {
		return ErrHashAlreadySet
	}
	if p.ledger.AvailableBond(submitter).LessThan(p.requiredBond) {
		return ErrBondNotEnough
	}
	if err := p.ledger.LockBond(submitter, p.requiredBond); err != nil {
		return err
	}
	p.cur = &CurrentSolution{Submitter: submitter, Hash: hash}
	p.lockedBond = p.requiredBond
	return nil
}

// Reveal discloses the committed preimage. The moves are stored but not yet
// judged; judgement happens optimistically in the test window.
func (p *Protocol) Reveal(submitter string, solution []u256.Word) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.comp == nil {
		return ErrNoCompetition
	}
	now := p.clock.Now()
	if now.After(p.submissionDeadline()) {
		return ErrCompetitionAlreadyFinished
	}
	if p.cur == nil || p.cur.Submitter != submitter {
		return ErrNoSolutionOwner
	}
	if SolutionHash(solution) != p.cur.Hash {
		return ErrSolutionNotEqualHash
	}
	p.cur.Revealed = append([]u256.Word(nil), solution...)
	return nil
}

// TakePlayerBond lets a challenger run the simulator during the test window.
// An invalid (or never revealed) submission forfeits its bond to the
// challenger; a valid one costs the challenger the call.
func (p *Protocol) TakePlayerBond(challenger string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.comp == nil {
		return ErrNoCompetition
	}
	now := p.clock.Now()
	if !now.After(p.submissionDeadline()) || now.After(p.testDeadline()) {
		return ErrOutsideTestTimeWindow
	}
	if p.cur == nil {
		return ErrNoSolutionOwner
	}
	if p.cur.Revealed != nil && p.verify(p.comp.PuzzleIDs, p.comp.SetupData, p.cur.Revealed) {
		return ErrSolutionIsValid
	}
	if err := p.ledger.PayBondTo(challenger, p.cur.Submitter, p.lockedBond); err != nil {
		return err
	}
	p.recordLocked("slashed", challenger, now)
	p.cur = nil
	p.lockedBond = decimal.Zero
	return nil
}

// UnlockBondAwardPrize settles an unchallenged submission after the test
// window: the bond unlocks and the prize pays out. The simulator is never
// consulted here.
func (p *Protocol) UnlockBondAwardPrize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.comp == nil {
		return ErrNoCompetition
	}
	now := p.clock.Now()
	if !now.After(p.testDeadline()) {
		return ErrCompetitionStillRunning
	}
	if p.cur == nil {
		return ErrNoSolutionOwner
	}
	if p.cur.Revealed == nil {
		return ErrUnclaimedPrize
	}
	if err := p.ledger.UnlockBond(p.cur.Submitter, p.lockedBond); err != nil {
		return err
	}
	if err := p.ledger.RewardPrizeTo(p.cur.Submitter); err != nil {
		return err
	}
	p.recordLocked("awarded", p.cur.Submitter, now)
	p.cur = nil
	p.lockedBond = decimal.Zero
	return nil
}

// recordLocked appends the competition outcome to the history log.
func (p *Protocol) recordLocked(outcome, winner string, at time.Time) {
	if p.log == nil || p.comp == nil {
		return
	}
	// History write failures do not undo a settled competition.
	_ = p.log.SaveCompetition(&store.CompetitionRecord{
		ID:         p.comp.ID,
		PuzzleIDs:  p.comp.PuzzleIDs,
		SetupData:  p.comp.SetupData,
		Prize:      p.comp.Prize,
		StartedAt:  p.comp.StartedAt,
		Outcome:    outcome,
		Winner:     winner,
		FinishedAt: at,
	})
}

// Status is a read-only snapshot for callers.
type Status struct {
	Competition        *Competition `json:"competition,omitempty"`
	Submitter          string       `json:"submitter,omitempty"`
	Revealed           bool         `json:"revealed"`
	RequiredBond       decimal.Decimal `json:"required_bond"`
	SubmissionDeadline *time.Time   `json:"submission_deadline,omitempty"`
	TestDeadline       *time.Time   `json:"test_deadline,omitempty"`
}

func (p *Protocol) snapshotCompetition() *Competition {
	if p.comp == nil {
		return nil
	}
	c := *p.comp
	return &c
}

// CurrentStatus returns a snapshot of the protocol state.
func (p *Protocol) CurrentStatus() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := Status{
		Competition:  p.snapshotCompetition(),
		RequiredBond: p.requiredBond,
	}
	if p.cur != nil {
		st.Submitter = p.cur.Submitter
		st.Revealed = p.cur.Revealed != nil
	}
	if p.comp != nil {
		sd := p.submissionDeadline()
		td := p.testDeadline()
		st.SubmissionDeadline = &sd
		st.TestDeadline = &td
	}
	return st
}
