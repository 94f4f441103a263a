package protocol

import "errors"

// Protocol failures. Every entry point checks all of these before touching
// the ledger, so a returned error implies no state was mutated.
var (
	ErrBondNotEnough              = errors.New("protocol: bond not enough")
	ErrSolutionNotEqualHash       = errors.New("protocol: solution does not match committed hash")
	ErrCompetitionAlreadyFinished = errors.New("protocol: competition already finished")
	ErrOutsideTestTimeWindow      = errors.New("protocol: outside test time window")
	ErrHashAlreadySet             = errors.New("protocol: hash already set")
	ErrNoSolutionOwner            = errors.New("protocol: no solution owner")
	ErrSolutionIsValid            = errors.New("protocol: solution is valid")
	ErrCompetitionStillRunning    = errors.New("protocol: competition still running")
	ErrUnclaimedPrize             = errors.New("protocol: unclaimed prize outstanding")
	ErrNotOperator                = errors.New("protocol: caller is not the operator")
	ErrNoCompetition              = errors.New("protocol: no competition started")
)
