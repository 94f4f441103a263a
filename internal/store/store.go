// Package store persists minted puzzle descriptors and finished competition
// records. The simulator side only ever reads; minting and competition
// bookkeeping write through the narrow surfaces below.
package store

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lodecraft/lode-verify-go/internal/u256"
)

// ErrPuzzleNotFound is returned for an id with no stored descriptor.
var ErrPuzzleNotFound = errors.New("store: puzzle not found")

// DescriptorStore is the read/write descriptor registry. GetPuzzle and
// TotalMinted are the read-only slice consumed by composition; PutPuzzle is
// the minting surface.
type DescriptorStore interface {
	GetPuzzle(id u256.Word) ([4]u256.Word, error)
	TotalMinted() (u256.Word, error)
	PutPuzzle(id u256.Word, words [4]u256.Word) error
}

// CompetitionRecord is one finished competition.
type CompetitionRecord struct {
	ID         string          `json:"id"`
	PuzzleIDs  [4]u256.Word    `json:"puzzle_ids"`
	SetupData  uint16          `json:"setup_data"`
	Prize      decimal.Decimal `json:"prize"`
	StartedAt  time.Time       `json:"started_at"`
	Outcome    string          `json:"outcome"` // "awarded" or "slashed"
	Winner     string          `json:"winner"`
	FinishedAt time.Time       `json:"finished_at"`
}

// CompetitionLog records finished competitions.
type CompetitionLog interface {
	SaveCompetition(rec *CompetitionRecord) error
	ListCompetitions(limit int) ([]CompetitionRecord, error)
}

// DB is the full persistence surface the daemon opens.
type DB interface {
	DescriptorStore
	CompetitionLog
	Migrate() error
	Close() error
}
