package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/lodecraft/lode-verify-go/internal/u256"
)

// SQLiteDB implements DB using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) the database at path.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations.
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS puzzles (
			id TEXT PRIMARY KEY,
			word0 TEXT NOT NULL,
			word1 TEXT NOT NULL,
			word2 TEXT NOT NULL,
			word3 TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS competitions (
			id TEXT PRIMARY KEY,
			puzzle0 TEXT NOT NULL,
			puzzle1 TEXT NOT NULL,
			puzzle2 TEXT NOT NULL,
			puzzle3 TEXT NOT NULL,
			setup_data INTEGER NOT NULL,
			prize TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			outcome TEXT NOT NULL,
			winner TEXT NOT NULL,
			finished_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_competitions_finished ON competitions(finished_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// PutPuzzle stores a minted descriptor under its id.
func (s *SQLiteDB) PutPuzzle(id u256.Word, words [4]u256.Word) error {
	_, err := s.db.Exec(
		`INSERT INTO puzzles (id, word0, word1, word2, word3) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		id.String(), words[0].String(), words[1].String(), words[2].String(), words[3].String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save puzzle: %w", err)
	}
	return nil
}

// GetPuzzle loads the 4-word descriptor for id.
func (s *SQLiteDB) GetPuzzle(id u256.Word) ([4]u256.Word, error) {
	var raw [4]string
	err := s.db.QueryRow(
		`SELECT word0, word1, word2, word3 FROM puzzles WHERE id = ?`, id.String(),
	).Scan(&raw[0], &raw[1], &raw[2], &raw[3])
	if err == sql.ErrNoRows {
		return [4]u256.Word{}, ErrPuzzleNotFound
	}
	if err != nil {
		return [4]u256.Word{}, fmt.Errorf("failed to load puzzle: %w", err)
	}

	var words [4]u256.Word
	for i, r := range raw {
		w, perr := u256.FromDecimal(r)
		if perr != nil {
			return [4]u256.Word{}, fmt.Errorf("corrupt puzzle word %d: %w", i, perr)
		}
		words[i] = w
	}
	return words, nil
}

// TotalMinted returns the number of stored descriptors.
func (s *SQLiteDB) TotalMinted() (u256.Word, error) {
	var count uint64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM puzzles`).Scan(&count); err != nil {
		return u256.Zero, fmt.Errorf("failed to count puzzles: %w", err)
	}
	return u256.FromUint64(count), nil
}

// SaveCompetition records one finished competition.
func (s *SQLiteDB) SaveCompetition(rec *CompetitionRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO competitions
		 (id, puzzle0, puzzle1, puzzle2, puzzle3, setup_data, prize, started_at, outcome, winner, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.PuzzleIDs[0].String(), rec.PuzzleIDs[1].String(),
		rec.PuzzleIDs[2].String(), rec.PuzzleIDs[3].String(),
		rec.SetupData, rec.Prize.String(),
		rec.StartedAt.UTC().Format(time.RFC3339), rec.Outcome, rec.Winner,
		rec.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save competition: %w", err)
	}
	return nil
}

// ListCompetitions returns the most recently finished competitions.
func (s *SQLiteDB) ListCompetitions(limit int) ([]CompetitionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, puzzle0, puzzle1, puzzle2, puzzle3, setup_data, prize, started_at, outcome, winner, finished_at
		 FROM competitions ORDER BY finished_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	defer rows.Close()

	var out []CompetitionRecord
	for rows.Next() {
		var rec CompetitionRecord
		var ids [4]string
		var prize, started, finished string
		if err := rows.Scan(&rec.ID, &ids[0], &ids[1], &ids[2], &ids[3],
			&rec.SetupData, &prize, &started, &rec.Outcome, &rec.Winner, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan competition: %w", err)
		}
		for i, r := range ids {
			w, perr := u256.FromDecimal(r)
			if perr != nil {
				return nil, fmt.Errorf("corrupt competition puzzle id %d: %w", i, perr)
			}
			rec.PuzzleIDs[i] = w
		}
		p, perr := decimal.NewFromString(strings.TrimSpace(prize))
		if perr != nil {
			return nil, fmt.Errorf("corrupt competition prize: %w", perr)
		}
		rec.Prize = p
		if rec.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("corrupt competition start time: %w", err)
		}
		if rec.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
			return nil, fmt.Errorf("corrupt competition finish time: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
