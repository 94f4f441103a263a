package store

import (
	"sort"
	"sync"

	"github.com/lodecraft/lode-verify-go/internal/u256"
)

// MemoryDB is a map-backed DB for tests and ephemeral runs.
type MemoryDB struct {
	mu           sync.RWMutex
	puzzles      map[u256.Word][4]u256.Word
	competitions []CompetitionRecord
}

// NewMemoryDB creates an empty in-memory store.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{puzzles: make(map[u256.Word][4]u256.Word)}
}

func (m *MemoryDB) Migrate() error { return nil }
func (m *MemoryDB) Close() error   { return nil }

func (m *MemoryDB) PutPuzzle(id u256.Word, words [4]u256.Word) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.puzzles[id]; !exists {
		m.puzzles[id] = words
	}
	return nil
}

func (m *MemoryDB) GetPuzzle(id u256.Word) ([4]u256.Word, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	words, ok := m.puzzles[id]
	if !ok {
		return [4]u256.Word{}, ErrPuzzleNotFound
	}
	return words, nil
}

func (m *MemoryDB) TotalMinted() (u256.Word, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return u256.FromUint64(uint64(len(m.puzzles))), nil
}

func (m *MemoryDB) SaveCompetition(rec *CompetitionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.competitions = append(m.competitions, *rec)
	return nil
}

func (m *MemoryDB) ListCompetitions(limit int) ([]CompetitionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CompetitionRecord, len(m.competitions))
	copy(out, m.competitions)
	sort.Slice(out, func(i, j int) bool { return out[i].FinishedAt.After(out[j].FinishedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
