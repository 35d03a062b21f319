package stats

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used when no database is configured and
// in tests. Aggregates do not survive a restart.
type MemoryStore struct {
	mu          sync.Mutex
	matches     int
	winsByName  map[string]int
	longestWord string
}

// NewMemoryStore returns an empty in-memory stats store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{winsByName: make(map[string]int)}
}

func (m *MemoryStore) GetSnapshot(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(), nil
}

func (m *MemoryStore) RecordMatch(ctx context.Context, result MatchResult) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.matches++
	m.winsByName[result.WinnerName]++
	if len(result.LongestWord) > len(m.longestWord) {
		m.longestWord = result.LongestWord
	}
	return m.snapshotLocked(), nil
}

// snapshotLocked assumes the lock is held. Leaders come back sorted by win
// count, then name, so output is stable for equal counts.
func (m *MemoryStore) snapshotLocked() Snapshot {
	leaders := make([]LeaderLine, 0, len(m.winsByName))
	for name, wins := range m.winsByName {
		leaders = append(leaders, LeaderLine{Name: name, Wins: wins})
	}
	for i := 0; i < len(leaders); i++ {
		for j := i + 1; j < len(leaders); j++ {
			if leaders[j].Wins > leaders[i].Wins ||
				(leaders[j].Wins == leaders[i].Wins && leaders[j].Name < leaders[i].Name) {
				leaders[i], leaders[j] = leaders[j], leaders[i]
			}
		}
	}
	if len(leaders) > 10 {
		leaders = leaders[:10]
	}
	return Snapshot{
		TotalMatches:    m.matches,
		Leaders:         leaders,
		LongestWordEver: m.longestWord,
		UpdatedAt:       time.Now(),
	}
}
