// Package stats defines the contract between the room core and the durable
// statistics collaborator. The core only ever talks to the Store interface;
// a failure here is logged and never blocks gameplay.
package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PlayerLine is one participant in a finished match.
type PlayerLine struct {
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"name"`
	Winner   bool      `json:"winner"`
}

// MatchResult is what the room reports when a round finishes with a winner.
type MatchResult struct {
	RoomID      uuid.UUID    `json:"roomId"`
	WinnerName  string       `json:"winnerName"`
	LongestWord string       `json:"longestWord"`
	Players     []PlayerLine `json:"players"`
	FinishedAt  time.Time    `json:"finishedAt"`
}

// LeaderLine is one row of the aggregate leaderboard.
type LeaderLine struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// Snapshot is the aggregate view returned to clients after match end.
type Snapshot struct {
	TotalMatches    int          `json:"totalMatches"`
	Leaders         []LeaderLine `json:"leaders"`
	LongestWordEver string       `json:"longestWordEver"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// Store is the durable statistics collaborator.
type Store interface {
	// GetSnapshot returns the current aggregate snapshot.
	GetSnapshot(ctx context.Context) (Snapshot, error)
	// RecordMatch persists a finished match and returns the refreshed snapshot.
	RecordMatch(ctx context.Context, result MatchResult) (Snapshot, error)
}
