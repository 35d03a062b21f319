package models

import (
	"github.com/google/uuid"
)

// Player is one seat in a room. PlayerID is the durable identity that
// survives disconnects; SessionID is the current transport connection and is
// rebound on every reconnect.
type Player struct {
	PlayerID  uuid.UUID `json:"playerId"`
	SessionID uuid.UUID `json:"sessionId"`
	Name      string    `json:"name"`
	Connected bool      `json:"connected"`
	Ready     bool      `json:"ready"`

	// Aggregate stats carried across rounds while the player stays seated.
	Wins        int    `json:"wins"`
	GamesPlayed int    `json:"gamesPlayed"`
	LongestWord string `json:"longestWord"`

	// Send pushes an outbound event to this player's connection. Set by the
	// transport layer on join, cleared on disconnect.
	Send func(v interface{}) `json:"-"`
}
