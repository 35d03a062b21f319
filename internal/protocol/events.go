// Package protocol defines the server-to-client event payloads. Every event
// carries a Type tag so clients can dispatch on a single field; constructors
// set the tag so call sites cannot mislabel an event.
package protocol

import (
	"time"

	"github.com/tilerush/tilerush/internal/engine"
	"github.com/tilerush/tilerush/internal/stats"
)

// Notice levels for RoomNotice.
const (
	NoticeInfo  = "info"
	NoticeError = "error"
)

// RoomNotice is a human-readable room-scoped announcement.
type RoomNotice struct {
	Type    string `json:"type"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

func NewRoomNotice(level, message string) RoomNotice {
	return RoomNotice{Type: "room_notice", Level: level, Message: message}
}

// ActionRejected tells the acting client why its action was refused. Never
// broadcast.
type ActionRejected struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewActionRejected(message string) ActionRejected {
	return ActionRejected{Type: "action_rejected", Message: message}
}

// GameStarted announces a new round to every player.
type GameStarted struct {
	Type      string `json:"type"`
	StartedAt int64  `json:"startedAt"`
}

func NewGameStarted(startedAt time.Time) GameStarted {
	return GameStarted{Type: "game_started", StartedAt: startedAt.UnixMilli()}
}

// GameSnapshot is a per-recipient view of the round: the recipient's own
// board plus the shared bag count. Other players' tiles are never included.
type GameSnapshot struct {
	Type           string           `json:"type"`
	GameState      engine.GameState `json:"gameState"`
	BagCount       int              `json:"bagCount"`
	Reason         string           `json:"reason"`
	ActorSessionID string           `json:"actorSessionId,omitempty"`
	ServerTime     int64            `json:"serverTime"`
}

func NewGameSnapshot(state engine.GameState, bagCount int, reason, actorSessionID string) GameSnapshot {
	return GameSnapshot{
		Type:           "game_snapshot",
		GameState:      state,
		BagCount:       bagCount,
		Reason:         reason,
		ActorSessionID: actorSessionID,
		ServerTime:     time.Now().UnixMilli(),
	}
}

// GameFinished announces the round result with the winning board laid bare.
type GameFinished struct {
	Type              string        `json:"type"`
	WinnerName        string        `json:"winnerName"`
	LongestWord       string        `json:"longestWord"`
	WinnerSessionID   string        `json:"winnerSessionId,omitempty"`
	WinningBoardTiles []engine.Tile `json:"winningBoardTiles"`
}

func NewGameFinished(winnerName, longestWord, winnerSessionID string, board []engine.Tile) GameFinished {
	return GameFinished{
		Type:              "game_finished",
		WinnerName:        winnerName,
		LongestWord:       longestWord,
		WinnerSessionID:   winnerSessionID,
		WinningBoardTiles: board,
	}
}

// SeatToken delivers a resume token for the requesting seat only.
type SeatToken struct {
	Type             string `json:"type"`
	Token            string `json:"token"`
	PlayerID         string `json:"playerId"`
	RoomID           string `json:"roomId"`
	ExpiresInSeconds int    `json:"expiresInSeconds"`
}

func NewSeatToken(token, playerID, roomID string, expiresInSeconds int) SeatToken {
	return SeatToken{
		Type:             "seat_token",
		Token:            token,
		PlayerID:         playerID,
		RoomID:           roomID,
		ExpiresInSeconds: expiresInSeconds,
	}
}

// StatsSnapshot relays the stats collaborator's current snapshot.
type StatsSnapshot struct {
	Type     string         `json:"type"`
	Snapshot stats.Snapshot `json:"snapshot"`
}

func NewStatsSnapshot(snap stats.Snapshot) StatsSnapshot {
	return StatsSnapshot{Type: "stats_snapshot", Snapshot: snap}
}

// RosterEntry is one seat as shown to everyone in the room.
type RosterEntry struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	Ready     bool   `json:"ready"`
	IsOwner   bool   `json:"isOwner"`
	Wins      int    `json:"wins"`
}

// RoomState is the full public room view, sent on join and roster changes.
type RoomState struct {
	Type            string        `json:"type"`
	RoomID          string        `json:"roomId"`
	Phase           string        `json:"phase"`
	YourSessionID   string        `json:"yourSessionId,omitempty"`
	Players         []RosterEntry `json:"players"`
	LastWinnerName  string        `json:"lastWinnerName,omitempty"`
	LastLongestWord string        `json:"lastLongestWord,omitempty"`
	RoundsPlayed    int           `json:"roundsPlayed"`
}

// Chat is a relayed room chat line.
type Chat struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	SentAt    int64  `json:"sentAt"`
}

func NewChat(sessionID, name, text string) Chat {
	return Chat{Type: "chat", SessionID: sessionID, Name: name, Text: text, SentAt: time.Now().Unix()}
}

// Pong answers a client ping.
type Pong struct {
	Type string `json:"type"`
}

func NewPong() Pong { return Pong{Type: "pong"} }
