// Package engine implements the pure tile simulation for a round: bag
// shuffling, staging/board zone transitions, serve, trade and pressure
// mechanics, and round-end detection.
//
// Every operation takes a GameState value and returns a new one; the input is
// never mutated. Invalid operations are no-ops that set Rejected and record
// the reason in LastAction, because the room dispatcher has already validated
// phase and ownership before calling in.
package engine

import (
	"fmt"
	"math/rand"
)

// Zone identifies where a tile currently lives.
type Zone string

const (
	// ZoneStaging is the player's personal holding area for drawn tiles.
	ZoneStaging Zone = "staging"
	// ZoneBoard is the player's private grid.
	ZoneBoard Zone = "board"
)

// Status is the round outcome from this player's perspective.
type Status string

const (
	StatusRunning Status = "running"
	// StatusWon means the bag could not supply a full serve round: the
	// serving player has gone out.
	StatusWon Status = "won"
	// StatusLost is the pressure-mode failure outcome.
	StatusLost Status = "lost"
)

// Tile is a single letter tile. Row/Col are 1-based and present only while
// the tile is on the board; a staging tile carries zero values which the JSON
// encoding omits.
type Tile struct {
	ID     string `json:"id"`
	Letter string `json:"letter"`
	Zone   Zone   `json:"zone"`
	Row    int    `json:"row,omitempty"`
	Col    int    `json:"col,omitempty"`
}

// PressureRange bounds the legacy single-player pressure timer, in
// milliseconds. The multiplayer room does not schedule pressure ticks, but
// the config shape is retained for the solo mode and its tests.
type PressureRange struct {
	MinMs int `json:"minMs"`
	MaxMs int `json:"maxMs"`
}

// Config is immutable for the duration of a round.
type Config struct {
	Rows                int           `json:"rows"`
	Cols                int           `json:"cols"`
	Players             int           `json:"players"`
	InitialVisibleTiles int           `json:"initialVisibleTiles"`
	Pressure            PressureRange `json:"pressure"`
}

// DefaultConfig returns the standard 12x12 two-player configuration.
func DefaultConfig() Config {
	return Config{
		Rows:                12,
		Cols:                12,
		Players:             2,
		InitialVisibleTiles: 21,
		Pressure:            PressureRange{MinMs: 4000, MaxMs: 9000},
	}
}

// GameState is one player's full view of a round. DrawPile is private to the
// player; only its length is shared across the room.
type GameState struct {
	Config     Config   `json:"config"`
	Status     Status   `json:"status"`
	Turn       int      `json:"turn"`
	NextTileID int      `json:"nextTileId"`
	DrawPile   []string `json:"drawPile"`
	Tiles      []Tile   `json:"tiles"`
	LastAction string   `json:"lastAction"`
	// Rejected marks the result of an invalid operation. LastAction then
	// holds the human-readable reason; dispatchers check this flag, not the
	// wording.
	Rejected bool `json:"rejected,omitempty"`
}

// clone deep-copies the state so callers can safely diverge from the input.
func (s GameState) clone() GameState {
	c := s
	c.DrawPile = make([]string, len(s.DrawPile))
	copy(c.DrawPile, s.DrawPile)
	c.Tiles = make([]Tile, len(s.Tiles))
	copy(c.Tiles, s.Tiles)
	return c
}

// NewGame builds a shuffled 144-letter bag and pre-populates the staging area
// with cfg.InitialVisibleTiles serve rounds. Players is clamped into [2,4].
func NewGame(cfg Config, rng *rand.Rand) GameState {
	if cfg.Players < 2 {
		cfg.Players = 2
	}
	if cfg.Players > 4 {
		cfg.Players = 4
	}
	if cfg.Rows <= 0 {
		cfg.Rows = 12
	}
	if cfg.Cols <= 0 {
		cfg.Cols = 12
	}

	s := GameState{
		Config:     cfg,
		Status:     StatusRunning,
		NextTileID: 1,
		DrawPile:   newBag(rng),
		Tiles:      []Tile{},
		LastAction: "game created",
	}
	for i := 0; i < cfg.InitialVisibleTiles; i++ {
		if !s.serveRound() {
			break
		}
	}
	return s
}

// serveRound performs one serve in place: players-1 hidden draws are
// discarded unseen and one tile surfaces into staging. Returns false if the
// bag cannot supply a full round.
func (s *GameState) serveRound() bool {
	if len(s.DrawPile) <= s.Config.Players {
		return false
	}
	// Hidden draws for the other players happen on their own boards; here
	// they only shrink the bag.
	s.DrawPile = s.DrawPile[s.Config.Players-1:]
	s.drawToStaging()
	return true
}

// drawToStaging pops the front of the pile into a new staging tile.
func (s *GameState) drawToStaging() {
	letter := s.DrawPile[0]
	s.DrawPile = s.DrawPile[1:]
	s.Tiles = append(s.Tiles, Tile{
		ID:     fmt.Sprintf("t%d", s.NextTileID),
		Letter: letter,
		Zone:   ZoneStaging,
	})
	s.NextTileID++
}

// ServePlate ends the player's turn: one serve round on success, StatusWon
// when the bag runs out. A Won status means the round is over and this player
// is the winner; the room finalizes from there.
func ServePlate(s GameState) GameState {
	c := s.clone()
	c.Rejected = false
	if !c.serveRound() {
		c.Status = StatusWon
		c.LastAction = "served the last plate"
		return c
	}
	c.Turn++
	c.LastAction = "served a plate"
	return c
}

// ApplyPressureTick is the solo pressure-timer variant of ServePlate: the
// same serve mechanics, but bag exhaustion is a loss.
func ApplyPressureTick(s GameState) GameState {
	c := s.clone()
	c.Rejected = false
	if !c.serveRound() {
		c.Status = StatusLost
		c.LastAction = "ran out of tiles under pressure"
		return c
	}
	c.Turn++
	c.LastAction = "pressure tick"
	return c
}

// CanTradeTile reports whether the bag is deep enough to trade.
func CanTradeTile(s GameState) bool {
	return len(s.DrawPile) > 3
}

// TradeTile swaps one tile back into the bag for three fresh staging draws.
// The returned letter goes to a uniformly random pile position so the bag
// stays statistically fair. No-op while the bag holds three or fewer letters.
func TradeTile(s GameState, tileID string, rng *rand.Rand) GameState {
	c := s.clone()
	c.Rejected = false
	if !CanTradeTile(c) {
		c.Rejected = true
		c.LastAction = "trade rejected: bag is almost empty"
		return c
	}
	idx := c.tileIndex(tileID)
	if idx < 0 {
		c.Rejected = true
		c.LastAction = "trade rejected: unknown tile"
		return c
	}

	letter := c.Tiles[idx].Letter
	c.Tiles = append(c.Tiles[:idx], c.Tiles[idx+1:]...)

	pos := rng.Intn(len(c.DrawPile) + 1)
	pile := make([]string, 0, len(c.DrawPile)+1)
	pile = append(pile, c.DrawPile[:pos]...)
	pile = append(pile, letter)
	pile = append(pile, c.DrawPile[pos:]...)
	c.DrawPile = pile

	for i := 0; i < 3; i++ {
		c.drawToStaging()
	}
	c.Turn++
	c.LastAction = fmt.Sprintf("traded %s for three tiles", letter)
	return c
}

// MoveTile places a tile at (row, col), clamping the target into grid bounds.
// If the cell is occupied, a mover that was already on the board swaps with
// the occupant; a mover coming from staging evicts the occupant back to
// staging. At most one board tile ever occupies a cell.
func MoveTile(s GameState, tileID string, row, col int) GameState {
	c := s.clone()
	c.Rejected = false
	idx := c.tileIndex(tileID)
	if idx < 0 {
		c.Rejected = true
		c.LastAction = "move rejected: unknown tile"
		return c
	}

	row = clamp(row, 1, c.Config.Rows)
	col = clamp(col, 1, c.Config.Cols)

	mover := c.Tiles[idx]
	occIdx := c.boardTileAt(row, col)
	if occIdx >= 0 && c.Tiles[occIdx].ID != mover.ID {
		if mover.Zone == ZoneBoard {
			// Swap positions.
			c.Tiles[occIdx].Row = mover.Row
			c.Tiles[occIdx].Col = mover.Col
		} else {
			// Evict the occupant back to staging.
			c.Tiles[occIdx].Zone = ZoneStaging
			c.Tiles[occIdx].Row = 0
			c.Tiles[occIdx].Col = 0
		}
	}

	c.Tiles[idx].Zone = ZoneBoard
	c.Tiles[idx].Row = row
	c.Tiles[idx].Col = col
	c.LastAction = fmt.Sprintf("moved %s to (%d,%d)", mover.Letter, row, col)
	return c
}

// HasStagingTiles reports whether any tile is still waiting to be placed.
func HasStagingTiles(s GameState) bool {
	for _, t := range s.Tiles {
		if t.Zone == ZoneStaging {
			return true
		}
	}
	return false
}

// BoardTiles returns just the tiles currently placed on the grid.
func BoardTiles(s GameState) []Tile {
	placed := make([]Tile, 0, len(s.Tiles))
	for _, t := range s.Tiles {
		if t.Zone == ZoneBoard {
			placed = append(placed, t)
		}
	}
	return placed
}

// tileIndex finds a tile by id, -1 if absent.
func (s GameState) tileIndex(tileID string) int {
	for i, t := range s.Tiles {
		if t.ID == tileID {
			return i
		}
	}
	return -1
}

// boardTileAt finds the board tile occupying (row, col), -1 if the cell is free.
func (s GameState) boardTileAt(row, col int) int {
	for i, t := range s.Tiles {
		if t.Zone == ZoneBoard && t.Row == row && t.Col == col {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
